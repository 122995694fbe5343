// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cluster

import (
	"sort"

	"github.com/kortschak/genecluster/genepred"
)

// ShareExons returns whether a and b have at least one overlapping exon.
// If cdsOnly is true, exons are clipped to the coding region of their gene
// before comparison.
func ShareExons(a, b *genepred.Gene, cdsOnly bool) bool {
	ea := a.ClippedExons(cdsOnly)
	eb := b.ClippedExons(cdsOnly)
	for _, x := range ea {
		if x.Len() == 0 {
			continue
		}
		for _, y := range eb {
			if y.Start >= x.End {
				break
			}
			if y.Len() != 0 && x.Overlaps(y) {
				return true
			}
		}
	}
	return false
}

// Analyze populates the conflict lists of each member of c and sets the
// cluster's conflict flags. A CDS conflict is only recorded between two
// members that both have a coding region.
func Analyze(c *Cluster) {
	c.HasExonConflicts = false
	c.HasCDSConflicts = false
	for _, m := range c.Genes {
		m.ExonConflicts = m.ExonConflicts[:0]
		m.CDSConflicts = m.CDSConflicts[:0]
		for _, o := range c.Genes {
			if o == m {
				continue
			}
			if !ShareExons(m.Gene, o.Gene, false) {
				m.ExonConflicts = append(m.ExonConflicts, o)
			}
			if m.HasCDS() && o.HasCDS() && !ShareExons(m.Gene, o.Gene, true) {
				m.CDSConflicts = append(m.CDSConflicts, o)
			}
		}
		sortConflicts(m.ExonConflicts)
		sortConflicts(m.CDSConflicts)
		if len(m.ExonConflicts) != 0 {
			c.HasExonConflicts = true
		}
		if len(m.CDSConflicts) != 0 {
			c.HasCDSConflicts = true
		}
	}
}

// sortConflicts sorts by track name and then gene name.
func sortConflicts(m []*Member) {
	sort.SliceStable(m, func(i, j int) bool {
		if m[i].Track.Name != m[j].Track.Name {
			return m[i].Track.Name < m[j].Track.Name
		}
		return m[i].Name < m[j].Name
	})
}
