// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cluster

import "github.com/kortschak/genecluster/track"

// Selection is the cluster output selection policy.
type Selection struct {
	// Required is the set of tracks that must each contribute
	// at least one gene to a kept cluster.
	Required []*track.Track

	// Conflicted restricts output to clusters
	// with exon or CDS conflicts.
	Conflicted bool
}

// NewSelection returns a Selection requiring the tracks marked as required.
func NewSelection(tracks []*track.Track, conflicted bool) Selection {
	sel := Selection{Conflicted: conflicted}
	for _, t := range tracks {
		if t.Required {
			sel.Required = append(sel.Required, t)
		}
	}
	return sel
}

// Keep returns whether c should be output.
func (s Selection) Keep(c *Cluster) bool {
	if s.Conflicted && !c.HasExonConflicts && !c.HasCDSConflicts {
		return false
	}
outer:
	for _, t := range s.Required {
		for _, m := range c.Genes {
			if m.Track == t {
				continue outer
			}
		}
		return false
	}
	return true
}
