// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cluster

import (
	"fmt"

	"github.com/biogo/biogo/seq"

	"github.com/kortschak/genecluster/genepred"
	"github.com/kortschak/genecluster/track"
)

// Member is a gene contributing to a cluster.
type Member struct {
	Track *track.Track
	*genepred.Gene

	// ExonConflicts and CDSConflicts are the members of
	// the same cluster that share no exon, or no coding
	// exon, with this member. They are populated when
	// the cluster is finalized.
	ExonConflicts []*Member
	CDSConflicts  []*Member
}

// key returns the identity of the member.
func (m *Member) key() memberKey {
	return memberKey{track: m.Track, gene: m.Gene}
}

type memberKey struct {
	track *track.Track
	gene  *genepred.Gene
}

// Cluster is a set of genes whose exons transitively overlap.
type Cluster struct {
	// ID is the output identifier of the cluster. It is -1
	// for clusters that are not selected for output.
	ID int

	Chrom string
	// Strand is seq.None if strands are clustered together.
	Strand seq.Strand
	// Start and End are the bounds of the union of the
	// member exons that built the cluster.
	Start, End int

	Genes []*Member

	HasExonConflicts bool
	HasCDSConflicts  bool

	members map[memberKey]*Member

	// ranges is the list of index entries
	// keyed to this cluster.
	ranges []genepred.Exon
}

func newCluster(chrom string, strand seq.Strand) *Cluster {
	return &Cluster{
		ID:      -1,
		Chrom:   chrom,
		Strand:  strand,
		members: make(map[memberKey]*Member),
	}
}

// add adds the gene g from t to the cluster if it is not already
// a member and returns the member.
func (c *Cluster) add(t *track.Track, g *genepred.Gene) *Member {
	k := memberKey{track: t, gene: g}
	m, ok := c.members[k]
	if ok {
		return m
	}
	m = &Member{Track: t, Gene: g}
	c.members[k] = m
	c.Genes = append(c.Genes, m)
	return m
}

// addRange records e as an index entry keyed to the cluster and widens
// the span of the cluster to include it.
func (c *Cluster) addRange(e genepred.Exon) {
	if len(c.ranges) == 0 {
		c.Start, c.End = e.Start, e.End
	} else {
		c.Start = min(c.Start, e.Start)
		c.End = max(c.End, e.End)
	}
	c.ranges = append(c.ranges, e)
}

// Contains returns whether the gene g from t is a member of c.
func (c *Cluster) Contains(t *track.Track, g *genepred.Gene) bool {
	_, ok := c.members[memberKey{track: t, gene: g}]
	return ok
}

// Registry is the owner of the clusters built on a single chromosome
// strand. Clusters are referred to by Handle. Handles of clusters that
// have been merged into another cluster are dead.
type Registry struct {
	slots []*Cluster
	live  int
}

// New creates a new empty cluster and returns its handle.
func (r *Registry) New(chrom string, strand seq.Strand) Handle {
	r.slots = append(r.slots, newCluster(chrom, strand))
	r.live++
	return Handle(len(r.slots) - 1)
}

// Get returns the cluster referred to by h. It panics if h is dead.
func (r *Registry) Get(h Handle) *Cluster {
	if h < 0 || int(h) >= len(r.slots) || r.slots[h] == nil {
		panic(fmt.Sprintf("cluster: invalid handle %d", h))
	}
	return r.slots[h]
}

// Live returns whether h refers to a cluster that has not been merged.
func (r *Registry) Live(h Handle) bool {
	return 0 <= h && int(h) < len(r.slots) && r.slots[h] != nil
}

// Len returns the number of live clusters.
func (r *Registry) Len() int { return r.live }

// Merge merges the cluster referred to by b into the cluster referred to
// by a. The index entries keyed to b are repointed to a in x, the members
// of b not already in a are transferred and the span of a is widened to
// include the span of b. After Merge, b is dead.
func (r *Registry) Merge(a, b Handle, x *Index) {
	if a == b {
		panic("cluster: merge of cluster with itself")
	}
	ca := r.Get(a)
	cb := r.Get(b)
	for _, e := range cb.ranges {
		x.ReplaceHandle(e.Start, e.End, b, a)
		ca.addRange(e)
	}
	for _, m := range cb.Genes {
		if _, ok := ca.members[m.key()]; ok {
			continue
		}
		ca.members[m.key()] = m
		ca.Genes = append(ca.Genes, m)
	}
	r.slots[b] = nil
	r.live--
}

// Clusters returns the live clusters in creation order.
func (r *Registry) Clusters() []*Cluster {
	c := make([]*Cluster, 0, r.live)
	for _, s := range r.slots {
		if s != nil {
			c = append(c, s)
		}
	}
	return c
}
