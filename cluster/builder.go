// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cluster implements transitive clustering of genes by exon
// overlap and the analysis and reporting of exon and CDS conflicts
// between the genes of each cluster.
package cluster

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/biogo/biogo/seq"

	"github.com/kortschak/genecluster/genepred"
	"github.com/kortschak/genecluster/track"
)

// ErrFinalized is returned when genes are added to a finalized Builder.
var ErrFinalized = errors.New("cluster: builder is finalized")

// Builder builds the clusters of a single chromosome and strand.
type Builder struct {
	chrom  string
	strand seq.Strand

	// cdsOnly restricts clustering to coding exons.
	cdsOnly bool

	index     *Index
	reg       Registry
	finalized bool
}

// NewBuilder returns a Builder for genes on the given chromosome and
// strand. If strand is seq.None, genes on both strands are clustered
// together. If cdsOnly is true, genes are clustered on their coding
// exons and genes without a coding region are ignored.
func NewBuilder(chrom string, strand seq.Strand, cdsOnly bool) *Builder {
	return &Builder{
		chrom:   chrom,
		strand:  strand,
		cdsOnly: cdsOnly,
		index:   &Index{},
	}
}

// Len returns the number of clusters currently held by the builder.
func (b *Builder) Len() int { return b.reg.Len() }

// AddAll adds all the genes read from r as members of track t. It returns
// the number of genes read.
func (b *Builder) AddAll(t *track.Track, r track.Reader) (int, error) {
	var n int
	for {
		g, err := r.Read()
		if err != nil {
			if err == io.EOF {
				return n, nil
			}
			return n, err
		}
		err = b.AddGene(t, g)
		if err != nil {
			return n, err
		}
		n++
	}
}

// AddGene adds the exons of g from track t to the clusters.
func (b *Builder) AddGene(t *track.Track, g *genepred.Gene) error {
	if b.finalized {
		return ErrFinalized
	}
	if g.Chrom != b.chrom || (b.strand != seq.None && g.Strand != b.strand) {
		return fmt.Errorf("cluster: gene %s on %s %s added to %s %s builder",
			g.Name, g.Chrom, genepred.StrandString(g.Strand), b.chrom, genepred.StrandString(b.strand))
	}
	if b.cdsOnly && !g.HasCDS() {
		return nil
	}
	active := noHandle
	for _, e := range g.ClippedExons(b.cdsOnly) {
		if e.Len() == 0 {
			continue
		}
		var err error
		active, err = b.AddGeneExon(t, g, active, e)
		if err != nil {
			return err
		}
	}
	return nil
}

// AddGeneExon adds the exon e of gene g from track t. The active handle
// is the cluster that already holds a previous exon of g, or -1 for the
// first exon of g. AddGeneExon returns the handle of the cluster holding
// g after e has been added, merging any clusters bridged by e.
func (b *Builder) AddGeneExon(t *track.Track, g *genepred.Gene, active Handle, e genepred.Exon) (Handle, error) {
	if b.finalized {
		return active, ErrFinalized
	}
	if active != noHandle && !b.reg.Live(active) {
		return active, fmt.Errorf("cluster: dead active handle %d for %s", active, g.Name)
	}
	for _, h := range distinct(b.index.FindOverlapping(e.Start, e.End)) {
		switch {
		case h == active:
		case active == noHandle:
			active = h
		default:
			b.reg.Merge(active, h, b.index)
		}
	}
	if active == noHandle {
		active = b.reg.New(b.chrom, b.strand)
	}
	c := b.reg.Get(active)
	c.add(t, g)
	err := b.index.Insert(e.Start, e.End, active)
	if err != nil {
		return active, err
	}
	c.addRange(e)
	return active, nil
}

// distinct returns h with duplicates removed, retaining first
// occurrence order.
func distinct(h []Handle) []Handle {
	if len(h) < 2 {
		return h
	}
	seen := make(map[Handle]bool, len(h))
	i := 0
	for _, v := range h {
		if seen[v] {
			continue
		}
		seen[v] = true
		h[i] = v
		i++
	}
	return h[:i]
}

// Finalize completes building. It returns all the clusters built, sorted
// by start and then end, with their conflicts analysed. Clusters kept by
// sel are numbered from ids; the remainder have an ID of -1. The index is
// released and the builder can no longer be added to.
func (b *Builder) Finalize(sel Selection, ids *Numberer) []*Cluster {
	b.finalized = true
	b.index = nil

	clusters := b.reg.Clusters()
	sort.SliceStable(clusters, func(i, j int) bool {
		if clusters[i].Start != clusters[j].Start {
			return clusters[i].Start < clusters[j].Start
		}
		return clusters[i].End < clusters[j].End
	})
	for _, c := range clusters {
		sortMembers(c.Genes)
		Analyze(c)
		if sel.Keep(c) {
			c.ID = ids.Next()
		}
	}
	return clusters
}

// sortMembers sorts members by track order, gene name and position.
func sortMembers(m []*Member) {
	sort.SliceStable(m, func(i, j int) bool {
		ti, tj := m[i].Track.Index(), m[j].Track.Index()
		if ti != tj {
			return ti < tj
		}
		if m[i].Name != m[j].Name {
			return m[i].Name < m[j].Name
		}
		return m[i].TxStart < m[j].TxStart
	})
}

// Numberer issues sequential cluster identifiers starting from 1.
type Numberer struct {
	last int
}

// Next returns the next identifier.
func (n *Numberer) Next() int {
	n.last++
	return n.last
}
