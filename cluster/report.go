// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cluster

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/biogo/biogo/io/featio/bed"
	"github.com/biogo/biogo/io/featio/gff"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/kortschak/genecluster/genepred"
)

// Header is the column header line of the cluster table.
const Header = "#cluster\ttable\tgene\tchrom\ttxStart\ttxEnd\tstrand\thasExonConflicts\thasCdsConflicts\texonConflicts\tcdsConflicts"

// TableWriter writes the cluster membership table.
type TableWriter struct {
	w *bufio.Writer
}

// NewTableWriter returns a TableWriter writing to w after
// writing the table header.
func NewTableWriter(w io.Writer) (*TableWriter, error) {
	tw := &TableWriter{w: bufio.NewWriter(w)}
	_, err := fmt.Fprintln(tw.w, Header)
	if err != nil {
		return nil, err
	}
	return tw, nil
}

// Write writes a row for each member of c. Clusters that were not
// selected for output are skipped.
func (w *TableWriter) Write(c *Cluster) error {
	if c.ID < 0 {
		return nil
	}
	for _, m := range c.Genes {
		_, err := fmt.Fprintf(w.w, "%d\t%s\t%s\t%s\t%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, m.Track.Name, m.Name, m.Chrom, m.TxStart, m.TxEnd, genepred.StrandString(m.Strand),
			yesNo(c.HasExonConflicts), yesNo(c.HasCDSConflicts),
			conflictList(m.ExonConflicts), conflictList(m.CDSConflicts))
		if err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes buffered rows to the underlying writer.
func (w *TableWriter) Flush() error {
	return w.w.Flush()
}

func yesNo(b bool) string {
	if b {
		return "y"
	}
	return "n"
}

// conflictList returns a comma-terminated list of track:gene tokens.
func conflictList(m []*Member) string {
	var buf strings.Builder
	for _, o := range m {
		fmt.Fprintf(&buf, "%s:%s,", o.Track.Name, o.Name)
	}
	return buf.String()
}

// Name returns the output name of c.
func Name(c *Cluster) string {
	return fmt.Sprintf("cl%d", c.ID)
}

// BEDWriter writes the spans of kept clusters as BED4 records.
type BEDWriter struct {
	w *bed.Writer
}

// NewBEDWriter returns a BEDWriter writing to w.
func NewBEDWriter(w io.Writer) *BEDWriter {
	return &BEDWriter{w: bed.NewWriter(w, 4)}
}

// Write writes the span of c. Clusters that were not selected
// for output are skipped.
func (w *BEDWriter) Write(c *Cluster) error {
	if c.ID < 0 {
		return nil
	}
	_, err := w.w.Write(&bed.Bed4{
		Chrom:      c.Chrom,
		ChromStart: c.Start,
		ChromEnd:   c.End,
		FeatName:   Name(c),
	})
	return err
}

// GFFWriter writes kept clusters as GFF features.
type GFFWriter struct {
	w *gff.Writer
}

// NewGFFWriter returns a GFFWriter writing to w.
func NewGFFWriter(w io.Writer) *GFFWriter {
	return &GFFWriter{w: gff.NewWriter(w, 60, true)}
}

// Write writes c as a GFF cluster feature. Clusters that were not
// selected for output are skipped.
func (w *GFFWriter) Write(c *Cluster) error {
	if c.ID < 0 {
		return nil
	}
	genes := make([]string, len(c.Genes))
	for i, m := range c.Genes {
		genes[i] = m.Track.Name + ":" + m.Name
	}
	_, err := w.w.Write(&gff.Feature{
		SeqName:    c.Chrom,
		Source:     "clusterGenes",
		Feature:    "cluster",
		FeatStart:  c.Start,
		FeatEnd:    c.End,
		FeatStrand: c.Strand,
		FeatFrame:  gff.NoFrame,
		FeatAttributes: gff.Attributes{
			{Tag: "Cluster", Value: Name(c)},
			{Tag: "Genes", Value: strings.Join(genes, ",")},
		},
	})
	return err
}

// ConflictGraph is an undirected graph of conflicting cluster members.
// Nodes are named cl<id>:track:gene and edges are labelled with the
// kinds of conflict between the pair.
type ConflictGraph struct {
	*simple.UndirectedGraph
	idFor map[string]int64
	kinds map[[2]int64]string
}

// NewConflictGraph returns an empty ConflictGraph.
func NewConflictGraph() *ConflictGraph {
	return &ConflictGraph{
		UndirectedGraph: simple.NewUndirectedGraph(),
		idFor:           make(map[string]int64),
		kinds:           make(map[[2]int64]string),
	}
}

// Add adds the conflicts of a kept cluster to the graph.
func (g *ConflictGraph) Add(c *Cluster) {
	if c.ID < 0 {
		return
	}
	for _, m := range c.Genes {
		for _, o := range m.ExonConflicts {
			g.addConflict(c, m, o, "exon")
		}
	}
	for _, m := range c.Genes {
		for _, o := range m.CDSConflicts {
			g.addConflict(c, m, o, "cds")
		}
	}
}

func (g *ConflictGraph) addConflict(c *Cluster, a, b *Member, kind string) {
	u := g.nodeFor(c, a)
	v := g.nodeFor(c, b)
	k := [2]int64{u.ID(), v.ID()}
	if k[0] > k[1] {
		k[0], k[1] = k[1], k[0]
	}
	switch kinds := g.kinds[k]; {
	case kinds == "":
		g.kinds[k] = kind
	case !strings.Contains(kinds, kind):
		g.kinds[k] = kinds + "," + kind
	}
	g.SetEdge(edge{f: u, t: v, kinds: g.kinds[k]})
}

func (g *ConflictGraph) nodeFor(c *Cluster, m *Member) graph.Node {
	name := fmt.Sprintf("%s:%s:%s", Name(c), m.Track.Name, m.Name)
	id, ok := g.idFor[name]
	if ok {
		return g.Node(id)
	}
	id = g.UndirectedGraph.NewNode().ID()
	g.idFor[name] = id
	n := node{id: id, name: name}
	g.AddNode(n)
	return n
}

// MarshalDOT returns the DOT encoding of the graph.
func (g *ConflictGraph) MarshalDOT() ([]byte, error) {
	return dot.Marshal(g, "conflicts", "", "\t")
}

type node struct {
	id   int64
	name string
}

func (n node) ID() int64     { return n.id }
func (n node) DOTID() string { return n.name }

type edge struct {
	f, t  graph.Node
	kinds string
}

func (e edge) From() graph.Node         { return e.f }
func (e edge) To() graph.Node           { return e.t }
func (e edge) ReversedEdge() graph.Edge { return edge{f: e.t, t: e.f, kinds: e.kinds} }
func (e edge) Attributes() []encoding.Attribute {
	return []encoding.Attribute{{Key: "label", Value: e.kinds}}
}
