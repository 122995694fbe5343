// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package genepred provides types and functions for reading and writing
// UCSC genePred transcript records.
package genepred

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/biogo/seq"
	"github.com/klauspost/compress/gzip"
)

// ErrMalformed is returned for records that cannot be parsed as genePred.
var ErrMalformed = errors.New("malformed genePred record")

// Exon is a half-open [Start, End) transcribed range.
type Exon struct {
	Start int
	End   int
}

// Len returns the length of the exon.
func (e Exon) Len() int { return e.End - e.Start }

// Overlaps returns whether e and o share at least one base.
func (e Exon) Overlaps(o Exon) bool {
	return e.Start < o.End && o.Start < e.End
}

// Gene is a single genePred transcript.
type Gene struct {
	Name     string
	Chrom    string
	Strand   seq.Strand
	TxStart  int
	TxEnd    int
	CdsStart int
	CdsEnd   int
	Exons    []Exon

	// Name2 is the optional alternative
	// name of extended genePred records.
	Name2 string `json:",omitempty"`
}

// HasCDS returns whether the gene has a non-empty coding region.
func (g *Gene) HasCDS() bool {
	return g.CdsStart < g.CdsEnd
}

// ClippedExons returns the exons of g. If cdsOnly is true, exons are
// clipped to the coding region and exons left empty are omitted.
func (g *Gene) ClippedExons(cdsOnly bool) []Exon {
	if !cdsOnly {
		return g.Exons
	}
	var exons []Exon
	for _, e := range g.Exons {
		e, ok := g.clip(e)
		if ok {
			exons = append(exons, e)
		}
	}
	return exons
}

func (g *Gene) clip(e Exon) (Exon, bool) {
	if e.Start < g.CdsStart {
		e.Start = g.CdsStart
	}
	if e.End > g.CdsEnd {
		e.End = g.CdsEnd
	}
	return e, e.Start < e.End
}

// String returns the gene formatted as a tab-separated genePred line
// without a trailing newline.
func (g *Gene) String() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t",
		g.Name, g.Chrom, StrandString(g.Strand), g.TxStart, g.TxEnd, g.CdsStart, g.CdsEnd, len(g.Exons))
	for _, e := range g.Exons {
		fmt.Fprintf(&buf, "%d,", e.Start)
	}
	buf.WriteByte('\t')
	for _, e := range g.Exons {
		fmt.Fprintf(&buf, "%d,", e.End)
	}
	return buf.String()
}

// StrandString returns the genePred representation of a strand.
func StrandString(s seq.Strand) string {
	switch s {
	case seq.Plus:
		return "+"
	case seq.Minus:
		return "-"
	default:
		return "."
	}
}

// ParseStrand returns the strand represented by s.
func ParseStrand(s string) (seq.Strand, error) {
	switch s {
	case "+":
		return seq.Plus, nil
	case "-":
		return seq.Minus, nil
	default:
		return seq.None, fmt.Errorf("%w: invalid strand %q", ErrMalformed, s)
	}
}

// ParseCoords parses a comma-separated, optionally comma-terminated,
// list of coordinates.
func ParseCoords(s string) ([]int, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), ",")
	if s == "" {
		return nil, nil
	}
	f := strings.Split(s, ",")
	c := make([]int, len(f))
	for i, v := range f {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		c[i] = n
	}
	return c, nil
}

// NewGene returns a Gene constructed from the genePred column values.
// It checks that the exon lists agree with exonCount and that the exons
// are well formed.
func NewGene(name, chrom, strand string, txStart, txEnd, cdsStart, cdsEnd, exonCount int, exonStarts, exonEnds string) (*Gene, error) {
	s, err := ParseStrand(strand)
	if err != nil {
		return nil, err
	}
	starts, err := ParseCoords(exonStarts)
	if err != nil {
		return nil, err
	}
	ends, err := ParseCoords(exonEnds)
	if err != nil {
		return nil, err
	}
	if len(starts) != exonCount || len(ends) != exonCount {
		return nil, fmt.Errorf("%w: exon count %d does not match %d starts and %d ends",
			ErrMalformed, exonCount, len(starts), len(ends))
	}
	if txStart > txEnd {
		return nil, fmt.Errorf("%w: inverted transcript range [%d,%d)", ErrMalformed, txStart, txEnd)
	}
	g := &Gene{
		Name:     name,
		Chrom:    chrom,
		Strand:   s,
		TxStart:  txStart,
		TxEnd:    txEnd,
		CdsStart: cdsStart,
		CdsEnd:   cdsEnd,
		Exons:    make([]Exon, exonCount),
	}
	for i := range g.Exons {
		e := Exon{Start: starts[i], End: ends[i]}
		if e.Start > e.End {
			return nil, fmt.Errorf("%w: inverted exon %d [%d,%d)", ErrMalformed, i, e.Start, e.End)
		}
		if i != 0 && e.Start < g.Exons[i-1].End {
			return nil, fmt.Errorf("%w: exon %d out of order", ErrMalformed, i)
		}
		g.Exons[i] = e
	}
	return g, nil
}

// column indices for genePred records.
const (
	nameField = iota
	chromField
	strandField
	txStartField
	txEndField
	cdsStartField
	cdsEndField
	exonCountField
	exonStartsField
	exonEndsField
	numFields

	// name2 is the second extended field after score.
	name2Field = numFields + 1
)

// ParseLine parses a single genePred line. A leading bin column, as found
// in table dumps, is skipped.
func ParseLine(line []byte) (*Gene, error) {
	f := bytes.Split(line, []byte("\t"))
	if len(f) > numFields && isStrand(f[strandField+1]) && !isStrand(f[strandField]) {
		f = f[1:]
	}
	if len(f) < numFields {
		return nil, fmt.Errorf("%w: unexpected number of fields: %d", ErrMalformed, len(f))
	}

	var coord [exonCountField - txStartField + 1]int
	for i := range coord {
		var err error
		coord[i], err = strconv.Atoi(string(bytes.TrimSpace(f[txStartField+i])))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	g, err := NewGene(
		string(f[nameField]),
		string(f[chromField]),
		string(f[strandField]),
		coord[0], coord[1], coord[2], coord[3], coord[4],
		string(f[exonStartsField]),
		string(f[exonEndsField]),
	)
	if err != nil {
		return nil, err
	}
	if len(f) > name2Field {
		g.Name2 = string(f[name2Field])
	}
	return g, nil
}

func isStrand(b []byte) bool {
	return len(b) == 1 && (b[0] == '+' || b[0] == '-')
}

// Reader is a genePred stream reader.
type Reader struct {
	sc   *bufio.Scanner
	line int
}

// NewReader returns a new Reader reading from r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, 1<<24)
	return &Reader{sc: sc}
}

// Read returns the next gene in the stream. At the end of the stream
// Read returns io.EOF.
func (r *Reader) Read() (*Gene, error) {
	for r.sc.Scan() {
		r.line++
		line := r.sc.Bytes()
		if len(bytes.TrimSpace(line)) == 0 || line[0] == '#' {
			continue
		}
		g, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("error in line %d: %w", r.line, err)
		}
		return g, nil
	}
	err := r.sc.Err()
	if err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Open opens the named genePred file. Files with a .gz suffix
// are decompressed.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return gzipFile{Reader: gz, f: f}, nil
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g gzipFile) Close() error {
	err := g.Reader.Close()
	if cerr := g.f.Close(); err == nil {
		err = cerr
	}
	return err
}
