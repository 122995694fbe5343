// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package genepred

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biogo/biogo/seq"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGenes = `# name	chrom	strand	txStart	txEnd	cdsStart	cdsEnd	exonCount	exonStarts	exonEnds
geneA	chr1	+	100	600	150	580	2	100,500,	200,600,

585	geneB	chr1	-	150	250	150	150	1	150,	250,
geneC	chr2	+	10	40	20	30	2	10,30,	15,40,	0	GENEC
`

func TestReader(t *testing.T) {
	r := NewReader(strings.NewReader(testGenes))

	var got []*Gene
	for {
		g, err := r.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, g)
	}
	require.Len(t, got, 3)

	assert.Equal(t, &Gene{
		Name: "geneA", Chrom: "chr1", Strand: seq.Plus,
		TxStart: 100, TxEnd: 600, CdsStart: 150, CdsEnd: 580,
		Exons: []Exon{{100, 200}, {500, 600}},
	}, got[0])

	// Bin column is skipped.
	assert.Equal(t, "geneB", got[1].Name)
	assert.Equal(t, seq.Minus, got[1].Strand)
	assert.False(t, got[1].HasCDS())

	assert.Equal(t, "GENEC", got[2].Name2)
}

func TestReaderErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "short", line: "g\tchr1\t+\t1\t2\n"},
		{name: "coordinate", line: "g\tchr1\t+\tx\t2\t1\t1\t1\t1,\t2,\n"},
		{name: "strand", line: "g\tchr1\t?\t1\t2\t1\t1\t1\t1,\t2,\n"},
		{name: "count", line: "g\tchr1\t+\t1\t9\t1\t1\t2\t1,\t2,\n"},
		{name: "inverted exon", line: "g\tchr1\t+\t1\t9\t1\t1\t1\t5,\t2,\n"},
		{name: "exon order", line: "g\tchr1\t+\t1\t9\t1\t1\t2\t5,1,\t6,2,\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewReader(strings.NewReader(test.line)).Read()
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestClippedExons(t *testing.T) {
	g := &Gene{
		CdsStart: 150, CdsEnd: 520,
		Exons: []Exon{{10, 50}, {100, 200}, {500, 600}, {700, 800}},
	}
	assert.Equal(t, g.Exons, g.ClippedExons(false))
	assert.Equal(t, []Exon{{150, 200}, {500, 520}}, g.ClippedExons(true))

	g.CdsStart, g.CdsEnd = 0, 0
	assert.Empty(t, g.ClippedExons(true))
}

func TestStringRoundTrip(t *testing.T) {
	line := "geneA\tchr1\t+\t100\t600\t150\t580\t2\t100,500,\t200,600,"
	g, err := ParseLine([]byte(line))
	require.NoError(t, err)
	assert.Equal(t, line, g.String())
}

func TestOpenGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genes.gp.gz")
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := io.WriteString(w, testGenes)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o664))

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()
	g, err := NewReader(f).Read()
	require.NoError(t, err)
	assert.Equal(t, "geneA", g.Name)
}
