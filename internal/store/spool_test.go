// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"os"
	"strings"
	"testing"

	"github.com/biogo/biogo/seq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kortschak/genecluster/genepred"
)

func TestGeneKeyOrder(t *testing.T) {
	keys := []GeneKey{
		{Chrom: "chr1", Track: 0, Seq: 3},
		{Chrom: "chr1", Track: 1, Seq: 0},
		{Chrom: "chr10", Track: 0, Seq: 1},
		{Chrom: "chr2", Track: 0, Seq: 2},
	}
	for i, k := range keys {
		b := MarshalGeneKey(k)
		assert.Equal(t, k, UnmarshalGeneKey(b))
		assert.Equal(t, 0, ByChromTrackOrder(b, MarshalGeneKey(k)))
		if i > 0 {
			assert.Equal(t, -1, ByChromTrackOrder(MarshalGeneKey(keys[i-1]), b), "keys %d and %d", i-1, i)
			assert.Equal(t, 1, ByChromTrackOrder(b, MarshalGeneKey(keys[i-1])), "keys %d and %d", i, i-1)
		}
	}
}

const spoolGenes = `g1	chr2	+	10	20	10	20	1	10,	20,
g2	chr1	+	100	200	100	200	1	100,	200,
g3	chr1	-	150	250	150	250	1	150,	250,
g4	chr1	+	300	400	300	400	1	300,	400,
`

func TestSpool(t *testing.T) {
	s, err := NewSpool(t.TempDir())
	require.NoError(t, err)
	name := s.Name()

	n, err := s.Load(1, genepred.NewReader(strings.NewReader(spoolGenes)))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	n, err = s.Load(0, genepred.NewReader(strings.NewReader(spoolGenes)))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	assert.Equal(t, []string{"chr1", "chr2"}, s.Chroms())

	names := func(genes []*genepred.Gene) []string {
		var n []string
		for _, g := range genes {
			n = append(n, g.Name)
		}
		return n
	}

	genes, err := s.Genes("chr1", 1, seq.Plus)
	require.NoError(t, err)
	assert.Equal(t, []string{"g2", "g4"}, names(genes))

	genes, err = s.Genes("chr1", 0, seq.None)
	require.NoError(t, err)
	assert.Equal(t, []string{"g2", "g3", "g4"}, names(genes))

	genes, err = s.Genes("chr3", 0, seq.None)
	require.NoError(t, err)
	assert.Empty(t, genes)

	var tracks []int64
	err = s.Do(func(k GeneKey, g *genepred.Gene) error {
		tracks = append(tracks, k.Track)
		assert.Equal(t, k.Chrom, g.Chrom)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 0, 0, 1, 1, 1, 0, 1}, tracks)

	require.NoError(t, s.Close(false))
	_, err = os.Stat(name)
	assert.True(t, os.IsNotExist(err))
}

func TestSpoolKeep(t *testing.T) {
	s, err := NewSpool(t.TempDir())
	require.NoError(t, err)
	_, err = s.Load(0, genepred.NewReader(strings.NewReader(spoolGenes)))
	require.NoError(t, err)
	name := s.Name()
	require.NoError(t, s.Close(true))

	s, err = OpenSpool(name)
	require.NoError(t, err)
	defer s.Close(false)
	genes, err := s.Genes("chr2", 0, seq.None)
	require.NoError(t, err)
	require.Len(t, genes, 1)
	assert.Equal(t, "g1", genes[0].Name)
}
