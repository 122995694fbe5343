// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package track

import (
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biogo/biogo/seq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kortschak/genecluster/genepred"
)

func TestParse(t *testing.T) {
	isFile := func(s string) bool { return strings.HasSuffix(s, ".gp") }

	tracks, err := Parse([]string{"knownGene", "mine.gp"}, false, isFile)
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "knownGene", tracks[0].Name)
	assert.True(t, tracks[0].IsDB)
	assert.Equal(t, "mine.gp", tracks[1].Name)
	assert.False(t, tracks[1].IsDB)
	assert.Equal(t, 1, tracks[1].Index())

	tracks, err = Parse([]string{"known", "knownGene", "mine", "mine.gp"}, true, isFile)
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "known", tracks[0].Name)
	assert.Equal(t, "knownGene", tracks[0].Source)
	assert.Equal(t, "mine", tracks[1].Name)
	assert.Equal(t, "mine.gp", tracks[1].Source)

	_, err = Parse([]string{"known", "knownGene", "mine"}, true, isFile)
	assert.Error(t, err)
	_, err = Parse(nil, false, isFile)
	assert.Error(t, err)
}

func TestMarkRequired(t *testing.T) {
	tracks, err := Parse([]string{"a", "b", "c"}, false, func(string) bool { return true })
	require.NoError(t, err)

	require.NoError(t, MarkRequired(tracks, "a, c"))
	assert.True(t, tracks[0].Required)
	assert.False(t, tracks[1].Required)
	assert.True(t, tracks[2].Required)

	assert.Error(t, MarkRequired(tracks, "d"))
}

var dbGenes = []*genepred.Gene{
	{Name: "g1", Chrom: "chr1", Strand: seq.Plus, TxStart: 100, TxEnd: 200, CdsStart: 120, CdsEnd: 180, Exons: []genepred.Exon{{Start: 100, End: 200}}},
	{Name: "g2", Chrom: "chr1", Strand: seq.Minus, TxStart: 100, TxEnd: 300, Exons: []genepred.Exon{{Start: 100, End: 150}, {Start: 250, End: 300}}},
	{Name: "g3", Chrom: "chr3", Strand: seq.Plus, TxStart: 10, TxEnd: 20, Exons: []genepred.Exon{{Start: 10, End: 20}}},
}

func newTestDB(t *testing.T) *sql.DB {
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, CreateTable(db, "knownGene", dbGenes))
	return db
}

func readAll(t *testing.T, r Reader) []string {
	var names []string
	for {
		g, err := r.Read()
		if err == io.EOF {
			return names
		}
		require.NoError(t, err)
		names = append(names, g.Name)
	}
}

func TestSet(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "mine.gp")
	err := os.WriteFile(file, []byte(
		"m1\tchr2\t+\t1\t9\t1\t9\t1\t1,\t9,\n"+
			"m2\tchr1\t-\t1\t9\t1\t9\t1\t1,\t9,\n"), 0o664)
	require.NoError(t, err)

	tracks, err := Parse([]string{"knownGene", file}, false, nil)
	require.NoError(t, err)
	assert.True(t, tracks[0].IsDB)
	assert.False(t, tracks[1].IsDB)

	s, err := Open(tracks, db, dir)
	require.NoError(t, err)
	defer s.Close(false)
	assert.NotEmpty(t, s.SpoolName())

	chroms, err := s.Chroms()
	require.NoError(t, err)
	assert.Equal(t, []string{"chr1", "chr2", "chr3"}, chroms)

	r, err := s.Genes(tracks[0], "chr1", seq.Plus)
	require.NoError(t, err)
	assert.Equal(t, []string{"g1"}, readAll(t, r))

	r, err = s.Genes(tracks[0], "chr1", seq.None)
	require.NoError(t, err)
	assert.Equal(t, []string{"g1", "g2"}, readAll(t, r))

	r, err = s.Genes(tracks[1], "chr1", seq.Minus)
	require.NoError(t, err)
	assert.Equal(t, []string{"m2"}, readAll(t, r))

	r, err = s.Genes(tracks[1], "chr1", seq.Plus)
	require.NoError(t, err)
	assert.Empty(t, readAll(t, r))
}

func TestSetMissing(t *testing.T) {
	db := newTestDB(t)

	tracks, err := Parse([]string{"refGene"}, false, nil)
	require.NoError(t, err)
	_, err = Open(tracks, db, t.TempDir())
	assert.ErrorIs(t, err, ErrNoTable)

	_, err = Open(tracks, nil, t.TempDir())
	assert.ErrorIs(t, err, ErrNoTable)

	missing := filepath.Join(t.TempDir(), "missing.gp")
	tracks, err = Parse([]string{missing}, false, func(string) bool { return true })
	require.NoError(t, err)
	_, err = Open(tracks, db, t.TempDir())
	assert.ErrorIs(t, err, ErrNoTable)
}

func TestSetMalformed(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "bad.gp")
	require.NoError(t, os.WriteFile(file, []byte("m1\tchr2\t+\t1\n"), 0o664))

	tracks, err := Parse([]string{file}, false, nil)
	require.NoError(t, err)
	_, err = Open(tracks, nil, dir)
	assert.ErrorIs(t, err, genepred.ErrMalformed)
}
