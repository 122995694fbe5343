// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package track

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/biogo/biogo/seq"

	"github.com/kortschak/genecluster/genepred"
	"github.com/kortschak/genecluster/internal/store"
)

// Reader is a stream of genes. Read returns io.EOF at the end of the stream.
type Reader interface {
	Read() (*genepred.Gene, error)
}

// Set is the collection of tracks participating in a clustering run.
type Set struct {
	Tracks []*Track

	db    *sql.DB
	spool *store.Spool
}

// Open returns a Set for the given tracks. Database tables are checked
// for existence in db and file tracks are read into a gene spool created
// in dir. If dir is empty the default temporary directory is used.
func Open(tracks []*Track, db *sql.DB, dir string) (_ *Set, err error) {
	s := &Set{Tracks: tracks, db: db}
	defer func() {
		if err != nil {
			s.Close(false)
		}
	}()
	for _, t := range tracks {
		if t.IsDB {
			if db == nil {
				return nil, fmt.Errorf("%w: %s (no database)", ErrNoTable, t.Source)
			}
			ok, err := tableExists(db, t.Source)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrNoTable, t.Source)
			}
			continue
		}

		if s.spool == nil {
			s.spool, err = store.NewSpool(dir)
			if err != nil {
				return nil, err
			}
		}
		err = s.load(t)
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Set) load(t *Track) error {
	f, err := genepred.Open(t.Source)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNoTable, t.Source)
		}
		return err
	}
	defer f.Close()
	_, err = s.spool.Load(t.index, genepred.NewReader(f))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", t.Source, err)
	}
	return nil
}

// SpoolName returns the path of the file track spool, or the
// empty string if there are no file tracks.
func (s *Set) SpoolName() string {
	if s.spool == nil {
		return ""
	}
	return s.spool.Name()
}

// Chroms returns the sorted union of chromosomes named by genes in all
// tracks.
func (s *Set) Chroms() ([]string, error) {
	seen := make(map[string]bool)
	if s.spool != nil {
		for _, c := range s.spool.Chroms() {
			seen[c] = true
		}
	}
	for _, t := range s.Tracks {
		if !t.IsDB {
			continue
		}
		chroms, err := tableChroms(s.db, t.Source)
		if err != nil {
			return nil, err
		}
		for _, c := range chroms {
			seen[c] = true
		}
	}
	chroms := make([]string, 0, len(seen))
	for c := range seen {
		chroms = append(chroms, c)
	}
	sort.Strings(chroms)
	return chroms, nil
}

// Genes returns a stream of the genes of t on chrom. If strand is
// seq.None, genes on both strands are returned.
func (s *Set) Genes(t *Track, chrom string, strand seq.Strand) (Reader, error) {
	var (
		genes []*genepred.Gene
		err   error
	)
	if t.IsDB {
		genes, err = tableGenes(s.db, t.Source, chrom, strand)
	} else {
		genes, err = s.spool.Genes(chrom, t.index, strand)
	}
	if err != nil {
		return nil, err
	}
	return &sliceReader{genes: genes}, nil
}

// Close releases the resources held by the Set. If keep is true the
// gene spool file is retained.
func (s *Set) Close(keep bool) error {
	if s.spool == nil {
		return nil
	}
	return s.spool.Close(keep)
}

type sliceReader struct {
	genes []*genepred.Gene
}

func (r *sliceReader) Read() (*genepred.Gene, error) {
	if len(r.genes) == 0 {
		return nil, io.EOF
	}
	g := r.genes[0]
	r.genes = r.genes[1:]
	return g, nil
}
