// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store provides an on-disk spool of genePred records ordered
// for per-chromosome retrieval.
package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/biogo/biogo/seq"
	"modernc.org/kv"

	"github.com/kortschak/genecluster/genepred"
)

// Spool holds genes read from file tracks so that the genes of a single
// chromosome can be retrieved without holding every file in memory.
type Spool struct {
	db     *kv.DB
	seq    int64
	chroms map[string]bool
}

func options() *kv.Options {
	return &kv.Options{Compare: ByChromTrackOrder}
}

// NewSpool creates a new spool in a temporary file in dir. If dir is
// empty, the default directory for temporary files is used.
func NewSpool(dir string) (*Spool, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	db, err := kv.CreateTemp(dir, "genes-", ".db", options())
	if err != nil {
		return nil, err
	}
	return &Spool{db: db, chroms: make(map[string]bool)}, nil
}

// OpenSpool opens an existing spool file.
func OpenSpool(path string) (*Spool, error) {
	db, err := kv.Open(path, options())
	if err != nil {
		return nil, err
	}
	return &Spool{db: db}, nil
}

// Name returns the path of the spool file.
func (s *Spool) Name() string { return s.db.Name() }

// Add adds g to the spool under the given track index.
func (s *Spool) Add(track int, g *genepred.Gene) error {
	v, err := json.Marshal(g)
	if err != nil {
		return err
	}
	k := MarshalGeneKey(GeneKey{Chrom: g.Chrom, Track: int64(track), Seq: s.seq})
	err = s.db.Set(k, v)
	if err != nil {
		return err
	}
	s.seq++
	if s.chroms != nil {
		s.chroms[g.Chrom] = true
	}
	return nil
}

// Load reads all genes from r and adds them to the spool under
// the given track index. It returns the number of genes read.
func (s *Spool) Load(track int, r *genepred.Reader) (int, error) {
	var n int
	for {
		g, err := r.Read()
		if err != nil {
			if err == io.EOF {
				return n, nil
			}
			return n, err
		}
		err = s.Add(track, g)
		if err != nil {
			return n, err
		}
		n++
	}
}

// Chroms returns the sorted names of chromosomes added to the spool.
func (s *Spool) Chroms() []string {
	chroms := make([]string, 0, len(s.chroms))
	for c := range s.chroms {
		chroms = append(chroms, c)
	}
	sort.Strings(chroms)
	return chroms
}

// Genes returns the genes of the given track on chrom in input order.
// If strand is seq.None, genes on both strands are returned.
func (s *Spool) Genes(chrom string, track int, strand seq.Strand) ([]*genepred.Gene, error) {
	it, _, err := s.db.Seek(MarshalGeneKey(GeneKey{Chrom: chrom, Track: int64(track)}))
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	var genes []*genepred.Gene
	for {
		k, v, err := it.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		key := UnmarshalGeneKey(k)
		if key.Chrom != chrom || key.Track != int64(track) {
			break
		}
		var g genepred.Gene
		err = json.Unmarshal(v, &g)
		if err != nil {
			return nil, fmt.Errorf("corrupt spool entry %+v: %w", key, err)
		}
		if strand != seq.None && g.Strand != strand {
			continue
		}
		genes = append(genes, &g)
	}
	return genes, nil
}

// Do calls fn for each gene in the spool in key order.
func (s *Spool) Do(fn func(GeneKey, *genepred.Gene) error) error {
	it, err := s.db.SeekFirst()
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	for {
		k, v, err := it.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		var g genepred.Gene
		err = json.Unmarshal(v, &g)
		if err != nil {
			return err
		}
		err = fn(UnmarshalGeneKey(k), &g)
		if err != nil {
			return err
		}
	}
}

// Close closes the spool. If keep is false the spool file is removed.
func (s *Spool) Close(keep bool) error {
	name := s.db.Name()
	err := s.db.Close()
	if err != nil || keep {
		return err
	}
	return os.Remove(name)
}
