// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The audit-gene-spool command allows the gene spool generated during a run
// of cluster-genes to be queried. The spool holds the genes read from file
// tracks and is kept after cluster-genes completes if it is given the -work
// flag. Its path is noted in the log output of cluster-genes.
//
// Output from audit-gene-spool is a JSON stream on stdout with one record
// per spooled gene in key order, corresponding to the following Go struct.
// Track is the zero-based index of the track on the cluster-genes command
// line and Seq is the order in which the gene was spooled.
//  struct {
//  	Chrom string
//  	Track int64
//  	Seq   int64
//  	Gene  struct {
//  		Name     string
//  		Chrom    string
//  		Strand   int8
//  		TxStart  int
//  		TxEnd    int
//  		CdsStart int
//  		CdsEnd   int
//  		Exons    []struct{ Start, End int }
//  	}
//  }
package main

import (
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"

	"github.com/kortschak/genecluster/genepred"
	"github.com/kortschak/genecluster/internal/store"
)

func main() {
	path := flag.String("db", "", "specify gene spool file to audit")
	chrom := flag.String("chrom", "", "specify a chromosome to restrict output to")
	track := flag.Int("track", -1, "specify a track index to restrict output to")
	flag.Parse()
	if *path == "" {
		flag.Usage()
		os.Exit(2)
	}

	err := audit(os.Stdout, *path, *chrom, *track)
	if err != nil {
		log.Fatal(err)
	}
}

type record struct {
	Chrom string
	Track int64
	Seq   int64
	Gene  *genepred.Gene
}

// audit writes the genes in the spool at path to w as a JSON stream.
// If chrom is not empty or track is not negative, only matching genes
// are written.
func audit(w io.Writer, path, chrom string, track int) error {
	s, err := store.OpenSpool(path)
	if err != nil {
		return err
	}
	defer s.Close(true)

	enc := json.NewEncoder(w)
	return s.Do(func(k store.GeneKey, g *genepred.Gene) error {
		if chrom != "" && k.Chrom != chrom {
			return nil
		}
		if track >= 0 && k.Track != int64(track) {
			return nil
		}
		return enc.Encode(record{Chrom: k.Chrom, Track: k.Track, Seq: k.Seq, Gene: g})
	})
}
