// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/kortschak/genecluster/cluster"
)

// outputs is the set of cluster report destinations.
type outputs struct {
	files []*os.File

	table *cluster.TableWriter
	bed   *cluster.BEDWriter
	gff   *cluster.GFFWriter

	graph   *cluster.ConflictGraph
	dotPath string
}

func newOutputs(c config) (_ *outputs, err error) {
	o := &outputs{dotPath: c.conflictDot}
	defer func() {
		if err != nil {
			o.close()
		}
	}()

	f, err := o.create(c.out)
	if err != nil {
		return nil, err
	}
	o.table, err = cluster.NewTableWriter(f)
	if err != nil {
		return nil, err
	}
	if c.clusterBed != "" {
		f, err := o.create(c.clusterBed)
		if err != nil {
			return nil, err
		}
		o.bed = cluster.NewBEDWriter(f)
	}
	if c.clusterGff != "" {
		f, err := o.create(c.clusterGff)
		if err != nil {
			return nil, err
		}
		o.gff = cluster.NewGFFWriter(f)
	}
	if c.conflictDot != "" {
		o.graph = cluster.NewConflictGraph()
	}
	return o, nil
}

func (o *outputs) create(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	o.files = append(o.files, f)
	return f, nil
}

// write writes c to each of the outputs.
func (o *outputs) write(c *cluster.Cluster) error {
	err := o.table.Write(c)
	if err != nil {
		return err
	}
	if o.bed != nil {
		err = o.bed.Write(c)
		if err != nil {
			return err
		}
	}
	if o.gff != nil {
		err = o.gff.Write(c)
		if err != nil {
			return err
		}
	}
	if o.graph != nil {
		o.graph.Add(c)
	}
	return nil
}

// finish flushes and closes the outputs.
func (o *outputs) finish() error {
	err := o.table.Flush()
	if err != nil {
		return err
	}
	if o.graph != nil {
		b, err := o.graph.MarshalDOT()
		if err != nil {
			return err
		}
		err = os.WriteFile(o.dotPath, b, 0o664)
		if err != nil {
			return err
		}
	}
	for _, f := range o.files {
		err = f.Close()
		if err != nil {
			return err
		}
	}
	o.files = nil
	return nil
}

// close closes any open files without flushing.
func (o *outputs) close() {
	for _, f := range o.files {
		f.Close()
	}
	o.files = nil
}
