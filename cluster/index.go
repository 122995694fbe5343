// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cluster

import (
	"fmt"

	"github.com/biogo/store/interval"
)

// Handle is a reference to a Cluster held by a Registry.
type Handle int

// noHandle is the zero state of a gene's active cluster.
const noHandle Handle = -1

// Index is an interval index over a single chromosome, mapping
// inserted ranges to cluster handles. Entries are never removed;
// merges repoint entries with ReplaceHandle.
type Index struct {
	tree interval.IntTree
	uid  uintptr
}

// Insert inserts the range [start, end) keyed to h.
func (x *Index) Insert(start, end int, h Handle) error {
	if start >= end {
		return fmt.Errorf("cluster: invalid index range [%d,%d)", start, end)
	}
	x.uid++
	return x.tree.Insert(&entry{uid: x.uid, start: start, end: end, handle: h}, false)
}

// FindOverlapping returns the handles of all entries intersecting
// [start, end). The returned slice may contain duplicate handles.
func (x *Index) FindOverlapping(start, end int) []Handle {
	var h []Handle
	x.tree.DoMatching(func(e interval.IntInterface) (done bool) {
		h = append(h, e.(*entry).handle)
		return false
	}, query{start: start, end: end})
	return h
}

// ReplaceHandle repoints every entry with the range [start, end) that is
// keyed to from so that it is keyed to to. It returns the number of entries
// that were repointed.
func (x *Index) ReplaceHandle(start, end int, from, to Handle) int {
	var n int
	x.tree.DoMatching(func(i interval.IntInterface) (done bool) {
		e := i.(*entry)
		if e.start == start && e.end == end && e.handle == from {
			e.handle = to
			n++
		}
		return false
	}, query{start: start, end: end})
	return n
}

// Len returns the number of entries in the index.
func (x *Index) Len() int { return x.tree.Len() }

// entry is an index element.
type entry struct {
	uid        uintptr
	start, end int
	handle     Handle
}

func (e *entry) Overlap(b interval.IntRange) bool {
	return e.start < b.End && b.Start < e.end
}
func (e *entry) ID() uintptr { return e.uid }
func (e *entry) Range() interval.IntRange {
	return interval.IntRange{Start: e.start, End: e.end}
}

// query is a half-open interval tree query.
type query struct {
	start, end int
}

func (q query) Overlap(b interval.IntRange) bool {
	return q.start < b.End && b.Start < q.end
}
