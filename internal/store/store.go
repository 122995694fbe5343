// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"bytes"
	"encoding/binary"
)

// ByChromTrackOrder is a kv compare function, ordering by chromosome name,
// track index and input order.
func ByChromTrackOrder(x, y []byte) int {
	if bytes.Equal(x, y) {
		return 0
	}

	kx := UnmarshalGeneKey(x)
	ky := UnmarshalGeneKey(y)

	// Group genes on the same chromosome.
	switch {
	case kx.Chrom < ky.Chrom:
		return -1
	case kx.Chrom > ky.Chrom:
		return 1
	}

	// Keep tracks in command line order and genes in input order.
	switch {
	case kx.Track < ky.Track:
		return -1
	case kx.Track > ky.Track:
		return 1
	}
	switch {
	case kx.Seq < ky.Seq:
		return -1
	case kx.Seq > ky.Seq:
		return 1
	}

	panic("unreachable")
}

// GeneKey is the key of a spooled gene.
type GeneKey struct {
	Chrom string
	Track int64
	Seq   int64
}

var order = binary.BigEndian

// MarshalGeneKey returns the kv key encoding of k.
func MarshalGeneKey(k GeneKey) []byte {
	var (
		buf bytes.Buffer
		b   [8]byte
	)
	order.PutUint64(b[:], uint64(len(k.Chrom)))
	buf.Write(b[:])
	buf.WriteString(k.Chrom)
	order.PutUint64(b[:], uint64(k.Track))
	buf.Write(b[:])
	order.PutUint64(b[:], uint64(k.Seq))
	buf.Write(b[:])
	return buf.Bytes()
}

// UnmarshalGeneKey decodes a key encoded by MarshalGeneKey.
func UnmarshalGeneKey(data []byte) GeneKey {
	var k GeneKey
	n64 := binary.Size(uint64(0))
	n := order.Uint64(data[:n64])
	data = data[n64:]
	k.Chrom = string(data[:n])
	data = data[n:]
	k.Track = int64(order.Uint64(data[:n64]))
	data = data[n64:]
	k.Seq = int64(order.Uint64(data[:n64]))
	return k
}
