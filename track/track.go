// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package track provides named sources of genePred records, either
// database tables or local files.
package track

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoTable is returned when a track's table or file does not exist.
var ErrNoTable = errors.New("no such table or file")

// Track is a named source of genes.
type Track struct {
	// Name is the display name used in output.
	Name string
	// Source is the table name or file path.
	Source string
	// IsDB is true if Source is a database table.
	IsDB bool
	// Required indicates that output clusters must
	// contain a gene from this track.
	Required bool

	index int
}

// Index returns the position of the track on the command line.
func (t *Track) Index() int { return t.index }

func (t *Track) String() string { return t.Name }

// Parse returns the tracks described by args. If pairs is true, args
// are alternating track name and source pairs, otherwise each arg is a
// source and is used as its own name. A source for which isFile returns
// true is a file, otherwise it is a database table. If isFile is nil,
// sources are tested for existence in the file system.
func Parse(args []string, pairs bool, isFile func(string) bool) ([]*Track, error) {
	if isFile == nil {
		isFile = fileExists
	}
	if pairs && len(args)%2 != 0 {
		return nil, fmt.Errorf("track names and tables must be given in pairs: %q", args)
	}
	step := 1
	if pairs {
		step = 2
	}
	var tracks []*Track
	for i := 0; i < len(args); i += step {
		t := &Track{Name: args[i], Source: args[i], index: len(tracks)}
		if pairs {
			t.Source = args[i+1]
		}
		t.IsDB = !isFile(t.Source)
		tracks = append(tracks, t)
	}
	if len(tracks) == 0 {
		return nil, errors.New("no tracks specified")
	}
	return tracks, nil
}

// MarkRequired marks the tracks with the given names as required.
// The names may be a comma or white space separated list.
func MarkRequired(tracks []*Track, names string) error {
	for _, n := range strings.FieldsFunc(names, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	}) {
		var found bool
		for _, t := range tracks {
			if t.Name == n {
				t.Required = true
				found = true
			}
		}
		if !found {
			return fmt.Errorf("required track %q is not one of the specified tracks", n)
		}
	}
	return nil
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
