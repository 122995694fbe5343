// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kortschak/genecluster/genepred"
	"github.com/kortschak/genecluster/internal/store"
)

const genes = `g1	chr2	+	10	20	10	20	1	10,	20,
g2	chr1	-	30	60	30	60	2	30,50,	40,60,
`

func TestAudit(t *testing.T) {
	s, err := store.NewSpool(t.TempDir())
	require.NoError(t, err)
	_, err = s.Load(0, genepred.NewReader(strings.NewReader(genes)))
	require.NoError(t, err)
	_, err = s.Load(1, genepred.NewReader(strings.NewReader(genes)))
	require.NoError(t, err)
	path := s.Name()
	require.NoError(t, s.Close(true))

	for _, test := range []struct {
		chrom string
		track int
		want  []string
	}{
		{chrom: "", track: -1, want: []string{"chr1/0/g2", "chr1/1/g2", "chr2/0/g1", "chr2/1/g1"}},
		{chrom: "chr2", track: -1, want: []string{"chr2/0/g1", "chr2/1/g1"}},
		{chrom: "", track: 1, want: []string{"chr1/1/g2", "chr2/1/g1"}},
		{chrom: "chrX", track: -1, want: nil},
	} {
		var buf bytes.Buffer
		err := audit(&buf, path, test.chrom, test.track)
		require.NoError(t, err)

		var got []string
		dec := json.NewDecoder(&buf)
		for {
			var r record
			err := dec.Decode(&r)
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			assert.Equal(t, r.Chrom, r.Gene.Chrom)
			got = append(got, r.Chrom+"/"+string(rune('0'+r.Track))+"/"+r.Gene.Name)
		}
		assert.Equal(t, test.want, got, "unexpected audit for chrom=%q track=%d", test.chrom, test.track)
	}

	var buf bytes.Buffer
	require.NoError(t, audit(&buf, path, "", 0))
	assert.Contains(t, buf.String(), `"Exons":[{"Start":30,"End":40},{"Start":50,"End":60}]`)
}
