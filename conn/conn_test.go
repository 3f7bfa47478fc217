// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conn

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, lines string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "conn.csv")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o644))
	return path
}

const threeComp = 3 // compCount returns 3 compartments for every local neuron in these tests

func compCount3(int) int { return threeComp }

func TestBuildDoublesEachRow(t *testing.T) {
	path := writeCSV(t, "0,1,0,0.002,2.0,0.5,0.0,1,e\n")
	tbl, err := Build(0, 2, path, compCount3, 0.1)
	require.NoError(t, err)

	assert.Equal(t, 2, tbl.NConn, "each declared connection expands into two doubled entries")
	assert.Equal(t, []int{0, 0, 2}, tbl.PtrPost, "all entries land on local post neuron 1")
	assert.Equal(t, []int{0}, tbl.PreTable)
	assert.Equal(t, []int{0, 2}, tbl.PtrPre)

	// decay limb positive, rise limb negative, same magnitude scaled by norm_coef
	assert.Greater(t, tbl.Weight[0], 0.0)
	assert.Less(t, tbl.Weight[1], 0.0)
	assert.InDelta(t, tbl.Weight[0], -tbl.Weight[1], 1e-12)
}

func TestBuildRejectsUnsortedPreIDs(t *testing.T) {
	path := writeCSV(t, "5,0,0,0.001,2.0,0.5,0.0,1,e\n1,0,0,0.001,2.0,0.5,0.0,1,e\n")
	_, err := Build(0, 1, path, compCount3, 0.1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not sorted")
}

func TestBuildRejectsNonPositiveDelay(t *testing.T) {
	path := writeCSV(t, "0,0,0,0.001,2.0,0.5,0.0,0,e\n")
	_, err := Build(0, 1, path, compCount3, 0.1)
	require.Error(t, err)
}

func TestBuildRejectsOutOfRangeCompartment(t *testing.T) {
	path := writeCSV(t, "0,0,9,0.001,2.0,0.5,0.0,1,e\n")
	_, err := Build(0, 1, path, compCount3, 0.1)
	require.Error(t, err)
}

func TestBuildFiltersToLocalRange(t *testing.T) {
	path := writeCSV(t, "0,0,0,0.001,2.0,0.5,0.0,1,e\n0,5,0,0.001,2.0,0.5,0.0,1,e\n")
	// local rank owns post neurons [0,2): only the first row applies
	tbl, err := Build(0, 2, path, compCount3, 0.1)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.NConn)
}

func TestBuildMultiplePreGroups(t *testing.T) {
	path := writeCSV(t, "0,0,0,0.001,2.0,0.5,0.0,1,e\n2,1,0,0.001,2.0,0.5,0.0,2,e\n")
	tbl, err := Build(0, 2, path, compCount3, 0.1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, tbl.PreTable)
	assert.Equal(t, 2, tbl.Delay[2]) // second pre group's doubled entries carry delay=2
}
