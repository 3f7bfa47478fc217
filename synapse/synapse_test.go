// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package synapse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numericalbrain/neulite-go/conn"
)

func fixtureTable(t *testing.T) *conn.Table {
	t.Helper()
	return &conn.Table{
		NConn:  2,
		Decay:  []float64{0.9, 0.95},
		PtrPre: []int{0, 2},
	}
}

func TestDecayShrinksAccumulator(t *testing.T) {
	tbl := fixtureTable(t)
	s := New(tbl)
	s.Sum0[0], s.Sum0[1] = 1.0, 2.0
	Decay(s, tbl)
	assert.InDelta(t, 0.9, s.Sum0[0], 1e-12)
	assert.InDelta(t, 1.9, s.Sum0[1], 1e-12)
}

// TestArmAndDeliver exercises the bit-shift delay register: arming with
// delay=3 must deliver the spike exactly 3 AddSpikesPerMs calls later,
// per the "delay of 1 ms is distinguishable from immediate" ordering
// guarantee in spec.md §5.
func TestArmAndDeliver(t *testing.T) {
	tbl := fixtureTable(t)
	s := New(tbl)
	Arm(s, 0, 3)
	require.Equal(t, 1<<3, s.Delay[0])

	for i := 0; i < 2; i++ {
		AddSpikesPerMs(s)
		assert.Equal(t, 0.0, s.Sum0[0], "must not deliver before the full delay elapses")
	}
	AddSpikesPerMs(s)
	assert.Equal(t, 1.0, s.Sum0[0], "delivers exactly on the delay-th tick")
}

func TestArmDelayOneIsNotImmediate(t *testing.T) {
	tbl := fixtureTable(t)
	s := New(tbl)
	Arm(s, 0, 1)
	assert.Equal(t, 0.0, s.Sum0[0], "arming alone must not deliver in the same step")
	AddSpikesPerMs(s)
	assert.Equal(t, 1.0, s.Sum0[0])
}
