// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ionchan

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sumMarkov(row []float64) float64 {
	s := 0.0
	for k := 0; k < NMarkov; k++ {
		s += row[int(C1NaV)+k]
	}
	return s
}

// TestMarkovConservationAtRest checks invariant 1 from spec.md §8:
// the 12-state Markov NaV occupancy sums to 1 after InitSteadyState.
func TestMarkovConservationAtRest(t *testing.T) {
	row := make([]float64, NGateVal)
	InitSteadyState(row, -65.0, CaInit())
	assert.InDelta(t, 1.0, sumMarkov(row), 1e-6)
}

// TestMarkovConservationAfterUpdates checks invariant 1 holds across
// repeated UpdateGates calls at a depolarized and then repolarized
// voltage, exercising navUpdate's implicit sub-stepping.
func TestMarkovConservationAfterUpdates(t *testing.T) {
	row := make([]float64, NGateVal)
	InitSteadyState(row, -65.0, CaInit())

	voltages := []float64{-65, 10, 20, -10, -65, -65}
	for _, v := range voltages {
		UpdateGates(row, v, CaInit(), 0.1)
		assert.InDelta(t, 1.0, sumMarkov(row), 1e-6)
	}
}

// TestGateBoundsAtRest checks invariant 2: every continuous gate lies
// in [0,1] at several clamped voltages, at and away from rest.
func TestGateBoundsAtRest(t *testing.T) {
	row := make([]float64, NGateVal)
	for _, v := range []float64{-100, -65, -40, 0, 40} {
		InitSteadyState(row, v, CaInit())
		for g := Gate(0); g < NGate; g++ {
			x := row[g]
			assert.GreaterOrEqualf(t, x, 0.0, "gate %d at v=%f", g, v)
			assert.LessOrEqualf(t, x, 1.0, "gate %d at v=%f", g, v)
		}
	}
}

// TestCalciumFloor checks invariant 3: [Ca] never drops below minCa.
func TestCalciumFloor(t *testing.T) {
	row := make([]float64, NGateVal)
	InitSteadyState(row, -65.0, CaInit())
	ca := CaInit()
	gbar := make([]float64, NChan)
	gbar[GCaHVA] = 0.0005
	gbar[GCaLVA] = 0.0002
	for i := 0; i < 10000; i++ {
		UpdateCa(&ca, -65.0, row, gbar[GCaHVA], gbar[GCaLVA], 1e-6, 0.05, 80.0, 0.05)
	}
	assert.GreaterOrEqual(t, ca, minCa-1e-12)
}

func TestRevCaMonotonic(t *testing.T) {
	hi := RevCa(1e-4)
	lo := RevCa(1e-2)
	assert.Greater(t, hi, lo, "RevCa should decrease as [Ca] rises toward ca1Out")
	assert.False(t, math.IsNaN(hi))
	assert.False(t, math.IsNaN(lo))
}
