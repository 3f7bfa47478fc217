// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ionchan

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// The 12-state Markov NaV channel (Clancy & Rudy style allosteric
// gating, 5 closed + 6 inactivated + 1 open state) from
// kernel/ion_func.h's Init_Nav_param/Set_Nav_param/Nav_update. qtNaV
// is pow(2.3,(34-37)/10) pre-evaluated as the source comments it;
// allostericA/B are the Oon/Con and Ooff/Coff quarter-power factors.
const (
	qtNaV       = 0.77889990199
	allostericA = 2.51
	allostericB = 5.32
)

// navRates holds the 32 microscopic rate constants of the scheme at
// membrane voltage v (filled by computeNavRates), shared by both the steady-state and the
// implicit-Euler transition matrix builders.
type navRates struct {
	c1c2, c2c3, c3c4, c4c5, c5oo float64
	i1i2, i2i3, i3i4, i4i5, i5i6 float64
	c1i1, c2i2, c3i3, c4i4, c5i5, ooi6 float64
	ooc5, c5c4, c4c3, c3c2, c2c1       float64
	i6i5, i5i4, i4i3, i3i2, i2i1       float64
	i1c1, i2c2, i3c3, i4c4, i5c5, i6oo float64
}

func computeNavRates(v float64) navRates {
	alphaShift := qtNaV * 400.0 * math.Exp(v/24.0)
	betaShift := qtNaV * 12.0 * math.Exp(v/-24.0)
	gammaShift := qtNaV * 250.0
	deltaShift := qtNaV * 60.0
	a, b := allostericA, allostericB

	var r navRates
	r.c1c2 = 4.0 * alphaShift
	r.c2c3 = 3.0 * alphaShift
	r.c3c4 = 2.0 * alphaShift
	r.c4c5 = 1.0 * alphaShift
	r.c5oo = 1.0 * gammaShift

	r.i1i2 = 4.0 * alphaShift * a
	r.i2i3 = 3.0 * alphaShift * a
	r.i3i4 = 2.0 * alphaShift * a
	r.i4i5 = 1.0 * alphaShift * a
	r.i5i6 = 1.0 * gammaShift

	r.c1i1 = 0.01 * qtNaV
	r.c2i2 = 0.01 * qtNaV * a
	r.c3i3 = 0.01 * qtNaV * a * a
	r.c4i4 = 0.01 * qtNaV * a * a * a
	r.c5i5 = 0.01 * qtNaV * a * a * a * a
	r.ooi6 = 8.0 * qtNaV

	r.ooc5 = 1.0 * deltaShift
	r.c5c4 = 4.0 * betaShift
	r.c4c3 = 3.0 * betaShift
	r.c3c2 = 2.0 * betaShift
	r.c2c1 = 1.0 * betaShift

	r.i6i5 = 1.0 * deltaShift
	r.i5i4 = 4.0 * betaShift / b
	r.i4i3 = 3.0 * betaShift / b
	r.i3i2 = 2.0 * betaShift / b
	r.i2i1 = 1.0 * betaShift / b

	r.i1c1 = 40.0 * qtNaV
	r.i2c2 = 40.0 * qtNaV / b
	r.i3c3 = 40.0 * qtNaV / (b * b)
	r.i4c4 = 40.0 * qtNaV / (b * b * b)
	r.i5c5 = 40.0 * qtNaV / (b * b * b * b)
	r.i6oo = 0.05 * qtNaV
	return r
}

// navRateMatrix fills the 12x12 infinitesimal generator (state order
// C1,C2,C3,C4,C5,I1,I2,I3,I4,I5,I6,OO, matching Gate's C1NaV..OONaV
// layout), off-diagonal[j][k] = rate k->j, diagonal = -sum of outflow.
func navRateMatrix(v float64) *mat.Dense {
	r := computeNavRates(v)
	m := mat.NewDense(NMarkov, NMarkov, nil)
	set := func(i, j int, val float64) { m.Set(i, j, val) }

	set(0, 0, -(r.c1c2 + r.c1i1))
	set(0, 1, r.c2c1)
	set(0, 5, r.i1c1)
	set(1, 0, r.c1c2)
	set(1, 1, -(r.c2c1 + r.c2c3 + r.c2i2))
	set(1, 2, r.c3c2)
	set(1, 6, r.i2c2)
	set(2, 1, r.c2c3)
	set(2, 2, -(r.c3c2 + r.c3c4 + r.c3i3))
	set(2, 3, r.c4c3)
	set(2, 7, r.i3c3)
	set(3, 2, r.c3c4)
	set(3, 3, -(r.c4c3 + r.c4c5 + r.c4i4))
	set(3, 4, r.c5c4)
	set(3, 8, r.i4c4)
	set(4, 3, r.c4c5)
	set(4, 4, -(r.c5c4 + r.c5oo + r.c5i5))
	set(4, 9, r.i5c5)
	set(4, 11, r.ooc5)
	set(5, 0, r.c1i1)
	set(5, 5, -(r.i1c1 + r.i1i2))
	set(5, 6, r.i2i1)
	set(6, 1, r.c2i2)
	set(6, 5, r.i1i2)
	set(6, 6, -(r.i2i1 + r.i2i3 + r.i2c2))
	set(6, 7, r.i3i2)
	set(7, 2, r.c3i3)
	set(7, 6, r.i2i3)
	set(7, 7, -(r.i3i2 + r.i3i4 + r.i3c3))
	set(7, 8, r.i4i3)
	set(8, 3, r.c4i4)
	set(8, 7, r.i3i4)
	set(8, 8, -(r.i4i3 + r.i4i5 + r.i4c4))
	set(8, 9, r.i5i4)
	set(9, 4, r.c5i5)
	set(9, 8, r.i4i5)
	set(9, 9, -(r.i5i4 + r.i5i6 + r.i5c5))
	set(9, 10, r.i6i5)
	set(10, 9, r.i5i6)
	set(10, 10, -(r.i6i5 + r.i6oo))
	set(10, 11, r.ooi6)
	set(11, 4, r.c5oo)
	set(11, 10, r.i6oo)
	set(11, 11, -(r.ooc5 + r.ooi6))
	return m
}

// navSolveConserved solves A x = b after overwriting A's last row with
// all-ones and b's last entry with 1, the conservation-row
// substitution kernel/ion_func.h's Nav_update applies every
// sub-iteration (the 12 state probabilities sum to 1).
func navSolveConserved(a *mat.Dense, b []float64) []float64 {
	for j := 0; j < NMarkov; j++ {
		a.Set(NMarkov-1, j, 1.0)
	}
	prevLast := b[NMarkov-1]
	b[NMarkov-1] = 1.0
	bv := mat.NewVecDense(NMarkov, b)
	var x mat.VecDense
	if err := x.SolveVec(a, bv); err != nil {
		// singular only if the rate matrix is pathological (e.g. NaN
		// voltage upstream); surface the prior state rather than panic.
		out := make([]float64, NMarkov)
		copy(out, b)
		out[NMarkov-1] = prevLast
		return out
	}
	out := make([]float64, NMarkov)
	for i := 0; i < NMarkov; i++ {
		out[i] = x.AtVec(i)
	}
	return out
}

// navSteadyState sets state (length NMarkov, C1..OO order) to the
// equilibrium distribution of the rate matrix at v, mirroring
// flavors/sglexp/ion.c's initialize_ion NaV block.
func navSteadyState(v float64, state []float64) {
	a := navRateMatrix(v)
	b := make([]float64, NMarkov)
	copy(b, state)
	copy(state, navSolveConserved(a, b))
}

// navUpdate advances the Markov NaV state by dt via implicit Euler:
// state(t) = (I - dt*A(v)) * state(t+dt), substituting the
// conservation row, sub-stepped at dt_NaV = min(dt, 0.01ms) per
// kernel/ion_func.h's Nav_update.
func navUpdate(v, dt float64, state []float64) {
	dtNav := math.Min(dt, 0.01)
	iter := int(dt/dtNav + 0.5)
	if iter < 1 {
		iter = 1
	}
	rate := navRateMatrix(v)
	a := mat.NewDense(NMarkov, NMarkov, nil)
	for i := 0; i < iter; i++ {
		a.Apply(func(i, j int, v float64) float64 { return -dtNav * v }, rate)
		for k := 0; k < NMarkov; k++ {
			a.Set(k, k, a.At(k, k)+1.0)
		}
		b := make([]float64, NMarkov)
		copy(b, state)
		copy(state, navSolveConserved(a, b))
	}
}
