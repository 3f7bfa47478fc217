// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hines

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// denseResidual multiplies the tree-structured matrix (Ad diagonal,
// Api parent-coupling) against x and returns A*x - b, treating the
// tree as its equivalent dense symmetric matrix.
func denseResidual(ad, api []float64, parentID []int, x, b []float64) []float64 {
	n := len(ad)
	res := make([]float64, n)
	for i := 0; i < n; i++ {
		res[i] += ad[i] * x[i]
		if parentID[i] >= 0 {
			p := parentID[i]
			res[i] += api[i] * x[p]
			res[p] += api[i] * x[i]
		}
	}
	for i := range res {
		res[i] -= b[i]
	}
	return res
}

func linfNorm(v []float64) float64 {
	m := 0.0
	for _, x := range v {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}

// TestSolveChain checks invariant 5 from spec.md §8: for a freshly
// refreshed A and arbitrary b, ||A*solve(A,b) - b||_inf < 1e-9, on a
// 4-compartment linear chain (soma - dend0 - dend1 - dend2).
func TestSolveChain(t *testing.T) {
	ad := []float64{5.0, 7.0, 6.0, 4.0}
	api := []float64{0, -2.0, -1.5, -1.0}
	parentID := []int{-1, 0, 1, 2}
	b := []float64{1.2, -0.7, 2.3, 0.4}

	adOrig := append([]float64(nil), ad...)
	apiOrig := append([]float64(nil), api...)

	m := &Matrix{NComp: 4, Ad: append([]float64(nil), ad...), Api: append([]float64(nil), api...), ParentID: parentID, B: append([]float64(nil), b...)}
	Solve(m)

	resid := denseResidual(adOrig, apiOrig, parentID, m.B, b)
	assert.Less(t, linfNorm(resid), 1e-9)
}

// TestSolveBranching checks the same invariant on a branching tree
// (soma with two children, one of which has its own child), which
// exercises the prevPid reset logic in the triangularization pass and
// the parent reload in the forward-substitution pass.
func TestSolveBranching(t *testing.T) {
	// compartments: 0=soma, 1=dendA (child of soma), 2=dendB (child of soma), 3=dendA2 (child of 1)
	ad := []float64{8.0, 5.0, 4.0, 3.0}
	api := []float64{0, -2.0, -1.0, -1.5}
	parentID := []int{-1, 0, 0, 1}
	b := []float64{0.5, 1.0, -1.0, 2.0}

	adOrig := append([]float64(nil), ad...)
	apiOrig := append([]float64(nil), api...)

	m := &Matrix{NComp: 4, Ad: append([]float64(nil), ad...), Api: append([]float64(nil), api...), ParentID: parentID, B: append([]float64(nil), b...)}
	Solve(m)

	resid := denseResidual(adOrig, apiOrig, parentID, m.B, b)
	assert.Less(t, linfNorm(resid), 1e-9)
}

// TestSolveSingleCompartment checks the n==1 special case: b[0]/Ad[0].
func TestSolveSingleCompartment(t *testing.T) {
	m := &Matrix{NComp: 1, Ad: []float64{2.0}, Api: []float64{0}, ParentID: []int{-1}, B: []float64{5.0}}
	Solve(m)
	require.InDelta(t, 2.5, m.B[0], 1e-12)
}

func TestResetToPassive(t *testing.T) {
	m := &Matrix{
		NComp: 2,
		Ad:    []float64{99, 99}, Api: []float64{99, 99},
		BuAd: []float64{1, 2}, BuApi: []float64{0, -1},
	}
	ResetToPassive(m)
	assert.Equal(t, []float64{1, 2}, m.Ad)
	assert.Equal(t, []float64{0, -1}, m.Api)
}
