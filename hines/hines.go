// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hines implements the cable-equation linear system (C6): the
// per-neuron axial-conductance matrix and its Hines (tridiagonal-tree)
// solve, triangularizing leaf-to-root and forward-substituting
// root-to-leaf in O(n_comp) per neuron rather than O(n_comp^3).
// Grounded on kernel/solver.c's initialize_solver/solve_matrix, which
// credits the optimized triangularize/forward-substitute
// implementation to Gilles Gouaillardet @ RIST, Kobe.
package hines

import (
	"math"

	"github.com/numericalbrain/neulite-go/population"
)

// Matrix is one neuron's Hines linear system: a tree-structured
// tridiagonal system over its n_comp compartments, where compartment
// i's only nonzero off-diagonal entry is with its parent.
type Matrix struct {
	NComp    int
	Ad, Api  []float64 // current diagonal / parent-coupling, refreshed every tick from bu*
	BuAd     []float64 // passive (axial + nothing else) backup, rebuilt once per population
	BuApi    []float64
	ParentID []int
	B        []float64 // right-hand side; overwritten in place with the solution
}

// NewMatrix allocates a zeroed Hines matrix for a neuron whose
// template is local population lpid.
func NewMatrix(pop *population.Store, lpid int) *Matrix {
	n := pop.NComp[lpid]
	m := &Matrix{
		NComp:    n,
		Ad:       make([]float64, n),
		Api:      make([]float64, n),
		BuAd:     make([]float64, n),
		BuApi:    make([]float64, n),
		ParentID: make([]int, n),
		B:        make([]float64, n),
	}
	off := pop.Cid[lpid]
	for i := 0; i < n; i++ {
		m.ParentID[i] = pop.Parent[off+i]
	}
	return m
}

// BuildAxialConductance computes, once per local population template,
// the passive axial-conductance matrix (mS) between every compartment
// and its parent and stamps it into every neuron's Matrix.BuAd/BuApi.
// Mirrors kernel/solver.c's initialize_solver dense-matrix
// construction, specialized to the tree-structured Ad/Api storage.
func BuildAxialConductance(pop *population.Store, lpid int, mats []*Matrix) {
	off := pop.Cid[lpid]
	n := pop.NComp[lpid]
	rad := pop.Rad[off : off+n]
	length := pop.Len[off : off+n]
	ra := pop.Ra[off : off+n]
	parent := pop.Parent[off : off+n]

	coupling := make([]float64, n) // coupling[i] = conductance between i and parent[i], mS
	for i := 0; i < n; i++ {
		d := parent[i]
		if d < 0 {
			continue
		}
		ri := ra[i] * length[i] / (rad[i] * rad[i] * math.Pi)
		rd := ra[d] * length[d] / (rad[d] * rad[d] * math.Pi)
		coupling[i] = 2.0 / (ri + rd)
	}

	diag := make([]float64, n)
	for i := 0; i < n; i++ {
		diag[i] += coupling[i]
		if parent[i] >= 0 {
			diag[parent[i]] += coupling[i]
		}
	}

	for _, m := range mats {
		for i := 0; i < n; i++ {
			m.BuAd[i] = diag[i]
			if parent[i] >= 0 {
				m.BuApi[i] = -coupling[i]
			} else {
				m.BuApi[i] = 0
			}
		}
	}
}

// ResetToPassive restores Ad/Api to the passive axial backup before a
// tick's active-conductance and synaptic terms are stamped in.
func ResetToPassive(m *Matrix) {
	copy(m.Ad, m.BuAd)
	copy(m.Api, m.BuApi)
}

// Solve performs the Hines tridiagonal-tree solve in place on m.B,
// overwriting m.Ad destructively, via a single leaf-to-root
// triangularization pass followed by a root-to-leaf forward
// substitution. Requires the population convention parent_id[0] < 0
// (soma is the root) and parent_id[i] < i for i>0 (a child is always
// stored after its parent).
func Solve(m *Matrix) {
	n := m.NComp
	if n == 1 {
		m.B[0] /= m.Ad[0]
		return
	}
	Ad, Api, parentID, b := m.Ad, m.Api, m.ParentID, m.B

	pid := parentID[n-1]
	prevAd := Ad[pid] - Api[n-1]*Api[n-1]/Ad[n-1]
	Ad[pid] = prevAd
	prevB := b[pid] - b[n-1]*Api[n-1]/Ad[n-1]
	b[pid] = prevB
	prevPid := pid
	for i := n - 2; i > 0; i-- {
		pid = parentID[i]
		if i != prevPid {
			prevB = b[i]
			prevAd = Ad[i]
		}
		prevB = b[pid] - prevB*Api[i]/prevAd
		prevAd = Ad[pid] - Api[i]*Api[i]/prevAd
		Ad[pid] = prevAd
		b[pid] = prevB
		prevPid = pid
	}

	b[0] /= Ad[0]
	prevX := b[0]
	for i := 1; i < n; i++ {
		pid := parentID[i]
		if pid != i-1 {
			prevX = b[pid]
		}
		prevX = (b[i] - prevX*Api[i]) / Ad[i]
		b[i] = prevX
	}
}
