// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package population owns the immutable, per-compartment geometry,
// passive, and ion-channel parameters of every population of neurons
// the local rank hosts, plus the population / SWC / passive-ion CSV
// parsers that build it. It is the Go analogue of axon's NetworkBase
// layer-allocation machinery (contiguous backing arrays sliced per
// owner), applied to compartments and populations instead of neurons
// and layers.
package population

import "fmt"

// NGbar is the number of maximal-conductance channels per compartment:
// the 14 continuous-gated channels plus the one Markov NaV channel.
const NGbar = 15

// Store is the immutable population/compartment data, C1 in the
// design: geometry, passive membrane parameters, maximal conductances,
// and calcium-buffer parameters for every compartment of every
// population the local rank owns. All per-population slices
// (NNeuron, NComp, Gbar's population dimension, Gamma, Decay) are
// indexed by LOCAL population id, 0..NPopulations()-1 -- StartPid and
// EndPid record the corresponding range of GLOBAL population ids for
// diagnostics and for matching rows against the population CSV.
type Store struct {
	// per-compartment geometry and passive parameters, indexed by the
	// local compartment offset Cid[localPid]+c
	Rad    []float64
	Len    []float64
	Area   []float64
	Parent []int
	Type   []CompType
	Cm     []float64
	Ra     []float64
	Gl     []float64
	Vl     []float64

	// Gbar is the maximal conductance table. In perisomatic mode it is
	// indexed [localPid*NGbar+k]; in all-active mode it is indexed
	// [(Cid[localPid]+compInTemplate)*NGbar+k].
	Gbar []float64

	// per-local-population, per-compartment-type calcium buffer params
	Gamma [][CompTypeN]float64
	Decay [][CompTypeN]float64

	NNeuron []int // per local population; may be clipped at partition boundaries
	NComp   []int // per local population (true count, from SWC)
	Cid     []int // cumulative per-template compartment offset over local populations, length NPopulations()+1

	StartPid int // first population index owned locally (global numbering)
	EndPid   int // one past the last population index owned locally (global numbering)

	// GlobalOffset is this rank's first global neuron id (n_offset in
	// spec.md §4.7's partitioning rule); GlobalNNeurons is the total
	// neuron count across all ranks.
	GlobalOffset   int
	GlobalNNeurons int

	AllActive bool
}

// NPopulations returns the number of populations owned locally.
func (p *Store) NPopulations() int { return p.EndPid - p.StartPid }

// TotalNeurons returns the total neuron count across local populations.
func (p *Store) TotalNeurons() int {
	n := 0
	for _, nn := range p.NNeuron {
		n += nn
	}
	return n
}

// TotalCompartments returns the sum of per-template compartment counts
// across local populations (i.e. Cid[NPopulations()]).
func (p *Store) TotalCompartments() int {
	return p.Cid[p.NPopulations()]
}

// GbarIndex returns the index into Gbar for channel k of compartment c
// (0-based within the neuron template) in local population lpid
// (perisomatic: only meaningful for c == 0, the soma; all-active:
// meaningful for any c).
func (p *Store) GbarIndex(lpid, compInTemplate, k int) int {
	if p.AllActive {
		return (p.Cid[lpid]+compInTemplate)*NGbar + k
	}
	return lpid*NGbar + k
}

// Validate checks internal consistency that is a bug, not a user
// error, if violated (the loaders below are responsible for producing
// a Store that satisfies this).
func (p *Store) Validate() error {
	if len(p.Rad) != len(p.Len) || len(p.Rad) != len(p.Area) || len(p.Rad) != len(p.Parent) || len(p.Rad) != len(p.Type) {
		return fmt.Errorf("population: per-compartment arrays have mismatched lengths")
	}
	for lpid := 0; lpid < p.NPopulations(); lpid++ {
		off := p.Cid[lpid]
		for c := 0; c < p.NComp[lpid]; c++ {
			if c == 0 {
				continue
			}
			if p.Parent[off+c] >= c {
				return fmt.Errorf("population: compartment %d of local population %d has parent %d >= self (parent-before-child violated)", c, lpid, p.Parent[off+c])
			}
		}
	}
	return nil
}
