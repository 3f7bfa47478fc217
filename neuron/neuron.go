// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package neuron holds the mutable per-compartment and per-neuron
// simulation state (C2): membrane voltage, calcium concentration,
// injected current, and the soma/population index of each local
// neuron. It is allocated once from a population.Store and then
// evolves every tick.
package neuron

import (
	"github.com/numericalbrain/neulite-go/ionchan"
	"github.com/numericalbrain/neulite-go/population"
)

// State is the mutable neuron state, C2 in the design. V, Ca, and
// IExt are indexed by global (local-rank) compartment index; Sid and
// Pid are indexed by local neuron index. A neuron's compartments
// occupy the contiguous slice [Sid[i], Sid[i]+NComp(Pid[i])).
type State struct {
	V    []float64 // membrane voltage, mV
	Ca   []float64 // [Ca2+], mM
	IExt []float64 // externally injected current, nA

	Sid []int // soma (= first) compartment index of local neuron i
	Pid []int // local population index of local neuron i

	pop *population.Store
}

// New allocates neuron state for every local neuron described by pop,
// laying out compartments contiguously per neuron within each
// population, population after population -- mirroring
// axon.NetworkBase.Build's contiguous-slice-per-owner allocation.
func New(pop *population.Store) *State {
	totalComp := 0
	totalNeuron := 0
	for lpid := 0; lpid < pop.NPopulations(); lpid++ {
		totalComp += pop.NComp[lpid] * pop.NNeuron[lpid]
		totalNeuron += pop.NNeuron[lpid]
	}

	n := &State{
		V:    make([]float64, totalComp),
		Ca:   make([]float64, totalComp),
		IExt: make([]float64, totalComp),
		Sid:  make([]int, totalNeuron),
		Pid:  make([]int, totalNeuron),
		pop:  pop,
	}

	compOff, neurIdx := 0, 0
	for lpid := 0; lpid < pop.NPopulations(); lpid++ {
		nc := pop.NComp[lpid]
		for ni := 0; ni < pop.NNeuron[lpid]; ni++ {
			n.Sid[neurIdx] = compOff
			n.Pid[neurIdx] = lpid
			for c := 0; c < nc; c++ {
				n.V[compOff+c] = pop.Vl[pop.Cid[lpid]+c]
				n.Ca[compOff+c] = ionchan.CaInit()
			}
			compOff += nc
			neurIdx++
		}
	}
	return n
}

// NNeurons returns the number of local neurons.
func (n *State) NNeurons() int { return len(n.Sid) }

// NComp returns the compartment count of local neuron i.
func (n *State) NComp(i int) int { return n.pop.NComp[n.Pid[i]] }

// Soma returns the global compartment index of local neuron i's soma.
func (n *State) Soma(i int) int { return n.Sid[i] }

// GlobalID returns the global neuron id of local neuron i, given this
// rank's population.Store.GlobalOffset.
func (n *State) GlobalID(i int) int { return n.pop.GlobalOffset + i }
