// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ionchan holds the per-neuron ion-channel gating state (C3):
// 23 continuous Hodgkin-Huxley-style gates plus the 12-state Markov
// NaV channel, their voltage-dependent kinetics, and the calcium pool
// that couples the two high-voltage/low-voltage activated Ca2+
// currents back into the Ca2+ reversal potential. Everything here is
// pure function of (v, ca, gate-row) plus a timestep: callers (the
// engine package and cmd/neulite) own the loop over neurons and the
// ordering of calls within a tick.
package ionchan

// Gate indexes the per-neuron gate row, matching flavors/sglexp+mpi's
// ion_gateval_t enum exactly: 23 continuous gates (NGate) followed by
// 12 Markov NaV states (NMarkov).
type Gate int

const (
	MNaTs Gate = iota
	HNaTs
	MNaTa
	HNaTa
	HNap
	MKv2
	H1Kv2
	H2Kv2
	MKv3
	MKp
	HKp
	MKt
	HKt
	MKd
	HKd
	MIm
	MImv2
	MIh
	ZSK
	MCaHVA
	HCaHVA
	MCaLVA
	HCaLVA
	NGate // = 23, count of continuous gates
)

// NMarkov is the number of Markov NaV states.
const NMarkov = 12

// The 12 Markov NaV states occupy the gate row immediately after the
// NGate continuous gates, in the order kernel/ion_func.h's
// Init_Nav_param/Set_Nav_param matrices are built in: C1..C5, I1..I6,
// then the open state OO.
const (
	C1NaV Gate = NGate + Gate(iota)
	C2NaV
	C3NaV
	C4NaV
	C5NaV
	I1NaV
	I2NaV
	I3NaV
	I4NaV
	I5NaV
	I6NaV
	OONaV
)

// NGateVal is the total gate-row width: 23 continuous gates + 12
// Markov NaV states = 35.
const NGateVal = int(NGate) + NMarkov

// Chan indexes the maximal-conductance table, matching ion_gbar_t: 14
// continuous-gated channels plus the one Markov NaV channel. Its
// length is population.NGbar.
type Chan int

const (
	GNaV Chan = iota
	GNaTs
	GNaTa
	GNap
	GKv2
	GKv3
	GKp
	GKt
	GKd
	GIm
	GImv2
	GIh
	GSK
	GCaHVA
	GCaLVA
	NChan // = 15, == population.NGbar
)

// Reversal potentials, mV.
const (
	VNa  = 53.0
	VK   = -107.0
	VHCN = -45.0
)

// State is the per-neuron gate-row storage, one row of NGateVal
// float64s per local neuron.
type State struct {
	Gate []float64 // [i*NGateVal + g]
}

// New allocates gate state for nNeuron neurons, left zeroed; call
// InitSteadyState per neuron before the first tick.
func New(nNeuron int) *State {
	return &State{Gate: make([]float64, nNeuron*NGateVal)}
}

// Row returns the gate row of local neuron i.
func (s *State) Row(i int) []float64 { return s.Gate[i*NGateVal : (i+1)*NGateVal] }

// InitSteadyState sets every continuous gate to its voltage-clamped
// steady state and the NaV Markov state to its equilibrium
// distribution, both evaluated at (v, ca). Mirrors
// flavors/sglexp/ion.c's initialize_ion.
func InitSteadyState(row []float64, v, ca float64) {
	row[MNaTs] = infMNaTs(v)
	row[HNaTs] = infHNaTs(v)
	row[MNaTa] = infMNaTa(v)
	row[HNaTa] = infHNaTa(v)
	row[HNap] = infHNap(v)
	row[MKv2] = infMKv2(v)
	row[H1Kv2] = infHKv2(v)
	row[H2Kv2] = infHKv2(v)
	row[MKv3] = infMKv3(v)
	row[MKp] = infMKp(v)
	row[HKp] = infHKp(v)
	row[MKt] = infMKt(v)
	row[HKt] = infHKt(v)
	row[MKd] = infMKd(v)
	row[HKd] = infHKd(v)
	row[MIm] = infMIm(v)
	row[MImv2] = infMImv2(v)
	row[MIh] = infMIh(v)
	row[ZSK] = infZSK(ca)
	row[MCaHVA] = infMCaHVA(v)
	row[HCaHVA] = infHCaHVA(v)
	row[MCaLVA] = infMCaLVA(v)
	row[HCaLVA] = infHCaLVA(v)
	navSteadyState(v, row[C1NaV:C1NaV+NMarkov])
}

// UpdateGates relaxes the 23 continuous gates toward their
// v-(and ca-)dependent steady state over dt, closed-form per gate:
// x(t+dt) = x_inf(v) + (x(t) - x_inf(v)) * exp(-dt/tau_x(v)).
// v and ca are sampled at the soma, matching flavors/sglexp/ion.c's
// update_ion (the only compartment that carries active conductances
// in perisomatic mode).
func UpdateGates(row []float64, v, ca, dt float64) {
	navUpdate(v, dt, row[C1NaV:C1NaV+NMarkov])
	relax(&row[MNaTs], infMNaTs(v), tauMNaTs(v), dt)
	relax(&row[HNaTs], infHNaTs(v), tauHNaTs(v), dt)
	relax(&row[MNaTa], infMNaTa(v), tauMNaTa(v), dt)
	relax(&row[HNaTa], infHNaTa(v), tauHNaTa(v), dt)
	relax(&row[HNap], infHNap(v), tauHNap(v), dt)
	relax(&row[MKv2], infMKv2(v), tauMKv2(v), dt)
	relax(&row[H1Kv2], infHKv2(v), tauH1Kv2(v), dt)
	relax(&row[H2Kv2], infHKv2(v), tauH2Kv2(v), dt)
	relax(&row[MKv3], infMKv3(v), tauMKv3(v), dt)
	relax(&row[MKp], infMKp(v), tauMKp(v), dt)
	relax(&row[HKp], infHKp(v), tauHKp(v), dt)
	relax(&row[MKt], infMKt(v), tauMKt(v), dt)
	relax(&row[HKt], infHKt(v), tauHKt(v), dt)
	relax(&row[MKd], infMKd(v), tauMKd(v), dt)
	relax(&row[HKd], infHKd(v), tauHKd(v), dt)
	relax(&row[MIm], infMIm(v), tauMIm(v), dt)
	relax(&row[MImv2], infMImv2(v), tauMImv2(v), dt)
	relax(&row[MIh], infMIh(v), tauMIh(v), dt)
	relax(&row[ZSK], infZSK(ca), tauZSK(), dt)
	relax(&row[MCaHVA], infMCaHVA(v), tauMCaHVA(v), dt)
	relax(&row[HCaHVA], infHCaHVA(v), tauHCaHVA(v), dt)
	relax(&row[MCaLVA], infMCaLVA(v), tauMCaLVA(v), dt)
	relax(&row[HCaLVA], infHCaLVA(v), tauHCaLVA(v), dt)
}

// CalcLHSRHS returns the somatic active-conductance contribution to
// the Hines matrix diagonal (lhs, in mS) and to the right-hand side
// (rhs = lhs * local reversal potential), summed over every
// ion-channel current. gbar is indexed by Chan and row by Gate.
// Mirrors flavors/sglexp/ion.c's calc_lhs_and_rhs exactly, including
// its instantaneous (non-gated) treatment of the Nap activation gate.
func CalcLHSRHS(gbar []float64, row []float64, v, ca float64) (lhs, rhs float64) {
	add := func(g, erev float64) {
		lhs += g
		rhs += g * erev
	}
	add(gbar[GNaV]*row[OONaV], VNa)
	add(gbar[GNaTs]*row[MNaTs]*row[MNaTs]*row[MNaTs]*row[HNaTs], VNa)
	add(gbar[GNaTa]*row[MNaTa]*row[MNaTa]*row[MNaTa]*row[HNaTa], VNa)
	add(gbar[GNap]*infMNap(v)*row[HNap], VNa)
	add(gbar[GKv2]*row[MKv2]*row[MKv2]*(0.5*row[H1Kv2]+0.5*row[H2Kv2]), VK)
	add(gbar[GKv3]*row[MKv3], VK)
	add(gbar[GKp]*row[MKp]*row[MKp]*row[HKp], VK)
	add(gbar[GKt]*row[MKt]*row[MKt]*row[MKt]*row[MKt]*row[HKt], VK)
	add(gbar[GKd]*row[MKd]*row[HKd], VK)
	add(gbar[GIm]*row[MIm], VK)
	add(gbar[GImv2]*row[MImv2], VK)
	add(gbar[GIh]*row[MIh], VHCN)
	add(gbar[GSK]*row[ZSK], VK)
	revCa := RevCa(ca)
	add(gbar[GCaHVA]*row[MCaHVA]*row[MCaHVA]*row[HCaHVA], revCa)
	add(gbar[GCaLVA]*row[MCaLVA]*row[MCaLVA]*row[HCaLVA], revCa)
	return lhs, rhs
}
