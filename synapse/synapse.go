// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package synapse holds the per-connection-entry dynamic state (C5):
// the exponentially decaying/rising accumulator sum0 that the hines
// solver reads as a conductance, and the bit-shift delay register
// that turns a presynaptic spike into a quantum of current arriving
// exactly delay milliseconds later. Grounded on flavors/sglexp/
// synapse.c.
package synapse

import "github.com/numericalbrain/neulite-go/conn"

// State is the synapse dynamic state, C5 in the design: one sum0
// accumulator and one delay register per doubled entry of a conn.Table.
type State struct {
	Sum0  []float64
	Delay []int
}

// New allocates synapse state sized to table's doubled-entry count.
func New(table *conn.Table) *State {
	return &State{
		Sum0:  make([]float64, table.NConn),
		Delay: make([]int, table.NConn),
	}
}

// Decay exponentially decays every entry's accumulator toward zero by
// this tick's precomputed per-entry factor (exp(-dt/tau)). Call once
// per solver substep, before the Hines matrix is assembled.
func Decay(s *State, table *conn.Table) {
	for i := range s.Sum0 {
		s.Sum0[i] *= table.Decay[i]
	}
}

// AddSpikesPerMs shifts every entry's delay register right by one bit
// and, where that leaves bit 0 set (the quantum has finished its
// delay), adds one unit to the accumulator. Call once per simulated
// millisecond, after arming registers via Arm.
func AddSpikesPerMs(s *State) {
	for i := range s.Delay {
		s.Delay[i] >>= 1
		if s.Delay[i] == 1 {
			s.Sum0[i]++
		}
	}
}

// Arm sets the delay register for entry slot to 1<<delay, scheduling
// one quantum of current to arrive after `delay` more millisecond
// ticks of AddSpikesPerMs. Called by the spike package for every
// doubled entry a firing presynaptic neuron targets.
func Arm(s *State, slot, delay int) {
	s.Delay[slot] = 1 << uint(delay)
}
