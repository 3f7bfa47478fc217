// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package engine is the per-tick integration driver (C7): it owns one
// hines.Matrix per local neuron, orchestrates the Crank-Nicolson
// half-step solve, and advances ion-channel gating and calcium in the
// sequence kernel/solver.c's solve() establishes. Parallelism across
// neurons is dispatched with a static worker-pool/channel pattern
// adapted from emer/leabra's NetworkStru.ThrWorker/ThrLayFun, applied
// to neuron-index chunks instead of layers.
package engine

import (
	"sync"

	"github.com/numericalbrain/neulite-go/conn"
	"github.com/numericalbrain/neulite-go/hines"
	"github.com/numericalbrain/neulite-go/ionchan"
	"github.com/numericalbrain/neulite-go/neuron"
	"github.com/numericalbrain/neulite-go/population"
	"github.com/numericalbrain/neulite-go/synapse"
)

// Engine holds per-neuron solver state and the thread pool that ticks
// it, for every local neuron.
type Engine struct {
	Pop  *population.Store
	Neur *neuron.State
	Ion  *ionchan.State
	Conn *conn.Table
	Syn  *synapse.State
	Mats []*hines.Matrix // one per local neuron

	NThreads int
	chunks   [][2]int // [start,end) neuron ranges, one per thread
	chans    []chan func(lo, hi int)
	wg       sync.WaitGroup
}

// New builds the solver matrices for every local neuron and, if
// nThreads > 1, starts the worker pool.
func New(pop *population.Store, neur *neuron.State, ion *ionchan.State, table *conn.Table, syn *synapse.State, nThreads int) *Engine {
	e := &Engine{Pop: pop, Neur: neur, Ion: ion, Conn: table, Syn: syn, NThreads: nThreads}

	e.Mats = make([]*hines.Matrix, neur.NNeurons())
	for i := 0; i < neur.NNeurons(); i++ {
		e.Mats[i] = hines.NewMatrix(pop, neur.Pid[i])
	}
	for lpid := 0; lpid < pop.NPopulations(); lpid++ {
		var mats []*hines.Matrix
		for i := 0; i < neur.NNeurons(); i++ {
			if neur.Pid[i] == lpid {
				mats = append(mats, e.Mats[i])
			}
		}
		if len(mats) > 0 {
			hines.BuildAxialConductance(pop, lpid, mats)
		}
	}

	if nThreads > 1 {
		e.startThreads()
	}
	return e
}

func (e *Engine) startThreads() {
	n := e.Neur.NNeurons()
	each := (n + e.NThreads - 1) / e.NThreads
	e.chunks = nil
	for lo := 0; lo < n; lo += each {
		hi := lo + each
		if hi > n {
			hi = n
		}
		e.chunks = append(e.chunks, [2]int{lo, hi})
	}
	e.chans = make([]chan func(lo, hi int), len(e.chunks))
	for t := range e.chunks {
		e.chans[t] = make(chan func(lo, hi int))
		go e.worker(t)
	}
}

func (e *Engine) worker(t int) {
	for fun := range e.chans[t] {
		lo, hi := e.chunks[t][0], e.chunks[t][1]
		fun(lo, hi)
		e.wg.Done()
	}
}

// runRanged dispatches fun over [0,NNeurons()) either serially or, if
// the worker pool is running, sharded across the static per-thread
// chunks, mirroring ThrLayFun's behavior for NThreads<=1 vs >1.
func (e *Engine) runRanged(fun func(lo, hi int)) {
	if e.chans == nil {
		fun(0, e.Neur.NNeurons())
		return
	}
	for t := range e.chans {
		e.wg.Add(1)
		e.chans[t] <- fun
	}
	e.wg.Wait()
}

// Stop closes the worker channels, ending every goroutine started by
// New. Call once at shutdown if NThreads > 1.
func (e *Engine) Stop() {
	for _, ch := range e.chans {
		close(ch)
	}
}

// Tick advances every local neuron by one solver half-step-pair (one
// full dt of wall-clock time), per kernel/solver.c's solve(). dt is
// the integration step (config.Config.DT).
func (e *Engine) Tick(dt float64) {
	synapse.Decay(e.Syn, e.Conn)
	e.runRanged(func(lo, hi int) {
		for i := lo; i < hi; i++ {
			e.tickNeuron(i, dt)
		}
	})
}

func (e *Engine) tickNeuron(i int, dt float64) {
	pop, neur, ion := e.Pop, e.Neur, e.Ion
	lpid := neur.Pid[i]
	sid := neur.Sid[i]
	nc := pop.NComp[lpid]
	off := pop.Cid[lpid]
	m := e.Mats[i]
	row := ion.Row(i)

	hines.ResetToPassive(m)
	for c := 0; c < nc; c++ {
		cm := pop.Cm[off+c]
		gl := pop.Gl[off+c]
		vl := pop.Vl[off+c]
		m.Ad[c] += cm/(0.5*dt) + gl
		m.B[c] = cm/(0.5*dt)*neur.V[sid+c] + gl*vl + neur.IExt[sid+c]*1e-3
	}

	gbar := somaGbar(pop, lpid, off)
	lhs, rhs := ionchan.CalcLHSRHS(gbar, row, neur.V[sid], neur.Ca[sid])
	m.Ad[0] += lhs
	m.B[0] += rhs

	for k := e.Conn.PtrPost[i]; k < e.Conn.PtrPost[i+1]; k++ {
		postC := e.Conn.PostComp[k]
		g := e.Conn.Weight[k] * e.Syn.Sum0[k] * 1e-3
		m.Ad[postC] += g
		m.B[postC] += g * e.Conn.Erev[k]
	}

	hines.Solve(m)

	gamma := pop.Gamma[lpid][pop.Type[off]]
	decay := pop.Decay[lpid][pop.Type[off]]
	area := pop.Area[off]
	ca := &neur.Ca[sid]
	ionchan.UpdateCa(ca, neur.V[sid], row, gbar[ionchan.GCaHVA], gbar[ionchan.GCaLVA], area, gamma, decay, 0.5*dt)
	ionchan.UpdateGates(row, m.B[0], *ca, dt)
	ionchan.UpdateCa(ca, neur.V[sid], row, gbar[ionchan.GCaHVA], gbar[ionchan.GCaLVA], area, gamma, decay, 0.5*dt)

	for c := 0; c < nc; c++ {
		neur.V[sid+c] = 2*m.B[c] - neur.V[sid+c]
	}
}

// somaGbar returns the perisomatic-or-all-active NGbar conductance
// slice for compartment 0 (the soma) of local population lpid.
func somaGbar(pop *population.Store, lpid, off int) []float64 {
	start := pop.GbarIndex(lpid, 0, 0)
	return pop.Gbar[start : start+population.NGbar]
}
