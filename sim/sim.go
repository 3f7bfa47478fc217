// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sim is the top-level per-rank driver (C9): it owns the
// output files, the injected-current waveform, and the fixed iteration
// order kernel/main.c's main loop establishes --
// output_v, set_current, solve_network, spike_detection,
// spike_propagation -- run once per Δt for TSTOP*INV_DT iterations.
package sim

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/emer/empi/mpi"

	"github.com/numericalbrain/neulite-go/config"
	"github.com/numericalbrain/neulite-go/conn"
	"github.com/numericalbrain/neulite-go/engine"
	"github.com/numericalbrain/neulite-go/neuron"
	"github.com/numericalbrain/neulite-go/spike"
	"github.com/numericalbrain/neulite-go/synapse"
)

// Run owns one rank's simulation: its engine, spike detector, and
// output files.
type Run struct {
	Cfg  *config.Config
	Eng  *engine.Engine
	Neur *neuron.State
	Conn *conn.Table
	Det  *spike.Detector
	Comm *mpi.Comm

	vDat *bufio.Writer
	sDat *bufio.Writer
	vf   *os.File
	sf   *os.File

	maxLocal int // ceil(globalN/nRanks), this rank's padding capacity for spike.Exchange
}

// NewRun opens this rank's v<rank>.dat/s<rank>.dat files (per
// initialize_network) and builds a Detector seeded at -100mV.
func NewRun(cfg *config.Config, eng *engine.Engine, neur *neuron.State, table *conn.Table, comm *mpi.Comm, rank, maxLocal int) (*Run, error) {
	vPath := filepath.Join(cfg.OutDir, fmt.Sprintf("v%d.dat", rank))
	sPath := filepath.Join(cfg.OutDir, fmt.Sprintf("s%d.dat", rank))

	vf, err := os.Create(vPath)
	if err != nil {
		return nil, fmt.Errorf("sim: cannot create %s: %w", vPath, err)
	}
	sf, err := os.Create(sPath)
	if err != nil {
		vf.Close()
		return nil, fmt.Errorf("sim: cannot create %s: %w", sPath, err)
	}

	return &Run{
		Cfg: cfg, Eng: eng, Neur: neur, Conn: table, Comm: comm,
		Det:      spike.NewDetector(neur.NNeurons(), cfg.SpikeThreshold),
		vDat:     bufio.NewWriter(vf),
		sDat:     bufio.NewWriter(sf),
		vf:       vf,
		sf:       sf,
		maxLocal: maxLocal,
	}, nil
}

// Close flushes and closes the output files.
func (r *Run) Close() error {
	if err := r.vDat.Flush(); err != nil {
		return err
	}
	if err := r.sDat.Flush(); err != nil {
		return err
	}
	if err := r.vf.Close(); err != nil {
		return err
	}
	return r.sf.Close()
}

// ConstantCurrent is the rectangular injected-current waveform from
// kernel/main.c's constant_current: I_AMP (nA) while
// I_DELAY <= t < I_DELAY+I_DURATION, zero otherwise, identical for
// every neuron.
func ConstantCurrent(cfg *config.Config, t float64) float64 {
	if t >= cfg.IDelay && t < cfg.IDelay+cfg.IDuration {
		return cfg.IAmp
	}
	return 0
}

// outputV writes one "t v_0 v_1 ... v_{n-1}" line, aborting the run
// with exit code 1 on the first NaN voltage (spec.md §7's numerical
// divergence fault), matching output_v's isnan check.
func (r *Run) outputV(t float64) error {
	fmt.Fprintf(r.vDat, "%f ", t)
	n := r.Neur.NNeurons()
	for i := 0; i < n; i++ {
		v := r.Neur.V[r.Neur.Soma(i)]
		if math.IsNaN(v) {
			return fmt.Errorf("sim: nan voltage at local neuron %d, t=%f", i, t)
		}
		sep := " "
		if i == n-1 {
			sep = "\n"
		}
		fmt.Fprintf(r.vDat, "%f%s", v, sep)
	}
	return nil
}

func (r *Run) setCurrent(t float64) {
	for i := 0; i < r.Neur.NNeurons(); i++ {
		r.Neur.IExt[r.Neur.Soma(i)] = ConstantCurrent(r.Cfg, t)
	}
}

// spikeDetection accumulates threshold crossings and, on a 1ms
// boundary, flushes every spiking local neuron's (t, global id) to
// s<rank>.dat. Mirrors network.c's spike_detection.
func (r *Run) spikeDetection(tick int, t float64) {
	r.Det.Check(r.Neur)
	if tick%r.Cfg.InvDT == 0 {
		for i := 0; i < r.Neur.NNeurons(); i++ {
			if r.Det.Spiked[i] != 0 {
				fmt.Fprintf(r.sDat, "%f %d\n", t, r.Neur.GlobalID(i))
			}
		}
	}
}

// spikePropagation, once per simulated millisecond, delivers every
// queued delay-register quantum (synapse.AddSpikesPerMs), then
// exchanges this tick's spiking neuron ids across ranks and arms the
// delay registers of every local connection a spiking presynaptic
// neuron targets. Mirrors network.c's spike_propagation.
func (r *Run) spikePropagation(tick int) {
	if tick%r.Cfg.InvDT != 0 {
		return
	}
	synapse.AddSpikesPerMs(r.Eng.Syn)
	local := r.Det.LocalSpikingIDs(r.Neur)
	r.Det.Reset()
	global := spike.Exchange(r.Comm, local, r.maxLocal)
	spike.Propagate(r.Conn, r.Eng.Syn, global)
}

// Step advances the simulation by one Δt, in kernel/main.c's fixed
// order: output voltages, apply the injected-current waveform, solve
// the cable equation and ion-channel dynamics, detect spikes, then
// propagate them.
func (r *Run) Step(tick int) error {
	t := float64(tick) * r.Cfg.DT
	if err := r.outputV(t); err != nil {
		return err
	}
	r.setCurrent(t)
	r.Eng.Tick(r.Cfg.DT)
	r.spikeDetection(tick, t)
	r.spikePropagation(tick)
	return nil
}
