// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the run-time configuration of the simulation:
// time stepping, spike threshold, injected-current waveform, and the
// perisomatic / all-active conductance mode switch.
package config

import "flag"

// Config holds the simulation parameters that spec.md documents as
// compile-time constants. Defaults reproduce those constants exactly;
// cmd/neulite binds command-line flags on top of them.
type Config struct {
	DT             float64 `desc:"integration time step, ms"`
	TStop          float64 `desc:"total simulated time, ms"`
	InvDT          int     `desc:"number of Δt ticks per ms boundary -- 1/DT"`
	SpikeThreshold float64 `desc:"somatic Vm threshold for spike detection, mV"`
	AllActive      bool    `desc:"if true, conductances are placed per-compartment instead of perisomatic-only"`
	IAmp           float64 `desc:"amplitude of the injected step current, nA"`
	IDelay         float64 `desc:"onset time of the injected step current, ms"`
	IDuration      float64 `desc:"duration of the injected step current, ms"`
	OutDir         string  `desc:"directory for v<rank>.dat / s<rank>.dat output files"`
	NThreads       int     `desc:"worker goroutines per rank for the per-neuron tick loop"`
	ConnFile       string  `desc:"path to the connection CSV file"`
	PopFile        string  `desc:"path to the population CSV file"`
}

// Defaults sets the values spec.md §6 fixes at compile time in the
// original kernel.
func (cfg *Config) Defaults() {
	cfg.DT = 0.1
	cfg.TStop = 2000
	cfg.InvDT = 10
	cfg.SpikeThreshold = -15
	cfg.AllActive = false
	cfg.IAmp = 0.12
	cfg.IDelay = 500
	cfg.IDuration = 1000
	cfg.OutDir = "."
	cfg.NThreads = 1
	cfg.ConnFile = "connection.csv"
	cfg.PopFile = "population.csv"
}

// NSteps returns the number of Δt ticks the run performs.
func (cfg *Config) NSteps() int {
	return int(cfg.TStop/cfg.DT + 0.5)
}

// AddFlags registers command-line overrides for every field, following
// the plain flag.* style the teacher's CLI examples use (no TOML/GUI
// config loader).
func (cfg *Config) AddFlags(fs *flag.FlagSet) {
	fs.Float64Var(&cfg.DT, "dt", cfg.DT, "integration time step, ms")
	fs.Float64Var(&cfg.TStop, "tstop", cfg.TStop, "total simulated time, ms")
	fs.IntVar(&cfg.InvDT, "invdt", cfg.InvDT, "ticks per ms boundary")
	fs.Float64Var(&cfg.SpikeThreshold, "spike-threshold", cfg.SpikeThreshold, "somatic spike threshold, mV")
	fs.BoolVar(&cfg.AllActive, "allactive", cfg.AllActive, "place conductances per-compartment instead of perisomatic")
	fs.Float64Var(&cfg.IAmp, "iamp", cfg.IAmp, "injected step current amplitude, nA")
	fs.Float64Var(&cfg.IDelay, "idelay", cfg.IDelay, "injected step current onset, ms")
	fs.Float64Var(&cfg.IDuration, "iduration", cfg.IDuration, "injected step current duration, ms")
	fs.StringVar(&cfg.OutDir, "outdir", cfg.OutDir, "output directory for v<rank>.dat / s<rank>.dat")
	fs.IntVar(&cfg.NThreads, "nthreads", cfg.NThreads, "worker goroutines per rank")
	fs.StringVar(&cfg.ConnFile, "conn", cfg.ConnFile, "connection CSV file")
	fs.StringVar(&cfg.PopFile, "pop", cfg.PopFile, "population CSV file")
}
