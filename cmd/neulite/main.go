// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command neulite runs a distributed, biophysically detailed
// spiking-network simulation: one rank per MPI process, each owning a
// contiguous slice of the global neuron-id space. Mirrors
// flavors/sglexp+mpi/main.c's driver.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/emer/empi/mpi"

	"github.com/numericalbrain/neulite-go/config"
	"github.com/numericalbrain/neulite-go/conn"
	"github.com/numericalbrain/neulite-go/engine"
	"github.com/numericalbrain/neulite-go/ionchan"
	"github.com/numericalbrain/neulite-go/neuron"
	"github.com/numericalbrain/neulite-go/population"
	"github.com/numericalbrain/neulite-go/sim"
	"github.com/numericalbrain/neulite-go/synapse"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := &config.Config{}
	cfg.Defaults()

	fs := flag.NewFlagSet("neulite", flag.ContinueOnError)
	cfg.AddFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		return 1
	}
	args := fs.Args()
	if len(args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] population.csv connection.csv\n", os.Args[0])
		return 1
	}
	cfg.PopFile, cfg.ConnFile = args[0], args[1]

	mpi.Init()
	defer mpi.Finalize()

	comm, err := mpi.NewComm(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "neulite: mpi.NewComm failed: %v\n", err)
		return 1
	}
	rank := mpi.WorldRank()
	size := mpi.WorldSize()

	host, herr := os.Hostname()
	if herr != nil {
		host = "unknown"
	}
	fmt.Fprintf(os.Stderr, "Hello from %s: rank %d of %d\n", host, rank, size)

	globalN, err := population.GlobalNeuronCount(cfg.PopFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "neulite: %v\n", err)
		return 1
	}
	if size > globalN {
		if rank == 0 {
			fmt.Fprintf(os.Stderr, "neulite: mpi_size (%d) > global_n_neurons (%d)\n", size, globalN)
		}
		return 1
	}

	pop, err := population.Load(cfg.PopFile, size, rank, cfg.AllActive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "neulite: %v\n", err)
		return 1
	}

	neur := neuron.New(pop)
	ion := ionchan.New(neur.NNeurons())
	for i := 0; i < neur.NNeurons(); i++ {
		ionchan.InitSteadyState(ion.Row(i), neur.V[neur.Soma(i)], neur.Ca[neur.Soma(i)])
	}

	table, err := conn.Build(pop.GlobalOffset, neur.NNeurons(), cfg.ConnFile, func(ln int) int {
		return neur.NComp(ln)
	}, cfg.DT)
	if err != nil {
		fmt.Fprintf(os.Stderr, "neulite: %v\n", err)
		return 1
	}
	syn := synapse.New(table)

	eng := engine.New(pop, neur, ion, table, syn, cfg.NThreads)
	if cfg.NThreads > 1 {
		defer eng.Stop()
	}

	_, maxLocal, err := population.Partition(globalN, size, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "neulite: %v\n", err)
		return 1
	}
	r, err := sim.NewRun(cfg, eng, neur, table, comm, rank, maxLocal)
	if err != nil {
		fmt.Fprintf(os.Stderr, "neulite: %v\n", err)
		return 1
	}
	defer r.Close()

	nSteps := cfg.NSteps()
	for tick := 0; tick < nSteps; tick++ {
		if tick%cfg.InvDT == 0 {
			fmt.Fprintf(os.Stderr, "t = %f\n", float64(tick)*cfg.DT)
		}
		if err := r.Step(tick); err != nil {
			fmt.Fprintf(os.Stderr, "neulite: %v\n", err)
			return 1
		}
	}
	if rank == 0 {
		fmt.Fprintln(os.Stderr, "done")
	}
	return 0
}
