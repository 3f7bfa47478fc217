// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package spike implements threshold detection, per-ms distributed
// spike exchange over MPI, and delay-register arming (C8). Grounded
// on flavors/sglexp+mpi/network.c's spike_detection/spike_propagation,
// using github.com/emer/empi/mpi for the all-gather -- the MPI
// wrapper the teacher (siboehm-axon) itself imports, matching its
// v1-era API rather than the newer cogentcore.org/core/base/mpi.
package spike

import (
	"fmt"
	"os"
	"sort"

	"github.com/emer/empi/mpi"

	"github.com/numericalbrain/neulite-go/conn"
	"github.com/numericalbrain/neulite-go/neuron"
	"github.com/numericalbrain/neulite-go/synapse"
)

// Detector tracks, per local neuron, whether its soma has crossed
// threshold since the last per-ms check (accumulated with +=, not =,
// because solver ticks run faster than the 1ms spike-check cadence).
type Detector struct {
	VPrev     []float64
	Spiked    []int // accumulator; >0 means "spiked at least once this ms"
	Threshold float64
}

// NewDetector allocates a Detector seeded at -100mV, matching
// flavors/sglexp+mpi/network.c's initialize_network (memset to -100).
func NewDetector(nNeuron int, threshold float64) *Detector {
	d := &Detector{VPrev: make([]float64, nNeuron), Spiked: make([]int, nNeuron), Threshold: threshold}
	for i := range d.VPrev {
		d.VPrev[i] = -100.0
	}
	return d
}

// Check compares each local neuron's current somatic voltage against
// threshold and accumulates a crossing. Call once per solver substep.
func (d *Detector) Check(neur *neuron.State) {
	for i := 0; i < neur.NNeurons(); i++ {
		v := neur.V[neur.Soma(i)]
		if d.VPrev[i] <= d.Threshold && v > d.Threshold {
			d.Spiked[i]++
		}
		d.VPrev[i] = v
	}
}

// LocalSpikingIDs returns the global neuron ids of every local neuron
// that spiked since the last Reset, ascending (local neuron order is
// already ascending in global id within one rank).
func (d *Detector) LocalSpikingIDs(neur *neuron.State) []int {
	var ids []int
	for i := 0; i < neur.NNeurons(); i++ {
		if d.Spiked[i] != 0 {
			ids = append(ids, neur.GlobalID(i))
		}
	}
	return ids
}

// Reset zeroes the per-ms spike accumulator after it has been
// reported and propagated.
func (d *Detector) Reset() {
	for i := range d.Spiked {
		d.Spiked[i] = 0
	}
}

// Exchange all-gathers every rank's locally spiking global neuron ids
// and returns the globally sorted union, using only the fixed-size
// mpi.Comm.AllGatherInt primitive (emer/empi v1 has no Allgatherv).
// Every rank already knows every other rank's local neuron capacity
// maxLocal without communicating -- population.Partition is a pure
// function of (globalN, nRanks) -- so each rank pads its spiking-id
// list to maxLocal with a -1 sentinel before the collective, and the
// receiver strips sentinels back out. Rank order is preserved by
// AllGatherInt, and within a rank local ids are already ascending
// (neuron.State.GlobalID walks local neurons in order), so the result
// is globally sorted with no extra sort, matching spike_propagation's
// MPI_Allgatherv-then-lockstep-merge. A failed gather is fatal: the
// error is printed to stderr and the process exits with code 1.
func Exchange(comm *mpi.Comm, local []int, maxLocal int) []int {
	if comm == nil || comm.Size() <= 1 {
		out := make([]int, len(local))
		copy(out, local)
		return out
	}
	src := make([]int, maxLocal)
	for i := range src {
		src[i] = -1
	}
	copy(src, local)

	dst := make([]int, comm.Size()*maxLocal)
	if err := comm.AllGatherInt(dst, src); err != nil {
		fmt.Fprintf(os.Stderr, "spike: AllGatherInt failed: %v\n", err)
		os.Exit(1)
	}
	out := make([]int, 0, len(local)*comm.Size())
	for _, id := range dst {
		if id >= 0 {
			out = append(out, id)
		}
	}
	return out
}

// Propagate arms the delay register of every doubled connection entry
// that a globally spiking presynaptic neuron targets locally, via the
// two-pointer lockstep merge of the (sorted) global spike list against
// conn.Table.PreTable (also sorted ascending). Mirrors
// flavors/sglexp+mpi/network.c's spike_propagation inner loop.
func Propagate(table *conn.Table, syn *synapse.State, globalSpikes []int) {
	if !sort.IntsAreSorted(globalSpikes) {
		sorted := append([]int(nil), globalSpikes...)
		sort.Ints(sorted)
		globalSpikes = sorted
	}
	ni, ti := 0, 0
	for ni < len(globalSpikes) && ti < len(table.PreTable) {
		switch {
		case globalSpikes[ni] < table.PreTable[ti]:
			ni++
		case globalSpikes[ni] > table.PreTable[ti]:
			ti++
		default:
			for j := table.PtrPre[ti]; j < table.PtrPre[ti+1]; j++ {
				synapse.Arm(syn, table.ID[j], table.Delay[j])
			}
			ti++
			ni++
		}
	}
}
