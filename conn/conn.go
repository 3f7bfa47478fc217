// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package conn holds the static chemical-synapse connectivity table
// (C4): a CSR-style bipartite graph between global presynaptic neuron
// ids and this rank's local postsynaptic (neuron, compartment) pairs,
// doubled into an alpha-waveform pair of decaying/rising entries per
// declared connection. Grounded on axon/prjn.go's SendConN/
// SendConIdxStart/SendConIdx and RecvConN/RecvConIdxStart/RecvConIdx
// CSR arrays, generalized from a dense projection to a sparse,
// file-driven one per kernel/conn.c.
package conn

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Table is the local rank's connection table, C4 in the design. Two
// views share the same doubled-entry backing arrays (Weight, Erev,
// Decay): PtrPost for the Hines solver's per-postsynaptic-neuron
// conductance sum, and PtrPre/PreTable for spike delivery keyed by
// global presynaptic neuron id.
type Table struct {
	// per-entry (doubled: 2 entries per declared connection),
	// CSR-by-local-postsynaptic-neuron order
	PostComp []int     // postsynaptic compartment index within its neuron
	Weight   []float64 // norm_coef * weight, signed (+ decay limb, - rise limb)
	Erev     []float64
	Decay    []float64 // exp(-dt/tau) for this entry's limb
	NConn    int

	PtrPost []int // length NPost+1, cumulative entries per local post neuron

	// CSR-by-global-presynaptic-neuron-id order, used only to route an
	// incoming spike to the delay registers it must arm
	PreTable []int // sorted distinct global pre ids with >=1 local target
	PtrPre   []int // length len(PreTable)+1
	Delay    []int // per pre-grouped slot, conduction delay in ms (>=1)
	ID       []int // per pre-grouped slot, index into the doubled arrays above

	NPost int // local postsynaptic neuron count
}

// row is one parsed connection-CSV line: spec.md §6's 9-field format
// pre,post_neuron,post_comp,weight,decay_tau,rise_tau,erev,delay,kind.
type row struct {
	pre, postNeuron, postComp int
	weight, decayTau, riseTau, erev float64
	delay                           int
	kind                            byte
}

func parseConnectionCSV(path string) ([]row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("conn: no such connection file %s: %w", path, err)
	}
	defer f.Close()

	var rows []row
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 9 {
			return nil, fmt.Errorf("conn: malformed connection row %q: want 9 fields, got %d", line, len(fields))
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		var r row
		ints := []*int{&r.pre, &r.postNeuron, &r.postComp}
		for i, p := range ints {
			v, err := strconv.Atoi(fields[i])
			if err != nil {
				return nil, fmt.Errorf("conn: bad integer field in %q: %w", line, err)
			}
			*p = v
		}
		floats := []*float64{&r.weight, &r.decayTau, &r.riseTau, &r.erev}
		for i, p := range floats {
			v, err := strconv.ParseFloat(fields[3+i], 64)
			if err != nil {
				return nil, fmt.Errorf("conn: bad numeric field in %q: %w", line, err)
			}
			*p = v
		}
		d, err := strconv.Atoi(fields[7])
		if err != nil {
			return nil, fmt.Errorf("conn: bad delay field in %q: %w", line, err)
		}
		r.delay = d
		if len(fields[8]) != 1 {
			return nil, fmt.Errorf("conn: bad synapse kind in %q: want one char", line)
		}
		r.kind = fields[8][0]
		if r.delay <= 0 {
			return nil, fmt.Errorf("conn: connection row %q has non-positive delay", line)
		}
		rows = append(rows, r)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// Build reads the connection CSV and constructs the local Table for
// the neurons in [localOffset, localOffset+localCount) of the global
// id space, per kernel/conn.c's initialize_connection generalized
// with the (n_each, n_offset) rank-local filtering flavors/sglexp+mpi
// adds. The file must already be sorted by ascending presynaptic id
// (kernel/conn.c's pre_table/ptr_pre construction assumes file order
// is pre-grouped); Build returns an error otherwise.
func Build(localOffset, localCount int, path string, compCount func(localPostNeuron int) int, dt float64) (*Table, error) {
	rows, err := parseConnectionCSV(path)
	if err != nil {
		return nil, err
	}

	local := make([]row, 0, len(rows))
	lastPre := -1
	for _, r := range rows {
		if r.pre < lastPre {
			return nil, fmt.Errorf("conn: %s is not sorted by ascending presynaptic id", path)
		}
		lastPre = r.pre
		if r.postNeuron < localOffset || r.postNeuron >= localOffset+localCount {
			continue
		}
		local = append(local, r)
	}

	t := &Table{NPost: localCount}

	postCount := make([]int, localCount)
	preCount := map[int]int{}
	for _, r := range local {
		postCount[r.postNeuron-localOffset] += 2
		preCount[r.pre] += 2
	}

	t.PtrPost = make([]int, localCount+1)
	for i := 0; i < localCount; i++ {
		t.PtrPost[i+1] = t.PtrPost[i] + postCount[i]
	}
	t.NConn = t.PtrPost[localCount]
	t.PostComp = make([]int, t.NConn)
	t.Weight = make([]float64, t.NConn)
	t.Erev = make([]float64, t.NConn)
	t.Decay = make([]float64, t.NConn)

	for _, pre := range sortedKeys(preCount) {
		t.PreTable = append(t.PreTable, pre)
	}
	t.PtrPre = make([]int, len(t.PreTable)+1)
	for k, pre := range t.PreTable {
		t.PtrPre[k+1] = t.PtrPre[k] + preCount[pre]
	}
	t.Delay = make([]int, t.PtrPre[len(t.PreTable)])
	t.ID = make([]int, t.PtrPre[len(t.PreTable)])

	localIdx := make([]int, localCount)
	preSlot := make([]int, len(t.PreTable))
	preIdxOf := map[int]int{}
	for k, pre := range t.PreTable {
		preIdxOf[pre] = k
	}

	for _, r := range local {
		ln := r.postNeuron - localOffset
		if r.postComp < 0 || (compCount != nil && r.postComp >= compCount(ln)) {
			return nil, fmt.Errorf("conn: connection row targets out-of-range compartment %d of local neuron %d", r.postComp, ln)
		}
		tauPrime := r.decayTau * r.riseTau / (r.decayTau - r.riseTau)
		tauDiff := r.riseTau / r.decayTau
		normCoef := 1.0 / (math.Pow(tauDiff, tauPrime/r.decayTau) - math.Pow(tauDiff, tauPrime/r.riseTau))

		slot1 := t.PtrPost[ln] + localIdx[ln]
		t.PostComp[slot1] = r.postComp
		t.Weight[slot1] = normCoef * r.weight
		t.Erev[slot1] = r.erev
		t.Decay[slot1] = math.Exp(-dt / r.decayTau)
		localIdx[ln]++

		pk := preIdxOf[r.pre]
		pslot := t.PtrPre[pk] + preSlot[pk]
		t.Delay[pslot] = r.delay
		t.ID[pslot] = slot1
		preSlot[pk]++

		slot2 := t.PtrPost[ln] + localIdx[ln]
		t.PostComp[slot2] = r.postComp
		t.Weight[slot2] = -normCoef * r.weight
		t.Erev[slot2] = r.erev
		t.Decay[slot2] = math.Exp(-dt / r.riseTau)
		localIdx[ln]++

		pslot2 := t.PtrPre[pk] + preSlot[pk]
		t.Delay[pslot2] = r.delay
		t.ID[pslot2] = slot2
		preSlot[pk]++
	}

	return t, nil
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}
