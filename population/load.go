// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package population

import "fmt"

// GlobalNeuronCount sums n_neuron across every row of a population CSV,
// without parsing SWC/passive-ion files. Used to compute the
// contiguous global-id partition before any rank starts loading its
// own share.
func GlobalNeuronCount(popCSVPath string) (int, error) {
	rows, err := readPopulationCSV(popCSVPath)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, r := range rows {
		n += r.nNeuron
	}
	return n, nil
}

// Partition computes this rank's contiguous global-neuron-id range
// per spec.md §4.7: n_each = ceil(globalN/nRanks); rank r owns
// [r*n_each, min((r+1)*n_each, globalN)). Returns an error if
// nRanks > globalN, per spec.md's required initialization failure.
func Partition(globalN, nRanks, rank int) (offset, count int, err error) {
	if nRanks > globalN {
		return 0, 0, fmt.Errorf("population: n_ranks (%d) > global_n_neurons (%d)", nRanks, globalN)
	}
	nEach := (globalN + nRanks - 1) / nRanks
	offset = nEach * rank
	end := offset + nEach
	if end > globalN {
		end = globalN
	}
	return offset, end - offset, nil
}

// Load builds the local Store for one rank: it determines which
// populations overlap this rank's contiguous neuron-id range
// [n_offset, n_offset+n_each), loads SWC/passive-ion data only for
// those, and clips NNeuron at the partition boundary, mirroring
// flavors/mpi/popl.c's initialize().
func Load(popCSVPath string, nRanks, rank int, allActive bool) (*Store, error) {
	rows, err := readPopulationCSV(popCSVPath)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("population: %s has no population rows", popCSVPath)
	}

	globalN := 0
	for _, r := range rows {
		globalN += r.nNeuron
	}
	offset, nEach, err := Partition(globalN, nRanks, rank)
	if err != nil {
		return nil, err
	}

	p := &Store{
		GlobalOffset:   offset,
		GlobalNNeurons: globalN,
		AllActive:      allActive,
	}

	if nEach == 0 {
		p.StartPid, p.EndPid = 0, 0
		p.Cid = []int{0}
		return p, nil
	}

	startPid, endPid := -1, -1
	acc := 0
	for i := range rows {
		startPid = i
		acc += rows[i].nNeuron
		if offset < acc {
			break
		}
	}
	for i := startPid; i < len(rows); i++ {
		endPid = i
		target := offset + nEach
		if target > globalN {
			target = globalN
		}
		if target <= acc {
			break
		}
		acc += rows[i+1].nNeuron
	}
	p.StartPid, p.EndPid = startPid, endPid+1

	localN := p.NPopulations()
	p.NNeuron = make([]int, localN)
	p.NComp = make([]int, localN)
	p.Cid = make([]int, localN+1)
	p.Gamma = make([][CompTypeN]float64, localN)
	p.Decay = make([][CompTypeN]float64, localN)

	{
		acc := 0
		for i := 0; i < startPid; i++ {
			acc += rows[i].nNeuron
		}
		nRest := nEach
		if offset+nEach >= globalN {
			nRest = globalN - offset
		}
		pid := startPid
		for nRest > 0 {
			var avail int
			if pid == startPid {
				avail = acc - offset + rows[pid].nNeuron
			} else {
				avail = rows[pid].nNeuron
			}
			take := avail
			if nRest < take {
				take = nRest
			}
			p.NNeuron[pid-startPid] = take
			nRest -= take
			acc += rows[pid].nNeuron
			pid++
		}
	}

	for lpid := 0; lpid < localN; lpid++ {
		p.NComp[lpid] = rows[startPid+lpid].nComp
		p.Cid[lpid+1] = p.Cid[lpid] + p.NComp[lpid]
	}

	nc := p.Cid[localN]
	p.Rad = make([]float64, nc)
	p.Len = make([]float64, nc)
	p.Area = make([]float64, nc)
	p.Parent = make([]int, nc)
	p.Type = make([]CompType, nc)
	p.Cm = make([]float64, nc)
	p.Ra = make([]float64, nc)
	p.Gl = make([]float64, nc)
	p.Vl = make([]float64, nc)
	gbarLen := localN * NGbar
	if allActive {
		gbarLen = nc * NGbar
	}
	p.Gbar = make([]float64, gbarLen)

	for lpid := 0; lpid < localN; lpid++ {
		row := rows[startPid+lpid]
		if err := loadSWC(p, lpid, row.swcPath); err != nil {
			return nil, err
		}
		if err := loadPassiveIon(p, lpid, row.ionPath); err != nil {
			return nil, err
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// loadSWC fills geometry/parent/type for local population lpid from
// its SWC file. NComp is not changed: the reconstructed compartment
// count must equal the n_comp declared in the population CSV, and a
// different count is returned as an error.
func loadSWC(p *Store, lpid int, swcPath string) error {
	recs, err := readSWC(swcPath)
	if err != nil {
		return err
	}
	segs := reconstruct(recs)
	n := len(segs)
	if n != p.NComp[lpid] {
		// the backing arrays are already allocated at the declared
		// n_comp, so a smaller reconstructed count is rejected too.
		return fmt.Errorf("population: SWC %s reconstructs to %d compartments, population CSV declared %d", swcPath, n, p.NComp[lpid])
	}
	off := p.Cid[lpid]
	for i, seg := range segs {
		length, area, rad := geometry(seg)
		p.Parent[off+i] = seg.parent
		p.Type[off+i] = seg.typ
		p.Len[off+i] = length
		p.Area[off+i] = area
		p.Rad[off+i] = rad
	}
	return nil
}

// loadPassiveIon fills cm/ra/gl/vl (always) and gamma/decay/gbar
// (where the CSV row carries the 22-field active form) for local
// population lpid, converting units per spec.md §6.
func loadPassiveIon(p *Store, lpid int, path string) error {
	rows, err := readPassiveIonCSV(path)
	if err != nil {
		return err
	}
	var cm, ra, gl, vl [CompTypeN]float64
	for _, r := range rows {
		cm[r.typ], ra[r.typ], gl[r.typ], vl[r.typ] = r.cm, r.ra, r.gl, r.vl
		if r.hasActive {
			p.Gamma[lpid][r.typ] = r.gamma
			p.Decay[lpid][r.typ] = r.decay
			off := p.Cid[lpid]
			if p.AllActive {
				// every active row re-stamps gbar on every compartment of
				// the population, scaled by that compartment's own area;
				// a later row in the file overrides an earlier one. This
				// matches flavors/mpi/popl_func.h's read_ion_file exactly.
				for c := 0; c < p.NComp[lpid]; c++ {
					area := p.Area[off+c]
					for k := 0; k < NGbar; k++ {
						p.Gbar[p.GbarIndex(lpid, c, k)] = r.gbar[k] * area * 1e3
					}
				}
			} else if r.typ == Soma {
				area := p.Area[off+0]
				for k := 0; k < NGbar; k++ {
					p.Gbar[p.GbarIndex(lpid, 0, k)] = r.gbar[k] * area * 1e3
				}
			}
		}
	}
	off := p.Cid[lpid]
	for c := 0; c < p.NComp[lpid]; c++ {
		t := p.Type[off+c]
		area := p.Area[off+c]
		p.Cm[off+c] = cm[t] * area
		p.Ra[off+c] = ra[t] * 1e-3
		p.Gl[off+c] = gl[t] * area * 1e3
		p.Vl[off+c] = vl[t]
	}
	return nil
}
