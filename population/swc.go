// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package population

import (
	"bufio"
	"fmt"
	"math"
	"os"
)

// swcRecord is one row of an SWC morphology file: id type x y z r parent.
type swcRecord struct {
	id, typ, parent int
	x, y, z, r      float64
}

// segment is one reconstructed cable segment: a proximal/distal pair
// plus the index of its parent segment (-1 for the soma).
type segment struct {
	parent                 int
	proxX, proxY, proxZ, proxR float64
	distX, distY, distZ, distR float64
	typ                        CompType
}

// swcType maps the SWC numeric type code to our CompType. SWC's
// standard codes are 1=soma, 2=axon, 3=(basal) dendrite, 4=apical.
func swcType(code int) CompType {
	switch code {
	case 1:
		return Soma
	case 2:
		return Axon
	case 4:
		return Apical
	default:
		return Dendrite
	}
}

// readSWC parses an SWC file into raw records, id-indexed (id is
// 0-based and contiguous per spec.md §6).
func readSWC(path string) ([]swcRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("population: no such SWC file %s: %w", path, err)
	}
	defer f.Close()

	var recs []swcRecord
	sc := bufio.NewScanner(f)
	expect := 0
	for sc.Scan() {
		line := stripComment(sc.Text())
		if isBlank(line) {
			continue
		}
		var r swcRecord
		n, err := fmt.Sscanf(line, "%d %d %f %f %f %f %d", &r.id, &r.typ, &r.x, &r.y, &r.z, &r.r, &r.parent)
		if err != nil || n != 7 {
			return nil, fmt.Errorf("population: malformed SWC record %q in %s", line, path)
		}
		if r.id != expect {
			return nil, fmt.Errorf("population: SWC ids must be 0-based contiguous, got %d want %d in %s", r.id, expect, path)
		}
		recs = append(recs, r)
		expect++
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("population: empty SWC file %s", path)
	}
	if swcType(recs[0].typ) != Soma {
		return nil, fmt.Errorf("population: SWC record 0 must be soma in %s", path)
	}
	return recs, nil
}

// reconstruct turns SWC records into the segment tree spec.md §6
// describes: (a) a dendrite directly attached to soma with children
// suppresses the soma-dend0 segment; (b) a dend0-dend1 pair attached
// to soma is split through a midpoint; (c) a soma-axon link is
// reshaped into a cylinder by copying the axon radius to the soma end.
func reconstruct(recs []swcRecord) []segment {
	n := len(recs)
	nChild := make([]int, n)
	for _, r := range recs {
		if r.parent >= 0 {
			nChild[r.parent]++
		}
	}

	segs := make([]segment, 0, n)
	segIDFromRID := make([]int, n)

	soma := recs[0]
	proxR := soma.r
	segs = append(segs, segment{
		parent: -1,
		proxX:  soma.x - 2*soma.r, proxY: soma.y, proxZ: soma.z, proxR: proxR,
		distX: soma.x, distY: soma.y, distZ: soma.z, distR: soma.r,
		typ: Soma,
	})
	segIDFromRID[0] = 0

	dummyType := CompType(-1)
	for rid := 1; rid < n; rid++ {
		distal := recs[rid]
		proximal := recs[distal.parent]
		grandparentType := dummyType
		if proximal.parent >= 0 {
			grandparentType = swcType(recs[proximal.parent].typ)
		}
		distalType := swcType(distal.typ)
		proximalType := swcType(proximal.typ)

		switch {
		case proximalType == Soma && nChild[rid] != 0 && distalType != Axon:
			// (a) soma-dend0 segment suppressed; dend0 inherits the
			// soma's segment id so its children attach directly to it.
			segIDFromRID[rid] = segIDFromRID[proximal.id]

		case grandparentType == Soma && distalType != Axon && segIDFromRID[proximal.id] == segIDFromRID[proximal.parent]:
			// (b) soma-dend0-dend1: split dend0-dend1 through a midpoint.
			pid := segIDFromRID[proximal.id]
			midX := (distal.x + proximal.x) * 0.5
			midY := (distal.y + proximal.y) * 0.5
			midZ := (distal.z + proximal.z) * 0.5
			midR := (distal.r + proximal.r) * 0.5

			segs = append(segs, segment{
				parent: pid,
				proxX: proximal.x, proxY: proximal.y, proxZ: proximal.z, proxR: proximal.r,
				distX: midX, distY: midY, distZ: midZ, distR: midR,
				typ: distalType,
			})
			segIDFromRID[proximal.id] = len(segs) - 1

			segs = append(segs, segment{
				parent: pid,
				proxX: midX, proxY: midY, proxZ: midZ, proxR: midR,
				distX: distal.x, distY: distal.y, distZ: distal.z, distR: distal.r,
				typ: distalType,
			})
			segIDFromRID[rid] = len(segs) - 1

		default:
			hasSkippedParent := grandparentType == Soma && distalType != Axon
			pid := segIDFromRID[proximal.id]
			if hasSkippedParent {
				pid = segIDFromRID[proximal.parent]
			}
			pr := proximal.r
			if proximalType == Soma && distalType == Axon {
				// (c) soma-axon reshaped into a cylinder: copy the
				// axon's radius to the soma end.
				pr = distal.r
			}
			segs = append(segs, segment{
				parent: pid,
				proxX: proximal.x, proxY: proximal.y, proxZ: proximal.z, proxR: pr,
				distX: distal.x, distY: distal.y, distZ: distal.z, distR: distal.r,
				typ: distalType,
			})
			segIDFromRID[rid] = len(segs) - 1
		}
	}
	return segs
}

// umToCm converts the µm SWC units to the cm the solver works in.
const umToCm = 1.0e-4

// geometry computes len/area/rad for one segment, in cm / cm².
func geometry(s segment) (length, area, rad float64) {
	dx := s.distX - s.proxX
	dy := s.distY - s.proxY
	dz := s.distZ - s.proxZ
	dr := s.distR - s.proxR
	length = math.Sqrt(dx*dx+dy*dy+dz*dz) * umToCm
	area = math.Pi * (s.proxR + s.distR) * umToCm * math.Sqrt(dr*dr*umToCm*umToCm+length*length)
	rad = s.distR * umToCm
	return
}
