// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package population

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	return line
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// popRow is one line of the population CSV: spec.md §6.
type popRow struct {
	nNeuron, nComp     int
	name, swcPath, ionPath string
}

func readPopulationCSV(path string) ([]popRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("population: no such file %s: %w", path, err)
	}
	defer f.Close()

	var rows []popRow
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := stripComment(sc.Text())
		if isBlank(line) {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 5 {
			return nil, fmt.Errorf("population: malformed population CSV row %q: want 5 fields, got %d", line, len(fields))
		}
		nNeuron, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, fmt.Errorf("population: bad n_neuron in %q: %w", line, err)
		}
		nComp, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			return nil, fmt.Errorf("population: bad n_comp in %q: %w", line, err)
		}
		rows = append(rows, popRow{
			nNeuron: nNeuron, nComp: nComp,
			name:    strings.TrimSpace(fields[2]),
			swcPath: strings.TrimSpace(fields[3]),
			ionPath: strings.TrimSpace(fields[4]),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return rows, sc.Err()
}

// passiveIonRow is one line of the passive/ion CSV: spec.md §6 --
// either the 5-field passive-only form, or the 22-field form that
// additionally sets gamma, decay, and the NGbar maximal conductances.
type passiveIonRow struct {
	typ            CompType
	cm, ra, gl, vl float64
	hasActive      bool
	gamma, decay   float64
	gbar           [NGbar]float64
}

func readPassiveIonCSV(path string) ([]passiveIonRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("population: no such passive/ion file %s: %w", path, err)
	}
	defer f.Close()

	var rows []passiveIonRow
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := stripComment(sc.Text())
		if isBlank(line) {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 5 && len(fields) != 5+2+NGbar {
			return nil, fmt.Errorf("population: passive/ion CSV row %q has %d fields, want 5 or %d", line, len(fields), 5+2+NGbar)
		}
		vals := make([]float64, len(fields)-1)
		for i := 1; i < len(fields); i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
			if err != nil {
				return nil, fmt.Errorf("population: bad numeric field in %q: %w", line, err)
			}
			vals[i-1] = v
		}
		typCode, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, fmt.Errorf("population: bad compartment type in %q: %w", line, err)
		}
		row := passiveIonRow{
			typ: swcType(typCode),
			cm:  vals[0], ra: vals[1], gl: vals[2], vl: vals[3],
		}
		if len(fields) == 5+2+NGbar {
			row.hasActive = true
			row.gamma, row.decay = vals[4], vals[5]
			for k := 0; k < NGbar; k++ {
				row.gbar[k] = vals[6+k]
			}
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}
