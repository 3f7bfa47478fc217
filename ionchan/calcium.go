// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ionchan

import "math"

// Calcium pool constants from kernel/ion_func.h.
const (
	ca1Out   = 2.0     // extracellular [Ca2+], mM
	faraday  = 9.6485e4 // Faraday constant, s*A/mol
	gasConst = 8.31446261815324
	minCa    = 1e-4  // mM, floor the pool decays toward
	depth    = 0.1e-4 // cm, shell depth for the surface-to-volume term
)

// CaInit is the resting free calcium concentration new compartments
// are seeded with.
func CaInit() float64 { return minCa }

// RevCa is the Ca2+ Nernst potential at bath temperature 34 degC, mV.
func RevCa(ca float64) float64 {
	const celsiusCa = 34.0
	return 1000 * ((gasConst * (273.0 + celsiusCa)) / (2 * faraday)) * math.Log(ca1Out/ca)
}

// dCaDt is the calcium pool's rate of change: an influx term driven
// by the net HVA+LVA Ca2+ current (iCa, nA) scaled by the buffering
// fraction gamma, plus first-order decay toward minCa with time
// constant decay (ms).
func dCaDt(ca, iCa, gamma, decay float64) float64 {
	return -10000*(iCa*gamma/(2*faraday*depth*1e4)) - (ca-minCa)/decay
}

// UpdateCa advances the soma's calcium pool by dt given the somatic
// HVA/LVA gate state, soma area (cm^2), and the population's per-type
// gamma/decay buffer parameters. Mirrors flavors/sglexp/ion.c's
// update_ca (perisomatic: only the soma compartment carries Ca2+
// channels).
func UpdateCa(ca *float64, v float64, row []float64, gbarCaHVA, gbarCaLVA, area, gamma, decay, dt float64) {
	iCa := (1e-3 * (v - RevCa(*ca)) * (gbarCaHVA*row[MCaHVA]*row[MCaHVA]*row[HCaHVA] +
		gbarCaLVA*row[MCaLVA]*row[MCaLVA]*row[HCaLVA])) / area
	*ca += dt * dCaDt(*ca, iCa, gamma, decay)
}
