// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ionchan

import "math"

// celsius is the fixed bath temperature every rate below is
// Q10-corrected to, matching kernel/ion_func.h.
const celsius = 34.0

// qt10 returns the Q10 factor pow(2.3, (celsius-refC)/10), the
// standard correction kernel/ion_func.h applies to every rate
// constant derived at a different reference temperature.
func qt10(refC float64) float64 { return math.Pow(2.3, (celsius-refC)/10.0) }

// vtrap avoids the 0/0 singularity of x/(exp(x/y)-1) as x -> 0 with a
// linear Taylor approximation, exactly as kernel/ion_func.h's vtrap.
func vtrap(x, y float64) float64 {
	if math.Abs(x/y) < 1e-6 {
		return y * (1.0 - (x/y)/2.0)
	}
	return x / (math.Exp(x/y) - 1.0)
}

// relax advances one continuous gate by the closed-form exponential
// relaxation x(t+dt) = xInf + (x(t)-xInf)*exp(-dt/tau).
func relax(x *float64, xInf, tau, dt float64) {
	*x = xInf + (*x-xInf)*math.Exp(-dt/tau)
}

// --- NaTs: transient Na+, slow inactivation variant ---

func alphaMNaTs(v float64) float64 { return 0.182 * vtrap(-(v-(-40.0)), 6.0) }
func betaMNaTs(v float64) float64  { return 0.124 * vtrap(v-(-40.0), 6.0) }
func alphaHNaTs(v float64) float64 { return 0.015 * vtrap(v-(-66.0), 6.0) }
func betaHNaTs(v float64) float64  { return 0.015 * vtrap(-(v-(-66.0)), 6.0) }

func infMNaTs(v float64) float64 { return alphaMNaTs(v) / (alphaMNaTs(v) + betaMNaTs(v)) }
func infHNaTs(v float64) float64 { return alphaHNaTs(v) / (alphaHNaTs(v) + betaHNaTs(v)) }
func tauMNaTs(v float64) float64 {
	return (1.0 / (alphaMNaTs(v) + betaMNaTs(v))) / qt10(23.0)
}
func tauHNaTs(v float64) float64 {
	return (1.0 / (alphaHNaTs(v) + betaHNaTs(v))) / qt10(23.0)
}

// --- NaTa: transient Na+, fast inactivation variant ---

func alphaMNaTa(v float64) float64 { return 0.182 * vtrap(-(v-(-48.0)), 6.0) }
func betaMNaTa(v float64) float64  { return 0.124 * vtrap(v-(-48.0), 6.0) }
func alphaHNaTa(v float64) float64 { return 0.015 * vtrap(v-(-69.0), 6.0) }
func betaHNaTa(v float64) float64  { return 0.015 * vtrap(-(v-(-69.0)), 6.0) }

func infMNaTa(v float64) float64 { return alphaMNaTa(v) / (alphaMNaTa(v) + betaMNaTa(v)) }
func infHNaTa(v float64) float64 { return alphaHNaTa(v) / (alphaHNaTa(v) + betaHNaTa(v)) }
func tauMNaTa(v float64) float64 {
	return (1.0 / (alphaMNaTa(v) + betaMNaTa(v))) / qt10(23.0)
}
func tauHNaTa(v float64) float64 {
	return (1.0 / (alphaHNaTa(v) + betaHNaTa(v))) / qt10(23.0)
}

// --- Nap: persistent Na+. Activation is instantaneous (no gate
// state, called directly from CalcLHSRHS); only inactivation relaxes.

func alphaHNap(v float64) float64 { return 2.88e-6 * vtrap(v+17.0, 4.63) }
func betaHNap(v float64) float64  { return 6.94e-6 * vtrap(-(v+64.4), 2.63) }

func infMNap(v float64) float64 { return 1.0 / (1.0 + math.Exp((v-(-52.6))/-4.6)) }
func infHNap(v float64) float64 { return 1.0 / (1.0 + math.Exp((v-(-48.8))/10.0)) }
func tauHNap(v float64) float64 {
	return (1.0 / (alphaHNap(v) + betaHNap(v))) / qt10(21.0)
}

// --- Kv2: delayed rectifier K+ with two inactivation components ---

func alphaMKv2(v float64) float64 { return 0.12 * vtrap(-(v-43.0), 11.0) }
func betaMKv2(v float64) float64  { return 0.02 * math.Exp(-(v+1.27)/120.0) }

func infMKv2(v float64) float64 { return alphaMKv2(v) / (alphaMKv2(v) + betaMKv2(v)) }
func infHKv2(v float64) float64 { return 1.0 / (1.0 + math.Exp((v+58.0)/11.0)) }
func tauMKv2(v float64) float64 {
	return 2.5 * (1.0 / (qt10(21.0) * (alphaMKv2(v) + betaMKv2(v))))
}
func tauH1Kv2(v float64) float64 {
	return (360 + (1010+23.7*(v+54))*math.Exp(-((v+75)/48)*((v+75)/48))) / qt10(21.0)
}
func tauH2Kv2(v float64) float64 {
	return (2350 + 1380*math.Exp(-0.011*v) - 210*math.Exp(-0.03*v)) / qt10(21.0)
}

// --- Kv3: fast delayed rectifier K+, single activation gate ---

func infMKv3(v float64) float64 { return 1.0 / (1.0 + math.Exp((v-18.700)/-9.700)) }
func tauMKv3(v float64) float64 { return 0.2 * 20.000 / (1 + math.Exp((v-(-46.560))/-44.140)) }

// --- Kp: persistent K+ ---

func infMKp(v float64) float64 { return 1.0 / (1.0 + math.Exp(-(v-(-14.3))/14.6)) }
func infHKp(v float64) float64 { return 1.0 / (1.0 + math.Exp(-(v-(-54.0))/-11.0)) }
func tauMKp(v float64) float64 {
	qt := qt10(21.0)
	if v < -50.0 {
		return (1.25 + 175.03*math.Exp(-v*-0.026)) / qt
	}
	return (1.25 + 13*math.Exp(-v*0.026)) / qt
}
func tauHKp(v float64) float64 {
	qt := qt10(21.0)
	return (360.0 + (1010.0+24.0*(v-(-55.0)))*math.Exp(-((v-(-75.0))/48)*((v-(-75.0))/48.0))) / qt
}

// --- Kt: transient K+ ---

func infMKt(v float64) float64 { return 1.0 / (1.0 + math.Exp(-(v-(-47))/29.0)) }
func infHKt(v float64) float64 { return 1.0 / (1.0 + math.Exp(-(v+66.0)/-10.0)) }
func tauMKt(v float64) float64 {
	qt := qt10(21.0)
	return (0.34 + 0.92*math.Exp(-((v+71.0)/59.0)*((v+71.0)/59.0))) / qt
}
func tauHKt(v float64) float64 {
	qt := qt10(21.0)
	return (8.0 + 49.0*math.Exp(-((v+73.0)/23.0)*((v+73.0)/23.0))) / qt
}

// --- Kd: slow inactivating K+, voltage-independent taus ---

func infMKd(v float64) float64 { return 1.0 - 1.0/(1.0+math.Exp((v-(-43.0))/8.0)) }
func infHKd(v float64) float64 { return 1.0 / (1.0 + math.Exp((v-(-67.0))/7.3)) }
func tauMKd(float64) float64   { return 1.0 }
func tauHKd(float64) float64   { return 1500.0 }

// --- Im: muscarinic-sensitive K+, M-current ---

func alphaMIm(v float64) float64 { return 3.3e-3 * math.Exp(2.5*0.04*(v-(-35.0))) }
func betaMIm(v float64) float64  { return 3.3e-3 * math.Exp(-2.5*0.04*(v-(-35.0))) }
func infMIm(v float64) float64   { return alphaMIm(v) / (alphaMIm(v) + betaMIm(v)) }
func tauMIm(v float64) float64 {
	return (1.0 / (alphaMIm(v) + betaMIm(v))) / qt10(21.0)
}

// --- Imv2: second M-current kinetic variant ---

func alphaMImv2(v float64) float64 { return 0.007 * math.Exp((6.0*0.4*(v-(-48.0)))/26.12) }
func betaMImv2(v float64) float64  { return 0.007 * math.Exp((-6.0*(1.0-0.4)*(v-(-48.0)))/26.12) }
func infMImv2(v float64) float64   { return alphaMImv2(v) / (alphaMImv2(v) + betaMImv2(v)) }
func tauMImv2(v float64) float64 {
	return (15.0 + 1.0/(alphaMImv2(v)+betaMImv2(v))) / qt10(30.0)
}

// --- Ih: hyperpolarization-activated cation current ---

func alphaMIh(v float64) float64 { return 0.001 * 6.43 * vtrap(v+154.9, 11.9) }
func betaMIh(v float64) float64  { return 0.001 * 193.0 * math.Exp(v/33.1) }
func infMIh(v float64) float64   { return alphaMIh(v) / (alphaMIh(v) + betaMIh(v)) }
func tauMIh(v float64) float64   { return 1.0 / (alphaMIh(v) + betaMIh(v)) }

// --- SK: small-conductance Ca2+-activated K+, voltage-independent ---

func infZSK(ca float64) float64 {
	if ca < 1e-7 {
		ca += 1e-7
	}
	return 1.0 / (1.0 + math.Pow(0.00043/ca, 4.8))
}
func tauZSK() float64 { return 1.0 }

// --- CaHVA: high-voltage-activated Ca2+ ---

func alphaMCaHVA(v float64) float64 { return 0.055 * vtrap(-27.0-v, 3.8) }
func betaMCaHVA(v float64) float64  { return 0.94 * math.Exp((-75.0-v)/17.0) }
func infMCaHVA(v float64) float64   { return alphaMCaHVA(v) / (alphaMCaHVA(v) + betaMCaHVA(v)) }
func tauMCaHVA(v float64) float64   { return 1.0 / (alphaMCaHVA(v) + betaMCaHVA(v)) }

func alphaHCaHVA(v float64) float64 { return 0.000457 * math.Exp((-13.0-v)/50.0) }
func betaHCaHVA(v float64) float64  { return 0.0065 / (math.Exp((-v-15.0)/28.0) + 1.0) }
func infHCaHVA(v float64) float64   { return alphaHCaHVA(v) / (alphaHCaHVA(v) + betaHCaHVA(v)) }
func tauHCaHVA(v float64) float64   { return 1.0 / (alphaHCaHVA(v) + betaHCaHVA(v)) }

// --- CaLVA: low-voltage-activated (T-type) Ca2+ ---

func infMCaLVA(v float64) float64 {
	vNew := v + 10.0
	return 1.0 / (1.0 + math.Exp((vNew-(-30.0))/-6.0))
}
func infHCaLVA(v float64) float64 {
	vNew := v + 10.0
	return 1.0 / (1.0 + math.Exp((vNew-(-80.0))/6.4))
}
func tauMCaLVA(v float64) float64 {
	vNew := v + 10.0
	return (5.0 + 20.0/(1.0+math.Exp((vNew-(-25.0))/5.0))) / qt10(21.0)
}
func tauHCaLVA(v float64) float64 {
	vNew := v + 10.0
	return (20.0 + 50.0/(1.0+math.Exp((vNew-(-40.0))/7.0))) / qt10(21.0)
}
