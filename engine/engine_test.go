// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numericalbrain/neulite-go/conn"
	"github.com/numericalbrain/neulite-go/ionchan"
	"github.com/numericalbrain/neulite-go/neuron"
	"github.com/numericalbrain/neulite-go/population"
	"github.com/numericalbrain/neulite-go/synapse"
)

// singleSomaPop builds a one-population, one-neuron, one-compartment
// Store directly (bypassing CSV loading) so engine tests don't depend
// on fixture files -- a minimal isopotential soma with a standard
// pyramidal-like passive parameter set and a small Na-fast/K-delayed
// active set, matching spec.md's scenario S3 in miniature.
func singleSomaPop(t *testing.T) *population.Store {
	t.Helper()
	p := &population.Store{
		NNeuron: []int{1},
		NComp:   []int{1},
		Cid:     []int{0, 1},
		StartPid: 0, EndPid: 1,
		GlobalNNeurons: 1,
		Rad:            []float64{5e-4},
		Len:            []float64{5e-4},
		Area:           []float64{3.14e-6},
		Parent:         []int{-1},
		Type:           []population.CompType{population.Soma},
		Cm:             []float64{1e-6},
		Ra:             []float64{0.1},
		Gl:             []float64{3e-7},
		Vl:             []float64{-70.0},
		Gamma:          [][population.CompTypeN]float64{{0.05, 0, 0, 0}},
		Decay:          [][population.CompTypeN]float64{{80.0, 0, 0, 0}},
		Gbar:           make([]float64, population.NGbar),
	}
	p.Gbar[ionchan.GNaTs] = 0.05
	p.Gbar[ionchan.GKv3] = 0.02
	require.NoError(t, p.Validate())
	return p
}

func newEngineFixture(t *testing.T) (*Engine, *neuron.State) {
	t.Helper()
	pop := singleSomaPop(t)
	neur := neuron.New(pop)
	ion := ionchan.New(neur.NNeurons())
	for i := 0; i < neur.NNeurons(); i++ {
		ionchan.InitSteadyState(ion.Row(i), neur.V[neur.Soma(i)], neur.Ca[neur.Soma(i)])
	}
	table := &conn.Table{NPost: 1, PtrPost: []int{0, 0}}
	syn := synapse.New(table)
	eng := New(pop, neur, ion, table, syn, 1)
	return eng, neur
}

// TestTickKeepsAdPositive checks invariant 4 from spec.md §8: Ad[k] > 0
// for every compartment at every tick.
func TestTickKeepsAdPositive(t *testing.T) {
	eng, neur := newEngineFixture(t)
	for tick := 0; tick < 200; tick++ {
		eng.Tick(0.1)
		for _, ad := range eng.Mats[0].Ad {
			assert.Greaterf(t, ad, 0.0, "tick %d", tick)
		}
	}
	assert.False(t, math.IsNaN(neur.V[neur.Soma(0)]))
}

// TestTickStableAtRestWithNoInput checks that an isolated soma with no
// injected current and no synaptic input stays near its leak reversal
// potential rather than drifting or diverging.
func TestTickStableAtRestWithNoInput(t *testing.T) {
	eng, neur := newEngineFixture(t)
	for tick := 0; tick < 500; tick++ {
		eng.Tick(0.1)
	}
	v := neur.V[neur.Soma(0)]
	assert.False(t, math.IsNaN(v))
	assert.InDelta(t, -70.0, v, 15.0)
}
