// Copyright 2022 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package aceei

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerturbBudget(t *testing.T) {
	twoStudents := makeTable(map[string]map[string]float64{
		"Alice": {"x": 5, "y": 5, "z": 1},
		"Bob":   {"x": 4, "y": 6, "z": 4},
	}, 2, map[string]int{"x": 1, "y": 2, "z": 2})
	threeStudents := makeTable(map[string]map[string]float64{
		"Alice": {"x": 5, "y": 5, "z": 1},
		"Bob":   {"x": 4, "y": 6, "z": 4},
		"Eve":   {"x": 4, "y": 6, "z": 4},
	}, 2, map[string]int{"x": 1, "y": 2, "z": 3})

	tests := []struct {
		name    string
		inst    *table
		agent   int
		initial float64
		prices  []float64
		epsilon float64
		delta   float64
		want    []float64
	}{
		{"Alice", twoStudents, 0, 5, []float64{1, 2, 3}, 2, 0.5, []float64{3, 4, 5}},
		{"Bob", twoStudents, 1, 4, []float64{1, 2, 3}, 2, 0.5, []float64{2, 3, 4, 5}},
		{"AliceSpread", threeStudents, 0, 5, []float64{1, 3, 5}, 2, 0.5, []float64{3, 4, 5, 6}},
		{"BobSpread", threeStudents, 1, 4, []float64{1, 3, 5}, 2, 0.5, []float64{2, 3, 4, 5, 6}},
		{"EveSpread", threeStudents, 2, 8, []float64{1, 3, 5}, 2, 0.5, []float64{6, 8}},
		{"Capped", twoStudents, 1, 4, []float64{1, 2, 3}, 2, 2, []float64{2, 3, 4}},
		{"NothingInRange", twoStudents, 0, 20, []float64{1, 2, 3}, 1, 0.5, []float64{19}},
		{"ZeroPrices", twoStudents, 0, 2, []float64{0, 0, 0}, 0.5, 0.5, []float64{1.5}},
		{"ZeroEpsilon", twoStudents, 0, 3, []float64{1, 2, 3}, 0, 0.5, []float64{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PerturbBudget(tt.inst, tt.agent, tt.initial, tt.prices, tt.epsilon, tt.delta)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPerturbBudget_WideMarket(t *testing.T) {
	values := make(map[string]float64)
	caps := make(map[string]int)
	prices := make([]float64, 12)
	for j := range prices {
		item := string(rune('a' + j))
		values[item], caps[item] = 1, 1
		prices[j] = float64(j + 1)
	}
	inst := makeTable(map[string]map[string]float64{"avi": values}, 2, caps)

	// 78 bundles, only sums 5 and 6 fall in (4, 6]
	assert.Equal(t, []float64{4, 5, 6}, PerturbBudget(inst, 0, 5, prices, 1, 0.5))
	assert.Equal(t, []float64{99}, PerturbBudget(inst, 0, 100, prices, 1, 0.5))
}

func TestPerturbBudget_Window(t *testing.T) {
	inst := aviBeni()
	prices := []float64{0.25, 0.75, 1.5}
	const epsilon, delta = 1.0, 0.25

	for i, initial := range []float64{2, 3} {
		got := PerturbBudget(inst, i, initial, prices, epsilon, delta)
		require.NotEmpty(t, got)
		assert.LessOrEqual(t, float64(len(got)), 2*epsilon/delta+1)
		assert.Equal(t, initial-epsilon, got[0])
		for k, b := range got {
			assert.GreaterOrEqual(t, b, initial-epsilon)
			assert.LessOrEqual(t, b, initial+epsilon)
			if k > 0 {
				assert.Greater(t, b, got[k-1], "candidates must increase")
			}
		}
	}
}

func TestBundles(t *testing.T) {
	var got [][]int
	for items := range bundles(3, 2) {
		got = append(got, append([]int(nil), items...))
	}
	assert.Equal(t, [][]int{{0}, {1}, {2}, {0, 1}, {0, 2}, {1, 2}}, got)

	// capacity larger than the item count stops at all items
	n := 0
	for range bundles(2, 5) {
		n++
	}
	assert.Equal(t, 3, n)

	// restartable
	count := func() int {
		c := 0
		for range bundles(4, 2) {
			c++
		}
		return c
	}
	assert.Equal(t, count(), count())
}
