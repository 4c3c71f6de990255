// Copyright 2022 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package aceei

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBestBundle(t *testing.T) {
	inst := aviBeni()

	tests := []struct {
		name   string
		agent  int
		prices []float64
		budget float64
		want   []string
	}{
		{"FreeCourses", 0, []float64{0, 0, 0}, 1.5, []string{"y", "z"}},
		{"FreeCoursesBeni", 1, []float64{0, 0, 0}, 2.5, []string{"x", "y"}},
		{"PricedOut", 0, []float64{0, 2, 0}, 1.5, []string{"x", "z"}},
		{"ExactBudget", 0, []float64{0, 2, 0}, 2, []string{"y", "z"}},
		{"OnlySingle", 0, []float64{3, 3, 1}, 1.5, []string{"z"}},
		{"NothingAffordable", 0, []float64{5, 5, 5}, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BestBundle(inst, tt.agent, tt.prices, tt.budget)
			require.NoError(t, err)
			assert.Equal(t, bundleOf(inst, tt.want...), got)
		})
	}
}

func TestBestBundle_PrefersFillingCapacity(t *testing.T) {
	inst := makeTable(map[string]map[string]float64{
		"solo": {"x": 10, "y": 0, "z": 0},
	}, 2, map[string]int{"x": 1, "y": 1, "z": 1})

	got, err := BestBundle(inst, 0, []float64{0, 0, 0}, 1)
	require.NoError(t, err)
	assert.Equal(t, bundleOf(inst, "x", "y"), got)
	assert.Equal(t, 2, got.Size())
}

func TestBestBundle_CapacityAboveItemCount(t *testing.T) {
	inst := makeTable(map[string]map[string]float64{
		"greedy": {"x": 1, "y": 2},
	}, 4, map[string]int{"x": 3, "y": 3})

	got, err := BestBundle(inst, 0, []float64{1, 1}, 2)
	require.NoError(t, err)
	assert.Equal(t, bundleOf(inst, "x", "y"), got)
}

func TestBestBundle_MissingValuation(t *testing.T) {
	inst := makeTable(map[string]map[string]float64{
		"avi": {"x": 1, "y": 2},
	}, 2, map[string]int{"x": 1, "y": 1, "z": 2})

	_, err := BestBundle(inst, 0, []float64{0, 0, 0}, 1)
	assert.ErrorIs(t, err, ErrMissingValuation)
}

func TestDemandMatrix(t *testing.T) {
	inst := aviBeni()
	initial := []float64{2, 3}
	prices := []float64{0, 2, 0}

	d, err := DemandMatrix(context.Background(), inst, initial, prices, 0.5, 0.5, 0)
	require.NoError(t, err)

	assert.Equal(t, [][]float64{{1.5, 2}, {2.5}}, d.Budgets)
	assert.Equal(t, []Bundle{bundleOf(inst, "x", "z"), bundleOf(inst, "y", "z")}, d.Bundles[0])
	assert.Equal(t, []Bundle{bundleOf(inst, "x", "y")}, d.Bundles[1])

	serial, err := DemandMatrix(context.Background(), inst, initial, prices, 0.5, 0.5, 1)
	require.NoError(t, err)
	assert.Equal(t, d, serial)
}

func TestDemandMatrix_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DemandMatrix(ctx, aviBeni(), []float64{2, 3}, []float64{0, 0, 0}, 0.5, 0.5, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
