// Copyright 2022 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package aceei

import (
	"slices"
)

// PerturbBudget returns the distinct budgets an agent can effectively hold
// within [initial-epsilon, initial+epsilon] at the given prices. Candidates
// are the attainable bundle price sums, walked in increasing order starting
// from the lower bound, capped at 2*epsilon/delta+1 entries. The lower bound
// is always the first candidate.
func PerturbBudget(inst Instance, agent int, initial float64, prices []float64, epsilon, delta float64) []float64 {
	maxCount := 2*epsilon/delta + 1
	low, high := initial-epsilon, initial+epsilon

	// only sums inside the window are kept
	var sums []float64
	for items := range bundles(inst.NumItems(), inst.AgentCapacity(agent)) {
		s := 0.0
		for _, j := range items {
			s += prices[j]
		}
		if s > low && s <= high {
			sums = append(sums, s)
		}
	}
	slices.Sort(sums)
	sums = slices.Compact(sums)

	budgets := []float64{low}
	for _, s := range sums {
		if s > high || float64(len(budgets)+1) > maxCount {
			break
		}
		if s > low {
			budgets = append(budgets, s)
			low = s
		}
	}
	return budgets
}
