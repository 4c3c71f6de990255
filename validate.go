// Copyright 2022 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package aceei

import (
	"fmt"
	"math"
)

// ValidateParams rejects perturbation parameters the search cannot use.
func ValidateParams(delta, epsilon float64) error {
	if math.IsNaN(delta) || math.IsInf(delta, 0) || delta <= 0 {
		return fmt.Errorf("%w: delta %v must be positive", ErrBadParameter, delta)
	}
	if math.IsNaN(epsilon) || math.IsInf(epsilon, 0) || epsilon < 0 {
		return fmt.Errorf("%w: epsilon %v must not be negative", ErrBadParameter, epsilon)
	}
	return nil
}

// ValidateInstance checks capacities and valuations before a search.
func ValidateInstance(inst Instance) error {
	n, m := inst.NumAgents(), inst.NumItems()
	if n == 0 || m == 0 {
		return fmt.Errorf("%w: %d agents, %d items", ErrInfeasibleInstance, n, m)
	}

	total := 0
	for j := 0; j < m; j++ {
		c := inst.ItemCapacity(j)
		if c <= 0 {
			return fmt.Errorf("%w: item %s has capacity %d", ErrInfeasibleInstance, inst.Item(j), c)
		}
		total += c
	}

	for i := 0; i < n; i++ {
		c := inst.AgentCapacity(i)
		if c <= 0 {
			return fmt.Errorf("%w: agent %s has capacity %d", ErrInfeasibleInstance, inst.Agent(i), c)
		}
		if c > total {
			return fmt.Errorf("%w: agent %s capacity %d exceeds total item capacity %d",
				ErrInfeasibleInstance, inst.Agent(i), c, total)
		}
		for j := 0; j < m; j++ {
			v, ok := inst.Valuation(i, j)
			if !ok {
				return fmt.Errorf("%w: agent %s, item %s", ErrMissingValuation, inst.Agent(i), inst.Item(j))
			}
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return fmt.Errorf("%w: agent %s values item %s at %v",
					ErrInfeasibleInstance, inst.Agent(i), inst.Item(j), v)
			}
		}
	}
	return nil
}

// resolveBudgets orders the initial budgets like the instance agents.
func resolveBudgets(inst Instance, budgets map[string]float64) ([]float64, error) {
	b := make([]float64, inst.NumAgents())
	for i := range b {
		v, ok := budgets[inst.Agent(i)]
		if !ok {
			return nil, fmt.Errorf("%w: agent %s", ErrMissingBudget, inst.Agent(i))
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: agent %s has budget %v", ErrBadParameter, inst.Agent(i), v)
		}
		b[i] = v
	}
	return b, nil
}
