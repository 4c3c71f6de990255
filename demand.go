// Copyright 2022 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package aceei

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// BestBundle returns the bundle the agent demands with the given budget:
// among affordable bundles of at most the agent's capacity, bundles that
// fill the capacity come first, then higher summed valuation, then earlier
// enumeration order. The bundle is empty when nothing is affordable.
func BestBundle(inst Instance, agent int, prices []float64, budget float64) (Bundle, error) {
	m := inst.NumItems()

	values := make([]float64, m)
	for j := range values {
		v, ok := inst.Valuation(agent, j)
		if !ok {
			return nil, fmt.Errorf("%w: agent %s, item %s", ErrMissingValuation, inst.Agent(agent), inst.Item(j))
		}
		values[j] = v
	}

	fill := fillSize(inst, agent)
	var (
		best      []int
		bestFills bool
		bestValue = math.Inf(-1)
	)
	for items := range bundles(m, inst.AgentCapacity(agent)) {
		cost, value := 0.0, 0.0
		for _, j := range items {
			cost += prices[j]
			value += values[j]
		}
		if cost > budget {
			continue
		}
		fills := len(items) == fill
		if best != nil && !(fills && !bestFills || fills == bestFills && value > bestValue) {
			continue
		}
		best = append(best[:0], items...)
		bestFills, bestValue = fills, value
	}

	b := make(Bundle, m)
	for _, j := range best {
		b[j] = true
	}
	return b, nil
}

// AgentDemand computes the candidate budgets of one agent and the bundle
// demanded at each of them.
func AgentDemand(inst Instance, agent int, initial float64, prices []float64, epsilon, delta float64) ([]float64, []Bundle, error) {
	budgets := PerturbBudget(inst, agent, initial, prices, epsilon, delta)
	bundles := make([]Bundle, len(budgets))
	for k, budget := range budgets {
		b, err := BestBundle(inst, agent, prices, budget)
		if err != nil {
			return nil, nil, err
		}
		bundles[k] = b
	}
	return budgets, bundles, nil
}

// DemandMatrix runs AgentDemand for every agent, at most workers at a time
// (workers <= 0 means no limit). Agents only share read-only inputs.
func DemandMatrix(ctx context.Context, inst Instance, initial, prices []float64, epsilon, delta float64, workers int) (*Demand, error) {
	n := inst.NumAgents()
	d := &Demand{
		Budgets: make([][]float64, n),
		Bundles: make([][]Bundle, n),
	}

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			budgets, bundles, err := AgentDemand(inst, i, initial[i], prices, epsilon, delta)
			if err != nil {
				return err
			}
			d.Budgets[i], d.Bundles[i] = budgets, bundles
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}
