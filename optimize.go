// Copyright 2022 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package aceei

import (
	"context"
	"errors"
	"fmt"

	"github.com/someonegg/aceei/selection"
)

// Optimizer picks one candidate bundle per agent from a demand matrix.
type Optimizer interface {
	Optimize(ctx context.Context, inst Instance, demand *Demand, prices, initial []float64, mode EFTBMode) (*Step, error)
}

// Step is the outcome of one optimizer call.
type Step struct {
	// Choice[i] indexes the candidate budget selected for agent i.
	Choice     []int
	Budgets    []float64
	Assignment Assignment

	Excess  []float64
	Clipped []float64
	Norm    float64
}

// LPOptimizer reduces the optimizer step to a selection problem: agents are
// groups, candidate budgets are options, and envy constraints become
// conflicting option pairs.
type LPOptimizer struct {
	Solver selection.Solver // nil means selection.Exhaustive{}
}

func (o LPOptimizer) Optimize(ctx context.Context, inst Instance, demand *Demand, prices, initial []float64, mode EFTBMode) (*Step, error) {
	p, err := buildProblem(inst, demand, prices, initial, mode)
	if err != nil {
		return nil, err
	}

	solver := o.Solver
	if solver == nil {
		solver = selection.Exhaustive{}
	}
	sol, err := solver.Solve(ctx, p)
	if err != nil {
		if errors.Is(err, selection.ErrInfeasible) {
			return nil, fmt.Errorf("%w (%s): %w", ErrInfeasible, mode, err)
		}
		return nil, err
	}

	n := inst.NumAgents()
	step := &Step{
		Choice:     sol.Choice,
		Budgets:    make([]float64, n),
		Assignment: make(Assignment, n),
	}
	for i, k := range sol.Choice {
		step.Budgets[i] = demand.Budgets[i][k]
		step.Assignment[i] = append(Bundle(nil), demand.Bundles[i][k]...)
	}
	step.Excess = ExcessDemand(inst, step.Assignment)
	step.Clipped = clip(step.Excess, prices)
	step.Norm = Norm(step.Clipped)
	return step, nil
}

func buildProblem(inst Instance, demand *Demand, prices, initial []float64, mode EFTBMode) (*selection.Problem, error) {
	n, m := inst.NumAgents(), inst.NumItems()
	p := &selection.Problem{
		Usage:    make([][][]float64, n),
		Capacity: make([]float64, m),
		Floor:    make([]bool, m),
	}
	for j := 0; j < m; j++ {
		p.Capacity[j] = float64(inst.ItemCapacity(j))
		p.Floor[j] = prices[j] == 0
	}
	for i := 0; i < n; i++ {
		p.Usage[i] = make([][]float64, len(demand.Bundles[i]))
		for k, b := range demand.Bundles[i] {
			u := make([]float64, m)
			for j, in := range b {
				if in {
					u[j] = 1
				}
			}
			p.Usage[i][k] = u
		}
	}

	switch mode {
	case NoEFTB:
	case EFTB:
		conflicts, err := envyConflicts(inst, demand, initial, func(Bundle) bool { return true })
		if err != nil {
			return nil, err
		}
		p.Conflicts = conflicts
	case ContestedEFTB:
		contested := func(b Bundle) bool {
			for j, in := range b {
				if in && prices[j] > 0 {
					return true
				}
			}
			return false
		}
		conflicts, err := envyConflicts(inst, demand, initial, contested)
		if err != nil {
			return nil, err
		}
		p.Conflicts = conflicts
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(mode))
	}
	return p, nil
}

// envyConflicts forbids agent i, whose initial budget is strictly larger
// than agent j's, from ending with a bundle it values below a bundle j
// ends with. Equal initial budgets break the tie and carry no constraint.
// counts restricts which bundles of j can be envied.
func envyConflicts(inst Instance, demand *Demand, initial []float64, counts func(Bundle) bool) ([]selection.Conflict, error) {
	n := inst.NumAgents()
	var conflicts []selection.Conflict
	for i := 0; i < n; i++ {
		own := make([]float64, len(demand.Bundles[i]))
		for k, b := range demand.Bundles[i] {
			v, err := bundleValue(inst, i, b)
			if err != nil {
				return nil, err
			}
			own[k] = v
		}
		for j := 0; j < n; j++ {
			if j == i || initial[i] <= initial[j] {
				continue
			}
			for l, other := range demand.Bundles[j] {
				if !counts(other) {
					continue
				}
				v, err := bundleValue(inst, i, other)
				if err != nil {
					return nil, err
				}
				for k := range own {
					if v > own[k] {
						conflicts = append(conflicts, selection.Conflict{
							A: selection.Ref{Group: i, Option: k},
							B: selection.Ref{Group: j, Option: l},
						})
					}
				}
			}
		}
	}
	return conflicts, nil
}

// bundleValue is the agent's summed valuation of a bundle.
func bundleValue(inst Instance, agent int, b Bundle) (float64, error) {
	v := 0.0
	for j, in := range b {
		if !in {
			continue
		}
		u, ok := inst.Valuation(agent, j)
		if !ok {
			return 0, fmt.Errorf("%w: agent %s, item %s", ErrMissingValuation, inst.Agent(agent), inst.Item(j))
		}
		v += u
	}
	return v, nil
}
