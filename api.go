// Copyright 2022 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package aceei finds course allocations through an approximate competitive
// equilibrium from equal incomes (A-CEEI), optionally constrained to be
// envy-free up to tie-breaking (EF-TB).
package aceei

import (
	"context"
	"fmt"
)

// Instance is the read-only view of an allocation problem. Agents and items
// are addressed by index, their IDs stay stable for a whole run.
type Instance interface {
	NumAgents() int
	NumItems() int

	Agent(i int) string
	Item(j int) string

	AgentCapacity(i int) int
	ItemCapacity(j int) int

	// Valuation reports ok == false when the entry is missing.
	Valuation(i, j int) (v float64, ok bool)
}

// Allocator is the interface shared by allocation algorithms.
type Allocator interface {
	Allocate(ctx context.Context, inst Instance) (Allocation, error)
}

// Allocation maps agent ID to the IDs of its assigned items.
type Allocation map[string][]string

// Bundle marks the items of one candidate bundle.
type Bundle []bool

func (b Bundle) Size() int {
	n := 0
	for _, in := range b {
		if in {
			n++
		}
	}
	return n
}

// Assignment is the agent x item allocation matrix.
type Assignment [][]bool

// Demand holds, for every agent, the candidate budgets and the bundle the
// agent demands at each of them.
type Demand struct {
	Budgets [][]float64
	Bundles [][]Bundle
}

// EFTBMode selects which envy constraint the allocation optimizer enforces.
type EFTBMode int

const (
	NoEFTB EFTBMode = iota
	EFTB
	ContestedEFTB
)

var modeNames = [...]string{
	NoEFTB:        "none",
	EFTB:          "eftb",
	ContestedEFTB: "contested",
}

func (m EFTBMode) Valid() bool {
	return m >= NoEFTB && m <= ContestedEFTB
}

func (m EFTBMode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("EFTBMode(%d)", int(m))
	}
	return modeNames[m]
}

func ParseEFTBMode(s string) (EFTBMode, error) {
	for m, name := range modeNames {
		if name == s {
			return EFTBMode(m), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

func (m EFTBMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	return []byte(modeNames[m]), nil
}

func (m *EFTBMode) UnmarshalText(text []byte) error {
	v, err := ParseEFTBMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Result is a market-clearing outcome.
type Result struct {
	Allocation Allocation
	Assignment Assignment

	// Prices are the clearing prices, indexed like the instance items.
	Prices []float64
	// Budgets are the realized (perturbed) budgets, indexed like the agents.
	Budgets []float64

	Norm       float64
	Iterations int
}

// PriceOf returns the price of the item with the given ID.
func (r *Result) PriceOf(inst Instance, item string) (float64, bool) {
	for j := 0; j < inst.NumItems(); j++ {
		if inst.Item(j) == item {
			return r.Prices[j], true
		}
	}
	return 0, false
}

// BudgetOf returns the realized budget of the agent with the given ID.
func (r *Result) BudgetOf(inst Instance, agent string) (float64, bool) {
	for i := 0; i < inst.NumAgents(); i++ {
		if inst.Agent(i) == agent {
			return r.Budgets[i], true
		}
	}
	return 0, false
}

// IterationStats is reported to an Observer once per equilibrium iteration.
type IterationStats struct {
	Iteration  int
	Norm       float64
	Candidates int // total number of candidate budgets over all agents
	Converged  bool
}

// Observer receives progress of an equilibrium search. Implementations
// must be safe to call from the goroutine running Find.
type Observer interface {
	ObserveIteration(stats IterationStats)
	ObserveOptimize(seconds float64, err error)
}

func toAllocation(inst Instance, a Assignment) Allocation {
	alloc := make(Allocation, inst.NumAgents())
	for i := range a {
		items := []string{}
		for j, in := range a[i] {
			if in {
				items = append(items, inst.Item(j))
			}
		}
		alloc[inst.Agent(i)] = items
	}
	return alloc
}
