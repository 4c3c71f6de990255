// Copyright 2022 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package course provides course-allocation instances for aceei.
package course

// Problem is the file form of a course-allocation problem.
type Problem struct {
	// Valuations[student][course]
	Valuations map[string]map[string]float64 `json:"valuations" yaml:"valuations"`

	// AgentCapacity applies to students missing from AgentCapacities.
	AgentCapacity   int            `json:"agent_capacity,omitempty" yaml:"agent_capacity,omitempty"`
	AgentCapacities map[string]int `json:"agent_capacities,omitempty" yaml:"agent_capacities,omitempty"`

	// ItemCapacity applies to courses missing from ItemCapacities.
	ItemCapacity   int            `json:"item_capacity,omitempty" yaml:"item_capacity,omitempty"`
	ItemCapacities map[string]int `json:"item_capacities,omitempty" yaml:"item_capacities,omitempty"`

	Budgets map[string]float64 `json:"budgets,omitempty" yaml:"budgets,omitempty"`
}

type Assignment struct {
	Student string   `json:"student" yaml:"student"`
	Courses []string `json:"courses" yaml:"courses"`
	Budget  float64  `json:"budget" yaml:"budget"`
}

type Price struct {
	Course string  `json:"course" yaml:"course"`
	Price  float64 `json:"price" yaml:"price"`
}

// Outcome is the file form of a solved problem.
type Outcome struct {
	Converged   bool         `json:"converged" yaml:"converged"`
	Iterations  int          `json:"iterations" yaml:"iterations"`
	Residual    float64      `json:"residual" yaml:"residual"`
	Assignments []Assignment `json:"assignments" yaml:"assignments"`
	Prices      []Price      `json:"prices" yaml:"prices"`
}
