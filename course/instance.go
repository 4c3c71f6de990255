// Copyright 2022 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package course

import (
	"errors"
	"fmt"
	"sort"

	"github.com/someonegg/aceei"
)

var ErrIncomplete = errors.New("course: incomplete problem")

// Instance is an immutable aceei.Instance. Students and courses are
// ordered by ID.
type Instance struct {
	students []string
	courses  []string

	studentCap []int
	courseCap  []int

	values  [][]float64
	present [][]bool
}

var _ aceei.Instance = (*Instance)(nil)

func (in *Instance) NumAgents() int { return len(in.students) }
func (in *Instance) NumItems() int  { return len(in.courses) }

func (in *Instance) Agent(i int) string { return in.students[i] }
func (in *Instance) Item(j int) string  { return in.courses[j] }

func (in *Instance) AgentCapacity(i int) int { return in.studentCap[i] }
func (in *Instance) ItemCapacity(j int) int  { return in.courseCap[j] }

func (in *Instance) Valuation(i, j int) (float64, bool) {
	return in.values[i][j], in.present[i][j]
}

// Instance builds the instance described by p. Courses are those valued by
// any student or given a capacity. A course a student does not value is
// left missing, which aceei rejects.
func (p *Problem) Instance() (*Instance, error) {
	if len(p.Valuations) == 0 {
		return nil, fmt.Errorf("%w: no valuations", ErrIncomplete)
	}

	courseSet := make(map[string]struct{})
	for _, vals := range p.Valuations {
		for c := range vals {
			courseSet[c] = struct{}{}
		}
	}
	for c := range p.ItemCapacities {
		courseSet[c] = struct{}{}
	}

	in := &Instance{
		students: sortedKeys(p.Valuations),
		courses:  sortedKeys(courseSet),
	}

	in.studentCap = make([]int, len(in.students))
	for i, s := range in.students {
		c, ok := p.AgentCapacities[s]
		if !ok {
			c = p.AgentCapacity
		}
		if c == 0 {
			return nil, fmt.Errorf("%w: no capacity for student %s", ErrIncomplete, s)
		}
		in.studentCap[i] = c
	}

	in.courseCap = make([]int, len(in.courses))
	for j, c := range in.courses {
		n, ok := p.ItemCapacities[c]
		if !ok {
			n = p.ItemCapacity
		}
		if n == 0 {
			return nil, fmt.Errorf("%w: no capacity for course %s", ErrIncomplete, c)
		}
		in.courseCap[j] = n
	}

	in.values = make([][]float64, len(in.students))
	in.present = make([][]bool, len(in.students))
	for i, s := range in.students {
		in.values[i] = make([]float64, len(in.courses))
		in.present[i] = make([]bool, len(in.courses))
		for j, c := range in.courses {
			in.values[i][j], in.present[i][j] = p.Valuations[s][c]
		}
	}
	return in, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewOutcome converts a search result for in into its file form.
func NewOutcome(in aceei.Instance, res *aceei.Result, converged bool) *Outcome {
	out := &Outcome{
		Converged:   converged,
		Iterations:  res.Iterations,
		Residual:    res.Norm,
		Assignments: make([]Assignment, in.NumAgents()),
		Prices:      make([]Price, in.NumItems()),
	}
	for i := range out.Assignments {
		s := in.Agent(i)
		out.Assignments[i] = Assignment{
			Student: s,
			Courses: res.Allocation[s],
			Budget:  res.Budgets[i],
		}
	}
	for j := range out.Prices {
		out.Prices[j] = Price{Course: in.Item(j), Price: res.Prices[j]}
	}
	return out
}
