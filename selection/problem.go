// Copyright 2022 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package selection solves multiple-choice selection problems: every group
// picks exactly one of its options, options consume capacity-limited
// resources, and some option pairs may not be picked together. Solvers
// minimize the resulting excess demand.
package selection

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var (
	ErrInfeasible = errors.New("selection: no selection satisfies the conflicts")
	ErrNodeLimit  = errors.New("selection: node limit reached without a selection")
	ErrBadProblem = errors.New("selection: malformed problem")
)

type Solver interface {
	Solve(ctx context.Context, p *Problem) (*Solution, error)
}

// Ref names option Option of group Group.
type Ref struct {
	Group  int
	Option int
}

// Conflict forbids selecting A and B together.
type Conflict struct {
	A, B Ref
}

type Problem struct {
	// Usage[g][k][c] is the amount of resource c used by option k of group g.
	Usage [][][]float64
	// Capacity[c] is the supply of resource c.
	Capacity []float64
	// Floor marks resources whose negative excess counts as zero.
	Floor []bool

	Conflicts []Conflict
}

type Solution struct {
	Choice []int
	// Excess is the excess demand of the selection, floored where Floor is set.
	Excess []float64
	// Objective is the value the solver minimized.
	Objective float64
	Nodes     int
	// Exact is false when a node limit cut the search short.
	Exact bool
}

func (p *Problem) Validate() error {
	m := len(p.Capacity)
	if len(p.Floor) != m {
		return fmt.Errorf("%w: %d floor flags for %d resources", ErrBadProblem, len(p.Floor), m)
	}
	for g, opts := range p.Usage {
		if len(opts) == 0 {
			return fmt.Errorf("%w: group %d has no option", ErrBadProblem, g)
		}
		for k, u := range opts {
			if len(u) != m {
				return fmt.Errorf("%w: option %d of group %d uses %d resources, want %d",
					ErrBadProblem, k, g, len(u), m)
			}
			for _, v := range u {
				if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
					return fmt.Errorf("%w: option %d of group %d has usage %v", ErrBadProblem, k, g, v)
				}
			}
		}
	}
	for _, c := range p.Conflicts {
		if !p.valid(c.A) || !p.valid(c.B) {
			return fmt.Errorf("%w: conflict %v refers to a missing option", ErrBadProblem, c)
		}
	}
	return nil
}

func (p *Problem) valid(r Ref) bool {
	return r.Group >= 0 && r.Group < len(p.Usage) &&
		r.Option >= 0 && r.Option < len(p.Usage[r.Group])
}

// Excess returns the floored excess demand of a complete selection.
func (p *Problem) Excess(choice []int) []float64 {
	z := make([]float64, len(p.Capacity))
	for g, k := range choice {
		for c, u := range p.Usage[g][k] {
			z[c] += u
		}
	}
	for c := range z {
		z[c] -= p.Capacity[c]
		if p.Floor[c] && z[c] < 0 {
			z[c] = 0
		}
	}
	return z
}

// Allowed reports whether a complete selection violates no conflict.
func (p *Problem) Allowed(choice []int) bool {
	_, bad := p.violated(choice)
	return !bad
}

// violated returns the first conflict a complete selection violates.
func (p *Problem) violated(choice []int) (Conflict, bool) {
	for _, c := range p.Conflicts {
		if c.A.Group == c.B.Group {
			continue
		}
		if choice[c.A.Group] == c.A.Option && choice[c.B.Group] == c.B.Option {
			return c, true
		}
	}
	return Conflict{}, false
}

// crossConflicts indexes conflicts between different groups by the
// option of the later group.
func (p *Problem) crossConflicts() [][][]Ref {
	idx := make([][][]Ref, len(p.Usage))
	for g := range idx {
		idx[g] = make([][]Ref, len(p.Usage[g]))
	}
	for _, c := range p.Conflicts {
		a, b := c.A, c.B
		if a.Group == b.Group {
			continue
		}
		if a.Group > b.Group {
			a, b = b, a
		}
		idx[b.Group][b.Option] = append(idx[b.Group][b.Option], a)
	}
	return idx
}

func absSum(z []float64) float64 {
	s := 0.0
	for _, v := range z {
		s += math.Abs(v)
	}
	return s
}
