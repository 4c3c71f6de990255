// Copyright 2022 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package selection

import (
	"context"
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// Simplex is a branch-and-bound over LP relaxations solved by the simplex
// method. It minimizes the L1 norm of the floored excess demand.
//
// Each node restricts the options of every group. Its relaxation is
//
//	minimize  sum(over) + sum(under of unfloored resources)
//	s.t.      sum_k x[g,k]                     = 1    every group
//	          sum usage*x - over[c] + under[c] = cap  every resource
//	          x, over, under >= 0
//
// Conflicts stay out of the relaxation, so its size does not grow with
// them. Branching fixes the most fractional group to its largest option, or
// removes that option; an integral relaxation that violates a conflict is
// branched on one side of that conflict.
type Simplex struct {
	// MaxNodes bounds the number of explored nodes, 0 means no bound.
	MaxNodes int
	// Tol is the simplex tolerance and the integrality tolerance.
	Tol float64
}

const defaultTol = 1e-9

type lpNode struct {
	allowed [][]int
	bound   float64
}

func (s Simplex) Solve(ctx context.Context, p *Problem) (*Solution, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	tol := s.Tol
	if tol <= 0 {
		tol = defaultTol
	}

	root := lpNode{allowed: make([][]int, len(p.Usage))}
	for g, opts := range p.Usage {
		root.allowed[g] = make([]int, len(opts))
		for k := range opts {
			root.allowed[g][k] = k
		}
	}

	var (
		best    []int
		bestObj = math.Inf(1)
		nodes   int
		limited bool
	)
	stack := []lpNode{root}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.MaxNodes > 0 && nodes >= s.MaxNodes {
			limited = true
			break
		}
		nodes++

		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if nd.bound >= bestObj-tol {
			continue
		}

		if choice, fixed := fixedChoice(nd.allowed); fixed {
			if !p.Allowed(choice) {
				continue
			}
			if obj := absSum(p.Excess(choice)); obj < bestObj-tol {
				best, bestObj = choice, obj
			}
			continue
		}

		bound, x, cols, err := relax(p, nd.allowed, tol)
		switch {
		case errors.Is(err, lp.ErrInfeasible):
			continue
		case err != nil:
			// The relaxation gives no usable bound, branch on the first
			// open group instead.
			for g, opts := range nd.allowed {
				if len(opts) > 1 {
					stack = append(stack, branch(nd, g, opts[0], nd.bound)...)
					break
				}
			}
			continue
		}
		if bound >= bestObj-tol {
			continue
		}

		g, k, integral := pickBranch(nd.allowed, x, cols, tol)
		if integral {
			choice := make([]int, len(nd.allowed))
			for i, r := range cols {
				if x[i] > 0.5 {
					choice[r.Group] = r.Option
				}
			}
			if c, ok := p.violated(choice); ok {
				if ref, open := openSide(nd.allowed, c); open {
					stack = append(stack, branch(nd, ref.Group, ref.Option, bound)...)
				}
				continue
			}
			if obj := absSum(p.Excess(choice)); obj < bestObj-tol {
				best, bestObj = choice, obj
			}
			continue
		}
		stack = append(stack, branch(nd, g, k, bound)...)
	}

	if best == nil {
		if limited {
			return nil, ErrNodeLimit
		}
		return nil, ErrInfeasible
	}
	return &Solution{
		Choice:    best,
		Excess:    p.Excess(best),
		Objective: bestObj,
		Nodes:     nodes,
		Exact:     !limited,
	}, nil
}

func fixedChoice(allowed [][]int) ([]int, bool) {
	choice := make([]int, len(allowed))
	for g, opts := range allowed {
		if len(opts) != 1 {
			return nil, false
		}
		choice[g] = opts[0]
	}
	return choice, true
}

// openSide returns the side of c whose group still has other options. Both
// sides being fixed means no completion of the node avoids c.
func openSide(allowed [][]int, c Conflict) (Ref, bool) {
	switch {
	case len(allowed[c.A.Group]) > 1:
		return c.A, true
	case len(allowed[c.B.Group]) > 1:
		return c.B, true
	}
	return Ref{}, false
}

// branch returns the children of nd on option k of group g. The child
// fixing k is last so it is explored first.
func branch(nd lpNode, g, k int, bound float64) []lpNode {
	without := make([]int, 0, len(nd.allowed[g])-1)
	for _, o := range nd.allowed[g] {
		if o != k {
			without = append(without, o)
		}
	}
	return []lpNode{
		{allowed: restrict(nd.allowed, g, without), bound: bound},
		{allowed: restrict(nd.allowed, g, []int{k}), bound: bound},
	}
}

func restrict(allowed [][]int, g int, opts []int) [][]int {
	next := make([][]int, len(allowed))
	copy(next, allowed)
	next[g] = opts
	return next
}

// pickBranch chooses the open group whose largest value is smallest and
// returns that largest option.
func pickBranch(allowed [][]int, x []float64, cols []Ref, tol float64) (group, option int, integral bool) {
	top := make([]float64, len(allowed))
	arg := make([]int, len(allowed))
	for g := range top {
		top[g] = -1
	}
	for i, r := range cols {
		if x[i] > top[r.Group] {
			top[r.Group], arg[r.Group] = x[i], r.Option
		}
	}

	group, integral = -1, true
	lowest := math.Inf(1)
	for g, v := range top {
		if v >= 1-tol {
			continue
		}
		integral = false
		if v < lowest {
			group, lowest = g, v
		}
	}
	if integral {
		return -1, -1, true
	}
	return group, arg[group], false
}

// relax solves the LP relaxation of a node. cols maps the first len(cols)
// entries of x to options.
func relax(p *Problem, allowed [][]int, tol float64) (float64, []float64, []Ref, error) {
	nGroups, nRes := len(allowed), len(p.Capacity)

	var cols []Ref
	for g, opts := range allowed {
		for _, k := range opts {
			cols = append(cols, Ref{Group: g, Option: k})
		}
	}

	nx := len(cols)
	overAt := nx
	underAt := overAt + nRes
	nVars := underAt + nRes
	nRows := nGroups + nRes

	c := make([]float64, nVars)
	a := mat.NewDense(nRows, nVars, nil)
	b := make([]float64, nRows)

	for i, r := range cols {
		a.Set(r.Group, i, 1)
		for res, u := range p.Usage[r.Group][r.Option] {
			if u != 0 {
				a.Set(nGroups+res, i, u)
			}
		}
	}
	for g := 0; g < nGroups; g++ {
		b[g] = 1
	}
	for res := 0; res < nRes; res++ {
		row := nGroups + res
		a.Set(row, overAt+res, -1)
		a.Set(row, underAt+res, 1)
		b[row] = p.Capacity[res]
		c[overAt+res] = 1
		if !p.Floor[res] {
			c[underAt+res] = 1
		}
	}

	opt, x, err := lp.Simplex(c, a, b, tol, nil)
	if err != nil {
		return 0, nil, nil, err
	}
	return opt, x, cols, nil
}
