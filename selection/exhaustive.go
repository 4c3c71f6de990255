// Copyright 2022 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package selection

import (
	"context"
	"math"
)

// Exhaustive is an exact depth-first branch-and-bound. It minimizes the
// squared Euclidean norm of the floored excess demand; among equal
// selections the lexicographically first one wins.
type Exhaustive struct {
	// MaxNodes bounds the number of visited nodes, 0 means no bound.
	MaxNodes int
}

const ctxCheckEvery = 4096

type dfs struct {
	ctx context.Context
	p   *Problem

	// rest[g][c] is the largest amount of c groups g.. can still add.
	rest  [][]float64
	cross [][][]Ref

	choice []int
	load   []float64

	best    []int
	bestObj float64

	nodes    int
	maxNodes int
	limited  bool
	err      error
}

func (s Exhaustive) Solve(ctx context.Context, p *Problem) (*Solution, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	n, m := len(p.Usage), len(p.Capacity)
	e := &dfs{
		ctx:      ctx,
		p:        p,
		rest:     make([][]float64, n+1),
		cross:    p.crossConflicts(),
		choice:   make([]int, n),
		load:     make([]float64, m),
		bestObj:  math.Inf(1),
		maxNodes: s.MaxNodes,
	}
	e.rest[n] = make([]float64, m)
	for g := n - 1; g >= 0; g-- {
		e.rest[g] = make([]float64, m)
		for c := 0; c < m; c++ {
			most := 0.0
			for _, u := range p.Usage[g] {
				most = math.Max(most, u[c])
			}
			e.rest[g][c] = e.rest[g+1][c] + most
		}
	}

	e.visit(0)

	if e.err != nil {
		return nil, e.err
	}
	if e.best == nil {
		if e.limited {
			return nil, ErrNodeLimit
		}
		return nil, ErrInfeasible
	}
	return &Solution{
		Choice:    e.best,
		Excess:    p.Excess(e.best),
		Objective: e.bestObj,
		Nodes:     e.nodes,
		Exact:     !e.limited,
	}, nil
}

// visit returns false once the search must stop.
func (e *dfs) visit(g int) bool {
	e.nodes++
	if e.nodes%ctxCheckEvery == 0 {
		if err := e.ctx.Err(); err != nil {
			e.err = err
			return false
		}
	}
	if e.maxNodes > 0 && e.nodes > e.maxNodes {
		e.limited = true
		return false
	}

	if g == len(e.p.Usage) {
		obj := e.objective()
		if obj < e.bestObj {
			e.bestObj = obj
			e.best = append(make([]int, 0, len(e.choice)), e.choice...)
		}
		return obj > 0
	}

	if e.bound(g) >= e.bestObj {
		return true
	}

	for k, u := range e.p.Usage[g] {
		if e.blocked(g, k) {
			continue
		}
		e.choice[g] = k
		for c, v := range u {
			e.load[c] += v
		}
		cont := e.visit(g + 1)
		for c, v := range u {
			e.load[c] -= v
		}
		if !cont {
			return false
		}
	}
	return true
}

func (e *dfs) blocked(g, k int) bool {
	for _, r := range e.cross[g][k] {
		if e.choice[r.Group] == r.Option {
			return true
		}
	}
	return false
}

func (e *dfs) objective() float64 {
	obj := 0.0
	for c, l := range e.load {
		z := l - e.p.Capacity[c]
		if e.p.Floor[c] && z < 0 {
			z = 0
		}
		obj += z * z
	}
	return obj
}

// bound is a lower bound on the objective of any completion of the first
// g choices: overflow can only grow, and a deficit can shrink at most by
// what the remaining groups may still add.
func (e *dfs) bound(g int) float64 {
	lb := 0.0
	for c, l := range e.load {
		supply := e.p.Capacity[c]
		if l > supply {
			lb += (l - supply) * (l - supply)
			continue
		}
		if e.p.Floor[c] {
			continue
		}
		if d := supply - l - e.rest[g][c]; d > 0 {
			lb += d * d
		}
	}
	return lb
}
