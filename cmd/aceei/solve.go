// Copyright 2022 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/someonegg/aceei"
	"github.com/someonegg/aceei/course"
	"github.com/someonegg/aceei/internal/metrics"
	"github.com/someonegg/aceei/selection"
)

type solveOptions struct {
	problemFile string
	outFile     string
	metricsFile string

	delta   float64
	epsilon float64
	eftb    string

	maxIter  int
	timeout  time.Duration
	workers  int
	solver   string
	maxNodes int
}

func newSolver(name string, maxNodes int) (selection.Solver, error) {
	switch name {
	case "exhaustive":
		return selection.Exhaustive{MaxNodes: maxNodes}, nil
	case "simplex":
		return selection.Simplex{MaxNodes: maxNodes}, nil
	}
	return nil, fmt.Errorf("unknown solver %q", name)
}

func loadInstance(file string) (*course.Problem, *course.Instance, error) {
	p, err := course.LoadProblem(file)
	if err != nil {
		return nil, nil, fmt.Errorf("load problem file failed: %w", err)
	}
	in, err := p.Instance()
	if err != nil {
		return nil, nil, fmt.Errorf("build instance failed: %w", err)
	}
	return p, in, nil
}

func doSolve(ctx context.Context, logger *zap.Logger, opts solveOptions) error {
	mode, err := aceei.ParseEFTBMode(opts.eftb)
	if err != nil {
		return err
	}
	solver, err := newSolver(opts.solver, opts.maxNodes)
	if err != nil {
		return err
	}

	p, in, err := loadInstance(opts.problemFile)
	if err != nil {
		return err
	}

	logger = logger.With(zap.String("run", uuid.NewString()),
		zap.String("problem", opts.problemFile))

	reg := prometheus.NewRegistry()
	observer, err := metrics.NewObserver(reg)
	if err != nil {
		return err
	}

	maxIter := opts.maxIter
	finder := &aceei.Finder{
		MaxIterations: &maxIter,
		TimeLimit:     opts.timeout,
		Workers:       opts.workers,
		Optimizer:     aceei.LPOptimizer{Solver: solver},
		Observer:      observer,
	}

	logger.Info("solving", zap.Int("students", in.NumAgents()), zap.Int("courses", in.NumItems()),
		zap.Stringer("mode", mode), zap.String("solver", opts.solver))

	res, err := finder.Find(aceei.WithLogger(ctx, logger), in, p.Budgets, opts.delta, opts.epsilon, mode)
	var out *course.Outcome
	var nc *aceei.NonConvergenceError
	switch {
	case err == nil:
		out = course.NewOutcome(in, res, true)
	case errors.As(err, &nc) && nc.Best != nil:
		out = course.NewOutcome(in, nc.Best, false)
	default:
		return err
	}

	if err := course.WriteOutcome(opts.outFile, out); err != nil {
		return fmt.Errorf("write outcome file failed: %w", err)
	}
	if opts.metricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.metricsFile, reg); err != nil {
			return fmt.Errorf("write metrics file failed: %w", err)
		}
	}
	return err
}

func doCheck(w io.Writer, file string) error {
	p, in, err := loadInstance(file)
	if err != nil {
		return err
	}
	if err := aceei.ValidateInstance(in); err != nil {
		return err
	}
	for i := 0; i < in.NumAgents(); i++ {
		if _, ok := p.Budgets[in.Agent(i)]; !ok {
			return fmt.Errorf("%w: student %s", aceei.ErrMissingBudget, in.Agent(i))
		}
	}
	fmt.Fprintf(w, "%d students, %d courses: ok\n", in.NumAgents(), in.NumItems())
	return nil
}
