// Copyright 2022 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package aceei

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultMaxIterations = 1000
)

// Finder runs the price-adjustment loop. The zero value is ready to use.
// Find never modifies the Finder, so one Finder can serve concurrent
// searches when its Optimizer and Observer can.
type Finder struct {
	// MaxIterations bounds the number of price updates, nil means
	// DefaultMaxIterations.
	MaxIterations *int `json:"max_iter" yaml:"max_iter"`
	// TimeLimit bounds the wall time of one search, 0 means none.
	TimeLimit time.Duration `json:"time_limit" yaml:"time_limit"`
	// Workers bounds the agents searched in parallel, 0 means no bound.
	Workers int `json:"workers" yaml:"workers"`

	Optimizer Optimizer `json:"-" yaml:"-"` // nil means LPOptimizer{}
	Observer  Observer  `json:"-" yaml:"-"` // can be nil
}

func (f *Finder) maxIter() int {
	if f.MaxIterations == nil {
		return DefaultMaxIterations
	}
	return *f.MaxIterations
}

func (f *Finder) optimizer() Optimizer {
	if f.Optimizer == nil {
		return LPOptimizer{}
	}
	return f.Optimizer
}

// Find runs a search with a default Finder.
func Find(ctx context.Context, inst Instance, budgets map[string]float64, delta, epsilon float64, mode EFTBMode) (*Result, error) {
	return (&Finder{}).Find(ctx, inst, budgets, delta, epsilon, mode)
}

// Find searches for prices and budget perturbations under which the
// clipped excess demand vanishes. Prices start at zero and move by delta
// times the excess demand after every iteration.
//
// A search that stops before clearing returns a *NonConvergenceError.
func (f *Finder) Find(ctx context.Context, inst Instance, budgets map[string]float64, delta, epsilon float64, mode EFTBMode) (*Result, error) {
	maxIter, optimizer := f.maxIter(), f.optimizer()

	if err := ValidateParams(delta, epsilon); err != nil {
		return nil, err
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(mode))
	}
	if err := ValidateInstance(inst); err != nil {
		return nil, err
	}
	initial, err := resolveBudgets(inst, budgets)
	if err != nil {
		return nil, err
	}

	if f.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.TimeLimit)
		defer cancel()
	}

	log := Logger(ctx).With(zap.Stringer("mode", mode),
		zap.Float64("delta", delta), zap.Float64("epsilon", epsilon))

	prices := make([]float64, inst.NumItems())
	seen := make(map[string]int)
	var best *Result

	stop := func(iter int, reason string, cause error) error {
		e := &NonConvergenceError{Reason: reason, Iterations: iter, Norm: math.Inf(1), Best: best, cause: cause}
		if best != nil {
			e.Norm = best.Norm
		}
		log.Warn("search stopped", zap.String("reason", reason),
			zap.Int("iterations", iter), zap.Float64("residual", e.Norm))
		return e
	}

	canceled := func(iter int) error {
		reason := "canceled"
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			reason = "time limit"
		}
		return stop(iter, reason, ctx.Err())
	}

	for iter := 1; ; iter++ {
		if ctx.Err() != nil {
			return nil, canceled(iter - 1)
		}
		if iter > maxIter {
			return nil, stop(iter-1, "iteration limit", nil)
		}
		key := priceKey(prices)
		if first, ok := seen[key]; ok {
			return nil, stop(iter-1, fmt.Sprintf("prices repeat iteration %d", first), nil)
		}
		seen[key] = iter

		demand, err := DemandMatrix(ctx, inst, initial, prices, epsilon, delta, f.Workers)
		if err != nil {
			if ctx.Err() != nil {
				return nil, canceled(iter - 1)
			}
			return nil, err
		}

		start := time.Now()
		step, err := optimizer.Optimize(ctx, inst, demand, prices, initial, mode)
		if f.Observer != nil {
			f.Observer.ObserveOptimize(time.Since(start).Seconds(), err)
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, canceled(iter - 1)
			}
			return nil, fmt.Errorf("iteration %d: %w", iter, err)
		}

		candidates := 0
		for _, b := range demand.Budgets {
			candidates += len(b)
		}
		converged := step.Norm == 0
		if f.Observer != nil {
			f.Observer.ObserveIteration(IterationStats{
				Iteration:  iter,
				Norm:       step.Norm,
				Candidates: candidates,
				Converged:  converged,
			})
		}
		log.Debug("iteration", zap.Int("iteration", iter),
			zap.Float64("norm", step.Norm), zap.Int("candidates", candidates))

		res := &Result{
			Allocation: toAllocation(inst, step.Assignment),
			Assignment: step.Assignment,
			Prices:     append([]float64(nil), prices...),
			Budgets:    step.Budgets,
			Norm:       step.Norm,
			Iterations: iter,
		}
		if converged {
			log.Info("market cleared", zap.Int("iterations", iter))
			return res, nil
		}
		if best == nil || res.Norm < best.Norm {
			best = res
		}

		for j, z := range step.Excess {
			prices[j] = math.Max(0, prices[j]+delta*z)
		}
	}
}

func priceKey(prices []float64) string {
	var sb strings.Builder
	for _, p := range prices {
		sb.WriteString(strconv.FormatUint(math.Float64bits(p), 16))
		sb.WriteByte(',')
	}
	return sb.String()
}
