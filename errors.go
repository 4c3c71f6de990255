// Copyright 2022 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package aceei

import (
	"errors"
	"fmt"
)

var (
	ErrBadParameter       = errors.New("aceei: bad perturbation parameter")
	ErrInfeasibleInstance = errors.New("aceei: infeasible instance")
	ErrMissingValuation   = errors.New("aceei: missing valuation")
	ErrMissingBudget      = errors.New("aceei: missing initial budget")
	ErrUnknownMode        = errors.New("aceei: unknown EF-TB mode")
	ErrInfeasible         = errors.New("aceei: no selection satisfies the allocation constraints")
	ErrNotConverged       = errors.New("aceei: market did not clear")
)

// NonConvergenceError is returned when the search stops before the clipped
// excess demand reaches zero. Best is the iterate with the lowest residual
// and is not guaranteed to respect item capacities.
type NonConvergenceError struct {
	Reason     string
	Iterations int
	Norm       float64
	Best       *Result

	cause error
}

func (e *NonConvergenceError) Error() string {
	msg := fmt.Sprintf("%v after %d iterations (%s, residual %g)",
		ErrNotConverged, e.Iterations, e.Reason, e.Norm)
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *NonConvergenceError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrNotConverged}
	}
	return []error{ErrNotConverged, e.cause}
}
