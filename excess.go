// Copyright 2022 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package aceei

import (
	"gonum.org/v1/gonum/floats"
)

// ExcessDemand returns, per item, the number of assigned agents minus the
// item capacity.
func ExcessDemand(inst Instance, a Assignment) []float64 {
	z := make([]float64, inst.NumItems())
	for j := range z {
		sum := 0
		for i := range a {
			if a[i][j] {
				sum++
			}
		}
		z[j] = float64(sum - inst.ItemCapacity(j))
	}
	return z
}

// ClippedExcessDemand is ExcessDemand with negative entries of zero-priced
// items floored at zero.
func ClippedExcessDemand(inst Instance, a Assignment, prices []float64) []float64 {
	return clip(ExcessDemand(inst, a), prices)
}

func clip(z, prices []float64) []float64 {
	clipped := make([]float64, len(z))
	for j, v := range z {
		if prices[j] == 0 && v < 0 {
			v = 0
		}
		clipped[j] = v
	}
	return clipped
}

// Norm is the Euclidean norm of an excess demand vector.
func Norm(z []float64) float64 {
	if len(z) == 0 {
		return 0
	}
	return floats.Norm(z, 2)
}
