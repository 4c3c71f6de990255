// Copyright 2022 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package aceei

import (
	"iter"

	"gonum.org/v1/gonum/stat/combin"
)

// bundles yields every subset of {0..n-1} of size 1..maxSize, smaller sizes
// first and lexicographic within a size. The yielded slice is reused
// between steps. Ranging over the sequence again restarts it.
func bundles(n, maxSize int) iter.Seq[[]int] {
	if maxSize > n {
		maxSize = n
	}
	return func(yield func([]int) bool) {
		for k := 1; k <= maxSize; k++ {
			gen := combin.NewCombinationGenerator(n, k)
			dst := make([]int, k)
			for gen.Next() {
				if !yield(gen.Combination(dst)) {
					return
				}
			}
		}
	}
}

// fillSize is the bundle size that counts as filling the agent's capacity.
func fillSize(inst Instance, agent int) int {
	c := inst.AgentCapacity(agent)
	if m := inst.NumItems(); c > m {
		return m
	}
	return c
}
