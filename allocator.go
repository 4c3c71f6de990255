// Copyright 2022 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package aceei

import (
	"context"
)

type finderAllocator struct {
	finder  *Finder
	budgets map[string]float64
	delta   float64
	epsilon float64
	mode    EFTBMode
}

// Allocator binds the search parameters so the finder can be used where
// any Allocator is expected.
func (f *Finder) Allocator(budgets map[string]float64, delta, epsilon float64, mode EFTBMode) Allocator {
	return finderAllocator{f, budgets, delta, epsilon, mode}
}

func (a finderAllocator) Allocate(ctx context.Context, inst Instance) (Allocation, error) {
	res, err := a.finder.Find(ctx, inst, a.budgets, a.delta, a.epsilon, a.mode)
	if err != nil {
		return nil, err
	}
	return res.Allocation, nil
}

func WithoutEFTB(budgets map[string]float64, delta, epsilon float64) Allocator {
	return (&Finder{}).Allocator(budgets, delta, epsilon, NoEFTB)
}

func WithEFTB(budgets map[string]float64, delta, epsilon float64) Allocator {
	return (&Finder{}).Allocator(budgets, delta, epsilon, EFTB)
}

func WithContestedEFTB(budgets map[string]float64, delta, epsilon float64) Allocator {
	return (&Finder{}).Allocator(budgets, delta, epsilon, ContestedEFTB)
}
