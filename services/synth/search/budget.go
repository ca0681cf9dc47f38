// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package search

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Budget tracks the effort spent by one search run against its bound.
//
// Thread Safety: Safe for concurrent use.
type Budget struct {
	bound     int
	startTime time.Time

	// Atomic counters
	generated atomic.Int64
	evaluated atomic.Int64
	pruned    atomic.Int64
	steps     atomic.Int64
	level     atomic.Int64
}

// NewBudget creates a budget tracker.
//
// Inputs:
//   - bound: The search bound. Its unit depends on the strategy.
//
// Outputs:
//   - *Budget: Budget tracker, clock started.
func NewBudget(bound int) *Budget {
	return &Budget{
		bound:     bound,
		startTime: time.Now(),
	}
}

// Bound returns the bound the budget was created with.
func (b *Budget) Bound() int {
	return b.bound
}

// RecordGenerated records n newly built candidates.
func (b *Budget) RecordGenerated(n int) int64 {
	return b.generated.Add(int64(n))
}

// RecordEvaluated records one oracle check.
func (b *Budget) RecordEvaluated() int64 {
	return b.evaluated.Add(1)
}

// RecordPruned records one candidate discarded as a behavioral duplicate.
func (b *Budget) RecordPruned() int64 {
	return b.pruned.Add(1)
}

// RecordStep records one worklist pop and returns the new step count.
func (b *Budget) RecordStep() int64 {
	return b.steps.Add(1)
}

// EnterLevel records that candidates of the given size are being built.
func (b *Budget) EnterLevel(size int) {
	b.level.Store(int64(size))
}

// Generated returns the number of candidates built.
func (b *Budget) Generated() int64 { return b.generated.Load() }

// Evaluated returns the number of oracle checks.
func (b *Budget) Evaluated() int64 { return b.evaluated.Load() }

// Pruned returns the number of discarded duplicates.
func (b *Budget) Pruned() int64 { return b.pruned.Load() }

// Steps returns the number of worklist pops.
func (b *Budget) Steps() int64 { return b.steps.Load() }

// Level returns the size of the level last entered.
func (b *Budget) Level() int { return int(b.level.Load()) }

// StepsExhausted reports whether the step count has reached the bound.
func (b *Budget) StepsExhausted() bool {
	return b.Steps() >= int64(b.bound)
}

// Elapsed returns the time since the budget was created.
func (b *Budget) Elapsed() time.Duration {
	return time.Since(b.startTime)
}

// Stats snapshots the counters.
func (b *Budget) Stats() Stats {
	return Stats{
		Generated: b.Generated(),
		Evaluated: b.Evaluated(),
		Pruned:    b.Pruned(),
		Steps:     b.Steps(),
		MaxLevel:  b.Level(),
		Elapsed:   b.Elapsed(),
	}
}

// String returns a human-readable budget status.
func (b *Budget) String() string {
	return fmt.Sprintf("Budget{bound=%d, steps=%d, level=%d, generated=%d, evaluated=%d, pruned=%d, elapsed=%v}",
		b.bound, b.Steps(), b.Level(), b.Generated(), b.Evaluated(), b.Pruned(),
		b.Elapsed().Round(time.Millisecond))
}
