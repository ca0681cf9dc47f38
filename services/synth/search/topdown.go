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
	"context"
	"fmt"
	"log/slog"

	"github.com/AleutianAI/pbesynth/services/synth/ast"
	"github.com/AleutianAI/pbesynth/services/synth/grammar"
	"github.com/AleutianAI/pbesynth/services/synth/oracle"
)

// TopDown is a breadth-first search over partial derivation trees.
//
// Description:
//
//	The worklist starts with a single hole of the grammar's target
//	category. Each step pops the front program. A complete program is
//	checked by the oracle and returned if it satisfies every example. A
//	partial program has its first hole expanded with every production of
//	the hole's category, in grammar order; the children go to the back of
//	the worklist. Operator productions leave fresh holes in their argument
//	slots, leaves close the hole.
//
//	The bound limits the number of pops, complete or not. Because the
//	worklist is FIFO and the leftmost hole is always expanded first, the
//	order in which programs are reached does not depend on the bound: a
//	larger bound returns the same program a smaller successful bound did.
//	The first satisfying program reached is returned, which is not
//	necessarily the smallest one.
//
// Thread Safety: Safe for concurrent use; see Enumerator.
type TopDown struct {
	logger *slog.Logger
}

// NewTopDown creates a top-down enumerator.
//
// Inputs:
//   - logger: Logger for progress messages. Nil uses slog.Default().
func NewTopDown(logger *slog.Logger) *TopDown {
	if logger == nil {
		logger = slog.Default()
	}
	return &TopDown{logger: logger.With(slog.String("strategy", string(StrategyTopDown)))}
}

// Strategy implements Enumerator.
func (s *TopDown) Strategy() Strategy {
	return StrategyTopDown
}

// Search implements Enumerator. The bound is the maximum number of steps.
func (s *TopDown) Search(ctx context.Context, g *grammar.Grammar, o *oracle.Oracle, bound int) (*Result, error) {
	if err := checkInputs(g, o, bound); err != nil {
		return nil, err
	}

	budget := NewBudget(bound)

	// Skeletons are immutable values, so one per production can be shared
	// by every child that uses it.
	expansions := make(map[ast.Category][]ast.Expr, len(ast.Categories))
	for _, cat := range ast.Categories {
		for _, p := range g.ProductionsFor(cat) {
			expansions[cat] = append(expansions[cat], p.Skeleton())
		}
	}

	var queue worklist
	queue.push(ast.Hole{Category: g.Target()})

	for queue.len() > 0 && !budget.StepsExhausted() {
		if budget.Steps()%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("top-down search interrupted after %d steps: %w", budget.Steps(), err)
			}
		}

		p := queue.pop()
		step := budget.RecordStep()

		hole, open := ast.FirstHole(p)
		if !open {
			budget.RecordEvaluated()
			ok, err := o.Satisfies(p)
			if err != nil {
				return nil, fmt.Errorf("top-down step %d: %w", step, err)
			}
			if ok {
				s.logger.DebugContext(ctx, "top-down search found program",
					slog.Int64("step", step),
					slog.String("program", ast.Render(p)),
				)
				return finish(StrategyTopDown, budget, p), nil
			}
			continue
		}

		children := expansions[hole.Category]
		for _, fill := range children {
			child, _ := ast.FillFirstHole(p, fill)
			queue.push(child)
		}
		budget.RecordGenerated(len(children))
	}

	s.logger.DebugContext(ctx, "top-down search exhausted",
		slog.Int64("steps", budget.Steps()),
		slog.Int("frontier", queue.len()),
	)
	return finish(StrategyTopDown, budget, nil), nil
}

// worklist is a FIFO queue of partial programs.
type worklist struct {
	items []ast.Expr
	head  int
}

func (w *worklist) push(e ast.Expr) {
	w.items = append(w.items, e)
}

// pop removes the front item. The consumed prefix of the backing array is
// reclaimed once it outweighs the live part.
func (w *worklist) pop() ast.Expr {
	e := w.items[w.head]
	w.items[w.head] = nil
	w.head++
	if w.head >= 1024 && w.head*2 >= len(w.items) {
		n := copy(w.items, w.items[w.head:])
		clear(w.items[n:])
		w.items = w.items[:n]
		w.head = 0
	}
	return e
}

func (w *worklist) len() int {
	return len(w.items) - w.head
}
