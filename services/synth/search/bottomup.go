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
	"iter"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/pbesynth/services/synth/ast"
	"github.com/AleutianAI/pbesynth/services/synth/grammar"
	"github.com/AleutianAI/pbesynth/services/synth/oracle"
)

// KeepFunc observes every candidate the bottom-up search keeps.
type KeepFunc func(size int, program ast.Expr, sig oracle.Signature)

// BottomUpOption configures a BottomUp enumerator.
type BottomUpOption func(*BottomUp)

// WithKeepHook registers fn to be called for every kept candidate, in the
// order candidates are kept. fn runs on the search goroutine.
func WithKeepHook(fn KeepFunc) BottomUpOption {
	return func(s *BottomUp) {
		s.onKeep = fn
	}
}

// BottomUp builds complete programs in order of increasing size.
//
// Description:
//
//	Level 1 holds the leaves: literals, then variables. Level k is built
//	from every operator production, in grammar order, applied to every
//	combination of smaller programs whose sizes sum to k-1 and whose
//	categories fit the argument slots. Argument sizes are tried smallest
//	first argument first; within one size split the last argument varies
//	fastest.
//
//	Each candidate is run on every example input. Its observation
//	signature is looked up in an index of all signatures seen so far; a
//	candidate that behaves like an earlier one is discarded. Kept
//	candidates are added to their level and checked against the expected
//	outputs. Since smaller levels are complete before larger ones start,
//	the program returned is a smallest satisfying one in the observable
//	sense.
//
//	The bound is exclusive: levels 1 through bound-1 are built.
//
// Thread Safety: Safe for concurrent use; see Enumerator. A keep hook must
// itself be safe if the enumerator is shared.
type BottomUp struct {
	logger *slog.Logger
	onKeep KeepFunc
}

// NewBottomUp creates a bottom-up enumerator.
//
// Inputs:
//   - logger: Logger for progress messages. Nil uses slog.Default().
//   - opts: Optional configuration.
func NewBottomUp(logger *slog.Logger, opts ...BottomUpOption) *BottomUp {
	if logger == nil {
		logger = slog.Default()
	}
	s := &BottomUp{logger: logger.With(slog.String("strategy", string(StrategyBottomUp)))}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Strategy implements Enumerator.
func (s *BottomUp) Strategy() Strategy {
	return StrategyBottomUp
}

// Search implements Enumerator. The bound is an exclusive size limit.
func (s *BottomUp) Search(ctx context.Context, g *grammar.Grammar, o *oracle.Oracle, bound int) (*Result, error) {
	if err := checkInputs(g, o, bound); err != nil {
		return nil, err
	}

	run := &bottomUpRun{
		strategy: s,
		grammar:  g,
		oracle:   o,
		budget:   NewBudget(bound),
		seen:     newSignatureIndex(),
		levels:   make([]map[ast.Category][]ast.Expr, 1, 16),
	}
	span := trace.SpanFromContext(ctx)

	for size := 1; size < bound; size++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("bottom-up search interrupted before size %d: %w", size, err)
		}
		run.budget.EnterLevel(size)
		run.levels = append(run.levels, make(map[ast.Category][]ast.Expr, len(ast.Categories)))

		var found ast.Expr
		var err error
		if size == 1 {
			found, err = run.buildLeaves(ctx)
		} else {
			found, err = run.buildLevel(ctx, size)
		}
		if err != nil {
			return nil, err
		}

		kept := 0
		for _, progs := range run.levels[size] {
			kept += len(progs)
		}
		span.AddEvent("level_complete", trace.WithAttributes(
			attribute.Int("level.size", size),
			attribute.Int("level.kept", kept),
			attribute.Int("signatures", run.seen.len()),
		))
		s.logger.DebugContext(ctx, "bottom-up level built",
			slog.Int("size", size),
			slog.Int("kept", kept),
			slog.Int64("pruned", run.budget.Pruned()),
		)

		if found != nil {
			s.logger.DebugContext(ctx, "bottom-up search found program",
				slog.Int("size", size),
				slog.String("program", ast.Render(found)),
			)
			return finish(StrategyBottomUp, run.budget, found), nil
		}
	}

	s.logger.DebugContext(ctx, "bottom-up search exhausted",
		slog.Int("bound", bound),
		slog.Int("signatures", run.seen.len()),
	)
	return finish(StrategyBottomUp, run.budget, nil), nil
}

// bottomUpRun is the state of one Search call.
type bottomUpRun struct {
	strategy *BottomUp
	grammar  *grammar.Grammar
	oracle   *oracle.Oracle
	budget   *Budget
	seen     *signatureIndex

	// levels[size][category] lists the kept programs of that size in the
	// order they were kept. Index 0 is unused.
	levels []map[ast.Category][]ast.Expr
}

func (r *bottomUpRun) buildLeaves(ctx context.Context) (ast.Expr, error) {
	for _, p := range r.grammar.Leaves() {
		leaf, err := p.Instantiate()
		if err != nil {
			return nil, err
		}
		found, err := r.consider(ctx, 1, p.Result, leaf)
		if err != nil {
			return nil, err
		}
		if found {
			return leaf, nil
		}
	}
	return nil, nil
}

func (r *bottomUpRun) buildLevel(ctx context.Context, size int) (ast.Expr, error) {
	for _, p := range r.grammar.OperatorProductions() {
		arity := p.Arity()
		for sizes := range compositions(size-1, arity) {
			pools := make([][]ast.Expr, arity)
			empty := false
			for i, cat := range p.Args {
				pools[i] = r.levels[sizes[i]][cat]
				if len(pools[i]) == 0 {
					empty = true
					break
				}
			}
			if empty {
				continue
			}
			for args := range cartesian(pools) {
				candidate, err := p.Instantiate(args...)
				if err != nil {
					return nil, err
				}
				found, err := r.consider(ctx, size, p.Result, candidate)
				if err != nil {
					return nil, err
				}
				if found {
					return candidate, nil
				}
			}
		}
	}
	return nil, nil
}

// consider runs one candidate through observation, pruning and the oracle.
// It reports whether the candidate satisfies the examples.
func (r *bottomUpRun) consider(ctx context.Context, size int, cat ast.Category, candidate ast.Expr) (bool, error) {
	n := r.budget.RecordGenerated(1)
	if n%cancelCheckInterval == 0 {
		if err := ctx.Err(); err != nil {
			return false, fmt.Errorf("bottom-up search interrupted at size %d after %d candidates: %w", size, n, err)
		}
	}

	sig, err := r.oracle.Observe(candidate)
	if err != nil {
		return false, fmt.Errorf("bottom-up size %d: %w", size, err)
	}
	fresh, err := r.seen.insert(sig)
	if err != nil {
		return false, err
	}
	if !fresh {
		r.budget.RecordPruned()
		return false, nil
	}

	r.levels[size][cat] = append(r.levels[size][cat], candidate)
	if r.strategy.onKeep != nil {
		r.strategy.onKeep(size, candidate, sig)
	}

	if cat != r.oracle.Target() {
		return false, nil
	}
	r.budget.RecordEvaluated()
	return r.oracle.Matches(sig), nil
}

// compositions yields every way to write total as an ordered sum of parts
// positive integers, in lexicographic order. The yielded slice is reused
// between iterations.
func compositions(total, parts int) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		if parts <= 0 || total < parts {
			return
		}
		buf := make([]int, parts)
		var fill func(i, remaining int) bool
		fill = func(i, remaining int) bool {
			if i == parts-1 {
				buf[i] = remaining
				return yield(buf)
			}
			// Leave at least one for each later part.
			for v := 1; v <= remaining-(parts-1-i); v++ {
				buf[i] = v
				if !fill(i+1, remaining-v) {
					return false
				}
			}
			return true
		}
		fill(0, total)
	}
}

// cartesian yields the Cartesian product of pools with the last index
// varying fastest. The yielded slice is reused between iterations, so
// consumers that keep it must copy it.
func cartesian(pools [][]ast.Expr) iter.Seq[[]ast.Expr] {
	return func(yield func([]ast.Expr) bool) {
		for _, pool := range pools {
			if len(pool) == 0 {
				return
			}
		}
		idx := make([]int, len(pools))
		buf := make([]ast.Expr, len(pools))
		for i, pool := range pools {
			buf[i] = pool[0]
		}
		for {
			if !yield(buf) {
				return
			}
			i := len(pools) - 1
			for ; i >= 0; i-- {
				idx[i]++
				if idx[i] < len(pools[i]) {
					buf[i] = pools[i][idx[i]]
					break
				}
				idx[i] = 0
				buf[i] = pools[i][0]
			}
			if i < 0 {
				return
			}
		}
	}
}
