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
	"strings"
	"time"

	"github.com/AleutianAI/pbesynth/services/synth/ast"
	"github.com/AleutianAI/pbesynth/services/synth/grammar"
	"github.com/AleutianAI/pbesynth/services/synth/oracle"
)

// cancelCheckInterval is how many iterations pass between context checks.
const cancelCheckInterval = 1024

// Strategy names a search algorithm.
type Strategy string

const (
	StrategyTopDown  Strategy = "top-down"
	StrategyBottomUp Strategy = "bottom-up"
)

// Strategies lists every strategy.
var Strategies = []Strategy{StrategyTopDown, StrategyBottomUp}

// ParseStrategy resolves a strategy name. "topdown", "td", "bottomup" and
// "bu" are accepted as well.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "top-down", "topdown", "td", "bfs":
		return StrategyTopDown, nil
	case "bottom-up", "bottomup", "bu", "bus":
		return StrategyBottomUp, nil
	default:
		return "", fmt.Errorf("%q: %w", name, ErrUnknownStrategy)
	}
}

// Enumerator is a search strategy over a grammar and an oracle.
//
// Thread Safety: Implementations are stateless between calls; each Search
// call owns its worklist or levels exclusively, so one Enumerator may serve
// concurrent searches.
type Enumerator interface {
	// Strategy returns the algorithm's name.
	Strategy() Strategy

	// Search looks for a complete program the oracle accepts.
	//
	// Inputs:
	//   - ctx: Checked periodically; cancellation aborts with ctx.Err().
	//   - g: The grammar. Its target must equal the oracle's target.
	//   - o: The oracle.
	//   - bound: Strategy-specific effort limit.
	//
	// Outputs:
	//   - *Result: Found or not found; never nil when error is nil.
	//   - error: Evaluation errors, invalid arguments, or cancellation.
	Search(ctx context.Context, g *grammar.Grammar, o *oracle.Oracle, bound int) (*Result, error)
}

// New returns the enumerator for a strategy.
func New(strategy Strategy, logger *slog.Logger) (Enumerator, error) {
	switch strategy {
	case StrategyTopDown:
		return NewTopDown(logger), nil
	case StrategyBottomUp:
		return NewBottomUp(logger), nil
	default:
		return nil, fmt.Errorf("%q: %w", strategy, ErrUnknownStrategy)
	}
}

// Stats reports the effort of one search run. It is diagnostic only.
type Stats struct {
	// Generated counts candidates built: children appended to the worklist
	// (top-down) or programs instantiated (bottom-up).
	Generated int64 `json:"generated" yaml:"generated"`

	// Evaluated counts oracle checks.
	Evaluated int64 `json:"evaluated" yaml:"evaluated"`

	// Pruned counts candidates discarded as behavioral duplicates (bottom-up).
	Pruned int64 `json:"pruned" yaml:"pruned"`

	// Steps counts worklist pops (top-down).
	Steps int64 `json:"steps" yaml:"steps"`

	// MaxLevel is the largest program size built (bottom-up).
	MaxLevel int `json:"max_level" yaml:"max_level"`

	// Elapsed is the wall time of the run.
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Result is the outcome of one search run.
type Result struct {
	// RunID identifies the run in logs and traces. Set by the driver.
	RunID string `json:"run_id,omitempty" yaml:"run_id,omitempty"`

	// Strategy is the algorithm that produced the result.
	Strategy Strategy `json:"strategy" yaml:"strategy"`

	// Bound is the bound the run was given.
	Bound int `json:"bound" yaml:"bound"`

	// Found reports success.
	Found bool `json:"found" yaml:"found"`

	// Program is the satisfying program, nil when not found.
	Program ast.Expr `json:"-" yaml:"-"`

	// Stats reports effort.
	Stats Stats `json:"stats" yaml:"stats"`
}

// Outcome returns "found" or "not_found".
func (r *Result) Outcome() string {
	if r.Found {
		return "found"
	}
	return "not_found"
}

// ProgramText renders the program, or "" when not found.
func (r *Result) ProgramText() string {
	if r.Program == nil {
		return ""
	}
	return ast.Render(r.Program)
}

// String returns a one-line summary.
func (r *Result) String() string {
	if !r.Found {
		return fmt.Sprintf("%s: no program found within bound %d", r.Strategy, r.Bound)
	}
	return fmt.Sprintf("%s: %s", r.Strategy, r.ProgramText())
}

// checkInputs validates the arguments shared by every strategy.
func checkInputs(g *grammar.Grammar, o *oracle.Oracle, bound int) error {
	if g == nil || o == nil {
		return ErrNilInput
	}
	if bound < 0 {
		return fmt.Errorf("bound %d: %w", bound, ErrInvalidBound)
	}
	if g.Target() != o.Target() {
		return fmt.Errorf("grammar %s, examples %s: %w", g.Target(), o.Target(), ErrTargetMismatch)
	}
	return nil
}

// finish builds the result of a run.
func finish(strategy Strategy, budget *Budget, program ast.Expr) *Result {
	return &Result{
		Strategy: strategy,
		Bound:    budget.Bound(),
		Found:    program != nil,
		Program:  program,
		Stats:    budget.Stats(),
	}
}
