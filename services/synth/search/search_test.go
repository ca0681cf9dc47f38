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
	"errors"
	"testing"

	"github.com/AleutianAI/pbesynth/services/synth/ast"
	"github.com/AleutianAI/pbesynth/services/synth/grammar"
	"github.com/AleutianAI/pbesynth/services/synth/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Fixtures
// =============================================================================

func minOfTwoExamples() []oracle.Example {
	return []oracle.Example{
		oracle.IntExample(ast.Bindings{"x": 5, "y": 10}, 5),
		oracle.IntExample(ast.Bindings{"x": 10, "y": 5}, 5),
		oracle.IntExample(ast.Bindings{"x": 4, "y": 3}, 3),
	}
}

func clampExamples() []oracle.Example {
	return []oracle.Example{
		oracle.IntExample(ast.Bindings{"x": 5, "y": 10}, 5),
		oracle.IntExample(ast.Bindings{"x": 10, "y": 5}, 5),
		oracle.IntExample(ast.Bindings{"x": 4, "y": 3}, 4),
		oracle.IntExample(ast.Bindings{"x": 3, "y": 4}, 4),
	}
}

func signedSumExamples() []oracle.Example {
	return []oracle.Example{
		oracle.IntExample(ast.Bindings{"x": 10, "y": 7}, 17),
		oracle.IntExample(ast.Bindings{"x": 4, "y": 7}, -7),
		oracle.IntExample(ast.Bindings{"x": 10, "y": 3}, 13),
		oracle.IntExample(ast.Bindings{"x": 1, "y": -7}, -6),
		oracle.IntExample(ast.Bindings{"x": 1, "y": 8}, -8),
	}
}

type problem struct {
	grammar *grammar.Grammar
	oracle  *oracle.Oracle
}

func newProblem(t *testing.T, ops []grammar.Operator, lits []int64, vars []string, examples []oracle.Example) problem {
	t.Helper()
	o, err := oracle.New(examples)
	require.NoError(t, err)
	g, err := grammar.New(grammar.Config{
		Operators: ops,
		Literals:  lits,
		Variables: vars,
		Target:    o.Target(),
	})
	require.NoError(t, err)
	return problem{grammar: g, oracle: o}
}

// minOfTwo is the {Lt, If} / {1, 2} / {x, y} task.
func minOfTwo(t *testing.T) problem {
	return newProblem(t, []grammar.Operator{grammar.OpLt, grammar.OpIf}, []int64{1, 2}, []string{"x", "y"}, minOfTwoExamples())
}

// clamp is the {And, Times, Lt, If} / {10} / {x, y} task whose smallest
// solution has size 12.
func clamp(t *testing.T) problem {
	return newProblem(t,
		[]grammar.Operator{grammar.OpAnd, grammar.OpTimes, grammar.OpLt, grammar.OpIf},
		[]int64{10}, []string{"x", "y"}, clampExamples())
}

func signedSum(t *testing.T) problem {
	return newProblem(t,
		[]grammar.Operator{grammar.OpPlus, grammar.OpTimes, grammar.OpLt, grammar.OpIf},
		[]int64{-1}, []string{"x", "y"}, signedSumExamples())
}

func run(t *testing.T, e Enumerator, p problem, bound int) *Result {
	t.Helper()
	res, err := e.Search(context.Background(), p.grammar, p.oracle, bound)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func enumerators() []Enumerator {
	return []Enumerator{NewTopDown(nil), NewBottomUp(nil)}
}

// =============================================================================
// Strategy tests
// =============================================================================

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in   string
		want Strategy
	}{
		{"top-down", StrategyTopDown},
		{"TopDown", StrategyTopDown},
		{" bfs ", StrategyTopDown},
		{"bottom-up", StrategyBottomUp},
		{"bu", StrategyBottomUp},
		{"bus", StrategyBottomUp},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseStrategy("sideways")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestNew(t *testing.T) {
	for _, s := range Strategies {
		e, err := New(s, nil)
		require.NoError(t, err)
		assert.Equal(t, s, e.Strategy())
	}

	_, err := New("sideways", nil)
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

// =============================================================================
// Argument checks
// =============================================================================

func TestSearch_InvalidInputs(t *testing.T) {
	p := minOfTwo(t)

	boolOracle, err := oracle.New([]oracle.Example{
		oracle.BoolExample(ast.Bindings{"x": 1, "y": 2}, true),
	})
	require.NoError(t, err)

	for _, e := range enumerators() {
		t.Run(string(e.Strategy()), func(t *testing.T) {
			_, err := e.Search(context.Background(), nil, p.oracle, 10)
			assert.ErrorIs(t, err, ErrNilInput)

			_, err = e.Search(context.Background(), p.grammar, nil, 10)
			assert.ErrorIs(t, err, ErrNilInput)

			_, err = e.Search(context.Background(), p.grammar, p.oracle, -1)
			assert.ErrorIs(t, err, ErrInvalidBound)

			_, err = e.Search(context.Background(), p.grammar, boolOracle, 10)
			assert.ErrorIs(t, err, ErrTargetMismatch)
		})
	}
}

func TestSearch_ZeroBound(t *testing.T) {
	p := minOfTwo(t)
	for _, e := range enumerators() {
		res := run(t, e, p, 0)
		assert.False(t, res.Found, e.Strategy())
		assert.Nil(t, res.Program)
		assert.Equal(t, "not_found", res.Outcome())
	}
}

func TestSearch_UnboundVariablePropagates(t *testing.T) {
	// The grammar uses z, which no example binds.
	p := newProblem(t, []grammar.Operator{grammar.OpLt, grammar.OpIf}, []int64{1}, []string{"z"}, minOfTwoExamples())

	for _, e := range enumerators() {
		t.Run(string(e.Strategy()), func(t *testing.T) {
			res, err := e.Search(context.Background(), p.grammar, p.oracle, 100)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ast.ErrUnboundVariable)

			var unbound *ast.UnboundVariableError
			require.True(t, errors.As(err, &unbound))
			assert.Equal(t, "z", unbound.Name)
		})
	}
}

func TestSearch_Cancelled(t *testing.T) {
	p := clamp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, e := range enumerators() {
		t.Run(string(e.Strategy()), func(t *testing.T) {
			res, err := e.Search(ctx, p.grammar, p.oracle, 100000)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}

// =============================================================================
// Properties shared by both strategies
// =============================================================================

func TestSearch_Soundness(t *testing.T) {
	problems := map[string]struct {
		p     problem
		bound map[Strategy]int
	}{
		"min of two": {minOfTwo(t), map[Strategy]int{StrategyTopDown: 1000, StrategyBottomUp: 10}},
		"signed sum": {signedSum(t), map[Strategy]int{StrategyBottomUp: 11}},
		"clamp":      {clamp(t), map[Strategy]int{StrategyBottomUp: 13}},
	}

	for name, tc := range problems {
		for _, e := range enumerators() {
			bound, ok := tc.bound[e.Strategy()]
			if !ok {
				continue
			}
			t.Run(name+"/"+string(e.Strategy()), func(t *testing.T) {
				res := run(t, e, tc.p, bound)
				require.True(t, res.Found)

				// Found programs are complete, well-typed, of the target
				// category, and satisfy every example.
				assert.True(t, ast.Complete(res.Program))
				require.NoError(t, ast.WellTyped(res.Program))
				assert.Equal(t, tc.p.grammar.Target(), ast.CategoryOf(res.Program))

				ok, err := oracle.Satisfies(res.Program, tc.p.oracle.Examples())
				require.NoError(t, err)
				assert.True(t, ok)
			})
		}
	}
}

func TestSearch_Deterministic(t *testing.T) {
	cases := []struct {
		strategy Strategy
		p        problem
		bound    int
	}{
		{StrategyTopDown, minOfTwo(t), 1000},
		{StrategyBottomUp, minOfTwo(t), 10},
		{StrategyBottomUp, signedSum(t), 11},
	}
	for _, tc := range cases {
		e, err := New(tc.strategy, nil)
		require.NoError(t, err)

		first := run(t, e, tc.p, tc.bound)
		for range 3 {
			again := run(t, e, tc.p, tc.bound)
			assert.Equal(t, first.ProgramText(), again.ProgramText())
			assert.Equal(t, first.Stats.Generated, again.Stats.Generated)
			assert.Equal(t, first.Stats.Steps, again.Stats.Steps)
		}
	}
}

func TestSearch_BoundMonotonicity(t *testing.T) {
	t.Run("top-down", func(t *testing.T) {
		p := minOfTwo(t)
		td := NewTopDown(nil)
		want := run(t, td, p, 477)
		require.True(t, want.Found)
		for _, bound := range []int{478, 1000, 5000} {
			got := run(t, td, p, bound)
			require.True(t, got.Found, bound)
			assert.Equal(t, want.ProgramText(), got.ProgramText(), bound)
			assert.Equal(t, want.Stats.Steps, got.Stats.Steps, bound)
		}
	})

	t.Run("bottom-up", func(t *testing.T) {
		p := clamp(t)
		bu := NewBottomUp(nil)
		want := run(t, bu, p, 13)
		require.True(t, want.Found)
		got := run(t, bu, p, 14)
		require.True(t, got.Found)
		assert.Equal(t, want.ProgramText(), got.ProgramText())
	})
}

// =============================================================================
// Scenarios
// =============================================================================

func TestScenario_MinOfTwo(t *testing.T) {
	p := minOfTwo(t)

	bu := run(t, NewBottomUp(nil), p, 10)
	require.True(t, bu.Found)
	assert.Equal(t, "(if (x < y) then x else y)", bu.ProgramText())

	// Top-down needs far more steps than the bottom-up size bound.
	td := run(t, NewTopDown(nil), p, 10)
	assert.False(t, td.Found)

	td = run(t, NewTopDown(nil), p, 1000)
	require.True(t, td.Found)
	assert.Equal(t, "(if (x < y) then x else y)", td.ProgramText())
	assert.Equal(t, int64(477), td.Stats.Steps)
}

func TestScenario_BoundOne(t *testing.T) {
	p := minOfTwo(t)
	for _, e := range enumerators() {
		res := run(t, e, p, 1)
		assert.False(t, res.Found, e.Strategy())
		assert.Equal(t, 1, res.Bound)
	}
}

func TestScenario_Clamp(t *testing.T) {
	p := clamp(t)

	td := run(t, NewTopDown(nil), p, 12)
	bu := run(t, NewBottomUp(nil), p, 12)
	assert.Equal(t, td.Found, bu.Found, "strategies disagree on satisfiability")
	assert.False(t, bu.Found)
	assert.Equal(t, int64(12), td.Stats.Steps)

	// One more size level reaches the smallest solution.
	bu = run(t, NewBottomUp(nil), p, 13)
	require.True(t, bu.Found)
	assert.Equal(t, "(if ((x < 10) and (10 < (x * x))) then x else y)", bu.ProgramText())
	assert.Equal(t, 12, ast.Size(bu.Program))
}

func TestScenario_SignedSum(t *testing.T) {
	res := run(t, NewBottomUp(nil), signedSum(t), 11)
	require.True(t, res.Found)
	assert.Equal(t, "(if (x < y) then (-1 * y) else (x + y))", res.ProgramText())
	assert.Equal(t, 10, ast.Size(res.Program))
}

// =============================================================================
// Result tests
// =============================================================================

func TestResult_String(t *testing.T) {
	found := &Result{Strategy: StrategyBottomUp, Bound: 10, Found: true,
		Program: ast.Plus{Left: ast.Var{Name: "x"}, Right: ast.Literal{Value: 1}}}
	assert.Equal(t, "bottom-up: (x + 1)", found.String())
	assert.Equal(t, "found", found.Outcome())

	missing := &Result{Strategy: StrategyTopDown, Bound: 3}
	assert.Equal(t, "top-down: no program found within bound 3", missing.String())
	assert.Equal(t, "", missing.ProgramText())
}
