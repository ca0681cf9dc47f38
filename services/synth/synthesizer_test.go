// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package synth

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AleutianAI/pbesynth/services/synth/ast"
	"github.com/AleutianAI/pbesynth/services/synth/grammar"
	"github.com/AleutianAI/pbesynth/services/synth/oracle"
	"github.com/AleutianAI/pbesynth/services/synth/search"
)

func minOfTwoTask(bound int) *Task {
	return &Task{
		Name:      "min-of-two",
		Bound:     bound,
		Operators: []grammar.Operator{grammar.OpLt, grammar.OpIf},
		Literals:  []int64{1, 2},
		Variables: []string{"x", "y"},
		Examples: []oracle.Example{
			oracle.IntExample(ast.Bindings{"x": 5, "y": 10}, 5),
			oracle.IntExample(ast.Bindings{"x": 10, "y": 5}, 5),
			oracle.IntExample(ast.Bindings{"x": 4, "y": 3}, 3),
		},
	}
}

func loadTestTask(t *testing.T, name string) *Task {
	t.Helper()
	task, err := LoadTask(filepath.Join("testdata", name), 10)
	require.NoError(t, err)
	return task
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

// =============================================================================
// Synthesize
// =============================================================================

func TestSynthesize_BottomUp(t *testing.T) {
	res, err := Synthesize(context.Background(), minOfTwoTask(10), search.StrategyBottomUp)
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, "(if (x < y) then x else y)", res.ProgramText())
	assert.Equal(t, search.StrategyBottomUp, res.Strategy)

	_, err = uuid.Parse(res.RunID)
	assert.NoError(t, err, "run ID should be a UUID")
}

func TestSynthesize_TopDown(t *testing.T) {
	s := NewSynthesizer(WithLogger(quietLogger()))

	res, err := s.Synthesize(context.Background(), minOfTwoTask(10), search.StrategyTopDown)
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Nil(t, res.Program)

	res, err = s.Synthesize(context.Background(), minOfTwoTask(1000), search.StrategyTopDown)
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, "(if (x < y) then x else y)", res.ProgramText())
	assert.Equal(t, int64(477), res.Stats.Steps)
}

func TestSynthesize_BoundOne(t *testing.T) {
	for _, s := range search.Strategies {
		res, err := Synthesize(context.Background(), minOfTwoTask(1), s)
		require.NoError(t, err)
		assert.False(t, res.Found, s)
	}
}

func TestSynthesize_TestdataTasks(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"min_of_two.yaml", "(if (x < y) then x else y)"},
		{"signed_sum.yaml", "(if (x < y) then (-1 * y) else (x + y))"},
		{"less_than.yaml", "(not (a < b))"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			task := loadTestTask(t, tt.file)
			res, err := Synthesize(context.Background(), task, task.Strategy)
			require.NoError(t, err)
			require.True(t, res.Found)
			assert.Equal(t, tt.want, res.ProgramText())

			ok, err := oracle.Satisfies(res.Program, task.Examples)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestSynthesize_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Synthesize(ctx, minOfTwoTask(10), "sideways")
	assert.ErrorIs(t, err, ErrUnknownStrategy)

	_, err = Synthesize(ctx, &Task{Bound: 3}, search.StrategyBottomUp)
	assert.ErrorIs(t, err, ErrInvalidTask)
	assert.ErrorIs(t, err, oracle.ErrNoExamples)

	unbound := minOfTwoTask(10)
	unbound.Variables = []string{"x", "z"}
	for _, s := range search.Strategies {
		res, err := Synthesize(ctx, unbound, s)
		assert.Nil(t, res)
		require.Error(t, err)
		assert.ErrorIs(t, err, ast.ErrUnboundVariable, s)
	}
}

func TestSynthesize_MissingBindingFailsBeforeSearch(t *testing.T) {
	task := minOfTwoTask(1)
	task.Examples = []oracle.Example{
		oracle.IntExample(ast.Bindings{"x": 5}, 5),
		oracle.IntExample(ast.Bindings{"x": 4}, 4),
	}

	for _, bound := range []int{0, 1, 4} {
		task.Bound = bound
		for _, s := range search.Strategies {
			res, err := Synthesize(context.Background(), task, s)
			assert.Nil(t, res, "%s bound %d", s, bound)
			require.Error(t, err, "%s bound %d", s, bound)
			assert.ErrorIs(t, err, ErrInvalidTask)
			assert.ErrorIs(t, err, ast.ErrUnboundVariable)

			var ub *ast.UnboundVariableError
			require.True(t, errors.As(err, &ub))
			assert.Equal(t, "y", ub.Name)
		}
	}
}

func TestSynthesize_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, s := range search.Strategies {
		_, err := Synthesize(ctx, loadTestTask(t, "clamp.yaml"), s)
		assert.ErrorIs(t, err, context.Canceled, s)
	}
}

func TestSynthesizer_Observability(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	metrics := search.NewMetrics(prometheus.NewRegistry())

	s := NewSynthesizer(
		WithLogger(logger),
		WithTracer(search.NewTracerWithProvider(logger, tp, true)),
		WithMetrics(metrics),
	)
	s.newID = func() string { return "run-fixed" }

	res, err := s.Synthesize(context.Background(), minOfTwoTask(10), search.StrategyBottomUp)
	require.NoError(t, err)
	assert.Equal(t, "run-fixed", res.RunID)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "synth.run", spans[0].Name())

	assert.Contains(t, logs.String(), `"run_id":"run-fixed"`)
	assert.Contains(t, logs.String(), `"trace_id"`)
	assert.Contains(t, logs.String(), "synthesis completed")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RunsTotal.WithLabelValues("bottom-up", "found")))
	assert.Equal(t, float64(res.Stats.Generated), testutil.ToFloat64(metrics.GeneratedTotal.WithLabelValues("bottom-up")))
}

func TestSynthesizer_MetricsOnError(t *testing.T) {
	metrics := search.NewMetrics(prometheus.NewRegistry())
	s := NewSynthesizer(WithLogger(quietLogger()), WithMetrics(metrics))

	unbound := minOfTwoTask(10)
	unbound.Variables = []string{"z"}
	_, err := s.Synthesize(context.Background(), unbound, search.StrategyTopDown)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RunsTotal.WithLabelValues("top-down", "error")))
}

func TestNewFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	s := NewFromConfig(cfg, nil)
	assert.Nil(t, s.metrics)
	assert.NotNil(t, s.tracer)

	cfg.Observability.MetricsEnabled = true
	s = NewFromConfig(cfg, quietLogger())
	assert.Same(t, search.DefaultMetrics(), s.metrics)
}

// =============================================================================
// Compare
// =============================================================================

func TestCompare_BothFail(t *testing.T) {
	s := NewSynthesizer(WithLogger(quietLogger()))

	cmp, err := s.Compare(context.Background(), loadTestTask(t, "clamp.yaml"))
	require.NoError(t, err)
	assert.False(t, cmp.TopDown.Found)
	assert.False(t, cmp.BottomUp.Found)
	assert.True(t, cmp.Agree())
	assert.NotEqual(t, cmp.TopDown.RunID, cmp.BottomUp.RunID)
}

func TestCompare_Disagree(t *testing.T) {
	s := NewSynthesizer(WithLogger(quietLogger()))

	cmp, err := s.Compare(context.Background(), minOfTwoTask(10))
	require.NoError(t, err)
	assert.False(t, cmp.TopDown.Found)
	assert.True(t, cmp.BottomUp.Found)
	assert.False(t, cmp.Agree())
}

func TestCompare_Errors(t *testing.T) {
	s := NewSynthesizer(WithLogger(quietLogger()))

	_, err := s.Compare(context.Background(), &Task{})
	assert.ErrorIs(t, err, ErrInvalidTask)

	unbound := minOfTwoTask(10)
	unbound.Variables = []string{"q"}
	_, err = s.Compare(context.Background(), unbound)
	require.Error(t, err)

	var ub *ast.UnboundVariableError
	assert.True(t, errors.As(err, &ub))
}
