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
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/pbesynth/services/synth/search"
)

// Synthesizer runs search strategies over tasks.
//
// Description:
//
//	Each call builds the task's grammar and oracle, picks the enumerator
//	for the strategy and runs it under a "synth.run" span. Every run gets
//	a fresh run ID that is logged, attached to the span and returned in
//	the result. Metrics are recorded when a Metrics instance is set.
//
// Thread Safety: Safe for concurrent use. Runs share nothing mutable.
type Synthesizer struct {
	logger  *slog.Logger
	tracer  *search.Tracer
	metrics *search.Metrics
	newID   func() string
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synthesizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(tracer *search.Tracer) Option {
	return func(s *Synthesizer) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithMetrics enables metric recording.
func WithMetrics(metrics *search.Metrics) Option {
	return func(s *Synthesizer) {
		s.metrics = metrics
	}
}

// NewSynthesizer creates a synthesizer. By default it logs to
// slog.Default(), traces through the global tracer provider and records
// no metrics.
func NewSynthesizer(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		logger: slog.Default(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = search.NewTracer(s.logger, true)
	}
	return s
}

// NewFromConfig creates a synthesizer wired according to cfg.
//
// Inputs:
//   - cfg: Validated configuration.
//   - logger: Base logger. Nil uses slog.Default().
func NewFromConfig(cfg Config, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	opts := []Option{
		WithLogger(logger),
		WithTracer(search.NewTracer(logger, cfg.Observability.TracingEnabled)),
	}
	if cfg.Observability.MetricsEnabled {
		opts = append(opts, WithMetrics(search.DefaultMetrics()))
	}
	return NewSynthesizer(opts...)
}

// Synthesize searches for a program that satisfies task.
//
// Inputs:
//   - ctx: Cancellation aborts the search with a wrapped ctx.Err().
//   - task: The task. Validated before any search starts.
//   - strategy: top-down or bottom-up.
//
// Outputs:
//   - *search.Result: Found or not found. Running out of bound is not an
//     error.
//   - error: ErrInvalidTask, ErrUnknownStrategy, evaluation errors such as
//     ast.ErrUnboundVariable, or cancellation.
func (s *Synthesizer) Synthesize(ctx context.Context, task *Task, strategy search.Strategy) (*search.Result, error) {
	g, o, err := task.Build()
	if err != nil {
		return nil, err
	}

	runID := s.newID()
	logger := s.logger.With(
		slog.String("run_id", runID),
		slog.String("strategy", string(strategy)),
	)
	if task.Name != "" {
		logger = logger.With(slog.String("task", task.Name))
	}

	enum, err := search.New(strategy, logger)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.StartRun(ctx, runID, strategy, task.Bound)
	logger = search.LoggerWithTrace(ctx, logger)
	logger.InfoContext(ctx, "synthesis started",
		slog.Int("bound", task.Bound),
		slog.Int("examples", o.Len()),
		slog.String("target", g.Target().String()),
	)

	result, err := enum.Search(ctx, g, o, task.Bound)
	if result != nil {
		result.RunID = runID
	}
	s.tracer.EndRun(span, result, err)
	s.metrics.RecordRun(strategy, result, err)

	if err != nil {
		logger.ErrorContext(ctx, "synthesis failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s run %s: %w", strategy, runID, err)
	}

	logger.InfoContext(ctx, "synthesis completed",
		slog.Bool("found", result.Found),
		slog.String("program", result.ProgramText()),
		slog.Int64("generated", result.Stats.Generated),
		slog.Int64("evaluated", result.Stats.Evaluated),
		slog.Int64("pruned", result.Stats.Pruned),
		slog.Int64("steps", result.Stats.Steps),
		slog.Duration("elapsed", result.Stats.Elapsed),
	)
	return result, nil
}

// Comparison holds the results of running both strategies on one task.
type Comparison struct {
	TopDown  *search.Result `json:"top_down" yaml:"top_down"`
	BottomUp *search.Result `json:"bottom_up" yaml:"bottom_up"`
}

// Agree reports whether both strategies reached the same verdict.
func (c *Comparison) Agree() bool {
	return c.TopDown.Found == c.BottomUp.Found
}

// Compare runs both strategies on task concurrently.
//
// Description:
//
//	Each strategy runs single-threaded in its own goroutine; they share
//	the task read-only. The first error cancels the other run.
//
// Outputs:
//   - *Comparison: Both results.
//   - error: The first error from either run.
func (s *Synthesizer) Compare(ctx context.Context, task *Task) (*Comparison, error) {
	if _, _, err := task.Build(); err != nil {
		return nil, err
	}

	var cmp Comparison
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res, err := s.Synthesize(gCtx, task, search.StrategyTopDown)
		cmp.TopDown = res
		return err
	})
	g.Go(func() error {
		res, err := s.Synthesize(gCtx, task, search.StrategyBottomUp)
		cmp.BottomUp = res
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &cmp, nil
}

// Synthesize runs one search with a default Synthesizer.
func Synthesize(ctx context.Context, task *Task, strategy search.Strategy) (*search.Result, error) {
	return NewSynthesizer().Synthesize(ctx, task, strategy)
}
