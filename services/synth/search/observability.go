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
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const searchTracerName = "pbesynth.search"

// Tracer provides OpenTelemetry tracing for search runs.
//
// Thread Safety: Safe for concurrent use.
type Tracer struct {
	tracer  trace.Tracer
	logger  *slog.Logger
	enabled bool
}

// NewTracer creates a tracer backed by the global tracer provider.
//
// Inputs:
//   - logger: Logger for structured logging (can be nil).
//   - enabled: When false every span is a no-op.
//
// Outputs:
//   - *Tracer: Tracer instance.
func NewTracer(logger *slog.Logger, enabled bool) *Tracer {
	return NewTracerWithProvider(logger, otel.GetTracerProvider(), enabled)
}

// NewTracerWithProvider creates a tracer backed by an explicit provider.
func NewTracerWithProvider(logger *slog.Logger, tp trace.TracerProvider, enabled bool) *Tracer {
	if logger == nil {
		logger = slog.Default()
	}
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Tracer{
		tracer:  tp.Tracer(searchTracerName),
		logger:  logger,
		enabled: enabled,
	}
}

// StartRun starts a span for one search run.
//
// Inputs:
//   - ctx: Parent context.
//   - runID: Run identifier.
//   - strategy: The strategy about to run.
//   - bound: The bound it was given.
//
// Outputs:
//   - context.Context: Context with span.
//   - trace.Span: The created span, a no-op span if tracing is disabled.
func (t *Tracer) StartRun(ctx context.Context, runID string, strategy Strategy, bound int) (context.Context, trace.Span) {
	if !t.enabled {
		return ctx, noop.Span{}
	}

	ctx, span := t.tracer.Start(ctx, "synth.run",
		trace.WithAttributes(
			attribute.String("synth.run_id", runID),
			attribute.String("synth.strategy", string(strategy)),
			attribute.Int("synth.bound", bound),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	return ctx, span
}

// EndRun completes the run span.
//
// Inputs:
//   - span: The span to end.
//   - result: The search result (nil on error).
//   - err: Error if the run failed.
func (t *Tracer) EndRun(span trace.Span, result *Result, err error) {
	if span == nil {
		return
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	if result != nil {
		span.SetAttributes(
			attribute.Bool("synth.result.found", result.Found),
			attribute.String("synth.result.program", truncateForObs(result.ProgramText(), 200)),
			attribute.Int64("synth.result.generated", result.Stats.Generated),
			attribute.Int64("synth.result.evaluated", result.Stats.Evaluated),
			attribute.Int64("synth.result.pruned", result.Stats.Pruned),
			attribute.Int64("synth.result.steps", result.Stats.Steps),
			attribute.Int("synth.result.max_level", result.Stats.MaxLevel),
			attribute.String("synth.result.elapsed", result.Stats.Elapsed.String()),
		)
	}

	span.End()
}

// truncateForObs truncates a string for use in span attributes.
func truncateForObs(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// LoggerWithTrace returns a logger with trace context.
//
// Inputs:
//   - ctx: Context that may contain trace information.
//   - logger: Base logger.
//
// Outputs:
//   - *slog.Logger: Logger with trace_id and span_id if available.
func LoggerWithTrace(ctx context.Context, logger *slog.Logger) *slog.Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return logger
	}
	return logger.With(
		slog.String("trace_id", spanCtx.TraceID().String()),
		slog.String("span_id", spanCtx.SpanID().String()),
	)
}
