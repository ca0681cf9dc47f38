// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package synth is the entry point for programming-by-example synthesis.
//
// A Task names the operators, literals and variables a program may use,
// the input/output examples it must reproduce, and a search bound.
// Synthesize builds the task's grammar and oracle and runs one search
// strategy; Compare runs both strategies side by side.
//
//	┌──────────┐   Build    ┌─────────────────┐   Search   ┌──────────────┐
//	│   Task   │ ─────────▶ │ grammar, oracle │ ─────────▶ │ search.Result│
//	└──────────┘            └─────────────────┘            └──────────────┘
//	     ▲                                                        │
//	     │ LoadTask (YAML)                         span, metrics, logs
//
// Configuration is loaded with priority env > file > defaults:
//
//	search:
//	  strategy: bottom-up      # PBESYNTH_STRATEGY
//	  default_bound: 10        # PBESYNTH_DEFAULT_BOUND
//	observability:
//	  tracing_enabled: true    # PBESYNTH_TRACING_ENABLED
//	  metrics_enabled: false   # PBESYNTH_METRICS_ENABLED
//	  log_level: info          # PBESYNTH_LOG_LEVEL
//	  json_logs: false         # PBESYNTH_JSON_LOGS
//	  service_name: pbesynth
//
// Errors from a malformed task (ErrInvalidTask) and from evaluation, such
// as an example that does not bind a variable the grammar uses, are
// returned as errors. A search that runs out of bound is a normal result
// with Found == false.
package synth
