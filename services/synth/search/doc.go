// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package search implements the two enumerative program search strategies.
//
// Architecture:
//
//	┌──────────────────────────────────────────────────────────────────────┐
//	│                     Enumerator (interface)                           │
//	│        Search(ctx, grammar, oracle, bound) -> *Result                │
//	├────────────────────────────────┬─────────────────────────────────────┤
//	│ TopDown                        │ BottomUp                            │
//	│  FIFO worklist of partial      │  levels[size][category] of complete │
//	│  programs with holes.          │  programs, built from smaller       │
//	│  One step = one pop; the       │  levels; duplicates by observation  │
//	│  first hole of the popped      │  signature are discarded; sizes     │
//	│  program is expanded with      │  1 .. bound-1 are built.            │
//	│  every production of its       │                                     │
//	│  category.                     │                                     │
//	└────────────────────────────────┴─────────────────────────────────────┘
//
// Bounds:
//
//	The bound of TopDown counts popped worklist items, the bound of BottomUp
//	is an exclusive limit on program size. The two are not comparable.
//
// Outcomes:
//
//	Running out of bound is a normal outcome: Search returns a Result with
//	Found == false and a nil error. Errors are reserved for problems with
//	the inputs (an example that does not bind a variable the grammar uses)
//	and for context cancellation, so a malformed task is never reported as
//	"no program found".
//
// Determinism:
//
//	Both strategies iterate productions in grammar order and never consult
//	maps or clocks when choosing what to build next, so identical inputs
//	always return the identical program.
package search
