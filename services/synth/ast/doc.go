// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ast defines the expression trees searched by the synthesizer and the
// interpreter that evaluates them.
//
// Architecture:
//
//	Expr is a closed variant. The only implementations are the node types in
//	this package; an unexported marker method keeps other packages from adding
//	new ones, so every switch in this package covers the whole language.
//
//	┌──────────────┬──────────────────────────┬──────────────┐
//	│ Node         │ Arguments                │ Result       │
//	├──────────────┼──────────────────────────┼──────────────┤
//	│ Literal      │ -                        │ int          │
//	│ Var          │ -                        │ int          │
//	│ Not          │ bool                     │ bool         │
//	│ And          │ bool, bool               │ bool         │
//	│ Lt           │ int, int                 │ bool         │
//	│ Plus, Times  │ int, int                 │ int          │
//	│ If           │ bool, C, C               │ C            │
//	│ Hole         │ - (placeholder for C)    │ C            │
//	└──────────────┴──────────────────────────┴──────────────┘
//
// Persistence:
//
//	Trees are values. Nothing in this package mutates a tree after it has been
//	built: FillFirstHole returns a new tree that shares every untouched subtree
//	with its input. A partial program sitting in a search worklist therefore
//	stays valid no matter how many of its siblings are expanded.
//
// Completeness:
//
//	A tree is complete when it holds no Hole. Only complete trees may be passed
//	to Evaluate; callers check Complete first.
package ast
