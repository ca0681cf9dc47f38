// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

import "fmt"

// Children returns the direct subtrees of e in evaluation order.
//
// If yields condition, then-branch, else-branch. Leaves and holes have no
// children. The returned slice is freshly allocated.
func Children(e Expr) []Expr {
	switch n := e.(type) {
	case Not:
		return []Expr{n.Operand}
	case And:
		return []Expr{n.Left, n.Right}
	case Lt:
		return []Expr{n.Left, n.Right}
	case Plus:
		return []Expr{n.Left, n.Right}
	case Times:
		return []Expr{n.Left, n.Right}
	case If:
		return []Expr{n.Cond, n.Then, n.Else}
	default:
		return nil
	}
}

// withChildren returns a copy of e whose subtrees are replaced by kids.
// kids must have the length Children(e) would return.
func withChildren(e Expr, kids []Expr) Expr {
	switch e.(type) {
	case Not:
		return Not{Operand: kids[0]}
	case And:
		return And{Left: kids[0], Right: kids[1]}
	case Lt:
		return Lt{Left: kids[0], Right: kids[1]}
	case Plus:
		return Plus{Left: kids[0], Right: kids[1]}
	case Times:
		return Times{Left: kids[0], Right: kids[1]}
	case If:
		return If{Cond: kids[0], Then: kids[1], Else: kids[2]}
	default:
		return e
	}
}

// Size counts the non-hole nodes of e.
func Size(e Expr) int {
	switch e.(type) {
	case Hole:
		return 0
	case Literal, Var:
		return 1
	}
	size := 1
	for _, k := range Children(e) {
		size += Size(k)
	}
	return size
}

// Complete reports whether e holds no Hole.
func Complete(e Expr) bool {
	_, found := FirstHole(e)
	return !found
}

// CategoryOf returns the category e produces.
//
// For If the category is taken from the then-branch, which may itself be a
// Hole carrying the category.
func CategoryOf(e Expr) Category {
	switch n := e.(type) {
	case Literal, Var, Plus, Times:
		return CategoryInt
	case Not, And, Lt:
		return CategoryBool
	case If:
		return CategoryOf(n.Then)
	case Hole:
		return n.Category
	default:
		return 0
	}
}

// FirstHole returns the first hole of e in left-to-right pre-order.
func FirstHole(e Expr) (Hole, bool) {
	if h, ok := e.(Hole); ok {
		return h, true
	}
	for _, k := range Children(e) {
		if h, ok := FirstHole(k); ok {
			return h, true
		}
	}
	return Hole{}, false
}

// FillFirstHole replaces the first hole of e with fill.
//
// Description:
//
//	The traversal order is the one FirstHole uses: operator slots left to
//	right, and for If the condition before the then-branch before the
//	else-branch. Only the nodes on the path from the root to the hole are
//	rebuilt; every other subtree of the result is shared with e. e itself is
//	never modified.
//
// Inputs:
//   - e: The partial program.
//   - fill: The subtree to place in the hole. The caller is responsible for
//     choosing a fill of the hole's category.
//
// Outputs:
//   - Expr: The new tree, or e unchanged when it holds no hole.
//   - bool: True if a hole was filled.
func FillFirstHole(e Expr, fill Expr) (Expr, bool) {
	switch e.(type) {
	case Hole:
		return fill, true
	case Literal, Var:
		return e, false
	}
	kids := Children(e)
	for i, k := range kids {
		if filled, ok := FillFirstHole(k, fill); ok {
			kids[i] = filled
			return withChildren(e, kids), true
		}
	}
	return e, false
}

// Walk calls fn for e and every subtree of e in pre-order.
// Returning false from fn skips the subtree below that node.
func Walk(e Expr, fn func(Expr) bool) {
	if !fn(e) {
		return
	}
	for _, k := range Children(e) {
		Walk(k, fn)
	}
}

// Vars returns the distinct variable names referenced by e, in order of
// first appearance.
func Vars(e Expr) []string {
	var names []string
	seen := make(map[string]bool)
	Walk(e, func(n Expr) bool {
		if v, ok := n.(Var); ok && !seen[v.Name] {
			seen[v.Name] = true
			names = append(names, v.Name)
		}
		return true
	})
	return names
}

// WellTyped checks every operator slot of e against the category it requires.
//
// Holes are accepted in any slot whose category they carry, so partial
// programs can be checked too. Trees built by the grammar always pass; the
// check exists for tests and for programs handed in from outside.
//
// Outputs:
//   - error: Wraps ErrCategoryMismatch and names the offending subtree.
func WellTyped(e Expr) error {
	var err error
	Walk(e, func(n Expr) bool {
		if err != nil {
			return false
		}
		err = checkSlots(n)
		return err == nil
	})
	return err
}

func checkSlots(e Expr) error {
	var want []Category
	switch n := e.(type) {
	case Not:
		want = []Category{CategoryBool}
	case And:
		want = []Category{CategoryBool, CategoryBool}
	case Lt, Plus, Times:
		want = []Category{CategoryInt, CategoryInt}
	case If:
		branch := CategoryOf(n.Then)
		want = []Category{CategoryBool, branch, branch}
	case Literal, Var, Hole:
		return nil
	default:
		return fmt.Errorf("check %T: %w", e, ErrUnknownNode)
	}
	for i, k := range Children(e) {
		if got := CategoryOf(k); got != want[i] {
			return fmt.Errorf("%s: slot %d wants %s, got %s: %w", Render(e), i, want[i], got, ErrCategoryMismatch)
		}
	}
	return nil
}
