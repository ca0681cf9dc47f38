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

import "strconv"

// Category is the syntactic class a grammar slot requires and a node produces.
type Category uint8

const (
	// CategoryInt is an integer-valued expression.
	CategoryInt Category = iota + 1

	// CategoryBool is a boolean-valued expression.
	CategoryBool
)

// Categories lists every category in a fixed order.
var Categories = []Category{CategoryInt, CategoryBool}

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryInt:
		return "int"
	case CategoryBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Value is the result of evaluating a complete program.
//
// Description:
//
//	Value is comparable with ==. Equality is type-sensitive: an int value
//	never equals a bool value, even when Int is 0 or 1. Only the field that
//	matches Kind is meaningful; constructors leave the other one zero so
//	that == and structural hashing agree.
//
// Thread Safety: Immutable, safe for concurrent use.
type Value struct {
	Kind Category
	Int  int64
	Bool bool
}

// IntValue wraps an integer.
func IntValue(v int64) Value {
	return Value{Kind: CategoryInt, Int: v}
}

// BoolValue wraps a boolean.
func BoolValue(v bool) Value {
	return Value{Kind: CategoryBool, Bool: v}
}

// IsInt reports whether v holds an integer.
func (v Value) IsInt() bool { return v.Kind == CategoryInt }

// IsBool reports whether v holds a boolean.
func (v Value) IsBool() bool { return v.Kind == CategoryBool }

// String renders the value the way Render prints literals.
func (v Value) String() string {
	switch v.Kind {
	case CategoryInt:
		return strconv.FormatInt(v.Int, 10)
	case CategoryBool:
		return strconv.FormatBool(v.Bool)
	default:
		return "<invalid>"
	}
}
