// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package grammar

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/pbesynth/services/synth/ast"
)

// Operator tags an operator constructor that may be enabled in a grammar.
type Operator uint8

const (
	OpAnd Operator = iota + 1
	OpNot
	OpLt
	OpPlus
	OpTimes
	OpIf
)

// AllOperators lists every operator in declaration order.
var AllOperators = []Operator{OpAnd, OpNot, OpLt, OpPlus, OpTimes, OpIf}

// signature is one typing of an operator.
type signature struct {
	result ast.Category
	args   []ast.Category
}

// signatures holds the typings of every operator. If is polymorphic in its
// branch category and has one typing per category, int first.
var signatures = map[Operator][]signature{
	OpAnd:   {{ast.CategoryBool, []ast.Category{ast.CategoryBool, ast.CategoryBool}}},
	OpNot:   {{ast.CategoryBool, []ast.Category{ast.CategoryBool}}},
	OpLt:    {{ast.CategoryBool, []ast.Category{ast.CategoryInt, ast.CategoryInt}}},
	OpPlus:  {{ast.CategoryInt, []ast.Category{ast.CategoryInt, ast.CategoryInt}}},
	OpTimes: {{ast.CategoryInt, []ast.Category{ast.CategoryInt, ast.CategoryInt}}},
	OpIf: {
		{ast.CategoryInt, []ast.Category{ast.CategoryBool, ast.CategoryInt, ast.CategoryInt}},
		{ast.CategoryBool, []ast.Category{ast.CategoryBool, ast.CategoryBool, ast.CategoryBool}},
	},
}

var operatorNames = map[Operator]string{
	OpAnd:   "and",
	OpNot:   "not",
	OpLt:    "lt",
	OpPlus:  "plus",
	OpTimes: "times",
	OpIf:    "if",
}

var operatorAliases = map[string]Operator{
	"and":         OpAnd,
	"&&":          OpAnd,
	"not":         OpNot,
	"!":           OpNot,
	"lt":          OpLt,
	"<":           OpLt,
	"plus":        OpPlus,
	"+":           OpPlus,
	"times":       OpTimes,
	"*":           OpTimes,
	"if":          OpIf,
	"ite":         OpIf,
	"conditional": OpIf,
}

// String returns the canonical operator name.
func (o Operator) String() string {
	if name, ok := operatorNames[o]; ok {
		return name
	}
	return fmt.Sprintf("operator(%d)", uint8(o))
}

// Valid reports whether o is a known operator.
func (o Operator) Valid() bool {
	_, ok := signatures[o]
	return ok
}

// ParseOperator resolves an operator name.
//
// Matching is case-insensitive and accepts the canonical names plus a few
// aliases ("ite", "conditional", "<", "+", "*", "&&", "!").
//
// Outputs:
//   - Operator: The resolved operator.
//   - error: Wraps ErrUnknownOperator for any other name.
func ParseOperator(name string) (Operator, error) {
	op, ok := operatorAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%q: %w", name, ErrUnknownOperator)
	}
	return op, nil
}

// ParseOperators resolves a list of operator names, keeping their order.
func ParseOperators(names []string) ([]Operator, error) {
	ops := make([]Operator, 0, len(names))
	for _, name := range names {
		op, err := ParseOperator(name)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}
