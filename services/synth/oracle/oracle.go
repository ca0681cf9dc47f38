// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package oracle decides whether a complete program reproduces a set of
// input/output examples.
package oracle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AleutianAI/pbesynth/services/synth/ast"
)

// Sentinel errors for the oracle package.
var (
	ErrNoExamples   = errors.New("example set is empty")
	ErrMixedOutputs = errors.New("examples disagree on the output category")
	ErrBadOutput    = errors.New("example output has no category")
)

// Example is one input/output pair.
type Example struct {
	// Inputs binds every variable of the grammar.
	Inputs ast.Bindings

	// Output is the expected result.
	Output ast.Value
}

// IntExample builds an example with an integer output.
func IntExample(inputs ast.Bindings, out int64) Example {
	return Example{Inputs: inputs, Output: ast.IntValue(out)}
}

// BoolExample builds an example with a boolean output.
func BoolExample(inputs ast.Bindings, out bool) Example {
	return Example{Inputs: inputs, Output: ast.BoolValue(out)}
}

// Signature is the ordered tuple of a program's outputs over the example
// inputs. Two programs with equal signatures are indistinguishable on the
// examples.
type Signature []ast.Value

// Equal compares two signatures element by element.
func (s Signature) Equal(other Signature) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders the signature as "[v1 v2 ...]".
func (s Signature) String() string {
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Oracle checks programs against a fixed, ordered example set.
//
// Thread Safety: Immutable after New; safe for concurrent use.
type Oracle struct {
	examples []Example
	expected Signature
	target   ast.Category
}

// New validates an example set and wraps it in an Oracle.
//
// Inputs:
//   - examples: Non-empty, ordered examples whose outputs share one category.
//
// Outputs:
//   - *Oracle: The oracle. It keeps its own copy of the slice.
//   - error: ErrNoExamples, ErrBadOutput or ErrMixedOutputs.
func New(examples []Example) (*Oracle, error) {
	if len(examples) == 0 {
		return nil, ErrNoExamples
	}
	target := examples[0].Output.Kind
	expected := make(Signature, len(examples))
	for i, ex := range examples {
		if ex.Output.Kind != ast.CategoryInt && ex.Output.Kind != ast.CategoryBool {
			return nil, fmt.Errorf("example %d: %w", i, ErrBadOutput)
		}
		if ex.Output.Kind != target {
			return nil, fmt.Errorf("example %d is %s, example 0 is %s: %w", i, ex.Output.Kind, target, ErrMixedOutputs)
		}
		expected[i] = ex.Output
	}
	return &Oracle{
		examples: append([]Example(nil), examples...),
		expected: expected,
		target:   target,
	}, nil
}

// Target returns the category shared by every expected output.
func (o *Oracle) Target() ast.Category {
	return o.target
}

// Len returns the number of examples.
func (o *Oracle) Len() int {
	return len(o.examples)
}

// Examples returns a copy of the example set.
func (o *Oracle) Examples() []Example {
	return append([]Example(nil), o.examples...)
}

// Expected returns the expected outputs as a signature.
func (o *Oracle) Expected() Signature {
	return append(Signature(nil), o.expected...)
}

// Satisfies reports whether p reproduces every example.
//
// Description:
//
//	Examples are checked in order and the check stops at the first
//	mismatch. Equality is exact and type-sensitive.
//
// Inputs:
//   - p: A complete program.
//
// Outputs:
//   - bool: True if every example is reproduced.
//   - error: Evaluation errors (e.g. an unbound variable) are returned as is;
//     they are never folded into a false result.
func (o *Oracle) Satisfies(p ast.Expr) (bool, error) {
	return satisfies(p, o.examples)
}

// Observe evaluates p on every example input and returns its signature.
// Expected outputs are not consulted.
func (o *Oracle) Observe(p ast.Expr) (Signature, error) {
	if !ast.Complete(p) {
		return nil, fmt.Errorf("observe %s: %w", p, ast.ErrIncompleteProgram)
	}
	sig := make(Signature, len(o.examples))
	for i, ex := range o.examples {
		v, err := ast.Evaluate(p, ex.Inputs)
		if err != nil {
			return nil, fmt.Errorf("observe %s on example %d: %w", p, i, err)
		}
		sig[i] = v
	}
	return sig, nil
}

// Matches reports whether a signature equals the expected outputs, which
// is the same verdict Satisfies gives for the program it was observed from.
func (o *Oracle) Matches(sig Signature) bool {
	return o.expected.Equal(sig)
}

// Satisfies checks p against examples without building an Oracle.
func Satisfies(p ast.Expr, examples []Example) (bool, error) {
	return satisfies(p, examples)
}

func satisfies(p ast.Expr, examples []Example) (bool, error) {
	if !ast.Complete(p) {
		return false, fmt.Errorf("check %s: %w", p, ast.ErrIncompleteProgram)
	}
	for i, ex := range examples {
		got, err := ast.Evaluate(p, ex.Inputs)
		if err != nil {
			return false, fmt.Errorf("check %s on example %d: %w", p, i, err)
		}
		if got != ex.Output {
			return false, nil
		}
	}
	return true, nil
}
