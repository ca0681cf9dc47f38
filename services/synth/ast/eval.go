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

// Bindings maps variable names to their integer values.
type Bindings map[string]int64

// Evaluate interprets a complete program.
//
// Description:
//
//	Operand categories are guaranteed by the grammar that built the tree, so
//	no runtime type checks are made: boolean operators read Value.Bool and
//	arithmetic reads Value.Int. If evaluates its condition and then exactly
//	one branch. And stops after a false left operand.
//	Integer arithmetic wraps on overflow.
//
// Inputs:
//   - e: A complete program. Trees holding a Hole are rejected.
//   - env: Variable bindings.
//
// Outputs:
//   - Value: The program's result.
//   - error: *UnboundVariableError when a Var is missing from env,
//     ErrIncompleteProgram when e holds a Hole.
//
// Thread Safety: Safe for concurrent use; neither e nor env is modified.
func Evaluate(e Expr, env Bindings) (Value, error) {
	switch n := e.(type) {
	case Literal:
		return IntValue(n.Value), nil

	case Var:
		v, ok := env[n.Name]
		if !ok {
			return Value{}, &UnboundVariableError{Name: n.Name}
		}
		return IntValue(v), nil

	case Not:
		v, err := Evaluate(n.Operand, env)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(!v.Bool), nil

	case And:
		l, err := Evaluate(n.Left, env)
		if err != nil {
			return Value{}, err
		}
		if !l.Bool {
			return BoolValue(false), nil
		}
		r, err := Evaluate(n.Right, env)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(r.Bool), nil

	case Lt:
		l, r, err := evaluatePair(n.Left, n.Right, env)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(l.Int < r.Int), nil

	case Plus:
		l, r, err := evaluatePair(n.Left, n.Right, env)
		if err != nil {
			return Value{}, err
		}
		return IntValue(l.Int + r.Int), nil

	case Times:
		l, r, err := evaluatePair(n.Left, n.Right, env)
		if err != nil {
			return Value{}, err
		}
		return IntValue(l.Int * r.Int), nil

	case If:
		c, err := Evaluate(n.Cond, env)
		if err != nil {
			return Value{}, err
		}
		if c.Bool {
			return Evaluate(n.Then, env)
		}
		return Evaluate(n.Else, env)

	case Hole:
		return Value{}, fmt.Errorf("evaluate %s: %w", n, ErrIncompleteProgram)

	default:
		return Value{}, fmt.Errorf("evaluate %T: %w", e, ErrUnknownNode)
	}
}

// evaluatePair evaluates two operands left to right.
func evaluatePair(left, right Expr, env Bindings) (Value, Value, error) {
	l, err := Evaluate(left, env)
	if err != nil {
		return Value{}, Value{}, err
	}
	r, err := Evaluate(right, env)
	if err != nil {
		return Value{}, Value{}, err
	}
	return l, r, nil
}
