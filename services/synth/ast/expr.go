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

// Expr is a node of a program tree.
//
// The set of implementations is closed; see the package documentation.
type Expr interface {
	fmt.Stringer

	// node seals the interface.
	node()
}

// Literal is an integer constant.
type Literal struct {
	Value int64
}

// Var reads a variable from the evaluation bindings.
type Var struct {
	Name string
}

// Not is boolean negation.
type Not struct {
	Operand Expr
}

// And is boolean conjunction.
type And struct {
	Left, Right Expr
}

// Lt compares two integers.
type Lt struct {
	Left, Right Expr
}

// Plus adds two integers.
type Plus struct {
	Left, Right Expr
}

// Times multiplies two integers.
type Times struct {
	Left, Right Expr
}

// If selects Then or Else depending on Cond. Both branches share a category.
type If struct {
	Cond, Then, Else Expr
}

// Hole marks an unfilled slot that must eventually hold an expression of
// Category. Every slot gets its own Hole value; holes are never shared
// placeholders.
type Hole struct {
	Category Category
}

func (Literal) node() {}
func (Var) node()     {}
func (Not) node()     {}
func (And) node()     {}
func (Lt) node()      {}
func (Plus) node()    {}
func (Times) node()   {}
func (If) node()      {}
func (Hole) node()    {}

func (e Literal) String() string { return Render(e) }
func (e Var) String() string     { return Render(e) }
func (e Not) String() string     { return Render(e) }
func (e And) String() string     { return Render(e) }
func (e Lt) String() string      { return Render(e) }
func (e Plus) String() string    { return Render(e) }
func (e Times) String() string   { return Render(e) }
func (e If) String() string      { return Render(e) }
func (e Hole) String() string    { return Render(e) }
