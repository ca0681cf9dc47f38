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

import (
	"strconv"
	"strings"
)

// Render returns a fully parenthesized, deterministic rendering of e.
//
// The output is meant for logs and reports; there is no parser for it.
//
//	Plus{Var{"x"}, Literal{1}}           -> (x + 1)
//	If{Lt{x, y}, x, y}                   -> (if (x < y) then x else y)
//	Not{Hole{CategoryBool}}              -> (not <bool>)
func Render(e Expr) string {
	var b strings.Builder
	render(&b, e)
	return b.String()
}

func render(b *strings.Builder, e Expr) {
	switch n := e.(type) {
	case Literal:
		b.WriteString(strconv.FormatInt(n.Value, 10))
	case Var:
		b.WriteString(n.Name)
	case Not:
		b.WriteString("(not ")
		render(b, n.Operand)
		b.WriteByte(')')
	case And:
		renderInfix(b, n.Left, " and ", n.Right)
	case Lt:
		renderInfix(b, n.Left, " < ", n.Right)
	case Plus:
		renderInfix(b, n.Left, " + ", n.Right)
	case Times:
		renderInfix(b, n.Left, " * ", n.Right)
	case If:
		b.WriteString("(if ")
		render(b, n.Cond)
		b.WriteString(" then ")
		render(b, n.Then)
		b.WriteString(" else ")
		render(b, n.Else)
		b.WriteByte(')')
	case Hole:
		b.WriteByte('<')
		b.WriteString(n.Category.String())
		b.WriteByte('>')
	default:
		b.WriteString("<?>")
	}
}

func renderInfix(b *strings.Builder, left Expr, op string, right Expr) {
	b.WriteByte('(')
	render(b, left)
	b.WriteString(op)
	render(b, right)
	b.WriteByte(')')
}
