// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package grammar holds the DSL inventory a search draws its productions from.
//
// A Grammar is the ordered list of literals, variables and operator
// productions enabled for one search, each tagged with the category it
// produces and, for operators, the category of every argument slot. Both
// enumerators only ever combine a production with arguments of the slot's
// category, so every complete program they build is well-typed by
// construction.
package grammar

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/pbesynth/services/synth/ast"
)

// ProductionKind distinguishes leaves from operators.
type ProductionKind uint8

const (
	ProductionLiteral ProductionKind = iota + 1
	ProductionVariable
	ProductionOperator
)

// Production is one alternative of the grammar.
//
// Thread Safety: Immutable after the grammar is built.
type Production struct {
	Kind ProductionKind

	// Op is set for operator productions.
	Op Operator

	// Literal is set for literal productions.
	Literal int64

	// Name is set for variable productions.
	Name string

	// Result is the category the production produces.
	Result ast.Category

	// Args are the categories of the argument slots, in evaluation order.
	// Empty for leaves.
	Args []ast.Category
}

// IsLeaf reports whether the production is a literal or a variable.
func (p Production) IsLeaf() bool {
	return p.Kind != ProductionOperator
}

// Arity returns the number of argument slots.
func (p Production) Arity() int {
	return len(p.Args)
}

// Instantiate builds the node for this production over args.
//
// Description:
//
//	Leaves ignore args. Operators require exactly Arity() arguments; the
//	caller is responsible for their categories. Passing holes yields the
//	production's skeleton, which is how the top-down search expands a hole.
//
// Outputs:
//   - ast.Expr: The new node.
//   - error: Non-nil if the argument count is wrong.
func (p Production) Instantiate(args ...ast.Expr) (ast.Expr, error) {
	switch p.Kind {
	case ProductionLiteral:
		return ast.Literal{Value: p.Literal}, nil
	case ProductionVariable:
		return ast.Var{Name: p.Name}, nil
	}
	if len(args) != len(p.Args) {
		return nil, fmt.Errorf("instantiate %s: want %d arguments, got %d", p, len(p.Args), len(args))
	}
	switch p.Op {
	case OpAnd:
		return ast.And{Left: args[0], Right: args[1]}, nil
	case OpNot:
		return ast.Not{Operand: args[0]}, nil
	case OpLt:
		return ast.Lt{Left: args[0], Right: args[1]}, nil
	case OpPlus:
		return ast.Plus{Left: args[0], Right: args[1]}, nil
	case OpTimes:
		return ast.Times{Left: args[0], Right: args[1]}, nil
	case OpIf:
		return ast.If{Cond: args[0], Then: args[1], Else: args[2]}, nil
	default:
		return nil, fmt.Errorf("instantiate %s: %w", p.Op, ErrUnknownOperator)
	}
}

// Skeleton returns the production with a fresh hole in every argument slot.
// For leaves it is the leaf itself.
func (p Production) Skeleton() ast.Expr {
	holes := make([]ast.Expr, len(p.Args))
	for i, c := range p.Args {
		holes[i] = ast.Hole{Category: c}
	}
	// Arity always matches, so the error is impossible.
	e, _ := p.Instantiate(holes...)
	return e
}

// String renders the production in grammar notation, e.g. "int -> (int + int)".
func (p Production) String() string {
	return p.Result.String() + " -> " + ast.Render(p.Skeleton())
}

// Config lists the ingredients of a grammar.
type Config struct {
	// Operators are the enabled operator constructors, in priority order.
	Operators []Operator

	// Literals are the integer constants available as leaves.
	Literals []int64

	// Variables are the variable names available as leaves.
	Variables []string

	// Target is the category of the programs being searched for.
	Target ast.Category
}

// Grammar is the immutable DSL inventory of one search.
//
// Thread Safety: Safe for concurrent use after New returns.
type Grammar struct {
	target      ast.Category
	operators   []Operator
	literals    []int64
	variables   []string
	leaves      []Production
	ops         []Production
	byCategory  map[ast.Category][]Production
	inhabitants map[ast.Category]bool
}

// New builds and validates a grammar.
//
// Description:
//
//	Duplicate operators, literals and variables are dropped, keeping the
//	first occurrence. Productions are ordered operators first (in the given
//	order, If contributing its int typing before its bool typing), then
//	literals, then variables.
//
//	Validation runs eagerly so that configuration problems surface before
//	any search starts. A category is inhabited when some leaf produces it
//	or some production produces it from inhabited argument categories;
//	every enabled operator production and the target must be inhabited.
//
// Inputs:
//   - cfg: Operators, literals, variables and target category.
//
// Outputs:
//   - *Grammar: The grammar.
//   - error: *ConfigError (matches ErrInvalidGrammar) on invalid input.
func New(cfg Config) (*Grammar, error) {
	if cfg.Target != ast.CategoryInt && cfg.Target != ast.CategoryBool {
		return nil, &ConfigError{Reason: fmt.Sprintf("target category %s is not supported", cfg.Target)}
	}

	g := &Grammar{
		target:     cfg.Target,
		byCategory: make(map[ast.Category][]Production),
	}

	seenOps := make(map[Operator]bool)
	for _, op := range cfg.Operators {
		if !op.Valid() {
			return nil, &ConfigError{Operator: op, Err: ErrUnknownOperator}
		}
		if seenOps[op] {
			continue
		}
		seenOps[op] = true
		g.operators = append(g.operators, op)
		for _, sig := range signatures[op] {
			g.ops = append(g.ops, Production{
				Kind:   ProductionOperator,
				Op:     op,
				Result: sig.result,
				Args:   sig.args,
			})
		}
	}

	seenLits := make(map[int64]bool)
	for _, v := range cfg.Literals {
		if seenLits[v] {
			continue
		}
		seenLits[v] = true
		g.literals = append(g.literals, v)
		g.leaves = append(g.leaves, Production{Kind: ProductionLiteral, Literal: v, Result: ast.CategoryInt})
	}

	seenVars := make(map[string]bool)
	for _, name := range cfg.Variables {
		if strings.TrimSpace(name) == "" {
			return nil, &ConfigError{Reason: "variable name is empty"}
		}
		if seenVars[name] {
			continue
		}
		seenVars[name] = true
		g.variables = append(g.variables, name)
		g.leaves = append(g.leaves, Production{Kind: ProductionVariable, Name: name, Result: ast.CategoryInt})
	}

	for _, p := range g.ops {
		g.byCategory[p.Result] = append(g.byCategory[p.Result], p)
	}
	for _, p := range g.leaves {
		g.byCategory[p.Result] = append(g.byCategory[p.Result], p)
	}

	if err := g.validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// validate runs the inhabitation fixpoint and checks every production.
func (g *Grammar) validate() error {
	inhabited := make(map[ast.Category]bool)
	for _, p := range g.leaves {
		inhabited[p.Result] = true
	}
	for changed := true; changed; {
		changed = false
		for _, p := range g.ops {
			if inhabited[p.Result] || !allInhabited(p.Args, inhabited) {
				continue
			}
			inhabited[p.Result] = true
			changed = true
		}
	}
	g.inhabitants = inhabited

	for _, p := range g.ops {
		for _, c := range p.Args {
			if !inhabited[c] {
				return &ConfigError{
					Operator: p.Op,
					Reason:   fmt.Sprintf("no production can fill its %s argument", c),
				}
			}
		}
	}
	if !inhabited[g.target] {
		return &ConfigError{Reason: fmt.Sprintf("no production yields the target category %s", g.target)}
	}
	return nil
}

func allInhabited(cats []ast.Category, inhabited map[ast.Category]bool) bool {
	for _, c := range cats {
		if !inhabited[c] {
			return false
		}
	}
	return true
}

// Target returns the category of the programs being searched for.
func (g *Grammar) Target() ast.Category {
	return g.target
}

// ProductionsFor returns every production yielding cat, operators first, then
// literals, then variables. The slice must not be modified.
func (g *Grammar) ProductionsFor(cat ast.Category) []Production {
	return g.byCategory[cat]
}

// Leaves returns the literal productions followed by the variable productions.
// The slice must not be modified.
func (g *Grammar) Leaves() []Production {
	return g.leaves
}

// OperatorProductions returns every operator production in grammar order.
// The slice must not be modified.
func (g *Grammar) OperatorProductions() []Production {
	return g.ops
}

// Operators returns the enabled operators without duplicates.
func (g *Grammar) Operators() []Operator {
	return append([]Operator(nil), g.operators...)
}

// Literals returns the literal values without duplicates.
func (g *Grammar) Literals() []int64 {
	return append([]int64(nil), g.literals...)
}

// Variables returns the variable names without duplicates.
func (g *Grammar) Variables() []string {
	return append([]string(nil), g.variables...)
}

// Inhabited reports whether some complete program of category cat exists.
func (g *Grammar) Inhabited(cat ast.Category) bool {
	return g.inhabitants[cat]
}

// String renders the grammar one category per line, e.g.
//
//	int -> (if <bool> then <int> else <int>) | 1 | 2 | x | y
//	bool -> (<int> < <int>) | (if <bool> then <bool> else <bool>)
func (g *Grammar) String() string {
	var b strings.Builder
	for _, cat := range ast.Categories {
		prods := g.byCategory[cat]
		if len(prods) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(cat.String())
		b.WriteString(" ->")
		for i, p := range prods {
			if i > 0 {
				b.WriteString(" |")
			}
			b.WriteByte(' ')
			b.WriteString(ast.Render(p.Skeleton()))
		}
	}
	return b.String()
}
