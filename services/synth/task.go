// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package synth

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/pbesynth/pkg/validation"
	"github.com/AleutianAI/pbesynth/services/synth/ast"
	"github.com/AleutianAI/pbesynth/services/synth/grammar"
	"github.com/AleutianAI/pbesynth/services/synth/oracle"
	"github.com/AleutianAI/pbesynth/services/synth/search"
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// taskValidate validates task files and configuration.
var taskValidate *validator.Validate

func init() {
	taskValidate = validator.New()
	_ = taskValidate.RegisterValidation("identifier", validateIdentifier)
}

// validateIdentifier accepts names usable as program variables.
func validateIdentifier(fl validator.FieldLevel) bool {
	return validation.IsIdentifier(fl.Field().String())
}

// =============================================================================
// Task
// =============================================================================

// Task is one synthesis problem: a grammar description, a bound and the
// examples the program must reproduce.
//
// Thread Safety: Read-only once built; Synthesize never modifies it.
type Task struct {
	// Name labels the task in logs. Optional.
	Name string

	// Bound is the search bound: steps for top-down, an exclusive size
	// limit for bottom-up.
	Bound int

	// Strategy is the preferred strategy. Empty means the caller decides.
	Strategy search.Strategy

	// Operators are the enabled operators, in priority order.
	Operators []grammar.Operator

	// Literals are the integer constants available to programs.
	Literals []int64

	// Variables are the input names available to programs.
	Variables []string

	// Examples are the input/output pairs, in check order.
	Examples []oracle.Example
}

// Build validates the task and constructs its oracle and grammar. The
// grammar's target is the examples' output category, and every example must
// bind every grammar variable.
//
// Outputs:
//   - *grammar.Grammar: The grammar.
//   - *oracle.Oracle: The oracle.
//   - error: Wraps ErrInvalidTask together with the underlying cause.
func (t *Task) Build() (*grammar.Grammar, *oracle.Oracle, error) {
	if t == nil {
		return nil, nil, fmt.Errorf("%w: task is nil", ErrInvalidTask)
	}
	if t.Bound < 0 {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidTask, fmt.Errorf("bound %d: %w", t.Bound, search.ErrInvalidBound))
	}
	o, err := oracle.New(t.Examples)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidTask, err)
	}
	g, err := grammar.New(grammar.Config{
		Operators: t.Operators,
		Literals:  t.Literals,
		Variables: t.Variables,
		Target:    o.Target(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidTask, err)
	}
	for i, ex := range o.Examples() {
		for _, name := range g.Variables() {
			if _, ok := ex.Inputs[name]; !ok {
				return nil, nil, fmt.Errorf("%w: example %d: %w", ErrInvalidTask, i, &ast.UnboundVariableError{Name: name})
			}
		}
	}
	return g, o, nil
}

// =============================================================================
// Task Files
// =============================================================================

// TaskFile is the on-disk form of a Task.
//
// Example:
//
//	bound: 10
//	strategy: bottom-up
//	operators: [lt, if]
//	literals: [1, 2]
//	variables: [x, y]
//	examples:
//	  - inputs: {x: 5, y: 10}
//	    output: 5
type TaskFile struct {
	Name      string        `yaml:"name,omitempty"`
	Bound     *int          `yaml:"bound,omitempty" validate:"omitempty,gte=0"`
	Strategy  string        `yaml:"strategy,omitempty"`
	Operators []string      `yaml:"operators" validate:"dive,required"`
	Literals  []int64       `yaml:"literals"`
	Variables []string      `yaml:"variables"`
	Examples  []ExampleFile `yaml:"examples" validate:"required,min=1,dive"`
}

// ExampleFile is the on-disk form of an Example. Output is a YAML integer
// or boolean scalar.
type ExampleFile struct {
	Inputs map[string]int64 `yaml:"inputs" validate:"dive,keys,identifier,endkeys"`
	Output yaml.Node        `yaml:"output"`
}

// ParseTask decodes and validates a YAML task.
//
// Inputs:
//   - data: YAML document.
//   - defaultBound: Bound used when the document does not set one.
//
// Outputs:
//   - *Task: The task. Its grammar and examples are not yet cross-checked;
//     Build does that.
//   - error: Wraps ErrInvalidTask.
func ParseTask(data []byte, defaultBound int) (*Task, error) {
	var tf TaskFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("%w: parse: %w", ErrInvalidTask, err)
	}
	return tf.ToTask(defaultBound)
}

// LoadTask reads a YAML task file.
func LoadTask(path string, defaultBound int) (*Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task %s: %w", path, err)
	}
	task, err := ParseTask(data, defaultBound)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", path, err)
	}
	if task.Name == "" {
		task.Name = path
	}
	return task, nil
}

// ToTask validates the file and converts it.
func (tf *TaskFile) ToTask(defaultBound int) (*Task, error) {
	if err := taskValidate.Struct(tf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTask, err)
	}

	ops, err := grammar.ParseOperators(tf.Operators)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTask, err)
	}

	vars := make([]string, 0, len(tf.Variables))
	for _, v := range tf.Variables {
		name, err := validation.SanitizeIdentifier(v)
		if err != nil {
			return nil, fmt.Errorf("%w: variable: %w", ErrInvalidTask, err)
		}
		vars = append(vars, name)
	}

	task := &Task{
		Name:      tf.Name,
		Bound:     defaultBound,
		Operators: ops,
		Literals:  tf.Literals,
		Variables: vars,
		Examples:  make([]oracle.Example, 0, len(tf.Examples)),
	}
	if tf.Bound != nil {
		task.Bound = *tf.Bound
	}
	if strings.TrimSpace(tf.Strategy) != "" {
		s, err := search.ParseStrategy(tf.Strategy)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidTask, err)
		}
		task.Strategy = s
	}

	for i, ef := range tf.Examples {
		out, err := decodeOutput(&ef.Output)
		if err != nil {
			return nil, fmt.Errorf("%w: example %d: %w", ErrInvalidTask, i, err)
		}
		task.Examples = append(task.Examples, oracle.Example{
			Inputs: ast.Bindings(ef.Inputs),
			Output: out,
		})
	}
	return task, nil
}

// decodeOutput reads an integer or boolean scalar.
func decodeOutput(n *yaml.Node) (ast.Value, error) {
	if n.Kind != yaml.ScalarNode {
		return ast.Value{}, fmt.Errorf("output must be an integer or a boolean")
	}
	switch n.ShortTag() {
	case "!!int":
		var v int64
		if err := n.Decode(&v); err != nil {
			return ast.Value{}, fmt.Errorf("output %q: %w", n.Value, err)
		}
		return ast.IntValue(v), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return ast.Value{}, fmt.Errorf("output %q: %w", n.Value, err)
		}
		return ast.BoolValue(b), nil
	default:
		return ast.Value{}, fmt.Errorf("output %q must be an integer or a boolean", n.Value)
	}
}
