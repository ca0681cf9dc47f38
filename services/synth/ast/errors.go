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
	"errors"
	"fmt"
)

// Sentinel errors for the ast package.
var (
	// Evaluation errors
	ErrUnboundVariable   = errors.New("unbound variable")
	ErrIncompleteProgram = errors.New("program contains a hole")
	ErrUnknownNode       = errors.New("unknown expression node")

	// Static checks
	ErrCategoryMismatch = errors.New("category mismatch")
)

// UnboundVariableError reports a variable that is missing from the bindings
// passed to Evaluate.
//
// It matches ErrUnboundVariable with errors.Is.
type UnboundVariableError struct {
	Name string
}

// Error implements error.
func (e *UnboundVariableError) Error() string {
	return fmt.Sprintf("unbound variable %q", e.Name)
}

// Is lets errors.Is(err, ErrUnboundVariable) match.
func (e *UnboundVariableError) Is(target error) bool {
	return target == ErrUnboundVariable
}
