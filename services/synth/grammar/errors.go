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
	"errors"
	"fmt"
)

// Sentinel errors for the grammar package.
var (
	ErrInvalidGrammar  = errors.New("invalid grammar configuration")
	ErrUnknownOperator = errors.New("unknown operator")
)

// ConfigError describes why a grammar could not be built.
//
// It matches ErrInvalidGrammar with errors.Is and unwraps to the underlying
// cause, if any.
type ConfigError struct {
	// Operator is the offending operator, zero when the problem is not tied
	// to one.
	Operator Operator

	// Reason is a short human-readable explanation.
	Reason string

	// Err is the underlying cause, may be nil.
	Err error
}

// Error implements error.
func (e *ConfigError) Error() string {
	msg := ErrInvalidGrammar.Error()
	if e.Operator != 0 {
		msg += ": operator " + e.Operator.String()
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is lets errors.Is(err, ErrInvalidGrammar) match.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidGrammar
}

// Unwrap returns the underlying cause.
func (e *ConfigError) Unwrap() error {
	return e.Err
}
