// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation checks user-provided names before they reach the
// synthesis engine.
//
// Variable names appear verbatim in rendered programs, so they must not be
// confusable with the rendering's own keywords or operators.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ErrInvalidIdentifier is wrapped by every identifier validation error.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// MaxIdentifierLength bounds variable names.
const MaxIdentifierLength = 64

// identifierPattern matches a letter or underscore followed by letters,
// digits, or underscores.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reservedWords are spelled out by the program renderer.
var reservedWords = []string{"if", "then", "else", "and", "not"}

// IsIdentifier reports whether name is a valid variable name.
func IsIdentifier(name string) bool {
	return ValidateIdentifier(name) == nil
}

// ValidateIdentifier validates a variable name.
//
// Valid identifiers:
//   - 1-64 characters
//   - Start with a letter or underscore
//   - Continue with letters, digits, or underscores
//   - Are not one of: if, then, else, and, not
//
// Example:
//
//	if err := validation.ValidateIdentifier(name); err != nil {
//	    return fmt.Errorf("variable: %w", err)
//	}
func ValidateIdentifier(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidIdentifier)
	case len(name) > MaxIdentifierLength:
		return fmt.Errorf("%w: %q is longer than %d characters", ErrInvalidIdentifier, name, MaxIdentifierLength)
	case !identifierPattern.MatchString(name):
		return fmt.Errorf("%w: %q (must start with a letter or underscore and contain only letters, digits, or underscores)", ErrInvalidIdentifier, name)
	case slices.Contains(reservedWords, name):
		return fmt.Errorf("%w: %q is a reserved word", ErrInvalidIdentifier, name)
	}
	return nil
}

// SanitizeIdentifier trims surrounding whitespace and validates the result.
func SanitizeIdentifier(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if err := ValidateIdentifier(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}
