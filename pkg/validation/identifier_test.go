// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		// Valid identifiers
		{"single letter", "x", false},
		{"underscore start", "_tmp", false},
		{"with digits", "x1", false},
		{"mixed case", "inputValue", false},
		{"max length", strings.Repeat("a", MaxIdentifierLength), false},
		{"keyword prefix", "iffy", false},
		{"keyword case differs", "If", false},

		// Invalid identifiers
		{"empty", "", true},
		{"digit start", "1x", true},
		{"space", "a b", true},
		{"operator", "x+y", true},
		{"parenthesis", "(x", true},
		{"unicode", "xé", true},
		{"too long", strings.Repeat("a", MaxIdentifierLength+1), true},
		{"reserved if", "if", true},
		{"reserved then", "then", true},
		{"reserved else", "else", true},
		{"reserved and", "and", true},
		{"reserved not", "not", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidIdentifier)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, !tt.wantErr, IsIdentifier(tt.input))
		})
	}
}

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"x", "x", false},
		{"  y\t", "y", false},
		{" not ", "", true},
		{"   ", "", true},
	}

	for _, tt := range tests {
		got, err := SanitizeIdentifier(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got)
	}
}
