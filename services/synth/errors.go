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
	"errors"

	"github.com/AleutianAI/pbesynth/services/synth/search"
)

// Sentinel errors for the synth package.
var (
	// ErrInvalidTask wraps every problem found while validating or building
	// a task. The underlying grammar or oracle error stays matchable.
	ErrInvalidTask = errors.New("invalid synthesis task")

	// ErrUnknownStrategy is returned for strategy names other than
	// top-down and bottom-up.
	ErrUnknownStrategy = search.ErrUnknownStrategy

	// ErrInvalidConfig is returned when the configuration fails validation.
	ErrInvalidConfig = errors.New("invalid synth configuration")
)
