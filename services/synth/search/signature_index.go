// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package search

import (
	"fmt"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/AleutianAI/pbesynth/services/synth/oracle"
)

// signatureIndex is the set of observation signatures seen so far.
//
// Signatures are bucketed by structural hash. A bucket holds every distinct
// signature with that hash, so collisions never cause a false duplicate.
//
// Thread Safety: NOT safe for concurrent use. Owned by one search run.
type signatureIndex struct {
	buckets map[uint64][]oracle.Signature
	size    int
}

func newSignatureIndex() *signatureIndex {
	return &signatureIndex{buckets: make(map[uint64][]oracle.Signature)}
}

// insert adds sig unless an equal signature is already present.
//
// Outputs:
//   - bool: True if sig was new and has been added.
//   - error: Non-nil only if the signature cannot be hashed.
func (x *signatureIndex) insert(sig oracle.Signature) (bool, error) {
	h, err := hashstructure.Hash(sig, hashstructure.FormatV2, nil)
	if err != nil {
		return false, fmt.Errorf("hashing signature %s: %w", sig, err)
	}
	for _, seen := range x.buckets[h] {
		if seen.Equal(sig) {
			return false, nil
		}
	}
	x.buckets[h] = append(x.buckets[h], sig)
	x.size++
	return true, nil
}

// len returns the number of distinct signatures.
func (x *signatureIndex) len() int {
	return x.size
}
