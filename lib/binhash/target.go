// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"errors"
	"fmt"
	"strings"
)

// Entry is one expected volume: its published file name (may be empty)
// and digest.
type Entry struct {
	Name   string
	Digest string
}

// Target is the immutable set of digests a search must reproduce.
type Target struct {
	algorithm Algorithm
	entries   []Entry
	counts    map[string]int
}

// NewTarget validates and normalizes entries. At least one entry is
// required; repeated digests are kept.
func NewTarget(algorithm Algorithm, entries []Entry) (*Target, error) {
	if algorithm.DigestLength() == 0 {
		return nil, fmt.Errorf("unknown checksum algorithm %q", string(algorithm))
	}
	if len(entries) == 0 {
		return nil, errors.New("verification target has no checksums")
	}
	target := &Target{
		algorithm: algorithm,
		entries:   make([]Entry, 0, len(entries)),
		counts:    make(map[string]int, len(entries)),
	}
	for _, entry := range entries {
		digest, err := ParseDigest(algorithm, entry.Digest)
		if err != nil {
			if entry.Name != "" {
				return nil, fmt.Errorf("%s: %w", entry.Name, err)
			}
			return nil, err
		}
		target.entries = append(target.entries, Entry{Name: entry.Name, Digest: digest})
		target.counts[digest]++
	}
	return target, nil
}

// Algorithm returns the target's checksum algorithm.
func (t *Target) Algorithm() Algorithm { return t.algorithm }

// Entries returns a copy of the expected entries in their original
// order.
func (t *Target) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// Len returns the number of expected volumes.
func (t *Target) Len() int { return len(t.entries) }

// Contains reports whether digest (any case) is expected.
func (t *Target) Contains(digest string) bool {
	normalized, err := ParseDigest(t.algorithm, digest)
	if err != nil {
		return false
	}
	return t.counts[normalized] > 0
}

// Matches reports whether digests reproduce the target exactly: the
// same multiset of values, in any order.
func (t *Target) Matches(digests []string) bool {
	if len(digests) != len(t.entries) {
		return false
	}
	remaining := make(map[string]int, len(t.counts))
	for digest, count := range t.counts {
		remaining[digest] = count
	}
	for _, digest := range digests {
		normalized, err := ParseDigest(t.algorithm, digest)
		if err != nil || remaining[normalized] == 0 {
			return false
		}
		remaining[normalized]--
	}
	return true
}

// Verdict is the outcome of verifying one candidate's volumes.
type Verdict struct {
	// Digests holds one digest per volume, in volume order.
	Digests []string

	// Matched is true when Digests reproduce the target.
	Matched bool
}

// Verify hashes every volume and compares the result with target.
// Errors reading a volume are returned; a mismatch is not an error.
func Verify(hasher Hasher, target *Target, volumes []string) (Verdict, error) {
	if hasher == nil {
		hasher = FileHasher{}
	}
	verdict := Verdict{Digests: make([]string, 0, len(volumes))}
	for _, volume := range volumes {
		digest, err := hasher.HashFile(volume, target.algorithm)
		if err != nil {
			return Verdict{}, err
		}
		verdict.Digests = append(verdict.Digests, strings.ToUpper(digest))
	}
	verdict.Matched = len(volumes) > 0 && target.Matches(verdict.Digests)
	return verdict, nil
}
