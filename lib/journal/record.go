// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"reflect"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Kind distinguishes journal records.
type Kind string

const (
	KindStart      Kind = "start"
	KindCandidate  Kind = "candidate"
	KindMatch      Kind = "match"
	KindCompletion Kind = "completion"
)

// Outcome is what happened to one candidate.
type Outcome string

const (
	OutcomeMatch     Outcome = "match"
	OutcomeMismatch  Outcome = "mismatch"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
	OutcomeAborted   Outcome = "aborted"
	OutcomeCancelled Outcome = "cancelled"
)

// Record is one journal entry. Fields not relevant to Kind are left
// zero and omitted from the encoding.
type Record struct {
	Kind Kind      `cbor:"kind"`
	Time time.Time `cbor:"time"`

	// Start.
	Fingerprint string   `cbor:"fingerprint,omitempty"`
	Inputs      int      `cbor:"inputs,omitempty"`
	InputBytes  int64    `cbor:"input_bytes,omitempty"`
	Versions    []string `cbor:"versions,omitempty"`
	Algorithm   string   `cbor:"algorithm,omitempty"`

	// Candidate and match.
	Version   string        `cbor:"version,omitempty"`
	Build     int           `cbor:"build,omitempty"`
	Phase     int           `cbor:"phase,omitempty"`
	Index     int64         `cbor:"index,omitempty"`
	Arguments string        `cbor:"arguments,omitempty"`
	Outcome   Outcome       `cbor:"outcome,omitempty"`
	Digests   []string      `cbor:"digests,omitempty"`
	Volumes   []string      `cbor:"volumes,omitempty"`
	Duration  time.Duration `cbor:"duration,omitempty"`
	Error     string        `cbor:"error,omitempty"`

	// Completion.
	Reason  string `cbor:"reason,omitempty"`
	Matches int    `cbor:"matches,omitempty"`
	Tried   int64  `cbor:"tried,omitempty"`
}

var (
	encodeMode cbor.EncMode
	decodeMode cbor.DecMode
)

func init() {
	options := cbor.CoreDetEncOptions()
	// Keep sub-second precision; the default Unix encoding truncates.
	options.Time = cbor.TimeRFC3339Nano
	var err error
	encodeMode, err = options.EncMode()
	if err != nil {
		panic("journal: CBOR encoder initialization failed: " + err.Error())
	}
	decodeMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("journal: CBOR decoder initialization failed: " + err.Error())
	}
}
