// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"fmt"

	"github.com/bureau-foundation/rerar/lib/candidate"
)

// PhaseState is where the search stands within one installation.
type PhaseState int

const (
	Idle PhaseState = iota
	Phase1Running
	Phase2Running
	VersionCompleted
	VersionCancelled
	VersionFailed
)

func (s PhaseState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Phase1Running:
		return "phase1"
	case Phase2Running:
		return "phase2"
	case VersionCompleted:
		return "completed"
	case VersionCancelled:
		return "cancelled"
	case VersionFailed:
		return "failed"
	default:
		return fmt.Sprintf("PhaseState(%d)", int(s))
	}
}

// Counters are the running totals of a search. All updates are O(1).
type Counters struct {
	// Tried counts every candidate the search has finished with,
	// whether it ran, was skipped or failed.
	Tried int64
	// Total is the most candidates the search can try.
	Total int64

	Executed   int64
	Skipped    int64
	Failed     int64
	Aborted    int64
	Duplicates int64
	Deleted    int64

	BytesProcessed int64
	BytesTotal     int64
}

// MatchRecord is a candidate whose output reproduced the target.
type MatchRecord struct {
	Version string
	Build   int
	Phase   int

	Arguments candidate.ArgumentSet

	// Volumes are the produced volume paths, renamed to the original
	// names when the search renamed them.
	Volumes []string
	Digests []string
}

// State is the mutable state of one search. Only the goroutine running
// the search writes it.
type State struct {
	VersionIndex int
	Version      string
	Phase        int
	PhaseState   PhaseState
	Candidate    int64

	Counters Counters
	Matches  []MatchRecord

	Lifecycle Lifecycle
	Reason    CompletionReason
}

// Result is the outcome of Orchestrator.Run.
type Result struct {
	Reason   CompletionReason
	Matches  []MatchRecord
	Counters Counters

	// Renamed is set when the single match was renamed to the original
	// volume names.
	Renamed bool

	// Err is the configuration or storage failure behind an Error
	// completion.
	Err error
}
