// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package search

import "fmt"

// Channel tags log lines by the part of the search that wrote them.
type Channel int

const (
	ChannelSystem Channel = iota
	ChannelPhase1
	ChannelPhase2
)

func (c Channel) String() string {
	switch c {
	case ChannelSystem:
		return "system"
	case ChannelPhase1:
		return "phase1"
	case ChannelPhase2:
		return "phase2"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// channelFor returns the log channel of a phase.
func channelFor(phase int) Channel {
	if phase == 1 {
		return ChannelPhase1
	}
	return ChannelPhase2
}

// Progress is reported after every candidate.
type Progress struct {
	Phase     int
	Version   string
	Arguments string

	// Tried counts candidates finished so far, including skipped ones;
	// Total is the number the search can try at most.
	Tried int64
	Total int64

	BytesProcessed int64
	BytesTotal     int64
}

// Lifecycle is the coarse state of a search.
type Lifecycle int

const (
	Running Lifecycle = iota + 1
	Completed
)

func (l Lifecycle) String() string {
	switch l {
	case Running:
		return "running"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("lifecycle(%d)", int(l))
	}
}

// CompletionReason says why a search completed.
type CompletionReason int

const (
	// Success means at least one candidate matched.
	Success CompletionReason = iota + 1
	// Exhausted means every candidate ran without a match.
	Exhausted
	// Error means a configuration or storage failure aborted the
	// search.
	Error
	// Cancelled means the caller cancelled the search. It takes
	// precedence over matches found before the cancellation.
	Cancelled
)

func (r CompletionReason) String() string {
	switch r {
	case Success:
		return "Success"
	case Exhausted:
		return "Exhausted"
	case Error:
		return "Error"
	case Cancelled:
		return "Cancelled"
	default:
		return fmt.Sprintf("CompletionReason(%d)", int(r))
	}
}

// Status is a lifecycle transition. Reason and Message are set only
// when State is Completed.
type Status struct {
	State   Lifecycle
	Reason  CompletionReason
	Message string
}

// Sink receives search events. Calls come from the goroutine running
// the search, one at a time.
type Sink interface {
	OnProgress(Progress)
	OnStatusChanged(Status)
	OnLog(Channel, string)
}

type discardSink struct{}

func (discardSink) OnProgress(Progress)    {}
func (discardSink) OnStatusChanged(Status) {}
func (discardSink) OnLog(Channel, string)  {}
