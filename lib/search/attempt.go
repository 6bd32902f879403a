// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bureau-foundation/rerar/lib/candidate"
	"github.com/bureau-foundation/rerar/lib/compressor"
	"github.com/bureau-foundation/rerar/lib/journal"
	"github.com/bureau-foundation/rerar/lib/rarversion"
)

// attempt is one candidate run: where it writes and what it passes.
type attempt struct {
	installation rarversion.Installation
	phase        int
	set          candidate.ArgumentSet
	directory    string
	archive      string
}

func newAttempt(options *validated, installation rarversion.Installation, phase int, set candidate.ArgumentSet) attempt {
	directory := filepath.Join(options.OutputDir, installation.Label, fmt.Sprintf("p%d-%d", phase, set.Index))
	return attempt{
		installation: installation,
		phase:        phase,
		set:          set,
		directory:    directory,
		archive:      filepath.Join(directory, options.archiveName+".rar"),
	}
}

type runStatus int

const (
	statusRan runStatus = iota
	statusFailed
	statusAborted
	statusCancelled
)

// execute runs the compressor for one attempt. Per-candidate failures
// are logged, journaled and reported through the status; the error
// return is reserved for storage failures that end the search.
func (r *run) execute(ctx context.Context, a attempt, directory string, inputs []string, firstVolume func(string) bool) (compressor.Execution, runStatus, error) {
	// A leftover archive would be updated instead of created.
	if err := os.RemoveAll(a.directory); err != nil {
		return compressor.Execution{}, statusFailed, &StorageError{Op: "clearing", Path: a.directory, Err: err}
	}
	if err := os.MkdirAll(a.directory, 0755); err != nil {
		return compressor.Execution{}, statusFailed, &StorageError{Op: "creating", Path: a.directory, Err: err}
	}

	channel := channelFor(a.phase)
	started := r.clock.Now()
	execution, err := r.executor.Execute(ctx, compressor.Invocation{
		Binary:      a.installation.Binary,
		Switches:    a.set.Args(),
		Archive:     a.archive,
		Directory:   directory,
		Inputs:      inputs,
		FirstVolume: firstVolume,
	})
	if err != nil {
		var executionError *compressor.ExecutionError
		if !errors.As(err, &executionError) {
			return compressor.Execution{}, statusFailed, &StorageError{Op: "locating volumes in", Path: a.directory, Err: err}
		}
		r.state.Counters.Failed++
		r.log(channel, "%s [%s] failed: %v", a.installation.Label, a.set, err)
		r.logger.Debug("candidate failed",
			"version", a.installation.Label,
			"arguments", a.set.String(),
			"exit_code", executionError.ExitCode,
			"output", executionError.Output,
		)
		r.recordCandidate(a, journal.OutcomeFailed, r.clock.Now().Sub(started), nil, nil, err.Error())
		return compressor.Execution{}, statusFailed, r.discard(a)
	}

	switch {
	case execution.Cancelled:
		r.recordCandidate(a, journal.OutcomeCancelled, execution.Duration, nil, nil, "")
		return execution, statusCancelled, nil
	case execution.Aborted:
		r.state.Counters.Aborted++
		r.log(channel, "%s [%s] aborted: first volume does not match", a.installation.Label, a.set)
		r.recordCandidate(a, journal.OutcomeAborted, execution.Duration, nil, nil, "")
		return execution, statusAborted, r.discard(a)
	case len(execution.Volumes) == 0:
		r.state.Counters.Failed++
		r.log(channel, "%s [%s] failed: %v", a.installation.Label, a.set, errNoVolumes)
		r.recordCandidate(a, journal.OutcomeFailed, execution.Duration, nil, nil, errNoVolumes.Error())
		return execution, statusFailed, r.discard(a)
	}
	r.state.Counters.Executed++
	r.logger.Debug("candidate executed",
		"version", a.installation.Label,
		"phase", a.phase,
		"arguments", a.set.String(),
		"volumes", len(execution.Volumes),
		"duration", execution.Duration,
	)
	return execution, statusRan, nil
}

// discard removes a failed attempt's output when the policy deletes
// non-matching output.
func (r *run) discard(a attempt) error {
	if !r.options.Policy.DeleteNonMatching {
		return nil
	}
	return r.remove(a.directory)
}

func (r *run) remove(directory string) error {
	if err := os.RemoveAll(directory); err != nil {
		return &StorageError{Op: "removing", Path: directory, Err: err}
	}
	r.state.Counters.Deleted++
	return nil
}

func (r *run) recordCandidate(a attempt, outcome journal.Outcome, duration time.Duration, digests, volumes []string, detail string) {
	r.record(journal.Record{
		Kind:      journal.KindCandidate,
		Version:   a.installation.Label,
		Build:     a.installation.Build,
		Phase:     a.phase,
		Index:     a.set.Index,
		Arguments: a.set.String(),
		Outcome:   outcome,
		Digests:   digests,
		Volumes:   volumes,
		Duration:  duration,
		Error:     detail,
	})
}
