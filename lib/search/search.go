// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/rerar/lib/axis"
	"github.com/bureau-foundation/rerar/lib/binhash"
	"github.com/bureau-foundation/rerar/lib/candidate"
	"github.com/bureau-foundation/rerar/lib/clock"
	"github.com/bureau-foundation/rerar/lib/compressor"
	"github.com/bureau-foundation/rerar/lib/journal"
	"github.com/bureau-foundation/rerar/lib/rarversion"
	"github.com/bureau-foundation/rerar/lib/release"
	"github.com/bureau-foundation/rerar/lib/volume"
)

// Recorder persists search records. *journal.Writer implements it.
type Recorder interface {
	Append(record journal.Record) error
}

// Orchestrator runs searches. The zero value runs the real compressor,
// hashes files on disk and discards events.
type Orchestrator struct {
	Executor compressor.Executor
	Hasher   binhash.Hasher
	Sink     Sink

	// Journal, when set, receives a start record, one record per
	// executed candidate and match, and a completion record.
	Journal Recorder

	Clock  clock.Clock
	Logger *slog.Logger
}

// scratchDirectory holds files the search creates for itself inside
// the output directory.
const scratchDirectory = ".rerar"

// placeholderName is the empty file archived by phase 1.
const placeholderName = "placeholder"

// Run executes one search and returns how it ended. Configuration and
// storage failures end the search with reason Error; cancelling ctx
// ends it with Cancelled.
func (o *Orchestrator) Run(ctx context.Context, options Options) Result {
	r := o.newRun()
	r.setStatus(Status{State: Running})

	valid, err := validate(options)
	if err != nil {
		return r.finish(ctx, err)
	}
	r.options = valid

	if err := r.prepare(); err != nil {
		return r.finish(ctx, err)
	}
	if err := r.search(ctx); err != nil {
		return r.finish(ctx, err)
	}
	if ctx.Err() == nil {
		r.postProcess()
	}
	return r.finish(ctx, nil)
}

// run is the state of one Run call.
type run struct {
	executor compressor.Executor
	hasher   binhash.Hasher
	sink     Sink
	journal  Recorder
	clock    clock.Clock
	logger   *slog.Logger

	options *validated
	state   State
	renamed bool

	// plans holds the candidate totals per installation, computed
	// before the first candidate runs.
	plans []VersionPlan

	// seen maps each volume digest of every verified phase 2 output
	// to the directory that first produced it.
	seen map[string]string

	commentFile    string
	placeholderDir string
	entriesChecked bool
	formatChecked  bool
}

func (o *Orchestrator) newRun() *run {
	r := &run{
		executor: o.Executor,
		hasher:   o.Hasher,
		sink:     o.Sink,
		journal:  o.Journal,
		clock:    o.Clock,
		logger:   o.Logger,
		seen:     make(map[string]string),
	}
	if r.clock == nil {
		r.clock = clock.Real()
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	if r.executor == nil {
		r.executor = &compressor.ProcessExecutor{Clock: r.clock, Logger: r.logger}
	}
	if r.hasher == nil {
		r.hasher = binhash.FileHasher{}
	}
	if r.sink == nil {
		r.sink = discardSink{}
	}
	return r
}

// prepare creates the output directory and scratch files, restores
// input timestamps and computes the candidate totals.
func (r *run) prepare() error {
	options := r.options
	if err := os.MkdirAll(options.OutputDir, 0755); err != nil {
		return &StorageError{Op: "creating output directory", Path: options.OutputDir, Err: err}
	}
	if len(options.Metadata.Directories) > 0 {
		directories, err := release.Directories(options.ReleaseDir, options.Metadata.Directories)
		if err != nil {
			return &ConfigurationError{Field: "directories", Message: "cannot prepare directory entries", Err: err}
		}
		options.directories = directories
		r.log(ChannelSystem, "archive entries: %d files, %d dirs", len(options.inputs), len(directories))
	}
	if len(options.Metadata.Timestamps) > 0 {
		if err := release.ApplyTimestamps(options.ReleaseDir, options.Metadata.Timestamps); err != nil {
			return &StorageError{Op: "restoring timestamps in", Path: options.ReleaseDir, Err: err}
		}
		r.log(ChannelSystem, "restored timestamps of %d entries", len(options.Metadata.Timestamps))
	}

	comment := options.Metadata.Comment
	scratch := filepath.Join(options.OutputDir, scratchDirectory)
	if len(comment.Text) > 0 {
		if err := os.MkdirAll(scratch, 0755); err != nil {
			return &StorageError{Op: "creating", Path: scratch, Err: err}
		}
		r.commentFile = filepath.Join(scratch, "comment.txt")
		if err := os.WriteFile(r.commentFile, comment.Text, 0644); err != nil {
			return &StorageError{Op: "writing", Path: r.commentFile, Err: err}
		}
		r.log(ChannelSystem, "archive comment: %s", commentPreview(comment.Text))
	}
	if len(comment.Payload) > 0 {
		r.placeholderDir = filepath.Join(scratch, "placeholder")
		if err := os.MkdirAll(r.placeholderDir, 0755); err != nil {
			return &StorageError{Op: "creating", Path: r.placeholderDir, Err: err}
		}
		path := filepath.Join(r.placeholderDir, placeholderName)
		if err := os.WriteFile(path, nil, 0644); err != nil {
			return &StorageError{Op: "writing", Path: path, Err: err}
		}
	}

	counters := &r.state.Counters
	r.plans = r.plan()
	for _, planned := range r.plans {
		counters.Total += planned.Phase1 + planned.Phase2
		counters.BytesTotal += planned.Phase2 * options.inputBytes
	}

	labels := make([]string, len(options.installations))
	for i, installation := range options.installations {
		labels[i] = installation.Label
	}
	r.log(ChannelSystem, "searching %d candidates across %d versions for %d %s checksums",
		counters.Total, len(labels), options.Target.Len(), options.Target.Algorithm())

	if r.journal != nil {
		fingerprint, err := release.Fingerprint(options.inputs)
		if err != nil {
			return &StorageError{Op: "fingerprinting", Path: options.ReleaseDir, Err: err}
		}
		r.record(journal.Record{
			Kind:        journal.KindStart,
			Fingerprint: fingerprint,
			Inputs:      len(options.inputs),
			InputBytes:  options.inputBytes,
			Versions:    labels,
			Algorithm:   string(options.Target.Algorithm()),
		})
	}
	return nil
}

// commentSpace is the phase 1 space: compression level and archive
// format only, pinned to the recovered method when it is known.
func (r *run) commentSpace() candidate.Space {
	space := r.options.Space.Project(axis.Compression, axis.ArchiveFormat)
	if method := r.options.Metadata.Comment.Method; method != nil {
		if value, ok := axis.CompressionForMethod(*method); ok {
			space = space.Narrow(axis.Compression, value)
		}
	}
	return space
}

// search walks the installations in ascending build order.
func (r *run) search(ctx context.Context) error {
	for i, installation := range r.options.installations {
		if ctx.Err() != nil {
			return nil
		}
		r.state.VersionIndex = i
		r.state.Version = installation.Label
		r.state.PhaseState = Idle

		stop, err := r.runVersion(ctx, i, installation)
		switch {
		case err != nil:
			r.state.PhaseState = VersionFailed
			return err
		case ctx.Err() != nil:
			r.state.PhaseState = VersionCancelled
			return nil
		}
		r.state.PhaseState = VersionCompleted
		if stop {
			return nil
		}
	}
	return nil
}

// runVersion runs both phases for one installation. stop is true when
// the search must not continue with later versions.
func (r *run) runVersion(ctx context.Context, index int, installation rarversion.Installation) (stop bool, err error) {
	space := r.options.Space
	counters := &r.state.Counters
	planned := r.plans[index]

	if len(r.options.Metadata.Comment.Payload) > 0 {
		r.state.PhaseState = Phase1Running
		r.state.Phase = 1
		compression, found, err := r.phase1(ctx, installation)
		if err != nil || ctx.Err() != nil {
			return true, err
		}
		if !found {
			r.log(ChannelPhase1, "%s: no candidate reproduces the comment, skipping phase 2", installation.Label)
			counters.Total -= planned.Phase2
			counters.BytesTotal -= planned.Phase2 * r.options.inputBytes
			return false, nil
		}
		if compression != nil {
			space = space.Narrow(axis.Compression, *compression)
			narrowed := space.Pass(installation.Build).Total()
			counters.Total -= planned.Phase2 - narrowed
			counters.BytesTotal -= (planned.Phase2 - narrowed) * r.options.inputBytes
		}
	}

	r.state.PhaseState = Phase2Running
	r.state.Phase = 2
	return r.phase2(ctx, installation, space)
}

// postProcess renames the single match to the original volume names.
func (r *run) postProcess() {
	options := r.options
	names := options.Metadata.OriginalVolumeNames
	if !options.Policy.RenameToOriginal || len(names) == 0 {
		return
	}
	if len(r.state.Matches) != 1 {
		if len(r.state.Matches) > 1 {
			r.log(ChannelSystem, "%d matches retained, leaving volume names unchanged", len(r.state.Matches))
		}
		return
	}
	match := &r.state.Matches[0]
	renamed, err := volume.RenameToOriginal(match.Volumes, names)
	if err != nil {
		// Volumes renamed before the failure keep their new names.
		copy(match.Volumes, renamed)
		r.log(ChannelSystem, "renaming match to original names: %v", err)
		r.logger.Warn("rename to original names failed", "error", err, "renamed", len(renamed))
		return
	}
	match.Volumes = renamed
	r.renamed = true
	r.log(ChannelSystem, "renamed %d volumes to their original names", len(renamed))
}

// finish settles the completion reason and reports it.
func (r *run) finish(ctx context.Context, err error) Result {
	var reason CompletionReason
	switch {
	case ctx.Err() != nil:
		reason = Cancelled
	case err != nil:
		reason = Error
	case len(r.state.Matches) > 0:
		reason = Success
	default:
		reason = Exhausted
	}
	r.state.Lifecycle = Completed
	r.state.Reason = reason

	counters := r.state.Counters
	message := fmt.Sprintf("%d matches after %d of %d candidates", len(r.state.Matches), counters.Tried, counters.Total)
	if err != nil && reason == Error {
		message = err.Error()
		r.log(ChannelSystem, "search failed: %v", err)
		r.logger.Error("search failed", "error", err)
	} else {
		r.log(ChannelSystem, "search %s: %s", reason, message)
	}

	r.record(journal.Record{
		Kind:    journal.KindCompletion,
		Reason:  reason.String(),
		Matches: len(r.state.Matches),
		Tried:   counters.Tried,
	})
	r.setStatus(Status{State: Completed, Reason: reason, Message: message})

	result := Result{
		Reason:   reason,
		Matches:  append([]MatchRecord(nil), r.state.Matches...),
		Counters: counters,
		Renamed:  r.renamed,
	}
	if reason == Error {
		result.Err = err
	}
	return result
}

func (r *run) setStatus(status Status) {
	r.state.Lifecycle = status.State
	r.sink.OnStatusChanged(status)
}

func (r *run) log(channel Channel, format string, args ...any) {
	r.sink.OnLog(channel, fmt.Sprintf(format, args...))
}

// progress reports the counters after a candidate.
func (r *run) progress(phase int, version string, arguments string) {
	counters := r.state.Counters
	r.sink.OnProgress(Progress{
		Phase:          phase,
		Version:        version,
		Arguments:      arguments,
		Tried:          counters.Tried,
		Total:          counters.Total,
		BytesProcessed: counters.BytesProcessed,
		BytesTotal:     counters.BytesTotal,
	})
}

// record appends to the journal. A failing journal is dropped so the
// search itself can go on.
func (r *run) record(record journal.Record) {
	if r.journal == nil {
		return
	}
	if err := r.journal.Append(record); err != nil {
		r.log(ChannelSystem, "journal write failed, journaling disabled: %v", err)
		r.logger.Warn("journal write failed", "error", err)
		r.journal = nil
	}
}
