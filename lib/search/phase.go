// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"context"

	"github.com/bureau-foundation/rerar/lib/axis"
	"github.com/bureau-foundation/rerar/lib/candidate"
	"github.com/bureau-foundation/rerar/lib/journal"
	"github.com/bureau-foundation/rerar/lib/rarversion"
	"github.com/bureau-foundation/rerar/lib/release"
)

// phase1 searches for a candidate that reproduces the packed comment.
// compression is the level that did, or nil when the compression axis
// was not part of the winning set.
func (r *run) phase1(ctx context.Context, installation rarversion.Installation) (compression *axis.SwitchValue, found bool, err error) {
	cursor := r.commentSpace().Pass(installation.Build)
	r.log(ChannelPhase1, "%s (build %d): %d comment candidates", installation.Label, installation.Build, cursor.Total())

	for set, ok := cursor.Next(); ok; set, ok = cursor.Next() {
		if ctx.Err() != nil {
			return nil, false, nil
		}
		r.state.Candidate = set.Index
		if set.Empty() {
			r.skip(1, installation.Label)
			continue
		}
		set = set.With(axis.CommentSwitch(r.commentFile))
		attempt := newAttempt(r.options, installation, 1, set)

		execution, status, err := r.execute(ctx, attempt, r.placeholderDir, []string{placeholderName}, nil)
		if err != nil {
			return nil, false, err
		}
		if status == statusCancelled {
			return nil, false, nil
		}
		r.finishCandidate(1, installation.Label, set, false)
		if status != statusRan {
			continue
		}

		matched, detail := r.compareComment(execution.Volumes[0])
		outcome := journal.OutcomeMismatch
		if matched {
			outcome = journal.OutcomeMatch
		}
		r.recordCandidate(attempt, outcome, execution.Duration, nil, nil, detail)
		if !matched {
			if err := r.remove(attempt.directory); err != nil {
				return nil, false, err
			}
			continue
		}

		r.log(ChannelPhase1, "%s: comment reproduced by %s", installation.Label, set)
		r.state.Counters.Total -= cursor.Remaining()
		if value, ok := set.Choice(axis.Compression); ok {
			return &value, true, nil
		}
		return nil, true, nil
	}
	return nil, false, nil
}

// phase2 runs the full space. stop is true when the search must end.
func (r *run) phase2(ctx context.Context, installation rarversion.Installation, space candidate.Space) (stop bool, err error) {
	cursor := space.Pass(installation.Build)
	r.log(ChannelPhase2, "%s (build %d): %d candidates", installation.Label, installation.Build, cursor.Total())
	inputs := append(release.Names(r.options.inputs), r.options.directories...)

	for set, ok := cursor.Next(); ok; set, ok = cursor.Next() {
		if ctx.Err() != nil {
			return true, nil
		}
		r.state.Candidate = set.Index
		if set.Empty() {
			r.skip(2, installation.Label)
			continue
		}
		if r.commentFile != "" {
			set = set.With(axis.CommentSwitch(r.commentFile))
		}
		attempt := newAttempt(r.options, installation, 2, set)

		execution, status, err := r.execute(ctx, attempt, r.options.ReleaseDir, inputs, r.firstVolumeCheck())
		if err != nil {
			return true, err
		}
		if status == statusCancelled {
			return true, nil
		}
		if status != statusRan {
			r.finishCandidate(2, installation.Label, set, true)
			continue
		}

		matched, err := r.collect(attempt, execution)
		r.finishCandidate(2, installation.Label, set, true)
		if err != nil {
			return true, err
		}
		if matched && r.options.Policy.StopOnFirstMatch {
			r.log(ChannelSystem, "stopping at the first match")
			return true, nil
		}
	}
	return false, nil
}

// skip accounts for an argument set whose switches conflict with its
// own archive format.
func (r *run) skip(phase int, version string) {
	counters := &r.state.Counters
	counters.Skipped++
	counters.Tried++
	if phase == 2 {
		counters.BytesProcessed += r.options.inputBytes
	}
	r.progress(phase, version, "")
}

func (r *run) finishCandidate(phase int, version string, set candidate.ArgumentSet, countBytes bool) {
	counters := &r.state.Counters
	counters.Tried++
	if countBytes {
		counters.BytesProcessed += r.options.inputBytes
	}
	r.progress(phase, version, set.String())
}

// firstVolumeCheck returns the early abort check for multi-volume
// targets. Volumes are patched before verification, so the check only
// applies when there is nothing to patch.
func (r *run) firstVolumeCheck() func(string) bool {
	target := r.options.Target
	if target.Len() < 2 || !r.options.Metadata.Patch.Empty() || r.options.Policy.CompleteAllVolumes {
		return nil
	}
	return func(path string) bool {
		digest, err := r.hasher.HashFile(path, target.Algorithm())
		if err != nil {
			return true
		}
		return target.Contains(digest)
	}
}
