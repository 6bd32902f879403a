// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"strings"

	"github.com/bureau-foundation/rerar/lib/binhash"
	"github.com/bureau-foundation/rerar/lib/compressor"
	"github.com/bureau-foundation/rerar/lib/journal"
	"github.com/bureau-foundation/rerar/lib/rarheader"
)

// collect patches and verifies the volumes of a phase 2 candidate and
// applies the result policy. It reports whether the candidate matched.
func (r *run) collect(a attempt, execution compressor.Execution) (bool, error) {
	options := r.options
	r.checkFormat(a, execution.Volumes)
	r.checkEntries(execution.Volumes)

	if patch := options.Metadata.Patch; !patch.Empty() {
		for _, path := range execution.Volumes {
			if _, err := rarheader.PatchFile(path, patch); err != nil {
				r.state.Counters.Failed++
				r.log(ChannelPhase2, "%s [%s] header patch failed: %v", a.installation.Label, a.set, err)
				r.recordCandidate(a, journal.OutcomeFailed, execution.Duration, nil, execution.Volumes, err.Error())
				return false, r.discard(a)
			}
		}
	}

	verdict, err := binhash.Verify(r.hasher, options.Target, execution.Volumes)
	if err != nil {
		return false, &StorageError{Op: "verifying volumes in", Path: a.directory, Err: err}
	}

	// The first output to produce a volume digest is canonical. A
	// candidate is redundant when every one of its volumes was produced
	// before.
	key := strings.Join(verdict.Digests, " ")
	first, duplicate := r.observe(a.directory, verdict.Digests)

	if verdict.Matched {
		r.state.Matches = append(r.state.Matches, MatchRecord{
			Version:   a.installation.Label,
			Build:     a.installation.Build,
			Phase:     a.phase,
			Arguments: a.set,
			Volumes:   execution.Volumes,
			Digests:   verdict.Digests,
		})
		r.log(ChannelPhase2, "%s [%s] MATCH %s", a.installation.Label, a.set, key)
		r.recordCandidate(a, journal.OutcomeMatch, execution.Duration, verdict.Digests, execution.Volumes, "")
		r.record(journal.Record{
			Kind:      journal.KindMatch,
			Version:   a.installation.Label,
			Build:     a.installation.Build,
			Phase:     a.phase,
			Index:     a.set.Index,
			Arguments: a.set.String(),
			Digests:   verdict.Digests,
			Volumes:   execution.Volumes,
		})
		return true, nil
	}

	if duplicate {
		r.state.Counters.Duplicates++
		r.log(ChannelPhase2, "%s [%s] %s, same output as %s", a.installation.Label, a.set, key, first)
		r.recordCandidate(a, journal.OutcomeDuplicate, execution.Duration, verdict.Digests, execution.Volumes, "")
		if options.Policy.DeleteDuplicates || options.Policy.DeleteNonMatching {
			return false, r.remove(a.directory)
		}
		return false, nil
	}

	r.log(ChannelPhase2, "%s [%s] %s", a.installation.Label, a.set, key)
	r.recordCandidate(a, journal.OutcomeMismatch, execution.Duration, verdict.Digests, execution.Volumes, "")
	return false, r.discard(a)
}

// observe records the digests of one candidate's volumes. duplicate is
// true when every digest had been seen before; first is then the
// directory that produced the first of them.
func (r *run) observe(directory string, digests []string) (first string, duplicate bool) {
	duplicate = len(digests) > 0
	for _, digest := range digests {
		owner, seen := r.seen[digest]
		if !seen {
			duplicate = false
			r.seen[digest] = directory
			continue
		}
		if first == "" {
			first = owner
		}
	}
	if !duplicate {
		first = ""
	}
	return first, duplicate
}
