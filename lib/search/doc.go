// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package search drives an archive reconstruction: it runs candidate
// argument sets through every selected compressor installation until
// the produced volumes reproduce the published checksums.
//
// [Orchestrator.Run] owns one search from validation to completion.
// For each installation, in ascending build order, it runs up to two
// phases:
//
//   - Phase 1 reconstructs the archive comment. It runs only when the
//     packed comment bytes were recovered, archives an empty
//     placeholder with the comment attached, and compares the produced
//     comment block with the recovered bytes. The compression level
//     that reproduces them narrows phase 2. A version whose phase 1
//     finds nothing skips phase 2.
//   - Phase 2 archives the release inputs with every candidate of the
//     (possibly narrowed) space, patches header fields the compressor
//     cannot be told to write, and verifies the volumes against the
//     target.
//
// The search is sequential. Cancellation is observed at every candidate
// boundary and inside the running compressor. Progress, status changes
// and log lines go to a [Sink]; every executed candidate is appended to
// an optional [Recorder] such as a journal.Writer.
//
// Output layout: each candidate writes into
// <output>/<version label>/p<phase>-<index>/. Scratch files (the
// comment text and the phase-1 placeholder) live under
// <output>/.rerar/.
package search
