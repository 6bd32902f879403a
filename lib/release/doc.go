// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package release describes the uncompressed input files of a search:
// which files are archived, in what order, how large they are, and
// which timestamps they must carry before the compressor reads them.
//
// A release directory is read-only to the search except for
// [ApplyTimestamps], which restores recovered modification and access
// times so that timestamp switches reproduce the original headers.
//
// [Fingerprint] identifies an input set by content. The search journal
// records it so that a report can tell whether two journals describe
// the same release.
package release
