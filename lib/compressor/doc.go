// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package compressor runs one candidate: it invokes a compressor build
// with a literal argument list against the release inputs and reports
// the volumes it wrote.
//
// [ProcessExecutor] starts the compressor in its own process group.
// Cancelling the context kills the whole group with SIGKILL, so a
// candidate stops promptly even when the compressor has spawned helper
// processes; the run is then reported as [Execution.Cancelled], which is
// neither a match nor a failure.
//
// Exit status 0 (success) and 1 (warnings) count as completed runs.
// Any other status, and failure to start, are returned as
// *[ExecutionError]; callers log it and move on to the next candidate.
//
// When [Invocation.FirstVolume] is set, a watcher polls the output
// directory while the compressor runs. Once a second volume appears the
// first one is complete and is handed to FirstVolume; a false result
// kills the run and reports [Execution.Aborted]. Multi-volume candidates
// that are already wrong at volume one therefore cost one volume of
// compression instead of the whole archive.
package compressor
