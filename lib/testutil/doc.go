// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil holds helpers shared by rerar package tests.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so tests that run a search or an execution in a goroutine do
// not call time.After themselves. They are the only place tests wait
// on the wall clock.
//
// [WriteScript] and [FakeCompressor] write small shell scripts that
// stand in for compressor builds, laid out the way
// rarversion.Discover expects an installations root.
//
// [WriteFiles] populates a release directory from a name-to-content
// map.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
