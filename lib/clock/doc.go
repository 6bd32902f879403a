// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock lets search code read the time and wait on tickers
// through an interface, so tests can drive time by hand.
//
// Production code takes a [Clock] and receives [Real]. Tests construct
// [Fake] and move time forward with [FakeClock.Advance]:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	executor := &compressor.ProcessExecutor{Clock: fake}
//	// ... start the execution in a goroutine ...
//	fake.WaitForTimers(1)               // the volume watcher registered its ticker
//	fake.Advance(executor.PollInterval) // deliver exactly one tick
//
// WaitForTimers closes the race between a goroutine registering a
// ticker and the test advancing past its deadline.
package clock
