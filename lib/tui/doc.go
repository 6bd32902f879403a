// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui holds the terminal styling of the rerar command line: a
// color [Theme] shared by every command and the [RenderProgressBar]
// line the search command redraws while candidates run.
package tui
