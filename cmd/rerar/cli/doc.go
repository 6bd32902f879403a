// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the small command framework of the rerar binary.
//
// A [Command] is a node in a tree: dispatch walks positional words to
// the deepest matching subcommand, parses its flags and calls Run with
// a context and a structured logger. Flags come from a tagged params
// struct bound by [BindFlags] (flag, desc and default tags), so a
// command declares its options once:
//
//	var params searchParams
//	command := &cli.Command{
//	    Name:   "search",
//	    Params: func() any { return &params },
//	    Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
//	        // params is populated here
//	    },
//	}
//
// Unknown commands and flags are answered with the closest known name.
// [ExitError] lets a command end with a non-zero status without an
// extra error line, and [JSONOutput] adds a --json switch.
package cli
