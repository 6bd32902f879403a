// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the rerar command tree.
//
// Every command reads a search profile: --config names it, otherwise
// RERAR_CONFIG does. search runs the reconstruction, plan and versions
// show what a search would do without running a compressor, and report
// summarizes a search journal.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/bureau-foundation/rerar/cmd/rerar/cli"
	"github.com/bureau-foundation/rerar/lib/version"
)

// Root builds the complete command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "rerar",
		Description: `rerar: rebuild RAR archives from their extracted contents.

Given the files of a release and the published checksums of its
volumes, rerar runs every locally installed compressor build across a
space of switch combinations until the output reproduces the original
volumes byte for byte.`,
		Subcommands: []*cli.Command{
			searchCommand(),
			planCommand(),
			versionsCommand(),
			reportCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(context.Context, []string, *slog.Logger) error {
					fmt.Fprintf(os.Stdout, "rerar %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Count the candidates a profile would try",
				Command:     "rerar plan --config release.yaml",
			},
			{
				Description: "Run the search, journaling every candidate",
				Command:     "rerar search --config release.yaml --journal search.journal",
			},
			{
				Description: "Summarize a finished or interrupted search",
				Command:     "rerar report search.journal",
			},
		},
	}
}
