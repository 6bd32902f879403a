// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/bureau-foundation/rerar/cmd/rerar/cli"
	"github.com/bureau-foundation/rerar/lib/search"
)

type planParams struct {
	profileParams
	cli.JSONOutput
}

type planRow struct {
	Version string `json:"version"`
	Build   int    `json:"build"`
	Phase1  int64  `json:"phase1"`
	Phase2  int64  `json:"phase2"`
}

func planCommand() *cli.Command {
	var params planParams

	return &cli.Command{
		Name:    "plan",
		Summary: "Count the candidates a search would try",
		Description: `Validate the profile, discover the compressor builds it selects and
print how many candidates each would run. Phase 1 counts are shown
when the profile carries a packed comment; a phase 1 match narrows
phase 2 further during the search. Nothing is written.`,
		Usage:  "rerar plan [flags]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("plan takes no positional arguments, got %q", args[0])
			}
			return runPlan(ctx, &params, os.Stdout, logger)
		},
	}
}

func runPlan(ctx context.Context, params *planParams, w io.Writer, logger *slog.Logger) error {
	profile, err := params.load()
	if err != nil {
		return err
	}
	installations, err := discoverInstallations(ctx, profile, logger)
	if err != nil {
		return err
	}
	options, err := profile.SearchOptions(installations)
	if err != nil {
		return err
	}
	plans, err := search.Plan(options)
	if err != nil {
		return err
	}

	rows := make([]planRow, len(plans))
	var total int64
	for i, plan := range plans {
		rows[i] = planRow{
			Version: plan.Installation.Label,
			Build:   plan.Installation.Build,
			Phase1:  plan.Phase1,
			Phase2:  plan.Phase2,
		}
		total += plan.Total()
	}
	if done, err := params.EmitJSON(w, rows); done {
		return err
	}

	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "VERSION\tBUILD\tPHASE 1\tPHASE 2\t")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t\n", row.Version, row.Build, row.Phase1, row.Phase2)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d candidates across %d versions\n", total, len(rows))
	return nil
}
