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
	"github.com/bureau-foundation/rerar/lib/rarversion"
)

type versionsParams struct {
	profileParams
	cli.JSONOutput
	All bool `flag:"all" desc:"list every installation, not only the enabled majors"`
}

type installationRow struct {
	Label  string `json:"label"`
	Build  int    `json:"build"`
	Major  int    `json:"major"`
	Binary string `json:"binary"`
}

func versionsCommand() *cli.Command {
	var params versionsParams

	return &cli.Command{
		Name:    "versions",
		Summary: "List the compressor builds a search would use",
		Description: `Scan the profile's versions root for compressor installations. The
build of each comes from the binary's banner or, failing that, from
the directory name ("rar-5.01", "wrar390").`,
		Usage:  "rerar versions [flags]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("versions takes no positional arguments, got %q", args[0])
			}
			return runVersions(ctx, &params, os.Stdout, logger)
		},
	}
}

func runVersions(ctx context.Context, params *versionsParams, w io.Writer, logger *slog.Logger) error {
	profile, err := params.load()
	if err != nil {
		return err
	}

	var installations []rarversion.Installation
	if params.All {
		matrix, err := rarversion.Discover(ctx, profile.Versions.Root, rarversion.ExecProber{}, logger)
		if err != nil {
			return err
		}
		installations = rarversion.Sorted(matrix.Installations)
	} else {
		installations, err = discoverInstallations(ctx, profile, logger)
		if err != nil {
			return err
		}
	}

	rows := make([]installationRow, len(installations))
	for i, installation := range installations {
		rows[i] = installationRow{
			Label:  installation.Label,
			Build:  installation.Build,
			Major:  installation.Major(),
			Binary: installation.Binary,
		}
	}
	if done, err := params.EmitJSON(w, rows); done {
		return err
	}

	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "LABEL\tVERSION\tBINARY")
	for i, installation := range installations {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", rows[i].Label, installation.Version(), rows[i].Binary)
	}
	return tw.Flush()
}
