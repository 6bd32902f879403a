// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bureau-foundation/rerar/cmd/rerar/cli"
	"github.com/bureau-foundation/rerar/lib/journal"
)

type reportParams struct {
	profileParams
	cli.JSONOutput
}

type reportResult struct {
	Fingerprint string          `json:"fingerprint,omitempty"`
	Started     time.Time       `json:"started"`
	Finished    time.Time       `json:"finished,omitzero"`
	Reason      string          `json:"reason,omitempty"`
	Versions    []versionReport `json:"versions"`
	Matches     []matchResult   `json:"matches"`
}

type versionReport struct {
	Version  string           `json:"version"`
	Build    int              `json:"build"`
	Outcomes map[string]int64 `json:"outcomes"`
	Elapsed  string           `json:"elapsed"`
}

func reportCommand() *cli.Command {
	var params reportParams

	return &cli.Command{
		Name:    "report",
		Summary: "Summarize a search journal",
		Description: `Read a search journal and summarize its most recent search: the
release fingerprint, how each compressor build's candidates ended and
every match. A journal cut short by a crash is read up to its last
complete record.

The journal path is the argument or, without one, the profile's
journal.path.`,
		Usage:  "rerar report [journal] [flags]",
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 1 {
				return fmt.Errorf("report takes at most one journal path, got %d arguments", len(args))
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runReport(&params, path, os.Stdout)
		},
	}
}

func runReport(params *reportParams, path string, w io.Writer) error {
	if path == "" {
		profile, err := params.load()
		if err != nil {
			return err
		}
		if profile.Journal.Path == "" {
			return fmt.Errorf("no journal path given and the profile sets no journal.path")
		}
		path = profile.Journal.Path
	}

	records, err := journal.ReadFile(path)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("journal %s holds no records", path)
	}
	report := newReportResult(journal.Summarize(records))
	if done, err := params.EmitJSON(w, report); done {
		return err
	}
	return printReport(w, report)
}

func newReportResult(summary journal.Summary) reportResult {
	report := reportResult{
		Fingerprint: summary.Fingerprint,
		Started:     summary.Started,
		Finished:    summary.Finished,
		Reason:      summary.Reason,
		Versions:    make([]versionReport, 0, len(summary.Versions)),
		Matches:     make([]matchResult, 0, len(summary.Matches)),
	}
	for _, version := range summary.Versions {
		outcomes := make(map[string]int64, len(version.Outcomes))
		for outcome, count := range version.Outcomes {
			outcomes[string(outcome)] = count
		}
		report.Versions = append(report.Versions, versionReport{
			Version:  version.Version,
			Build:    version.Build,
			Outcomes: outcomes,
			Elapsed:  version.Elapsed.Round(time.Millisecond).String(),
		})
	}
	for _, match := range summary.Matches {
		report.Matches = append(report.Matches, matchResult{
			Version:   match.Version,
			Build:     match.Build,
			Phase:     match.Phase,
			Arguments: match.Arguments,
			Volumes:   match.Volumes,
			Digests:   match.Digests,
		})
	}
	return report
}

func printReport(w io.Writer, report reportResult) error {
	if report.Fingerprint != "" {
		fmt.Fprintf(w, "Release:  %s\n", report.Fingerprint)
	}
	fmt.Fprintf(w, "Started:  %s\n", report.Started.Format(time.RFC3339))
	if report.Reason == "" {
		fmt.Fprintf(w, "Result:   incomplete (no completion record)\n")
	} else {
		fmt.Fprintf(w, "Finished: %s\n", report.Finished.Format(time.RFC3339))
		fmt.Fprintf(w, "Result:   %s\n", report.Reason)
	}

	if len(report.Versions) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		fmt.Fprintln(tw, "VERSION\tELAPSED\tOUTCOMES")
		for _, version := range report.Versions {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", version.Version, version.Elapsed, formatOutcomes(version.Outcomes))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	for _, match := range report.Matches {
		fmt.Fprintf(w, "\nMatch: %s phase %d: %s\n", match.Version, match.Phase, match.Arguments)
		for i, volume := range match.Volumes {
			digest := ""
			if i < len(match.Digests) {
				digest = match.Digests[i]
			}
			fmt.Fprintf(w, "  %s  %s\n", digest, volume)
		}
	}
	return nil
}

// formatOutcomes renders "match=1 mismatch=40" in name order.
func formatOutcomes(outcomes map[string]int64) string {
	names := make([]string, 0, len(outcomes))
	for name := range outcomes {
		names = append(names, name)
	}
	slices.Sort(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, outcomes[name])
	}
	return strings.Join(parts, " ")
}
