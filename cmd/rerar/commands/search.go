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
	"github.com/bureau-foundation/rerar/lib/clock"
	"github.com/bureau-foundation/rerar/lib/journal"
	"github.com/bureau-foundation/rerar/lib/search"
)

type searchParams struct {
	profileParams
	cli.JSONOutput
	Journal string `flag:"journal" desc:"write the search journal here (overrides the profile)"`
	Quiet   bool   `flag:"quiet,q" desc:"print only the result"`
	Stop    bool   `flag:"stop" desc:"stop at the first match (overrides the profile)"`
}

// searchResult is the JSON form of a finished search.
type searchResult struct {
	Reason     string        `json:"reason"`
	Error      string        `json:"error,omitempty"`
	Renamed    bool          `json:"renamed"`
	Tried      int64         `json:"tried"`
	Total      int64         `json:"total"`
	Executed   int64         `json:"executed"`
	Skipped    int64         `json:"skipped"`
	Failed     int64         `json:"failed"`
	Aborted    int64         `json:"aborted"`
	Duplicates int64         `json:"duplicates"`
	Deleted    int64         `json:"deleted"`
	Matches    []matchResult `json:"matches"`
}

type matchResult struct {
	Version   string   `json:"version"`
	Build     int      `json:"build"`
	Phase     int      `json:"phase"`
	Arguments string   `json:"arguments"`
	Volumes   []string `json:"volumes"`
	Digests   []string `json:"digests"`
}

func searchCommand() *cli.Command {
	var params searchParams

	return &cli.Command{
		Name:    "search",
		Summary: "Search for the compressor parameters that reproduce the volumes",
		Description: `Run every selected compressor build over the profile's parameter
space until an output's volume checksums equal the published ones.

When the profile carries a packed archive comment, each build first
archives an empty file with the comment to learn which compression
level reproduces it, and the full search is narrowed to that level.

Exit status is 0 when a match was found, 1 when the space was
exhausted without one and 130 when interrupted. Interrupting with
Ctrl-C stops the running compressor and keeps every match found so
far.`,
		Usage: "rerar search [flags]",
		Examples: []cli.Example{
			{
				Description: "Search with the profile named by RERAR_CONFIG",
				Command:     "rerar search",
			},
			{
				Description: "Stop at the first match and print the result as JSON",
				Command:     "rerar search --config release.yaml --stop --json",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("search takes no positional arguments, got %q", args[0])
			}
			return runSearch(ctx, &params, os.Stdout, os.Stderr, logger)
		},
	}
}

func runSearch(ctx context.Context, params *searchParams, stdout, stderr io.Writer, logger *slog.Logger) error {
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
	if params.Stop {
		options.Policy.StopOnFirstMatch = true
	}

	realClock := clock.Real()
	orchestrator := &search.Orchestrator{Clock: realClock, Logger: logger}
	if !params.Quiet {
		orchestrator.Sink = newProgressSink(stderr, isTerminal(stderr), realClock)
	}

	journalPath := profile.Journal.Path
	if params.Journal != "" {
		journalPath = params.Journal
	}
	if journalPath != "" {
		compression, err := journal.ParseCompression(profile.Journal.Compression)
		if err != nil {
			return err
		}
		writer, err := journal.Create(journalPath, compression, realClock)
		if err != nil {
			return err
		}
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Warn("closing journal", "path", journalPath, "error", err)
			}
		}()
		orchestrator.Journal = writer
	}

	logger.Info("search starting", "versions", len(installations), "output", options.OutputDir)
	result := orchestrator.Run(ctx, options)
	logger.Info("search finished", "reason", result.Reason.String(), "matches", len(result.Matches), "tried", result.Counters.Tried)

	report := newSearchResult(result)
	if done, err := params.EmitJSON(stdout, report); done {
		if err != nil {
			return err
		}
	} else if err := printSearchResult(stdout, report); err != nil {
		return err
	}

	switch result.Reason {
	case search.Error:
		return result.Err
	case search.Cancelled:
		return &cli.ExitError{Code: 130}
	case search.Exhausted:
		return &cli.ExitError{Code: 1}
	}
	return nil
}

func newSearchResult(result search.Result) searchResult {
	counters := result.Counters
	report := searchResult{
		Reason:     result.Reason.String(),
		Renamed:    result.Renamed,
		Tried:      counters.Tried,
		Total:      counters.Total,
		Executed:   counters.Executed,
		Skipped:    counters.Skipped,
		Failed:     counters.Failed,
		Aborted:    counters.Aborted,
		Duplicates: counters.Duplicates,
		Deleted:    counters.Deleted,
		Matches:    make([]matchResult, 0, len(result.Matches)),
	}
	if result.Err != nil {
		report.Error = result.Err.Error()
	}
	for _, match := range result.Matches {
		report.Matches = append(report.Matches, matchResult{
			Version:   match.Version,
			Build:     match.Build,
			Phase:     match.Phase,
			Arguments: match.Arguments.String(),
			Volumes:   match.Volumes,
			Digests:   match.Digests,
		})
	}
	return report
}

func printSearchResult(w io.Writer, report searchResult) error {
	fmt.Fprintf(w, "%s: %d matches, %d of %d candidates tried (%d executed, %d skipped, %d failed, %d duplicates)\n",
		report.Reason, len(report.Matches), report.Tried, report.Total,
		report.Executed, report.Skipped, report.Failed, report.Duplicates)
	if len(report.Matches) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tARGUMENTS\tVOLUMES")
	for _, match := range report.Matches {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", match.Version, match.Arguments, len(match.Volumes))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, match := range report.Matches {
		for _, volume := range match.Volumes {
			fmt.Fprintf(w, "  %s\n", volume)
		}
	}
	return nil
}
