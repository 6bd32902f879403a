// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/bureau-foundation/rerar/lib/clock"
	"github.com/bureau-foundation/rerar/lib/search"
	"github.com/bureau-foundation/rerar/lib/tui"
)

// redrawInterval limits how often the interactive status line is
// rewritten.
const redrawInterval = 100 * time.Millisecond

// progressSink prints search events to a terminal or a log stream.
// Interactive output keeps one status line with a progress bar at the
// bottom; otherwise only log lines and the completion are written.
type progressSink struct {
	out         io.Writer
	interactive bool
	theme       tui.Theme
	clock       clock.Clock

	lastDraw    time.Time
	statusShown bool
	latest      search.Progress
}

func newProgressSink(out io.Writer, interactive bool, clk clock.Clock) *progressSink {
	return &progressSink{out: out, interactive: interactive, theme: tui.DefaultTheme, clock: clk}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

func (s *progressSink) OnProgress(progress search.Progress) {
	s.latest = progress
	if !s.interactive {
		return
	}
	now := s.clock.Now()
	if progress.Tried < progress.Total && now.Sub(s.lastDraw) < redrawInterval {
		return
	}
	s.lastDraw = now
	s.drawStatus()
}

func (s *progressSink) OnLog(channel search.Channel, message string) {
	s.clearStatus()
	prefix := lipgloss.NewStyle().Foreground(s.theme.ChannelColor(channel)).Render(fmt.Sprintf("[%s]", channel))
	fmt.Fprintf(s.out, "%s %s\n", prefix, message)
	if s.interactive && s.latest.Total > 0 {
		s.drawStatus()
	}
}

func (s *progressSink) OnStatusChanged(status search.Status) {
	if status.State != search.Completed {
		return
	}
	s.clearStatus()
	reason := lipgloss.NewStyle().Bold(true).Foreground(s.theme.ReasonColor(status.Reason)).Render(status.Reason.String())
	fmt.Fprintf(s.out, "%s %s\n", reason, status.Message)
}

// statusLine formats the latest progress without the bar.
func (s *progressSink) statusLine() string {
	progress := s.latest
	percent := 0.0
	if progress.Total > 0 {
		percent = float64(progress.Tried) * 100 / float64(progress.Total)
	}
	faint := lipgloss.NewStyle().Foreground(s.theme.FaintText)
	return fmt.Sprintf("%5.1f%% %d/%d %s/%s %s %s",
		percent, progress.Tried, progress.Total,
		formatBytes(progress.BytesProcessed), formatBytes(progress.BytesTotal),
		progress.Version, faint.Render(progress.Arguments))
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(bytes int64) string {
	switch {
	case bytes >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(1<<30))
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

func (s *progressSink) drawStatus() {
	bar := tui.RenderProgressBar(s.theme, 24, s.latest.Tried, s.latest.Total)
	fmt.Fprintf(s.out, "\r\x1b[K%s %s", bar, s.statusLine())
	s.statusShown = true
}

func (s *progressSink) clearStatus() {
	if !s.statusShown {
		return
	}
	fmt.Fprint(s.out, "\r\x1b[K")
	s.statusShown = false
}
