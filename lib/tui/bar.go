// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderProgressBar draws a horizontal bar of width cells with the
// done/total fraction filled. An unknown total (zero) draws an empty
// track; done beyond total fills the bar.
func RenderProgressBar(theme Theme, width int, done, total int64) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if total > 0 {
		filled = int(min(done, total) * int64(width) / total)
	}
	filledStyle := lipgloss.NewStyle().Foreground(theme.ProgressFilled)
	trackStyle := lipgloss.NewStyle().Foreground(theme.BorderColor)
	return filledStyle.Render(strings.Repeat("━", filled)) +
		trackStyle.Render(strings.Repeat("─", width-filled))
}
