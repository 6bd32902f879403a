// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/rerar/lib/search"
)

// Theme is the color palette of terminal output. Colors are ANSI
// 256-color codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color

	// Log channel prefixes.
	SystemChannel lipgloss.Color
	Phase1Channel lipgloss.Color
	Phase2Channel lipgloss.Color

	// Completion reasons.
	ReasonSuccess   lipgloss.Color
	ReasonExhausted lipgloss.Color
	ReasonError     lipgloss.Color
	ReasonCancelled lipgloss.Color

	ProgressFilled lipgloss.Color
}

// ChannelColor returns the prefix color of a log channel.
func (theme Theme) ChannelColor(channel search.Channel) lipgloss.Color {
	switch channel {
	case search.ChannelPhase1:
		return theme.Phase1Channel
	case search.ChannelPhase2:
		return theme.Phase2Channel
	default:
		return theme.SystemChannel
	}
}

// ReasonColor returns the color a completion reason is printed in.
func (theme Theme) ReasonColor(reason search.CompletionReason) lipgloss.Color {
	switch reason {
	case search.Success:
		return theme.ReasonSuccess
	case search.Exhausted:
		return theme.ReasonExhausted
	case search.Error:
		return theme.ReasonError
	case search.Cancelled:
		return theme.ReasonCancelled
	default:
		return theme.FaintText
	}
}

// DefaultTheme suits 256-color terminals with a dark background.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),

	SystemChannel: lipgloss.Color("245"), // gray
	Phase1Channel: lipgloss.Color("141"), // light purple
	Phase2Channel: lipgloss.Color("75"),  // blue

	ReasonSuccess:   lipgloss.Color("114"), // green
	ReasonExhausted: lipgloss.Color("220"), // amber
	ReasonError:     lipgloss.Color("196"), // red
	ReasonCancelled: lipgloss.Color("208"), // orange

	ProgressFilled: lipgloss.Color("114"),
}
