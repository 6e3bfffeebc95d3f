package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/dgnsrekt/quizbuzz/internal/sequencer"
)

// statusLine describes the current question for the status bar.
func statusLine(snap sequencer.Snapshot, showIndex bool) string {
	var icon, text string
	switch snap.State {
	case sequencer.StatePlayingPart1:
		icon, text = "▶", "Listening"
	case sequencer.StatePlayingCueAndPart2:
		icon, text = "▶", "Listening to the clue"
	case sequencer.StatePlayingAnswer:
		icon, text = "♪", "Answer"
		if snap.Buzzed {
			text = "Buzzed! Answer"
		}
	case sequencer.StateAnswerShown:
		icon, text = "■", "Answer"
	default:
		return ""
	}

	parts := []string{stateStyle.Render(icon + " " + text), displayName(snap.Category)}
	if showIndex && snap.Index > 0 {
		parts = append(parts, fmt.Sprintf("#%d", snap.Index))
	}
	return strings.Join(parts, dividerStyle.Render(" • "))
}

// statusBarView renders a one line status bar, truncated to width.
func statusBarView(left, right string, width int) string {
	if width <= 0 {
		return left + " " + right
	}
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		left = truncate.StringWithTail(left, uint(max(0, width-lipgloss.Width(right)-1)), ellipsis) //nolint:gosec
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// truncateLines cuts every line of s to width.
func truncateLines(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = truncate.StringWithTail(l, uint(width), ellipsis) //nolint:gosec
	}
	return strings.Join(lines, "\n")
}
