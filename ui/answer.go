package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/quizbuzz/internal/sequencer"
)

type answerRenderedMsg struct {
	version uint64
	content string
}

// answerMarkdown builds the markdown shown once the answer has played.
func answerMarkdown(snap sequencer.Snapshot) string {
	if !snap.HasText {
		return fmt.Sprintf("## %s #%d\n\n_No text available for this question._\n",
			displayName(snap.Category), snap.Index)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s #%d\n\n", displayName(snap.Category), snap.Index)
	b.WriteString(strings.TrimSpace(snap.Record.Question))
	b.WriteString("\n\n**Answer:** ")
	b.WriteString(strings.TrimSpace(snap.Record.Answer))
	b.WriteString("\n")
	return b.String()
}

// plainAnswer is the clipboard form of the answer.
func plainAnswer(snap sequencer.Snapshot) string {
	if !snap.HasText {
		return ""
	}
	return strings.NewReplacer("**", "", "__", "").Replace(strings.TrimSpace(snap.Record.Answer))
}

func renderAnswer(cfg Config, width int, snap sequencer.Snapshot) tea.Cmd {
	return func() tea.Msg {
		md := answerMarkdown(snap)
		out, err := glamourRender(cfg, width, md)
		if err != nil {
			log.Error("error rendering with Glamour", "error", err)
			out = md
		}
		return answerRenderedMsg{version: snap.Version, content: out}
	}
}

// glamourRender renders markdown for the terminal, or returns it unchanged
// when glamour is turned off.
func glamourRender(cfg Config, width int, markdown string) (string, error) {
	if !cfg.GlamourEnabled {
		return markdown, nil
	}

	wrap := width
	if cfg.GlamourMaxWidth > 0 {
		wrap = min(int(cfg.GlamourMaxWidth), width) //nolint:gosec
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(cfg.GlamourStyle),
		glamour.WithWordWrap(max(0, wrap)),
	)
	if err != nil {
		return "", fmt.Errorf("error creating glamour renderer: %w", err)
	}

	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("error rendering markdown: %w", err)
	}
	return strings.TrimRight(out, "\n"), nil
}
