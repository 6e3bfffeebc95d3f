// Package ui provides the interactive quiz session.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	te "github.com/muesli/termenv"

	"github.com/dgnsrekt/quizbuzz/internal/catalog"
	"github.com/dgnsrekt/quizbuzz/internal/sequencer"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "copied!"
	ellipsis             = "…"
	snapshotBuffer       = 16
)

// Session is the question sequencer as seen by the UI.
type Session interface {
	Start(category string) error
	Buzz() bool
	Continue() bool
	ReturnToMenu() bool
	Snapshot() sequencer.Snapshot
	Close()
}

// Loader prepares the categories and the session that plays them. The
// session must deliver its snapshots to notify.
type Loader func(ctx context.Context, notify func(sequencer.Snapshot)) (Session, []catalog.Category, error)

// NewProgram returns a new Tea program.
func NewProgram(cfg Config, loader Loader) *tea.Program {
	log.Debug(
		"Starting quizbuzz",
		"glamour",
		cfg.GlamourEnabled,
		"category",
		cfg.StartCategory,
	)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return tea.NewProgram(newModel(cfg, loader), opts...)
}

// mode is the top-level screen.
type mode int

const (
	modeLoading mode = iota
	modeMenu
	modePlaying
	modeAnswer
)

func (m mode) String() string {
	return map[mode]string{
		modeLoading: "loading",
		modeMenu:    "choosing a category",
		modePlaying: "playing",
		modeAnswer:  "showing answer",
	}[m]
}

// modeFor maps a sequencer state onto a screen.
func modeFor(s sequencer.State) mode {
	switch {
	case s == sequencer.StateAnswerShown:
		return modeAnswer
	case s.Playing():
		return modePlaying
	default:
		return modeMenu
	}
}

type (
	loadedMsg struct {
		session    Session
		categories []catalog.Category
	}
	loadFailedMsg struct{ err error }
	snapshotMsg   sequencer.Snapshot
	clipboardMsg  struct{ err error }

	statusMessageTimeoutMsg struct{}
)

type model struct {
	cfg     Config
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	menu    menuModel

	loader    Loader
	ctx       context.Context
	cancel    context.CancelFunc
	snapshots chan sequencer.Snapshot
	notify    func(sequencer.Snapshot)

	mode    mode
	session Session
	last    sequencer.Snapshot
	answer  string // rendered answer for last
	loadErr error

	width  int
	height int

	statusMessage      string
	statusMessageTimer *time.Timer
}

func newModel(cfg Config, loader Loader) model {
	if cfg.GlamourStyle == "" || cfg.GlamourStyle == styles.AutoStyle {
		if te.HasDarkBackground() {
			cfg.GlamourStyle = styles.DarkStyle
		} else {
			cfg.GlamourStyle = styles.LightStyle
		}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	keys := newKeyMap()
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan sequencer.Snapshot, snapshotBuffer)

	return model{
		cfg:       cfg,
		keys:      keys,
		help:      help.New(),
		spinner:   sp,
		menu:      newMenuModel(keys),
		loader:    loader,
		ctx:       ctx,
		cancel:    cancel,
		snapshots: ch,
		notify: func(s sequencer.Snapshot) {
			select {
			case ch <- s:
			case <-ctx.Done():
			}
		},
		mode: modeLoading,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		load(m.ctx, m.loader, m.notify),
		waitForSnapshot(m.snapshots),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	// Window size is received when starting up and on every resize
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if m.mode == modeAnswer {
			cmds = append(cmds, renderAnswer(m.cfg, m.width, m.last))
		}

	case loadedMsg:
		m.session = msg.session
		m.menu.setCategories(msg.categories)
		m.mode = modeMenu
		log.Info("questions loaded", "categories", len(msg.categories))
		if c := m.cfg.StartCategory; c != "" {
			cmds = append(cmds, m.start(c))
		}

	case loadFailedMsg:
		// there is no retry; the loading screen stays up until the user quits
		m.loadErr = msg.err
		log.Error("unable to load questions", "error", msg.err)

	case spinner.TickMsg:
		if m.mode == modeLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case snapshotMsg:
		cmds = append(cmds, m.apply(sequencer.Snapshot(msg)), waitForSnapshot(m.snapshots))

	case answerRenderedMsg:
		if msg.version == m.last.Version {
			m.answer = msg.content
		}

	case clipboardMsg:
		if msg.err != nil {
			log.Warn("unable to copy answer", "error", msg.err)
			cmds = append(cmds, m.showStatusMessage("Couldn’t copy answer"))
		} else {
			cmds = append(cmds, m.showStatusMessage("Copied answer"))
		}

	case statusMessageTimeoutMsg:
		m.statusMessage = ""
	}

	return m, tea.Batch(cmds...)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Ctrl+C always quits no matter where in the application you are.
	if msg.String() == "ctrl+c" {
		return m, m.quit()
	}
	// pass through all keys if we're editing the filter
	if m.mode == modeMenu && m.menu.filterState == filtering {
		var cmd tea.Cmd
		var chosen string
		m.menu, chosen, cmd = m.menu.update(msg)
		if chosen != "" {
			return m, tea.Batch(cmd, m.start(chosen))
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	switch m.mode {
	case modeMenu:
		var cmd tea.Cmd
		var chosen string
		m.menu, chosen, cmd = m.menu.update(msg)
		if chosen != "" {
			return m, tea.Batch(cmd, m.start(chosen))
		}
		return m, cmd

	case modePlaying:
		if key.Matches(msg, m.keys.Buzz) && m.session.Buzz() {
			return m, m.apply(m.session.Snapshot())
		}

	case modeAnswer:
		switch {
		case key.Matches(msg, m.keys.Continue):
			if m.session.Continue() {
				return m, m.apply(m.session.Snapshot())
			}
		case key.Matches(msg, m.keys.Menu):
			if m.session.ReturnToMenu() {
				return m, m.apply(m.session.Snapshot())
			}
		case key.Matches(msg, m.keys.Copy):
			text := plainAnswer(m.last)
			if text == "" {
				return m, m.showStatusMessage("No answer text to copy")
			}
			return m, copyToClipboard(text)
		}
	}

	return m, nil
}

// start begins a question in category.
func (m *model) start(category string) tea.Cmd {
	if m.session == nil {
		return nil
	}
	if err := m.session.Start(category); err != nil {
		log.Warn("unable to start", "category", category, "error", err)
		return m.showStatusMessage(fmt.Sprintf("Can’t play %s", displayName(category)))
	}
	return m.apply(m.session.Snapshot())
}

// apply adopts snap unless a newer snapshot has already been seen.
func (m *model) apply(snap sequencer.Snapshot) tea.Cmd {
	if snap.Version <= m.last.Version {
		return nil
	}
	m.last = snap
	m.mode = modeFor(snap.State)

	if m.mode != modeAnswer {
		m.answer = ""
		return nil
	}
	return renderAnswer(m.cfg, m.width, snap)
}

func (m *model) quit() tea.Cmd {
	m.cancel()
	if m.session != nil {
		m.session.Close()
	}
	return tea.Quit
}

func (m *model) showStatusMessage(msg string) tea.Cmd {
	m.statusMessage = msg
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)
	return waitForStatusMessageTimeout(m.statusMessageTimer)
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(logoStyle.Render("QuizBuzz"))
	b.WriteString("\n\n")

	switch m.mode {
	case modeLoading:
		b.WriteString(m.spinner.View())
		b.WriteString(" Loading questions" + ellipsis)
	case modeMenu:
		b.WriteString(subtleStyle.Render("Choose a category"))
		b.WriteString("\n\n")
		b.WriteString(m.menu.view(m.width))
	case modePlaying:
		b.WriteString(statusLine(m.last, m.cfg.ShowIndex))
		b.WriteString("\n\n")
		if m.last.State.Buzzable() {
			b.WriteString(buzzStyle.Render("BUZZ"))
			b.WriteString(dimStyle.Render("  press space when you know it"))
		} else {
			b.WriteString(dimStyle.Render("Here comes the answer" + ellipsis))
		}
	case modeAnswer:
		if m.answer != "" {
			b.WriteString(m.answer)
		} else {
			b.WriteString(answerMarkdown(m.last))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(m.footerView())
	return indent(b.String(), 2)
}

func (m model) footerView() string {
	if m.statusMessage != "" {
		return statusMsgStyle.Render(m.statusMessage)
	}
	var right string
	if m.mode == modeAnswer {
		right = statusLine(m.last, m.cfg.ShowIndex)
	}
	return statusBarView(m.help.View(m.keys.forMode(m.mode)), right, m.width-2)
}

// COMMANDS

func load(ctx context.Context, loader Loader, notify func(sequencer.Snapshot)) tea.Cmd {
	return func() tea.Msg {
		session, cats, err := loader(ctx, notify)
		if err != nil {
			return loadFailedMsg{err}
		}
		return loadedMsg{session: session, categories: cats}
	}
}

func waitForSnapshot(ch <-chan sequencer.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(<-ch)
	}
}

func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		return clipboardMsg{err: clipboard.WriteAll(text)}
	}
}

func waitForStatusMessageTimeout(t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C
		return statusMessageTimeoutMsg{}
	}
}

// ETC

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return b.String()
}
