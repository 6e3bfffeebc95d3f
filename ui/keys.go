package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Start    key.Binding
	Filter   key.Binding
	Buzz     key.Binding
	Continue key.Binding
	Menu     key.Binding
	Copy     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Start: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "start"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Buzz: key.NewBinding(
			key.WithKeys(" ", "space", "b"),
			key.WithHelp("space/b", "buzz"),
		),
		Continue: key.NewBinding(
			key.WithKeys("n", "enter"),
			key.WithHelp("n/enter", "next question"),
		),
		Menu: key.NewBinding(
			key.WithKeys("esc", "m"),
			key.WithHelp("esc/m", "categories"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy answer"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// modeKeys implements help.KeyMap for one mode.
type modeKeys struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k modeKeys) ShortHelp() []key.Binding  { return k.short }
func (k modeKeys) FullHelp() [][]key.Binding { return k.full }

func (k keyMap) forMode(m mode) modeKeys {
	switch m {
	case modeMenu:
		return modeKeys{
			short: []key.Binding{k.Start, k.Filter, k.Help, k.Quit},
			full:  [][]key.Binding{{k.Up, k.Down, k.Start}, {k.Filter, k.Quit}},
		}
	case modePlaying:
		short := []key.Binding{k.Buzz, k.Quit}
		return modeKeys{short: short, full: [][]key.Binding{short}}
	case modeAnswer:
		return modeKeys{
			short: []key.Binding{k.Continue, k.Menu, k.Help, k.Quit},
			full:  [][]key.Binding{{k.Continue, k.Menu}, {k.Copy, k.Quit}},
		}
	default:
		short := []key.Binding{k.Quit}
		return modeKeys{short: short, full: [][]key.Binding{short}}
	}
}
