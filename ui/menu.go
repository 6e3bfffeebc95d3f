package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dgnsrekt/quizbuzz/internal/catalog"
)

var titleCase = cases.Title(language.English)

// displayName turns a category key like "fine_arts" into "Fine Arts".
func displayName(category string) string {
	return titleCase.String(strings.NewReplacer("_", " ", "-", " ").Replace(category))
}

type filterState int

const (
	unfiltered filterState = iota
	filtering
	filterApplied
)

// categorySource adapts categories for fuzzy matching on display names.
type categorySource []catalog.Category

func (c categorySource) String(i int) string { return displayName(c[i].Name) }
func (c categorySource) Len() int            { return len(c) }

type menuItem struct {
	category catalog.Category
	matched  []int // byte offsets of matched characters
}

type menuModel struct {
	keys        keyMap
	categories  []catalog.Category
	items       []menuItem
	cursor      int
	filterState filterState
	filterInput textinput.Model
}

func newMenuModel(keys keyMap) menuModel {
	ti := textinput.New()
	ti.Prompt = "Find: "
	ti.PromptStyle = filterPromptStyle
	ti.Cursor.Style = filterPromptStyle
	ti.CharLimit = 32

	return menuModel{keys: keys, filterInput: ti}
}

func (m *menuModel) setCategories(cats []catalog.Category) {
	m.categories = cats
	m.applyFilter()
}

// selected returns the category under the cursor.
func (m menuModel) selected() (catalog.Category, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return catalog.Category{}, false
	}
	return m.items[m.cursor].category, true
}

func (m *menuModel) applyFilter() {
	term := strings.TrimSpace(m.filterInput.Value())
	m.items = make([]menuItem, 0, len(m.categories))
	if term == "" {
		for _, c := range m.categories {
			m.items = append(m.items, menuItem{category: c})
		}
	} else {
		for _, match := range fuzzy.FindFrom(term, categorySource(m.categories)) {
			m.items = append(m.items, menuItem{
				category: m.categories[match.Index],
				matched:  match.MatchedIndexes,
			})
		}
	}
	if m.cursor >= len(m.items) {
		m.cursor = max(0, len(m.items)-1)
	}
}

func (m *menuModel) resetFilter() {
	m.filterState = unfiltered
	m.filterInput.Reset()
	m.filterInput.Blur()
	m.applyFilter()
}

// update handles menu keys. It returns the chosen category when the user
// starts one.
func (m menuModel) update(msg tea.KeyMsg) (menuModel, string, tea.Cmd) {
	if m.filterState == filtering {
		switch msg.String() {
		case "esc":
			m.resetFilter()
			return m, "", nil
		case "enter", "tab", "up", "down":
			m.filterInput.Blur()
			m.filterState = filterApplied
			if m.filterInput.Value() == "" {
				m.filterState = unfiltered
			}
			if msg.String() != "enter" {
				return m, "", nil
			}
		default:
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			m.applyFilter()
			return m, "", cmd
		}
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Filter):
		m.filterState = filtering
		m.cursor = 0
		return m, "", m.filterInput.Focus()
	case key.Matches(msg, m.keys.Menu):
		if m.filterState == filterApplied {
			m.resetFilter()
		}
	case key.Matches(msg, m.keys.Start):
		if c, ok := m.selected(); ok {
			return m, c.Name, nil
		}
	}
	return m, "", nil
}

func (m menuModel) view(width int) string {
	var b strings.Builder

	if m.filterState != unfiltered {
		b.WriteString(m.filterInput.View())
		b.WriteString("\n\n")
	}

	if len(m.items) == 0 {
		b.WriteString(subtleStyle.Render("No matching categories."))
		return b.String()
	}

	for i, item := range m.items {
		name := highlight(displayName(item.category.Name), item.matched)
		count := countStyle.Render(fmt.Sprintf("%d questions", item.category.Count))
		if i == m.cursor {
			fmt.Fprintf(&b, "%s %s  %s\n", selectedStyle.Render("›"), selectedStyle.Render(name), count)
		} else {
			fmt.Fprintf(&b, "  %s  %s\n", name, count)
		}
	}
	return truncateLines(strings.TrimRight(b.String(), "\n"), width)
}

// highlight styles the runes starting at the given byte offsets.
func highlight(s string, matched []int) string {
	if len(matched) == 0 {
		return s
	}
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}

	var b strings.Builder
	for i, r := range s {
		if hit[i] {
			b.WriteString(matchStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
