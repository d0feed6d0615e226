// Package tui provides the interactive people picker used when adding an expense.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/settle-up/internal/model"
)

// PickerModel is a bubbletea multi-select list of people.
type PickerModel struct {
	selected  map[string]bool
	input     textinput.Model
	help      help.Model
	theme     Theme
	title     string
	message   string
	keymap    KeyMap
	people    []string
	cursor    int
	adding    bool
	confirmed bool
	cancelled bool
}

// NewPickerModel creates a picker over people with everyone selected.
func NewPickerModel(title string, people []string) PickerModel {
	people = model.CanonicalPeople(people)

	selected := make(map[string]bool, len(people))
	for _, p := range people {
		selected[p] = true
	}

	input := textinput.New()
	input.Placeholder = "Name"
	input.CharLimit = 64

	return PickerModel{
		title:    title,
		people:   people,
		selected: selected,
		input:    input,
		help:     help.New(),
		keymap:   DefaultKeyMap(),
		theme:    DefaultTheme,
	}
}

// Init implements tea.Model.
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if m.adding {
			return m.updateAdding(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m PickerModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""

	switch {
	case key.Matches(msg, m.keymap.Cancel):
		m.cancelled = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keymap.Down):
		if m.cursor < len(m.people)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keymap.Toggle):
		if len(m.people) > 0 {
			name := m.people[m.cursor]
			m.selected[name] = !m.selected[name]
		}

	case key.Matches(msg, m.keymap.SelectAll):
		for _, p := range m.people {
			m.selected[p] = true
		}

	case key.Matches(msg, m.keymap.DeselectAll):
		for _, p := range m.people {
			m.selected[p] = false
		}

	case key.Matches(msg, m.keymap.AddPerson):
		m.adding = true
		m.input.SetValue("")
		return m, m.input.Focus()

	case key.Matches(msg, m.keymap.Confirm):
		if len(m.Selected()) == 0 {
			m.message = "Select at least one person."
			return m, nil
		}
		m.confirmed = true
		return m, tea.Quit
	}

	return m, nil
}

func (m PickerModel) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.adding = false
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		name := model.NormalizeName(m.input.Value())
		m.adding = false
		m.input.Blur()
		if name == "" {
			return m, nil
		}
		if _, exists := m.selected[name]; !exists {
			m.people = model.CanonicalPeople(append(m.people, name))
		}
		m.selected[name] = true
		for i, p := range m.people {
			if p == name {
				m.cursor = i
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m PickerModel) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render(m.title))
	b.WriteString("\n")

	if len(m.people) == 0 {
		b.WriteString(m.theme.Muted.Render("No people known yet. Press n to add one."))
		b.WriteString("\n")
	}

	for i, p := range m.people {
		cursor := "  "
		if i == m.cursor {
			cursor = m.theme.Cursor.Render(">") + " "
		}
		box := "[ ]"
		style := m.theme.Normal
		if m.selected[p] {
			box = "[x]"
			style = m.theme.Selected
		}
		fmt.Fprintf(&b, "%s%s %s\n", cursor, box, style.Render(p))
	}

	if m.adding {
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	if m.message != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.Error.Render(m.message))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keymap))
	return b.String()
}

// Selected returns the chosen names in sorted order.
func (m PickerModel) Selected() []string {
	var out []string
	for _, p := range m.people {
		if m.selected[p] {
			out = append(out, p)
		}
	}
	return out
}

// Confirmed reports whether the user accepted the selection.
func (m PickerModel) Confirmed() bool {
	return m.confirmed
}

// Cancelled reports whether the user backed out.
func (m PickerModel) Cancelled() bool {
	return m.cancelled
}
