// Package input groups text inputs into a focusable form.
package input

import (
	"strings"

	"github.com/bem92/yoga-app/internal/theme"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var styleLabel = lipgloss.NewStyle().
	Foreground(theme.ColorDimmed).
	Width(14)

// Field is one labelled text input.
type Field struct {
	Label string
	Input textinput.Model
}

// NewField returns an unfocused input. Secret inputs echo bullets.
func NewField(label, placeholder string, secret bool) Field {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = 255
	ti.Cursor.SetMode(cursor.CursorStatic)
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return Field{Label: label, Input: ti}
}

// Set is an ordered list of fields with one of them focused.
type Set struct {
	Fields []Field
	focus  int
}

// NewSet focuses the first field.
func NewSet(fields ...Field) Set {
	s := Set{Fields: fields}
	s.setFocus(0)
	return s
}

// Focused returns the index of the focused field.
func (s Set) Focused() int { return s.focus }

// Value returns the trimmed value of field i.
func (s Set) Value(i int) string {
	return strings.TrimSpace(s.Fields[i].Input.Value())
}

// SetValue replaces the value of field i.
func (s *Set) SetValue(i int, v string) {
	s.Fields[i].Input.SetValue(v)
}

// Filled reports whether every field has a non-blank value.
func (s Set) Filled() bool {
	for i := range s.Fields {
		if s.Value(i) == "" {
			return false
		}
	}
	return true
}

// Next moves focus forward, wrapping around.
func (s *Set) Next() {
	if len(s.Fields) == 0 {
		return
	}
	s.setFocus((s.focus + 1) % len(s.Fields))
}

// Prev moves focus backward, wrapping around.
func (s *Set) Prev() {
	if len(s.Fields) == 0 {
		return
	}
	s.setFocus((s.focus - 1 + len(s.Fields)) % len(s.Fields))
}

func (s *Set) setFocus(i int) {
	for j := range s.Fields {
		if j == i {
			s.Fields[j].Input.Focus()
		} else {
			s.Fields[j].Input.Blur()
		}
	}
	s.focus = i
}

// Update forwards msg to the focused field.
func (s Set) Update(msg tea.Msg) (Set, tea.Cmd) {
	if len(s.Fields) == 0 {
		return s, nil
	}
	var cmd tea.Cmd
	s.Fields[s.focus].Input, cmd = s.Fields[s.focus].Input.Update(msg)
	return s, cmd
}

// View renders one row per field, marking the focused one.
func (s Set) View() string {
	rows := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		prefix := "  "
		if i == s.focus {
			prefix = theme.StyleSelected.Render("> ")
		}
		rows[i] = prefix + styleLabel.Render(f.Label+":") + f.Input.View()
	}
	return strings.Join(rows, "\n")
}
