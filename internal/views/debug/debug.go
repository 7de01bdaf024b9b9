// Package debug renders the ctrl+d overlay: a scrollable record of
// navigation, auth transitions and flash messages.
package debug

import (
	"fmt"
	"strings"
	"time"

	"github.com/bem92/yoga-app/internal/theme"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const maxEntries = 200

// Kind classifies an entry and picks its colour.
type Kind string

const (
	KindNav   Kind = "nav"
	KindAuth  Kind = "auth"
	KindError Kind = "err"
	KindOK    Kind = "ok"
)

var kindColors = map[Kind]lipgloss.Color{
	KindNav:   theme.ColorPrimary,
	KindAuth:  theme.ColorAccent,
	KindError: theme.ColorDanger,
	KindOK:    theme.ColorHealthy,
}

type Entry struct {
	Time    time.Time
	Kind    Kind
	Message string
}

// Model keeps the most recent entries. Offset counts lines scrolled up from
// the newest entry.
type Model struct {
	Entries []Entry
	Offset  int
}

func New() Model {
	return Model{}
}

// Add records an entry and jumps back to the newest one.
func (m *Model) Add(kind Kind, message string) {
	m.Entries = append(m.Entries, Entry{Time: time.Now(), Kind: kind, Message: message})
	if n := len(m.Entries); n > maxEntries {
		m.Entries = append([]Entry(nil), m.Entries[n-maxEntries:]...)
	}
	m.Offset = 0
}

func (m *Model) Addf(kind Kind, format string, args ...interface{}) {
	m.Add(kind, fmt.Sprintf(format, args...))
}

// Flash records a flash message as a success or an error entry.
func (m *Model) Flash(text string, isErr bool) {
	if isErr {
		m.Add(KindError, text)
		return
	}
	m.Add(KindOK, text)
}

func (m *Model) ScrollUp(n int) {
	m.Offset = min(m.Offset+n, max(len(m.Entries)-1, 0))
}

func (m *Model) ScrollDown(n int) {
	m.Offset = max(m.Offset-n, 0)
}

func kindColor(k Kind) lipgloss.Color {
	if c, ok := kindColors[k]; ok {
		return c
	}
	return theme.ColorDimmed
}

// View renders the overlay inside a width x height box.
func (m Model) View(width, height int) string {
	inner := max(width-4, 20)
	rows := max(height-6, 3)

	panel := lipgloss.NewStyle().
		Width(inner).
		Padding(1, 2).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder)
	title := theme.StyleHeader.Render(" DEBUG LOG ")
	help := theme.StyleDimmed.Render(fmt.Sprintf("j/k:scroll  esc:close  %d entries", len(m.Entries)))

	if len(m.Entries) == 0 {
		empty := theme.StyleDimmed.Render("  No events recorded yet.")
		return panel.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", empty, "", help))
	}

	end := max(len(m.Entries)-m.Offset, 0)
	start := max(end-rows, 0)

	// Timestamp, kind column and spacing take 18 cells; the panel pads 4.
	msgWidth := max(inner-4-18, 8)
	lines := make([]string, 0, end-start)
	for _, e := range m.Entries[start:end] {
		kind := lipgloss.NewStyle().Foreground(kindColor(e.Kind)).Width(4).Render(string(e.Kind))
		lines = append(lines, theme.StyleDimmed.Render(e.Time.Format("15:04:05.000"))+" "+kind+" "+ansi.Truncate(e.Message, msgWidth, "…"))
	}

	parts := []string{title, strings.Join(lines, "\n")}
	if m.Offset > 0 {
		parts = append(parts, theme.StyleDimmed.Render(fmt.Sprintf(" ↓ %d more", m.Offset)))
	}
	parts = append(parts, help)
	return panel.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
