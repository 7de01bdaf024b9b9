// Package notfound renders the view shown for unknown paths.
package notfound

import (
	"github.com/bem92/yoga-app/internal/theme"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Text is the headline of the view.
const Text = "Page not found !"

// Model is the not-found view.
type Model struct {
	Path string
}

func New(path string) Model { return Model{Path: path} }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(tea.Msg) (Model, tea.Cmd) { return m, nil }

func (m Model) View() string {
	return theme.StyleBorder.Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left,
		theme.StyleError.Bold(true).Render(Text),
		theme.StyleDimmed.Render(m.Path),
		"",
		theme.StyleDimmed.Render("esc: back  s: sessions"),
	))
}
