// Package register provides the account creation view.
package register

import (
	"context"

	"github.com/bem92/yoga-app/internal/client"
	"github.com/bem92/yoga-app/internal/route"
	"github.com/bem92/yoga-app/internal/theme"
	"github.com/bem92/yoga-app/internal/views/input"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

// ErrorText is shown for any failed registration.
const ErrorText = "An error occurred"

const (
	fieldFirstName = iota
	fieldLastName
	fieldEmail
	fieldPassword
)

// ResultMsg is returned after a registration attempt.
type ResultMsg struct {
	ViewID string
	Err    error
}

type KeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Login  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "prev field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "register"),
		),
		Login: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "login"),
		),
	}
}

// Model is the register view.
type Model struct {
	ctx  context.Context
	gw   client.Gateway
	log  logrus.FieldLogger
	id   string
	keys KeyMap

	fields     input.Set
	submitting bool
	onError    bool
}

func New(ctx context.Context, gw client.Gateway, log logrus.FieldLogger, viewID string) Model {
	return Model{
		ctx:  ctx,
		gw:   gw,
		log:  log.WithField("view", "register"),
		id:   viewID,
		keys: DefaultKeyMap(),
		fields: input.NewSet(
			input.NewField("First name", "", false),
			input.NewField("Last name", "", false),
			input.NewField("Email", "", false),
			input.NewField("Password", "", true),
		),
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Busy() bool { return m.submitting }

func (m Model) Failed() bool { return m.onError }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ResultMsg:
		if msg.ViewID != m.id {
			return m, nil
		}
		m.submitting = false
		if msg.Err != nil {
			m.log.WithError(msg.Err).Warn("registration failed")
			m.onError = true
			return m, nil
		}
		m.log.Info("registered")
		return m, route.Navigate(route.PathLogin)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Next):
			m.fields.Next()
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.fields.Prev()
			return m, nil
		case key.Matches(msg, m.keys.Login):
			return m, route.Navigate(route.PathLogin)
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.fields, cmd = m.fields.Update(msg)
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	if m.submitting || !m.fields.Filled() {
		return m, nil
	}
	m.submitting = true
	m.onError = false
	req := client.RegisterRequest{
		Email:     m.fields.Value(fieldEmail),
		FirstName: m.fields.Value(fieldFirstName),
		LastName:  m.fields.Value(fieldLastName),
		Password:  m.fields.Value(fieldPassword),
	}
	ctx, gw, id := m.ctx, m.gw, m.id
	return m, func() tea.Msg {
		return ResultMsg{ViewID: id, Err: gw.Register(ctx, req)}
	}
}

func (m Model) View() string {
	sections := []string{theme.StyleTitle.Render("Register"), "", m.fields.View(), ""}
	if m.onError {
		sections = append(sections, theme.StyleError.Render(ErrorText), "")
	}
	sections = append(sections, theme.StyleDimmed.Render("tab: next field  enter: register  ctrl+l: login"))
	return theme.StyleBorder.Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}
