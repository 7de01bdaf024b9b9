// Package login provides the sign-in view.
package login

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

// ErrorText is shown for any failed sign-in.
const ErrorText = "An error occurred"

const (
	fieldEmail = iota
	fieldPassword
)

// Authenticator stores the identity returned by a successful sign-in.
type Authenticator interface {
	LogIn(identity *client.SessionInformation) error
}

// ResultMsg is returned after a sign-in attempt.
type ResultMsg struct {
	ViewID   string
	Identity *client.SessionInformation
	Err      error
}

// KeyMap holds the login-specific key bindings.
type KeyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Submit   key.Binding
	Register key.Binding
}

// DefaultKeyMap returns the default login key bindings.
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
			key.WithHelp("enter", "sign in"),
		),
		Register: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "register"),
		),
	}
}

// Model is the login view.
type Model struct {
	ctx  context.Context
	gw   client.Gateway
	auth Authenticator
	log  logrus.FieldLogger
	id   string
	keys KeyMap

	fields     input.Set
	submitting bool
	onError    bool
}

// New creates an empty login form.
func New(ctx context.Context, gw client.Gateway, auth Authenticator, log logrus.FieldLogger, viewID string) Model {
	return Model{
		ctx:  ctx,
		gw:   gw,
		auth: auth,
		log:  log.WithField("view", "login"),
		id:   viewID,
		keys: DefaultKeyMap(),
		fields: input.NewSet(
			input.NewField("Email", "yoga@studio.com", false),
			input.NewField("Password", "", true),
		),
	}
}

func (m Model) Init() tea.Cmd { return nil }

// Busy reports whether a sign-in request is in flight.
func (m Model) Busy() bool { return m.submitting }

// Failed reports whether the last attempt failed.
func (m Model) Failed() bool { return m.onError }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ResultMsg:
		if msg.ViewID != m.id {
			return m, nil
		}
		m.submitting = false
		if msg.Err == nil {
			msg.Err = m.auth.LogIn(msg.Identity)
		}
		if msg.Err != nil {
			m.log.WithError(msg.Err).Warn("sign-in failed")
			m.onError = true
			return m, nil
		}
		m.log.WithField("user_id", msg.Identity.ID).Info("signed in")
		return m, route.Navigate(route.PathSessions)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Next):
			m.fields.Next()
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.fields.Prev()
			return m, nil
		case key.Matches(msg, m.keys.Register):
			return m, route.Navigate(route.PathRegister)
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
	req := client.LoginRequest{
		Email:    m.fields.Value(fieldEmail),
		Password: m.fields.Value(fieldPassword),
	}
	ctx, gw, id := m.ctx, m.gw, m.id
	return m, func() tea.Msg {
		identity, err := gw.Login(ctx, req)
		return ResultMsg{ViewID: id, Identity: identity, Err: err}
	}
}

func (m Model) View() string {
	title := theme.StyleTitle.Render("Login")
	sections := []string{title, "", m.fields.View(), ""}
	if m.onError {
		sections = append(sections, theme.StyleError.Render(ErrorText), "")
	}
	sections = append(sections, theme.StyleDimmed.Render("tab: next field  enter: sign in  ctrl+r: register"))
	return theme.StyleBorder.Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}
