// Package sessions provides the list of yoga sessions.
package sessions

import (
	"context"
	"strings"

	"github.com/bem92/yoga-app/internal/client"
	"github.com/bem92/yoga-app/internal/policy"
	"github.com/bem92/yoga-app/internal/route"
	"github.com/bem92/yoga-app/internal/theme"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/sirupsen/logrus"
)

const nameWidth = 34

// LoadedMsg is returned after fetching the session list.
type LoadedMsg struct {
	ViewID   string
	Sessions []client.Session
	Err      error
}

type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Detail  key.Binding
	Create  key.Binding
	Edit    key.Binding
	Refresh key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "prev session"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next session"),
		),
		Detail: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "detail"),
		),
		Create: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "create"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// Model is the session list view.
type Model struct {
	ctx      context.Context
	gw       client.Gateway
	log      logrus.FieldLogger
	id       string
	keys     KeyMap
	identity client.SessionInformation
	logged   bool

	sessions []client.Session
	selected int
	loading  bool
	err      error
	width    int
}

// New creates a list view for the given principal. Management controls
// are enabled only when the policy allows them.
func New(ctx context.Context, gw client.Gateway, log logrus.FieldLogger, viewID string, identity client.SessionInformation, logged bool) Model {
	return Model{
		ctx:      ctx,
		gw:       gw,
		log:      log.WithField("view", "sessions"),
		id:       viewID,
		keys:     DefaultKeyMap(),
		identity: identity,
		logged:   logged,
		loading:  true,
	}
}

func (m Model) Init() tea.Cmd {
	return fetchSessions(m.ctx, m.gw, m.id)
}

func (m Model) Busy() bool { return m.loading }

// Sessions returns the loaded sessions.
func (m Model) Sessions() []client.Session { return m.sessions }

// CanManage reports whether create and edit controls are shown.
func (m Model) CanManage() bool { return policy.CanManageSessions(m.identity, m.logged) }

func (m *Model) SetSize(width, _ int) { m.width = width }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.ViewID != m.id {
			return m, nil
		}
		m.loading = false
		m.err = msg.Err
		if msg.Err != nil {
			m.log.WithError(msg.Err).Warn("list sessions failed")
			return m, nil
		}
		m.sessions = msg.Sessions
		if m.selected >= len(m.sessions) {
			m.selected = 0
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		if len(m.sessions) > 0 {
			m.selected = (m.selected + 1) % len(m.sessions)
		}

	case key.Matches(msg, m.keys.Up):
		if len(m.sessions) > 0 {
			m.selected = (m.selected - 1 + len(m.sessions)) % len(m.sessions)
		}

	case key.Matches(msg, m.keys.Detail):
		if s, ok := m.current(); ok {
			return m, route.Navigate(route.DetailPath(s.ID))
		}

	case key.Matches(msg, m.keys.Create):
		if m.CanManage() {
			return m, route.Navigate(route.PathCreate)
		}

	case key.Matches(msg, m.keys.Edit):
		if s, ok := m.current(); ok && m.CanManage() {
			return m, route.Navigate(route.UpdatePath(s.ID))
		}

	case key.Matches(msg, m.keys.Refresh):
		if !m.loading {
			m.loading = true
			return m, fetchSessions(m.ctx, m.gw, m.id)
		}
	}
	return m, nil
}

func (m Model) current() (client.Session, bool) {
	if m.selected < 0 || m.selected >= len(m.sessions) {
		return client.Session{}, false
	}
	return m.sessions[m.selected], true
}

func (m Model) View() string {
	header := theme.StyleTitle.Render("Sessions")
	if m.CanManage() {
		header += "  " + theme.StyleDimmed.Render("[c] Create")
	}

	var body string
	switch {
	case m.loading && len(m.sessions) == 0:
		body = theme.StyleDimmed.Render("  Loading sessions...")
	case m.err != nil:
		body = theme.StyleError.Render("  Could not load sessions: " + m.err.Error())
	case len(m.sessions) == 0:
		body = theme.StyleDimmed.Render("  No sessions yet")
	default:
		rows := make([]string, len(m.sessions))
		for i, s := range m.sessions {
			rows[i] = m.renderRow(s, i == m.selected)
		}
		body = strings.Join(rows, "\n")
	}

	help := "  j/k: navigate  enter: detail  r: refresh"
	if m.CanManage() {
		help += "  c: create  e: edit"
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", theme.StyleDimmed.Render(help))
}

func (m Model) renderRow(s client.Session, selected bool) string {
	prefix := "  "
	nameStyle := lipgloss.NewStyle().Foreground(theme.ColorDefault)
	if selected {
		prefix = "> "
		nameStyle = theme.StyleSelected
	}

	name := ansi.Truncate(s.Name, nameWidth-2, "…")
	line := prefix + nameStyle.Width(nameWidth).Render(name) + theme.StyleDimmed.Render("Session on "+s.Date.Long())

	controls := "[Detail]"
	if m.CanManage() {
		controls += " [Edit]"
	}
	return line + "  " + theme.StyleDimmed.Render(controls)
}

func fetchSessions(ctx context.Context, gw client.Gateway, viewID string) tea.Cmd {
	return func() tea.Msg {
		sessions, err := gw.ListSessions(ctx)
		return LoadedMsg{ViewID: viewID, Sessions: sessions, Err: err}
	}
}
