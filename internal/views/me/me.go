// Package me shows the signed-in principal's account.
package me

import (
	"context"
	"strings"

	"github.com/bem92/yoga-app/internal/client"
	"github.com/bem92/yoga-app/internal/policy"
	"github.com/bem92/yoga-app/internal/route"
	"github.com/bem92/yoga-app/internal/theme"
	"github.com/bem92/yoga-app/internal/views/status"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

// DeletedText is flashed after the account is deleted.
const DeletedText = "Your account has been deleted !"

// Session ends the signed-in session once the account is gone.
type Session interface {
	LogOut()
}

// LoadedMsg is returned after fetching the user.
type LoadedMsg struct {
	ViewID string
	User   *client.User
	Err    error
}

// DeletedMsg is returned after deleting the account.
type DeletedMsg struct {
	ViewID string
	Err    error
}

type KeyMap struct {
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Delete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "delete account"),
		),
	}
}

// Model is the account view.
type Model struct {
	ctx      context.Context
	gw       client.Gateway
	session  Session
	log      logrus.FieldLogger
	id       string
	keys     KeyMap
	identity client.SessionInformation
	logged   bool

	user     *client.User
	loading  bool
	deleting bool
	err      error
}

func New(ctx context.Context, gw client.Gateway, session Session, log logrus.FieldLogger, viewID string, identity client.SessionInformation, logged bool) Model {
	return Model{
		ctx:      ctx,
		gw:       gw,
		session:  session,
		log:      log.WithFields(logrus.Fields{"view": "me", "user_id": identity.ID}),
		id:       viewID,
		keys:     DefaultKeyMap(),
		identity: identity,
		logged:   logged,
		loading:  true,
	}
}

func (m Model) Init() tea.Cmd {
	ctx, gw, id, userID := m.ctx, m.gw, m.id, m.identity.ID
	return func() tea.Msg {
		u, err := gw.GetUser(ctx, userID)
		return LoadedMsg{ViewID: id, User: u, Err: err}
	}
}

func (m Model) Busy() bool { return m.loading || m.deleting }

// CanDelete reports whether the delete control is shown.
func (m Model) CanDelete() bool {
	return m.user != nil && policy.CanDeleteOwnAccount(m.identity, m.logged, m.user.ID)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.ViewID != m.id {
			return m, nil
		}
		m.loading = false
		m.err = msg.Err
		if msg.Err != nil {
			m.log.WithError(msg.Err).Warn("user fetch failed")
			return m, nil
		}
		m.user = msg.User
		return m, nil

	case DeletedMsg:
		if msg.ViewID != m.id {
			return m, nil
		}
		m.deleting = false
		if msg.Err != nil {
			m.log.WithError(msg.Err).Warn("account delete failed")
			m.err = msg.Err
			return m, nil
		}
		m.log.Info("account deleted")
		m.session.LogOut()
		return m, tea.Batch(status.Flash(DeletedText), route.Navigate("/"))

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Delete) && m.CanDelete() && !m.deleting {
			m.deleting = true
			m.err = nil
			ctx, gw, id, userID := m.ctx, m.gw, m.id, m.user.ID
			return m, func() tea.Msg {
				return DeletedMsg{ViewID: id, Err: gw.DeleteUser(ctx, userID)}
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	sections := []string{theme.StyleTitle.Render("User information"), ""}

	switch {
	case m.user == nil && m.err != nil:
		sections = append(sections, theme.StyleError.Render("Could not load account: "+m.err.Error()))
	case m.user == nil:
		sections = append(sections, theme.StyleDimmed.Render("Loading..."))
	default:
		u := m.user
		sections = append(sections,
			"Name: "+u.FirstName+" "+strings.ToUpper(u.LastName),
			"Email: "+u.Email,
		)
		if u.Admin {
			sections = append(sections, theme.StyleSelected.Render("You are admin"))
		}
		sections = append(sections, "")
		if u.CreatedAt != nil {
			sections = append(sections, theme.StyleDimmed.Render("Create at: "+u.CreatedAt.Long()))
		}
		if u.UpdatedAt != nil {
			sections = append(sections, theme.StyleDimmed.Render("Last update: "+u.UpdatedAt.Long()))
		}
		if m.err != nil {
			sections = append(sections, theme.StyleError.Render("Error: "+m.err.Error()))
		}
	}

	help := "esc: back"
	if m.CanDelete() {
		sections = append(sections, "", lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("Delete my account: [x] Delete"))
		help = "x: delete account  " + help
	}
	sections = append(sections, "", theme.StyleDimmed.Render(help))
	return theme.StyleBorder.Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}
