package app

import (
	"context"
	"time"

	"github.com/bem92/yoga-app/internal/auth"
	"github.com/bem92/yoga-app/internal/client"
	"github.com/bem92/yoga-app/internal/config"
	"github.com/bem92/yoga-app/internal/route"
	"github.com/bem92/yoga-app/internal/theme"
	"github.com/bem92/yoga-app/internal/views/debug"
	"github.com/bem92/yoga-app/internal/views/detail"
	"github.com/bem92/yoga-app/internal/views/form"
	"github.com/bem92/yoga-app/internal/views/login"
	"github.com/bem92/yoga-app/internal/views/me"
	"github.com/bem92/yoga-app/internal/views/notfound"
	"github.com/bem92/yoga-app/internal/views/register"
	"github.com/bem92/yoga-app/internal/views/sessions"
	"github.com/bem92/yoga-app/internal/views/status"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ExpiredText is flashed when the bearer credential expires.
const ExpiredText = "Your session has expired"

// Options are the root model's dependencies.
type Options struct {
	Config  *config.Config
	Auth    *auth.Holder
	Gateway client.Gateway
	Log     logrus.FieldLogger

	// StartPath is the first path opened; the guard still applies.
	StartPath string
}

// AuthChangedMsg carries one value of the authenticated stream.
type AuthChangedMsg struct {
	Logged bool
	Err    error
}

type tokenExpiredMsg struct {
	token string
}

// Model is the root Bubble Tea model. It owns navigation: the current
// destination, the view rendering it, and the history used by Back.
type Model struct {
	ctx        context.Context
	cancel     context.CancelFunc
	viewCancel context.CancelFunc

	cfg   *config.Config
	auth  *auth.Holder
	gw    client.Gateway
	log   logrus.FieldLogger
	guard route.Guard
	sub   *auth.Subscription
	keys  KeyMap

	width  int
	height int

	dest      route.Destination
	history   []string
	startCmd  tea.Cmd
	showDebug bool

	// Sub-views.
	statusBar status.Model
	debugLog  debug.Model
	login     login.Model
	register  register.Model
	sessions  sessions.Model
	detail    detail.Model
	form      form.Model
	me        me.Model
	notFound  notfound.Model
}

// New creates the root model and opens the start path.
func New(opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	start := opts.StartPath
	if start == "" {
		start = "/"
	}

	m := Model{
		ctx:       ctx,
		cancel:    cancel,
		cfg:       opts.Config,
		auth:      opts.Auth,
		gw:        opts.Gateway,
		log:       log,
		guard:     route.NewGuard(opts.Auth),
		sub:       opts.Auth.Subscribe(),
		keys:      DefaultKeyMap(),
		statusBar: status.New(opts.Config.UI.Animate),
		debugLog:  debug.New(),
	}
	m.startCmd = m.navigate(start, false)
	return m
}

// Init starts listening to the authenticated stream and loads the first
// view.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.listenAuth(), m.startCmd)
}

// Destination returns the current destination.
func (m Model) Destination() route.Destination { return m.dest }

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	busyCmd := m.statusBar.SetBusy(m.viewBusy())
	return m, tea.Batch(cmd, busyCmd)
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.applySize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case AuthChangedMsg:
		return m.authChanged(msg)

	case tokenExpiredMsg:
		if !m.auth.IsLogged() || m.auth.Token() != msg.token {
			return m, nil
		}
		m.log.Info("credential expired, logging out")
		m.auth.LogOut()
		return m, status.FlashError(ExpiredText)

	case route.NavigateMsg:
		cmd := m.navigate(msg.Path, true)
		return m, cmd

	case route.BackMsg:
		cmd := m.back()
		return m, cmd

	case status.FlashMsg:
		m.debugLog.Flash(msg.Text, msg.Err)
		var cmd tea.Cmd
		m.statusBar, cmd = m.statusBar.Update(msg)
		return m, cmd
	}

	var statusCmd, viewCmd tea.Cmd
	m.statusBar, statusCmd = m.statusBar.Update(msg)
	m, viewCmd = m.updateView(msg)
	return m, tea.Batch(statusCmd, viewCmd)
}

func (m Model) authChanged(msg AuthChangedMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		// Subscription closed or program shutting down.
		return m, nil
	}
	m.debugLog.Addf(debug.KindAuth, "authenticated=%t", msg.Logged)
	m.log.WithField("authenticated", msg.Logged).Debug("auth state changed")
	m.history = nil
	m.syncIdentity()

	cmds := []tea.Cmd{m.listenAuth()}
	if !m.guard.Check(m.dest).Allowed {
		cmds = append(cmds, m.navigate(m.dest.Path, false))
	}
	if msg.Logged {
		cmds = append(cmds, m.watchExpiry())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) listenAuth() tea.Cmd {
	sub, ctx := m.sub, m.ctx
	return func() tea.Msg {
		v, err := sub.Next(ctx)
		return AuthChangedMsg{Logged: v, Err: err}
	}
}

// watchExpiry schedules a logout for when a JWT credential expires.
// Opaque credentials never expire client-side.
func (m Model) watchExpiry() tea.Cmd {
	token := m.auth.Token()
	exp, ok := client.TokenExpiry(token)
	if !ok {
		return nil
	}
	m.log.WithField("expires_at", exp).Debug("credential expiry scheduled")
	return tea.Tick(time.Until(exp), func(time.Time) tea.Msg {
		return tokenExpiredMsg{token: token}
	})
}

// navigate opens path, following the guard's redirect if any. The previous
// path goes on the history stack when push is set.
func (m *Model) navigate(path string, push bool) tea.Cmd {
	d, dec := m.guard.Resolve(path)
	entry := m.log.WithField("route", d.Path)
	if !dec.Allowed {
		entry = entry.WithField("requested", path)
		m.debugLog.Addf(debug.KindNav, "%s -> %s", path, d.Path)
	} else {
		m.debugLog.Add(debug.KindNav, d.Path)
	}
	entry.Debug("navigate")

	if push && m.dest.Path != "" && m.dest.Path != d.Path {
		m.history = append(m.history, m.dest.Path)
	}
	m.dest = d
	m.syncIdentity()

	if m.viewCancel != nil {
		m.viewCancel()
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.viewCancel = cancel

	identity, logged := m.auth.Identity()
	viewID := uuid.NewString()
	log := m.log.WithFields(logrus.Fields{"route": d.Path, "view_id": viewID})

	var cmd tea.Cmd
	switch d.Route {
	case route.Login:
		m.login = login.New(ctx, m.gw, m.auth, log, viewID)
		cmd = m.login.Init()
	case route.Register:
		m.register = register.New(ctx, m.gw, log, viewID)
		cmd = m.register.Init()
	case route.Sessions:
		m.sessions = sessions.New(ctx, m.gw, log, viewID, identity, logged)
		cmd = m.sessions.Init()
	case route.Detail:
		m.detail = detail.New(ctx, m.gw, log, viewID, d.ID, identity, logged, m.cfg.UI.MarkdownStyle)
		cmd = m.detail.Init()
	case route.Create:
		m.form = form.New(ctx, m.gw, log, viewID, 0, identity, logged)
		cmd = m.form.Init()
	case route.Update:
		m.form = form.New(ctx, m.gw, log, viewID, d.ID, identity, logged)
		cmd = m.form.Init()
	case route.Me:
		m.me = me.New(ctx, m.gw, m.auth, log, viewID, identity, logged)
		cmd = m.me.Init()
	default:
		m.notFound = notfound.New(path)
		cmd = m.notFound.Init()
	}
	m.applySize()
	return cmd
}

// back returns to the most recent history entry the guard still allows.
func (m *Model) back() tea.Cmd {
	for len(m.history) > 0 {
		prev := m.history[len(m.history)-1]
		m.history = m.history[:len(m.history)-1]
		if m.guard.Check(route.Parse(prev)).Allowed {
			return m.navigate(prev, false)
		}
	}
	return nil
}

func (m *Model) syncIdentity() {
	identity, ok := m.auth.Identity()
	m.statusBar.SetIdentity(ok, identity.Username, identity.Admin)
}

func (m *Model) applySize() {
	m.sessions.SetSize(m.width, m.height)
	m.detail.SetSize(m.width, m.height)
}

func (m Model) quit() tea.Cmd {
	if m.viewCancel != nil {
		m.viewCancel()
	}
	m.sub.Close()
	m.cancel()
	return tea.Quit
}

// capturesText reports whether the current view has text inputs, in which
// case plain letters are typed rather than treated as shortcuts.
func (m Model) capturesText() bool {
	switch m.dest.Route {
	case route.Login, route.Register, route.Create, route.Update:
		return true
	}
	return false
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.Debug):
		m.showDebug = !m.showDebug
		return m, nil
	}

	if m.showDebug {
		switch {
		case key.Matches(msg, m.keys.Back):
			m.showDebug = false
		case key.Matches(msg, m.keys.Up):
			m.debugLog.ScrollUp(1)
		case key.Matches(msg, m.keys.Down):
			m.debugLog.ScrollDown(1)
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.Back) {
		cmd := m.back()
		return m, cmd
	}

	if !m.capturesText() {
		switch {
		case key.Matches(msg, m.keys.QuitLetter):
			return m, m.quit()
		case key.Matches(msg, m.keys.Sessions):
			cmd := m.navigate(route.PathSessions, true)
			return m, cmd
		case key.Matches(msg, m.keys.Account) && m.auth.IsLogged():
			cmd := m.navigate(route.PathMe, true)
			return m, cmd
		case key.Matches(msg, m.keys.Logout) && m.auth.IsLogged():
			m.log.Info("logout")
			m.auth.LogOut()
			m.history = nil
			cmd := m.navigate("/", false)
			return m, cmd
		}
	}

	return m.updateView(msg)
}

// updateView forwards msg to the view of the current destination.
func (m Model) updateView(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.dest.Route {
	case route.Login:
		m.login, cmd = m.login.Update(msg)
	case route.Register:
		m.register, cmd = m.register.Update(msg)
	case route.Sessions:
		m.sessions, cmd = m.sessions.Update(msg)
	case route.Detail:
		m.detail, cmd = m.detail.Update(msg)
	case route.Create, route.Update:
		m.form, cmd = m.form.Update(msg)
	case route.Me:
		m.me, cmd = m.me.Update(msg)
	default:
		m.notFound, cmd = m.notFound.Update(msg)
	}
	return m, cmd
}

func (m Model) viewBusy() bool {
	switch m.dest.Route {
	case route.Login:
		return m.login.Busy()
	case route.Register:
		return m.register.Busy()
	case route.Sessions:
		return m.sessions.Busy()
	case route.Detail:
		return m.detail.Busy()
	case route.Create, route.Update:
		return m.form.Busy()
	case route.Me:
		return m.me.Busy()
	}
	return false
}

func (m Model) viewBody() string {
	switch m.dest.Route {
	case route.Login:
		return m.login.View()
	case route.Register:
		return m.register.View()
	case route.Sessions:
		return m.sessions.View()
	case route.Detail:
		return m.detail.View()
	case route.Create, route.Update:
		return m.form.View()
	case route.Me:
		return m.me.View()
	}
	return m.notFound.View()
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	body := m.viewBody()
	if m.showDebug {
		body = m.debugLog.View(m.width, m.height-4)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.statusBar.View(),
		body,
		theme.StyleDimmed.Render("  "+m.helpLine()),
	)
}

func (m Model) helpLine() string {
	if m.showDebug {
		return "j/k: scroll  esc: close  ctrl+d: close"
	}
	if m.capturesText() {
		return "esc: back  ctrl+d: debug  ctrl+c: quit"
	}
	if m.auth.IsLogged() {
		return "s: sessions  a: account  o: logout  esc: back  ctrl+d: debug  q: quit"
	}
	return "s: sessions  esc: back  ctrl+d: debug  q: quit"
}
