// Package form provides the create and update session views.
package form

import (
	"context"
	"errors"
	"fmt"

	"github.com/bem92/yoga-app/internal/client"
	"github.com/bem92/yoga-app/internal/policy"
	"github.com/bem92/yoga-app/internal/route"
	"github.com/bem92/yoga-app/internal/theme"
	"github.com/bem92/yoga-app/internal/views/input"
	"github.com/bem92/yoga-app/internal/views/status"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Flash texts.
const (
	CreatedText = "Session created !"
	UpdatedText = "Session updated !"
)

const maxDescription = 2000

const (
	fieldName = iota
	fieldDate
	fieldDescription
)

var (
	errIncomplete = errors.New("every field is required")
	errNoTeacher  = errors.New("select a teacher")
)

// LoadedMsg carries the teachers and, when editing, the session.
type LoadedMsg struct {
	ViewID   string
	Teachers []client.Teacher
	Session  *client.Session
	Err      error
}

// SavedMsg is returned after a create or update call.
type SavedMsg struct {
	ViewID  string
	Session *client.Session
	Err     error
}

type KeyMap struct {
	Next        key.Binding
	Prev        key.Binding
	NextTeacher key.Binding
	PrevTeacher key.Binding
	Submit      key.Binding
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
		NextTeacher: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "next teacher"),
		),
		PrevTeacher: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "prev teacher"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "save"),
		),
	}
}

// Model is the session form. A zero sessionID means create.
type Model struct {
	ctx       context.Context
	gw        client.Gateway
	log       logrus.FieldLogger
	id        string
	keys      KeyMap
	sessionID int64
	allowed   bool

	fields   input.Set
	teachers []client.Teacher
	teacher  int
	loading  bool
	saving   bool
	err      error
}

// New creates a form. Principals that may not manage sessions are sent
// back to the list on Init.
func New(ctx context.Context, gw client.Gateway, log logrus.FieldLogger, viewID string, sessionID int64, identity client.SessionInformation, logged bool) Model {
	description := input.NewField("Description", "", false)
	description.Input.CharLimit = maxDescription
	return Model{
		ctx:       ctx,
		gw:        gw,
		log:       log.WithFields(logrus.Fields{"view": "form", "session_id": sessionID}),
		id:        viewID,
		keys:      DefaultKeyMap(),
		sessionID: sessionID,
		allowed:   policy.CanManageSessions(identity, logged),
		fields: input.NewSet(
			input.NewField("Name", "", false),
			input.NewField("Date", "YYYY-MM-DD", false),
			description,
		),
		teacher: -1,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	if !m.allowed {
		return route.Navigate(route.PathSessions)
	}
	return load(m.ctx, m.gw, m.id, m.sessionID)
}

// Editing reports whether the form updates an existing session.
func (m Model) Editing() bool { return m.sessionID != 0 }

func (m Model) Busy() bool { return m.loading || m.saving }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.ViewID != m.id {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.log.WithError(msg.Err).Warn("form load failed")
			m.err = msg.Err
			return m, nil
		}
		m.teachers = msg.Teachers
		if s := msg.Session; s != nil {
			m.fields.SetValue(fieldName, s.Name)
			m.fields.SetValue(fieldDate, s.Date.Format("2006-01-02"))
			m.fields.SetValue(fieldDescription, s.Description)
			m.teacher = m.indexOfTeacher(s.TeacherID)
		}
		return m, nil

	case SavedMsg:
		if msg.ViewID != m.id {
			return m, nil
		}
		m.saving = false
		if msg.Err != nil {
			m.log.WithError(msg.Err).Warn("save failed")
			m.err = msg.Err
			return m, nil
		}
		text := CreatedText
		if m.Editing() {
			text = UpdatedText
		}
		entry := m.log
		if msg.Session != nil {
			entry = entry.WithField("saved_id", msg.Session.ID)
		}
		entry.Info(text)
		return m, tea.Batch(status.Flash(text), route.Navigate(route.PathSessions))

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Next):
			m.fields.Next()
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.fields.Prev()
			return m, nil
		case key.Matches(msg, m.keys.NextTeacher):
			m.cycleTeacher(1)
			return m, nil
		case key.Matches(msg, m.keys.PrevTeacher):
			m.cycleTeacher(-1)
			return m, nil
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.fields, cmd = m.fields.Update(msg)
	return m, cmd
}

func (m *Model) cycleTeacher(step int) {
	if len(m.teachers) == 0 {
		return
	}
	if m.teacher < 0 {
		m.teacher = 0
		return
	}
	m.teacher = (m.teacher + step + len(m.teachers)) % len(m.teachers)
}

func (m Model) indexOfTeacher(id int64) int {
	for i, t := range m.teachers {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Fields validates the form and returns the values to send.
func (m Model) Fields() (client.SessionFields, error) {
	if !m.fields.Filled() {
		return client.SessionFields{}, errIncomplete
	}
	if m.teacher < 0 || m.teacher >= len(m.teachers) {
		return client.SessionFields{}, errNoTeacher
	}
	date, err := client.ParseDate(m.fields.Value(fieldDate))
	if err != nil {
		return client.SessionFields{}, fmt.Errorf("date: %w", err)
	}
	return client.SessionFields{
		Name:        m.fields.Value(fieldName),
		Description: m.fields.Value(fieldDescription),
		Date:        date,
		TeacherID:   m.teachers[m.teacher].ID,
	}, nil
}

func (m Model) submit() (Model, tea.Cmd) {
	if m.loading || m.saving {
		return m, nil
	}
	fields, err := m.Fields()
	if err != nil {
		m.err = err
		return m, nil
	}
	m.saving = true
	m.err = nil

	ctx, gw, id, sessionID := m.ctx, m.gw, m.id, m.sessionID
	return m, func() tea.Msg {
		var s *client.Session
		var err error
		if sessionID == 0 {
			s, err = gw.CreateSession(ctx, fields)
		} else {
			s, err = gw.UpdateSession(ctx, sessionID, fields)
		}
		return SavedMsg{ViewID: id, Session: s, Err: err}
	}
}

func (m Model) View() string {
	title := "Create session"
	if m.Editing() {
		title = "Update session"
	}
	sections := []string{theme.StyleTitle.Render(title), ""}

	if m.loading {
		sections = append(sections, theme.StyleDimmed.Render("Loading..."))
		return theme.StyleBorder.Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
	}

	teacher := theme.StyleDimmed.Render("Select a teacher")
	if m.teacher >= 0 && m.teacher < len(m.teachers) {
		teacher = theme.StyleSelected.Render(m.teachers[m.teacher].FullName())
	}
	sections = append(sections,
		m.fields.View(),
		"  "+lipgloss.NewStyle().Foreground(theme.ColorDimmed).Width(14).Render("Teacher:")+teacher,
		"",
	)
	if m.err != nil {
		sections = append(sections, theme.StyleError.Render("Error: "+m.err.Error()), "")
	}
	sections = append(sections, theme.StyleDimmed.Render("tab: next field  ctrl+n/ctrl+p: teacher  enter: save  esc: back"))
	return theme.StyleBorder.Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// load fetches the teacher list and, when editing, the session in parallel.
func load(ctx context.Context, gw client.Gateway, viewID string, sessionID int64) tea.Cmd {
	return func() tea.Msg {
		var (
			teachers []client.Teacher
			session  *client.Session
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			teachers, err = gw.ListTeachers(gctx)
			return err
		})
		if sessionID != 0 {
			g.Go(func() error {
				var err error
				session, err = gw.GetSession(gctx, sessionID)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return LoadedMsg{ViewID: viewID, Err: err}
		}
		return LoadedMsg{ViewID: viewID, Teachers: teachers, Session: session}
	}
}
