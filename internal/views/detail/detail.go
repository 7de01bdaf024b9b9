// Package detail renders one session and drives its participation
// controls.
package detail

import (
	"context"
	"fmt"
	"strings"

	"github.com/bem92/yoga-app/internal/client"
	"github.com/bem92/yoga-app/internal/participation"
	"github.com/bem92/yoga-app/internal/policy"
	"github.com/bem92/yoga-app/internal/route"
	"github.com/bem92/yoga-app/internal/theme"
	"github.com/bem92/yoga-app/internal/views/status"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

// DeletedText is flashed after a session is deleted.
const DeletedText = "Session deleted !"

const (
	panelWidth    = 72
	minPanelWidth = 24
	labelWidth    = 14
)

var (
	stylePanel = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.ColorBorder).
			Padding(0, 1)

	styleLabel = lipgloss.NewStyle().
			Foreground(theme.ColorDimmed).
			Width(labelWidth)

	styleValue = lipgloss.NewStyle().
			Foreground(theme.ColorBright)

	styleFooter = lipgloss.NewStyle().
			Foreground(theme.ColorDimmed)
)

// TeacherMsg is returned after fetching the session's teacher.
type TeacherMsg struct {
	ViewID  string
	Teacher *client.Teacher
	Err     error
}

// DeletedMsg is returned after a delete call.
type DeletedMsg struct {
	ViewID string
	Err    error
}

type KeyMap struct {
	Participate   key.Binding
	Unparticipate key.Binding
	Refresh       key.Binding
	Delete        key.Binding
	Edit          key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Participate: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "participate"),
		),
		Unparticipate: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "do not participate"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "delete"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
	}
}

// Model holds the state for the detail view.
type Model struct {
	ctx      context.Context
	gw       client.Gateway
	log      logrus.FieldLogger
	id       string
	keys     KeyMap
	identity client.SessionInformation
	logged   bool
	mdStyle  string

	wf          participation.Workflow
	teacher     *client.Teacher
	teacherFor  int64
	description string
	deleting    bool
	err         error
	width       int
}

// New creates a detail view for session sessionID. viewID must be unique
// per view instance so results for torn-down views are dropped.
func New(ctx context.Context, gw client.Gateway, log logrus.FieldLogger, viewID string, sessionID int64, identity client.SessionInformation, logged bool, markdownStyle string) Model {
	log = log.WithField("view", "detail")
	return Model{
		ctx:      ctx,
		gw:       gw,
		log:      log,
		id:       viewID,
		keys:     DefaultKeyMap(),
		identity: identity,
		logged:   logged,
		mdStyle:  markdownStyle,
		wf:       participation.New(ctx, gw, log, viewID, sessionID, identity.ID),
		width:    panelWidth,
	}
}

func (m Model) Init() tea.Cmd { return m.wf.Init() }

// Busy reports whether a fetch, mutation or delete is in flight.
func (m Model) Busy() bool {
	switch m.wf.State() {
	case participation.Loading:
		return m.wf.Err() == nil
	case participation.Mutating:
		return true
	}
	return m.deleting
}

// State returns the participation state.
func (m Model) State() participation.State { return m.wf.State() }

// SetSize fits the panel to the terminal, within [minPanelWidth, panelWidth].
func (m *Model) SetSize(width, _ int) {
	if width <= 0 {
		return
	}
	w := min(max(width, minPanelWidth), panelWidth)
	if w == m.width {
		return
	}
	m.width = w
	if s := m.wf.Session(); s != nil {
		m.description = renderMarkdown(s.Description, m.mdStyle, m.width-4)
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case participation.FetchedMsg, participation.MutatedMsg:
		var cmd tea.Cmd
		m.wf, cmd = m.wf.Update(msg)
		teacherCmd := m.sessionChanged()
		return m, tea.Batch(cmd, teacherCmd)

	case TeacherMsg:
		if msg.ViewID != m.id {
			return m, nil
		}
		if msg.Err != nil {
			m.log.WithError(msg.Err).Warn("teacher fetch failed")
			return m, nil
		}
		m.teacher = msg.Teacher
		return m, nil

	case DeletedMsg:
		if msg.ViewID != m.id {
			return m, nil
		}
		m.deleting = false
		if msg.Err != nil {
			m.log.WithError(msg.Err).Warn("delete failed")
			m.err = msg.Err
			return m, nil
		}
		return m, tea.Batch(status.Flash(DeletedText), route.Navigate(route.PathSessions))

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	manage := policy.CanManageSessions(m.identity, m.logged)
	participate := policy.CanParticipate(m.identity, m.logged)

	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Participate) && participate:
		m.err = nil
		m.wf, cmd = m.wf.Join()

	case key.Matches(msg, m.keys.Unparticipate) && participate:
		m.err = nil
		m.wf, cmd = m.wf.Leave()

	case key.Matches(msg, m.keys.Refresh):
		m.wf, cmd = m.wf.Refresh()

	case key.Matches(msg, m.keys.Delete) && manage:
		s := m.wf.Session()
		if s == nil || m.deleting {
			break
		}
		m.deleting = true
		m.err = nil
		ctx, gw, id, sessionID := m.ctx, m.gw, m.id, s.ID
		cmd = func() tea.Msg {
			return DeletedMsg{ViewID: id, Err: gw.DeleteSession(ctx, sessionID)}
		}

	case key.Matches(msg, m.keys.Edit) && manage:
		if s := m.wf.Session(); s != nil {
			cmd = route.Navigate(route.UpdatePath(s.ID))
		}
	}
	return m, cmd
}

// sessionChanged refreshes derived state after a fetch: the rendered
// description and, when the teacher changed, a teacher lookup.
func (m *Model) sessionChanged() tea.Cmd {
	s := m.wf.Session()
	if s == nil {
		return nil
	}
	m.description = renderMarkdown(s.Description, m.mdStyle, m.width-4)
	if s.TeacherID == 0 || s.TeacherID == m.teacherFor {
		return nil
	}
	m.teacherFor = s.TeacherID
	ctx, gw, id, teacherID := m.ctx, m.gw, m.id, s.TeacherID
	return func() tea.Msg {
		t, err := gw.GetTeacher(ctx, teacherID)
		return TeacherMsg{ViewID: id, Teacher: t, Err: err}
	}
}

func renderMarkdown(md, style string, width int) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

// View renders the detail panel.
func (m Model) View() string {
	s := m.wf.Session()
	switch {
	case m.wf.NotFound():
		return stylePanel.Width(m.width).Render(theme.StyleError.Render("Session not found") + "\n\n" + styleFooter.Render("[esc] back"))
	case s == nil && m.wf.Err() != nil:
		return stylePanel.Width(m.width).Render(theme.StyleError.Render("Could not load session: "+m.wf.Err().Error()) + "\n\n" + styleFooter.Render("[r] retry  [esc] back"))
	case s == nil:
		return stylePanel.Width(m.width).Render(theme.StyleDimmed.Render("Loading session..."))
	}
	return stylePanel.Width(m.width).Render(m.renderInner(s))
}

func (m Model) renderInner(s *client.Session) string {
	var b strings.Builder

	b.WriteString(theme.StyleTitle.Render(titleCase(s.Name)) + "\n")
	b.WriteString(strings.Repeat("─", m.width-4) + "\n")

	teacher := "..."
	if m.teacher != nil {
		teacher = m.teacher.FullName()
	}
	writeRow(&b, "Teacher", teacher)
	writeRow(&b, "Attendees", fmt.Sprintf("%d attendees", len(s.Users)))
	writeRow(&b, "Date", s.Date.Long())

	if m.logged && !m.identity.Admin {
		state := m.wf.State().String()
		glyph := theme.MembershipGlyph(state)
		writeRow(&b, "You", lipgloss.NewStyle().Foreground(theme.MembershipColor(state)).Render(glyph+" "+state))
	}

	if m.description != "" {
		b.WriteString("\n" + theme.StyleHeader.Render("Description") + "\n")
		b.WriteString(m.description + "\n")
	}

	b.WriteString("\n")
	if s.CreatedAt != nil {
		writeRow(&b, "Created", s.CreatedAt.Long())
	}
	if s.UpdatedAt != nil {
		writeRow(&b, "Last update", s.UpdatedAt.Long())
	}

	if err := m.firstError(); err != nil {
		b.WriteString("\n" + theme.StyleError.Render("Error: "+err.Error()) + "\n")
	}

	b.WriteString("\n" + styleFooter.Render(m.footer()))
	return b.String()
}

func (m Model) firstError() error {
	if m.err != nil {
		return m.err
	}
	return m.wf.Err()
}

func (m Model) footer() string {
	var parts []string
	switch {
	case policy.CanManageSessions(m.identity, m.logged):
		parts = append(parts, "[x] Delete", "[e] Edit")
	case policy.CanParticipate(m.identity, m.logged):
		switch m.wf.State() {
		case participation.NotParticipating:
			parts = append(parts, "[p] Participate")
		case participation.Participating:
			parts = append(parts, "[u] Do not participate")
		}
	}
	if m.wf.State() == participation.Loading && m.wf.Err() != nil {
		parts = append(parts, "[r] retry")
	}
	parts = append(parts, "[esc] back")
	return strings.Join(parts, "  ")
}

func writeRow(b *strings.Builder, label, value string) {
	b.WriteString(styleLabel.Render(label+":") + styleValue.Render(value) + "\n")
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
	}
	return strings.Join(words, " ")
}
