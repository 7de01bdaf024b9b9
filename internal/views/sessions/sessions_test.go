package sessions

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bem92/yoga-app/internal/client"
	"github.com/bem92/yoga-app/internal/route"
	"github.com/bem92/yoga-app/internal/testkit/fakeapi"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin  = client.SessionInformation{Token: "token-1", ID: fakeapi.AdminID, Username: fakeapi.AdminEmail, Admin: true}
	member = client.SessionInformation{Token: "token-2", ID: fakeapi.UserID, Username: fakeapi.UserEmail}
)

func load(t *testing.T, identity client.SessionInformation) (Model, *fakeapi.Server) {
	t.Helper()
	srv := fakeapi.New(t)
	date, _ := client.ParseDate("2024-02-01")
	srv.AddSession(client.Session{Name: "Evening Meditation", Date: date, TeacherID: 2})

	log, _ := test.NewNullLogger()
	gw := client.NewHTTPClient(srv.URL, func() string { return identity.Token }, 0, log)
	m := New(context.Background(), gw, log, "list-1", identity, true)
	require.True(t, m.Busy())
	m, _ = m.Update(m.Init()())
	require.False(t, m.Busy())
	return m, srv
}

func press(m Model, k string) (Model, tea.Cmd) {
	return m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
}

func TestAdminSeesManagementControls(t *testing.T) {
	m, _ := load(t, admin)
	v := m.View()

	assert.Contains(t, v, "Morning Yoga")
	assert.Contains(t, v, "Evening Meditation")
	assert.Contains(t, v, "[c] Create")
	assert.Contains(t, v, "[Edit]")
	assert.Contains(t, v, "[Detail]")
}

func TestMemberSeesOnlyDetail(t *testing.T) {
	m, _ := load(t, member)
	v := m.View()

	assert.Contains(t, v, "Morning Yoga")
	assert.Contains(t, v, "[Detail]")
	assert.NotContains(t, v, "Create")
	assert.NotContains(t, v, "[Edit]")

	_, cmd := press(m, "c")
	assert.Nil(t, cmd, "create is not available")
	_, cmd = press(m, "e")
	assert.Nil(t, cmd, "edit is not available")
}

func TestNavigation(t *testing.T) {
	m, _ := load(t, admin)
	require.Len(t, m.Sessions(), 2)

	m, _ = press(m, "j")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, route.NavigateMsg{Path: route.DetailPath(m.Sessions()[1].ID)}, cmd())

	_, cmd = press(m, "e")
	require.NotNil(t, cmd)
	assert.Equal(t, route.NavigateMsg{Path: route.UpdatePath(m.Sessions()[1].ID)}, cmd())

	_, cmd = press(m, "c")
	require.NotNil(t, cmd)
	assert.Equal(t, route.NavigateMsg{Path: route.PathCreate}, cmd())

	// Wraps back to the first row.
	m, _ = press(m, "j")
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, route.NavigateMsg{Path: route.DetailPath(m.Sessions()[0].ID)}, cmd())
}

func TestLoadFailureAndRefresh(t *testing.T) {
	m, srv := load(t, member)
	srv.FailNext(fakeapi.RouteListSessions, http.StatusInternalServerError)

	m, cmd := press(m, "r")
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())
	assert.Contains(t, m.View(), "Could not load sessions")

	m, cmd = press(m, "r")
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())
	assert.NotContains(t, m.View(), "Could not load sessions")
	assert.Len(t, m.Sessions(), 2)
}

func TestStaleLoadIgnored(t *testing.T) {
	m, _ := load(t, member)
	m, _ = m.Update(LoadedMsg{ViewID: "list-0", Sessions: nil})
	assert.Len(t, m.Sessions(), 2)
}

func TestLongNonASCIINameIsCutByCell(t *testing.T) {
	m, _ := load(t, member)
	row := m.renderRow(client.Session{Name: strings.Repeat("é", 40)}, false)

	assert.True(t, utf8.ValidString(row), "row must stay valid UTF-8: %q", row)
	assert.Contains(t, row, strings.Repeat("é", nameWidth-3)+"…")
	assert.NotContains(t, row, strings.Repeat("é", nameWidth-2))

	short := m.renderRow(client.Session{Name: "Hélène's Flow"}, true)
	assert.Contains(t, short, "Hélène's Flow")
	assert.NotContains(t, short, "…")
}
