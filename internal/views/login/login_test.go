package login

import (
	"context"
	"testing"

	"github.com/bem92/yoga-app/internal/auth"
	"github.com/bem92/yoga-app/internal/client"
	"github.com/bem92/yoga-app/internal/route"
	"github.com/bem92/yoga-app/internal/testkit/fakeapi"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newView(t *testing.T) (Model, *auth.Holder, *fakeapi.Server) {
	t.Helper()
	srv := fakeapi.New(t)
	holder := auth.NewHolder()
	log, _ := test.NewNullLogger()
	gw := client.NewHTTPClient(srv.URL, holder.Token, 0, log)
	return New(context.Background(), gw, holder, log, "login-1"), holder, srv
}

func fill(m Model, email, password string) Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(email)})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(password)})
	return m
}

func submit(m Model) (Model, tea.Cmd) {
	return m.Update(tea.KeyMsg{Type: tea.KeyEnter})
}

func TestLoginSuccessStoresIdentityAndNavigates(t *testing.T) {
	m, holder, _ := newView(t)
	m = fill(m, fakeapi.AdminEmail, fakeapi.DemoPassword)

	m, cmd := submit(m)
	require.NotNil(t, cmd)
	assert.True(t, m.Busy())

	m, cmd = m.Update(cmd())
	assert.False(t, m.Busy())
	assert.False(t, m.Failed())
	require.NotNil(t, cmd)
	assert.Equal(t, route.NavigateMsg{Path: route.PathSessions}, cmd())

	identity, ok := holder.Identity()
	require.True(t, ok)
	assert.True(t, identity.Admin)
	assert.Equal(t, fakeapi.AdminID, identity.ID)
}

func TestLoginFailureShowsError(t *testing.T) {
	m, holder, _ := newView(t)
	m = fill(m, fakeapi.UserEmail, "wrong")

	m, cmd := submit(m)
	require.NotNil(t, cmd)
	m, cmd = m.Update(cmd())

	assert.Nil(t, cmd)
	assert.True(t, m.Failed())
	assert.Contains(t, m.View(), ErrorText)
	assert.False(t, holder.IsLogged())
}

func TestLoginRejectsIncompleteIdentity(t *testing.T) {
	m, holder, _ := newView(t)
	m, _ = m.Update(ResultMsg{ViewID: "login-1", Identity: &client.SessionInformation{ID: 1}})
	assert.True(t, m.Failed())
	assert.False(t, holder.IsLogged())
}

func TestSubmitNeedsBothFields(t *testing.T) {
	m, _, srv := newView(t)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(fakeapi.UserEmail)})

	m, cmd := submit(m)
	assert.Nil(t, cmd)
	assert.False(t, m.Busy())
	assert.Zero(t, srv.Calls(fakeapi.RouteLogin))
}

func TestStaleResultIgnored(t *testing.T) {
	m, holder, _ := newView(t)
	m, cmd := m.Update(ResultMsg{ViewID: "login-0", Err: client.ErrUnauthorized})
	assert.Nil(t, cmd)
	assert.False(t, m.Failed())
	assert.False(t, holder.IsLogged())
}

func TestRegisterShortcut(t *testing.T) {
	m, _, _ := newView(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	assert.Equal(t, route.NavigateMsg{Path: route.PathRegister}, cmd())
}
