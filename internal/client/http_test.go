package client_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/bem92/yoga-app/internal/client"
	"github.com/bem92/yoga-app/internal/testkit/fakeapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, token string) (*client.HTTPClient, *fakeapi.Server) {
	t.Helper()
	srv := fakeapi.New(t)
	c := client.NewHTTPClient(srv.URL, func() string { return token }, 2*time.Second, nil)
	return c, srv
}

func TestLogin(t *testing.T) {
	c, srv := newClient(t, "")
	ctx := context.Background()

	info, err := c.Login(ctx, client.LoginRequest{Email: fakeapi.AdminEmail, Password: fakeapi.DemoPassword})
	require.NoError(t, err)
	assert.True(t, info.Valid())
	assert.True(t, info.Admin)
	assert.Equal(t, fakeapi.AdminID, info.ID)
	assert.Equal(t, "Bearer", info.Type)
	assert.Equal(t, 1, srv.Calls(fakeapi.RouteLogin))

	_, err = c.Login(ctx, client.LoginRequest{Email: fakeapi.AdminEmail, Password: "wrong"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, client.ErrUnauthorized))

	var se *client.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.Equal(t, "/api/auth/login", se.Path)
}

func TestRegister(t *testing.T) {
	c, srv := newClient(t, "")
	ctx := context.Background()

	req := client.RegisterRequest{Email: "new@yoga.com", FirstName: "New", LastName: "Comer", Password: "pw"}
	require.NoError(t, c.Register(ctx, req))
	assert.Equal(t, 1, srv.Calls(fakeapi.RouteRegister))

	err := c.Register(ctx, req)
	assert.ErrorIs(t, err, client.ErrBadRequest)

	info, err := c.Login(ctx, client.LoginRequest{Email: "new@yoga.com", Password: "pw"})
	require.NoError(t, err)
	assert.False(t, info.Admin)
}

func TestSessionCRUD(t *testing.T) {
	c, srv := newClient(t, "token-1")
	ctx := context.Background()

	list, err := c.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Morning Yoga", list[0].Name)
	assert.Equal(t, "January 15, 2024", list[0].Date.Long())

	date, err := client.ParseDate("2024-03-02")
	require.NoError(t, err)
	created, err := c.CreateSession(ctx, client.SessionFields{Name: "Evening Flow", Description: "wind down", Date: date, TeacherID: 2})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Empty(t, created.Users)

	updated, err := c.UpdateSession(ctx, created.ID, client.SessionFields{Name: "Evening Flow II", Description: "wind down", Date: date, TeacherID: 1})
	require.NoError(t, err)
	assert.Equal(t, "Evening Flow II", updated.Name)
	assert.EqualValues(t, 1, updated.TeacherID)

	got, err := c.GetSession(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Evening Flow II", got.Name)

	require.NoError(t, c.DeleteSession(ctx, created.ID))
	_, err = c.GetSession(ctx, created.ID)
	assert.ErrorIs(t, err, client.ErrNotFound)
	assert.Equal(t, 2, srv.Calls(fakeapi.RouteGetSession))
}

func TestParticipation(t *testing.T) {
	c, srv := newClient(t, "token-2")
	ctx := context.Background()

	require.NoError(t, c.Participate(ctx, 1, fakeapi.UserID))
	sess, ok := srv.Session(1)
	require.True(t, ok)
	assert.Equal(t, []int64{fakeapi.AdminID, fakeapi.UserID}, sess.Users)

	require.NoError(t, c.Unparticipate(ctx, 1, fakeapi.UserID))
	sess, _ = srv.Session(1)
	assert.Equal(t, []int64{fakeapi.AdminID}, sess.Users)

	srv.FailNext(fakeapi.RouteParticipate, http.StatusInternalServerError)
	err := c.Participate(ctx, 1, fakeapi.UserID)
	assert.ErrorIs(t, err, client.ErrServer)
}

func TestGetSessionDropsRepeatedParticipants(t *testing.T) {
	c, srv := newClient(t, "token-1")
	id := srv.AddSession(client.Session{Name: "Dup", Users: []int64{3, 1, 3, 2, 1}})

	sess, err := c.GetSession(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, sess.Users)
	assert.True(t, sess.HasParticipant(2))
	assert.False(t, sess.HasParticipant(4))
}

func TestUsersAndTeachers(t *testing.T) {
	c, _ := newClient(t, "token-2")
	ctx := context.Background()

	u, err := c.GetUser(ctx, fakeapi.UserID)
	require.NoError(t, err)
	assert.Equal(t, fakeapi.UserEmail, u.Email)

	teachers, err := c.ListTeachers(ctx)
	require.NoError(t, err)
	require.Len(t, teachers, 2)

	teacher, err := c.GetTeacher(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Margot DELAHAYE", teacher.FullName())

	_, err = c.GetTeacher(ctx, 99)
	assert.ErrorIs(t, err, client.ErrNotFound)

	require.NoError(t, c.DeleteUser(ctx, fakeapi.UserID))
	_, err = c.GetUser(ctx, fakeapi.UserID)
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestRequestHeaders(t *testing.T) {
	c, srv := newClient(t, "token-1")
	_, err := c.ListSessions(context.Background())
	require.NoError(t, err)

	h := srv.LastHeader(fakeapi.RouteListSessions)
	require.NotNil(t, h)
	assert.Equal(t, "Bearer token-1", h.Get("Authorization"))
	assert.NotEmpty(t, h.Get("X-Request-ID"))
}

func TestAnonymousCallsAreRejected(t *testing.T) {
	c, _ := newClient(t, "")
	_, err := c.ListSessions(context.Background())
	assert.ErrorIs(t, err, client.ErrUnauthorized)
}
