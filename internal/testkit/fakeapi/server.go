// Package fakeapi is an in-memory stand-in for the booking service, served
// over httptest for gateway and end-to-end tests.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/bem92/yoga-app/internal/client"
	"github.com/go-chi/chi/v5"
)

// Route keys used by Calls and FailNext.
const (
	RouteLogin         = "POST /api/auth/login"
	RouteRegister      = "POST /api/auth/register"
	RouteListSessions  = "GET /api/session"
	RouteGetSession    = "GET /api/session/{id}"
	RouteCreateSession = "POST /api/session"
	RouteUpdateSession = "PUT /api/session/{id}"
	RouteDeleteSession = "DELETE /api/session/{id}"
	RouteParticipate   = "POST /api/session/{id}/participate/{userId}"
	RouteUnparticipate = "DELETE /api/session/{id}/participate/{userId}"
	RouteGetUser       = "GET /api/user/{id}"
	RouteDeleteUser    = "DELETE /api/user/{id}"
	RouteListTeachers  = "GET /api/teacher"
	RouteGetTeacher    = "GET /api/teacher/{id}"
)

// Account is a login the fake accepts.
type Account struct {
	Password string
	User     client.User
}

// Server is a fake booking service.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	accounts map[string]Account
	sessions map[int64]*client.Session
	teachers map[int64]client.Teacher
	nextID   int64
	calls    map[string]int
	failures map[string]int
	headers  map[string]http.Header
}

// Demo credentials seeded by New.
const (
	AdminEmail    = "yoga@studio.com"
	UserEmail     = "user@yoga.com"
	DemoPassword  = "test!1234"
	AdminID int64 = 1
	UserID  int64 = 2
)

// New starts a fake seeded with an admin, a regular user, two teachers and
// one session, and closes it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		accounts: map[string]Account{
			AdminEmail: {Password: DemoPassword, User: client.User{ID: AdminID, Email: AdminEmail, FirstName: "Admin", LastName: "Admin", Admin: true}},
			UserEmail:  {Password: DemoPassword, User: client.User{ID: UserID, Email: UserEmail, FirstName: "Jane", LastName: "Doe"}},
		},
		sessions: map[int64]*client.Session{},
		teachers: map[int64]client.Teacher{
			1: {ID: 1, FirstName: "Margot", LastName: "Delahaye"},
			2: {ID: 2, FirstName: "Hélène", LastName: "Thiercelin"},
		},
		nextID:   1,
		calls:    map[string]int{},
		failures: map[string]int{},
		headers:  map[string]http.Header{},
	}
	date, _ := client.ParseDate("2024-01-15")
	s.AddSession(client.Session{
		Name:        "Morning Yoga",
		Description: "Start your day **right**.",
		Date:        date,
		TeacherID:   1,
		Users:       []int64{AdminID},
	})
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// AddSession stores a copy of sess under a fresh id and returns the id.
func (s *Server) AddSession(sess client.Session) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.ID = s.nextID
	s.nextID++
	if sess.Users == nil {
		sess.Users = []int64{}
	}
	s.sessions[sess.ID] = &sess
	return sess.ID
}

// Session returns a copy of the stored session.
func (s *Server) Session(id int64) (client.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return client.Session{}, false
	}
	out := *sess
	out.Users = append([]int64(nil), sess.Users...)
	return out, true
}

// Calls returns how many requests hit the route key.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// LastHeader returns the headers of the latest request to the route key.
func (s *Server) LastHeader(route string) http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headers[route]
}

// FailNext makes the next request to route answer with code.
func (s *Server) FailNext(route string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = code
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.login)
		r.Post("/auth/register", s.register)

		r.Group(func(r chi.Router) {
			r.Use(s.requireToken)
			r.Get("/session", s.listSessions)
			r.Post("/session", s.createSession)
			r.Get("/session/{id}", s.getSession)
			r.Put("/session/{id}", s.updateSession)
			r.Delete("/session/{id}", s.deleteSession)
			r.Post("/session/{id}/participate/{userId}", s.participate)
			r.Delete("/session/{id}/participate/{userId}", s.unparticipate)
			r.Get("/user/{id}", s.getUser)
			r.Delete("/user/{id}", s.deleteUser)
			r.Get("/teacher", s.listTeachers)
			r.Get("/teacher/{id}", s.getTeacher)
		})
	})
	return r
}

// hit records the call and reports whether an injected failure was served.
// The caller must hold s.mu.
func (s *Server) hit(w http.ResponseWriter, r *http.Request) bool {
	key := r.Method + " " + chi.RouteContext(r.Context()).RoutePattern()
	s.calls[key]++
	s.headers[key] = r.Header.Clone()
	if code, ok := s.failures[key]; ok {
		delete(s.failures, key)
		http.Error(w, http.StatusText(code), code)
		return true
	}
	return false
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hit(w, r) {
		return
	}
	var req client.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	acc, ok := s.accounts[req.Email]
	if !ok || acc.Password != req.Password {
		http.Error(w, "Bad credentials", http.StatusUnauthorized)
		return
	}
	writeJSON(w, client.SessionInformation{
		Token:     "token-" + strconv.FormatInt(acc.User.ID, 10),
		Type:      "Bearer",
		ID:        acc.User.ID,
		Username:  acc.User.Email,
		FirstName: acc.User.FirstName,
		LastName:  acc.User.LastName,
		Admin:     acc.User.Admin,
	})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hit(w, r) {
		return
	}
	var req client.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, exists := s.accounts[req.Email]; exists {
		http.Error(w, "Email is already taken", http.StatusBadRequest)
		return
	}
	var id int64
	for _, acc := range s.accounts {
		if acc.User.ID > id {
			id = acc.User.ID
		}
	}
	id++
	s.accounts[req.Email] = Account{
		Password: req.Password,
		User:     client.User{ID: id, Email: req.Email, FirstName: req.FirstName, LastName: req.LastName},
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hit(w, r) {
		return
	}
	out := make([]client.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, *sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, out)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hit(w, r) {
		return
	}
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, sess)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hit(w, r) {
		return
	}
	var f client.SessionFields
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess := &client.Session{ID: s.nextID, Name: f.Name, Description: f.Description, Date: f.Date, TeacherID: f.TeacherID, Users: []int64{}}
	s.nextID++
	s.sessions[sess.ID] = sess
	writeJSON(w, sess)
}

func (s *Server) updateSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hit(w, r) {
		return
	}
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	var f client.SessionFields
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess.Name, sess.Description, sess.Date, sess.TeacherID = f.Name, f.Description, f.Date, f.TeacherID
	writeJSON(w, sess)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hit(w, r) {
		return
	}
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	delete(s.sessions, sess.ID)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) participate(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hit(w, r) {
		return
	}
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if sess.HasParticipant(userID) {
		http.Error(w, "already participating", http.StatusBadRequest)
		return
	}
	sess.Users = append(sess.Users, userID)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) unparticipate(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hit(w, r) {
		return
	}
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !sess.HasParticipant(userID) {
		http.Error(w, "not participating", http.StatusBadRequest)
		return
	}
	kept := sess.Users[:0]
	for _, id := range sess.Users {
		if id != userID {
			kept = append(kept, id)
		}
	}
	sess.Users = kept
	w.WriteHeader(http.StatusOK)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hit(w, r) {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for _, acc := range s.accounts {
		if acc.User.ID == id {
			writeJSON(w, acc.User)
			return
		}
	}
	http.Error(w, "Not found", http.StatusNotFound)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hit(w, r) {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for email, acc := range s.accounts {
		if acc.User.ID == id {
			delete(s.accounts, email)
			w.WriteHeader(http.StatusOK)
			return
		}
	}
	http.Error(w, "Not found", http.StatusNotFound)
}

func (s *Server) listTeachers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hit(w, r) {
		return
	}
	out := make([]client.Teacher, 0, len(s.teachers))
	for _, t := range s.teachers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, out)
}

func (s *Server) getTeacher(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hit(w, r) {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	t, ok := s.teachers[id]
	if !ok {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	writeJSON(w, t)
}

func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*client.Session, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	sess, ok := s.sessions[id]
	if !ok {
		http.Error(w, "Not found", http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
