package route

import "testing"

type fakeAuth bool

func (f fakeAuth) IsLogged() bool { return bool(f) }

func TestParse(t *testing.T) {
	tests := []struct {
		path  string
		route Route
		id    int64
	}{
		{"", Sessions, 0},
		{"/", Sessions, 0},
		{"/login", Login, 0},
		{"login/", Login, 0},
		{"/register", Register, 0},
		{"/sessions", Sessions, 0},
		{"/sessions/create", Create, 0},
		{"/sessions/detail/12", Detail, 12},
		{"/sessions/update/3", Update, 3},
		{"/sessions/detail/abc", NotFound, 0},
		{"/sessions/detail/-1", NotFound, 0},
		{"/sessions/detail", NotFound, 0},
		{"/me", Me, 0},
		{"/404", NotFound, 0},
		{"/nowhere", NotFound, 0},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			d := Parse(tt.path)
			if d.Route != tt.route || d.ID != tt.id {
				t.Errorf("Parse(%q) = %v/%d, want %v/%d", tt.path, d.Route, d.ID, tt.route, tt.id)
			}
		})
	}
}

func TestPathsRoundTrip(t *testing.T) {
	if d := Parse(DetailPath(5)); d.Route != Detail || d.ID != 5 {
		t.Errorf("DetailPath round trip = %+v", d)
	}
	if d := Parse(UpdatePath(9)); d.Route != Update || d.ID != 9 {
		t.Errorf("UpdatePath round trip = %+v", d)
	}
}

func TestGuardCheck(t *testing.T) {
	tests := []struct {
		name     string
		logged   bool
		path     string
		allowed  bool
		redirect string
	}{
		{"anonymous to sessions", false, "/sessions", false, PathLogin},
		{"anonymous to detail", false, "/sessions/detail/1", false, PathLogin},
		{"anonymous to create", false, "/sessions/create", false, PathLogin},
		{"anonymous to me", false, "/me", false, PathLogin},
		{"anonymous to login", false, "/login", true, ""},
		{"anonymous to register", false, "/register", true, ""},
		{"anonymous to unknown", false, "/nowhere", true, ""},
		{"logged to sessions", true, "/sessions", true, ""},
		{"logged to update", true, "/sessions/update/2", true, ""},
		{"logged to login", true, "/login", false, PathSessions},
		{"logged to register", true, "/register", false, PathSessions},
		{"logged to unknown", true, "/nowhere", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGuard(fakeAuth(tt.logged))
			got := g.Check(Parse(tt.path))
			if got.Allowed != tt.allowed || got.Redirect != tt.redirect {
				t.Errorf("Check(%q) = %+v, want allowed=%v redirect=%q", tt.path, got, tt.allowed, tt.redirect)
			}
		})
	}
}

func TestGuardResolve(t *testing.T) {
	d, dec := NewGuard(fakeAuth(false)).Resolve("/me")
	if dec.Allowed || d.Route != Login {
		t.Errorf("Resolve(/me) anonymous = %+v %+v, want login redirect", d, dec)
	}

	d, dec = NewGuard(fakeAuth(true)).Resolve("/login")
	if dec.Allowed || d.Route != Sessions {
		t.Errorf("Resolve(/login) logged = %+v %+v, want sessions redirect", d, dec)
	}

	d, dec = NewGuard(fakeAuth(true)).Resolve("/sessions/detail/4")
	if !dec.Allowed || d.Route != Detail || d.ID != 4 {
		t.Errorf("Resolve(detail) logged = %+v %+v", d, dec)
	}
}
