package route

// LoginState is the synchronous part of the auth state holder the guard
// needs.
type LoginState interface {
	IsLogged() bool
}

// Decision is the outcome of a navigation attempt. A denied navigation
// carries the path to go to instead.
type Decision struct {
	Allowed  bool
	Redirect string
}

// Guard gates navigation on the current authentication state.
type Guard struct {
	auth LoginState
}

// NewGuard returns a guard backed by auth.
func NewGuard(auth LoginState) Guard {
	return Guard{auth: auth}
}

// Check decides whether navigation to d may proceed. It never performs I/O.
func (g Guard) Check(d Destination) Decision {
	logged := g.auth.IsLogged()
	switch {
	case d.Route.Protected() && !logged:
		return Decision{Redirect: PathLogin}
	case d.Route.AuthOnly() && logged:
		return Decision{Redirect: PathSessions}
	}
	return Decision{Allowed: true}
}

// Resolve parses path and follows at most one redirect.
func (g Guard) Resolve(path string) (Destination, Decision) {
	d := Parse(path)
	dec := g.Check(d)
	if dec.Allowed {
		return d, dec
	}
	return Parse(dec.Redirect), dec
}
