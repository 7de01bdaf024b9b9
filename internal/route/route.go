// Package route maps navigation paths to destinations and decides whether
// a navigation may proceed.
package route

import (
	"strconv"
	"strings"
)

// Route identifies a view.
type Route int

const (
	NotFound Route = iota
	Login
	Register
	Sessions
	Detail
	Create
	Update
	Me
)

func (r Route) String() string {
	switch r {
	case Login:
		return "login"
	case Register:
		return "register"
	case Sessions:
		return "sessions"
	case Detail:
		return "detail"
	case Create:
		return "create"
	case Update:
		return "update"
	case Me:
		return "me"
	default:
		return "not-found"
	}
}

// Protected reports whether the route needs an authenticated principal.
func (r Route) Protected() bool {
	switch r {
	case Sessions, Detail, Create, Update, Me:
		return true
	}
	return false
}

// AuthOnly reports whether the route is only for anonymous principals.
func (r Route) AuthOnly() bool {
	return r == Login || r == Register
}

// Well-known paths.
const (
	PathLogin    = "/login"
	PathRegister = "/register"
	PathSessions = "/sessions"
	PathCreate   = "/sessions/create"
	PathMe       = "/me"
	PathNotFound = "/404"
)

// Destination is a parsed navigation target.
type Destination struct {
	Route Route
	ID    int64
	Path  string
}

// DetailPath returns the path of a session's detail view.
func DetailPath(id int64) string {
	return "/sessions/detail/" + strconv.FormatInt(id, 10)
}

// UpdatePath returns the path of a session's edit form.
func UpdatePath(id int64) string {
	return "/sessions/update/" + strconv.FormatInt(id, 10)
}

// Parse maps a path to a destination. Anything unrecognised is NotFound.
func Parse(path string) Destination {
	clean := "/" + strings.Trim(path, "/")
	parts := strings.Split(strings.Trim(clean, "/"), "/")
	d := Destination{Route: NotFound, Path: clean}

	switch {
	case clean == "/":
		d.Route, d.Path = Sessions, PathSessions
	case clean == PathLogin:
		d.Route = Login
	case clean == PathRegister:
		d.Route = Register
	case clean == PathSessions:
		d.Route = Sessions
	case clean == PathCreate:
		d.Route = Create
	case clean == PathMe:
		d.Route = Me
	case len(parts) == 3 && parts[0] == "sessions" && (parts[1] == "detail" || parts[1] == "update"):
		id, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil || id <= 0 {
			return d
		}
		d.ID = id
		if parts[1] == "detail" {
			d.Route = Detail
		} else {
			d.Route = Update
		}
	}
	return d
}
