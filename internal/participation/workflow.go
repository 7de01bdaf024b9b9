// Package participation keeps one session view's membership state in step
// with the service. Join and leave calls are never trusted on their own:
// every successful mutation is followed by a full re-fetch of the session,
// and only that record decides whether the principal participates.
package participation

import (
	"context"
	"errors"

	"github.com/bem92/yoga-app/internal/client"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

// State is the membership state of a session view.
type State int

const (
	Loading State = iota
	NotParticipating
	Participating
	Mutating
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case NotParticipating:
		return "not participating"
	case Participating:
		return "participating"
	case Mutating:
		return "mutating"
	default:
		return "unknown"
	}
}

// Action is a membership mutation.
type Action int

const (
	Join Action = iota + 1
	Leave
)

func (a Action) String() string {
	if a == Join {
		return "join"
	}
	return "leave"
}

// Gateway is the subset of the service the workflow calls.
type Gateway interface {
	GetSession(ctx context.Context, id int64) (*client.Session, error)
	Participate(ctx context.Context, sessionID, userID int64) error
	Unparticipate(ctx context.Context, sessionID, userID int64) error
}

// FetchedMsg carries the result of a session fetch.
type FetchedMsg struct {
	ViewID  string
	Session *client.Session
	Err     error
}

// MutatedMsg carries the result of a join or leave call.
type MutatedMsg struct {
	ViewID string
	Action Action
	Err    error
}

// Workflow is the per-view state machine. It is a value type updated the
// Bubble Tea way: every transition returns the new value and the command
// to run next.
type Workflow struct {
	ctx       context.Context
	gw        Gateway
	log       logrus.FieldLogger
	viewID    string
	sessionID int64
	userID    int64

	state   State
	prev    State
	pending Action
	session *client.Session
	err     error
}

// New creates a workflow in Loading for the given view instance.
func New(ctx context.Context, gw Gateway, log logrus.FieldLogger, viewID string, sessionID, userID int64) Workflow {
	return Workflow{
		ctx:       ctx,
		gw:        gw,
		log:       log.WithFields(logrus.Fields{"view": viewID, "session_id": sessionID}),
		viewID:    viewID,
		sessionID: sessionID,
		userID:    userID,
		state:     Loading,
	}
}

// Init issues the first fetch.
func (w Workflow) Init() tea.Cmd {
	return w.fetch()
}

// State returns the current state.
func (w Workflow) State() State { return w.state }

// Session returns the last confirmed record, or nil before the first fetch.
func (w Workflow) Session() *client.Session { return w.session }

// Err returns the last failure, cleared by the next successful step.
func (w Workflow) Err() error { return w.err }

// NotFound reports whether the session no longer exists.
func (w Workflow) NotFound() bool { return errors.Is(w.err, client.ErrNotFound) }

// ViewID identifies the view instance that owns the workflow.
func (w Workflow) ViewID() string { return w.viewID }

// Join requests participation. It returns a nil command when the request is
// rejected because the workflow is not in NotParticipating.
func (w Workflow) Join() (Workflow, tea.Cmd) {
	if w.state != NotParticipating {
		w.log.WithField("state", w.state).Debug("join rejected")
		return w, nil
	}
	return w.mutate(Join)
}

// Leave withdraws participation. It returns a nil command when the request
// is rejected because the workflow is not in Participating.
func (w Workflow) Leave() (Workflow, tea.Cmd) {
	if w.state != Participating {
		w.log.WithField("state", w.state).Debug("leave rejected")
		return w, nil
	}
	return w.mutate(Leave)
}

// Refresh re-issues a fetch after a failed one. It does nothing while a
// fetch or mutation may still be in flight.
func (w Workflow) Refresh() (Workflow, tea.Cmd) {
	if w.state != Loading || w.err == nil {
		return w, nil
	}
	w.err = nil
	return w, w.fetch()
}

// Update applies a fetch or mutation result. Messages for another view
// instance are ignored.
func (w Workflow) Update(msg tea.Msg) (Workflow, tea.Cmd) {
	switch msg := msg.(type) {
	case MutatedMsg:
		if msg.ViewID != w.viewID || w.state != Mutating || msg.Action != w.pending {
			return w, nil
		}
		w.pending = 0
		if msg.Err != nil {
			w.log.WithError(msg.Err).WithField("action", msg.Action).Warn("mutation failed")
			w.state = w.prev
			w.err = msg.Err
			return w, nil
		}
		w.log.WithField("action", msg.Action).Debug("mutation acknowledged, reconciling")
		w.state = Loading
		w.err = nil
		return w, w.fetch()

	case FetchedMsg:
		if msg.ViewID != w.viewID || w.state != Loading {
			return w, nil
		}
		if msg.Err != nil {
			w.log.WithError(msg.Err).Warn("fetch failed")
			w.err = msg.Err
			return w, nil
		}
		w.session = msg.Session
		w.err = nil
		w.state = w.derive()
		return w, nil
	}
	return w, nil
}

func (w Workflow) mutate(a Action) (Workflow, tea.Cmd) {
	w.prev = w.state
	w.state = Mutating
	w.pending = a
	w.err = nil

	ctx, gw, viewID, sessionID, userID := w.ctx, w.gw, w.viewID, w.sessionID, w.userID
	return w, func() tea.Msg {
		var err error
		if a == Join {
			err = gw.Participate(ctx, sessionID, userID)
		} else {
			err = gw.Unparticipate(ctx, sessionID, userID)
		}
		return MutatedMsg{ViewID: viewID, Action: a, Err: err}
	}
}

func (w Workflow) fetch() tea.Cmd {
	ctx, gw, viewID, sessionID := w.ctx, w.gw, w.viewID, w.sessionID
	return func() tea.Msg {
		s, err := gw.GetSession(ctx, sessionID)
		return FetchedMsg{ViewID: viewID, Session: s, Err: err}
	}
}

func (w Workflow) derive() State {
	if w.session != nil && w.session.HasParticipant(w.userID) {
		return Participating
	}
	return NotParticipating
}
