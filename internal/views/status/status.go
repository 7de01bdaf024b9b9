// Package status renders the top bar: who is signed in, the last flash
// message and a busy indicator while a request is in flight.
package status

import (
	"math"
	"strings"
	"time"

	"github.com/bem92/yoga-app/internal/theme"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	fps        = 30
	pulseWidth = 10
	flashTTL   = 3 * time.Second
)

// FlashMsg shows a transient notice in the bar.
type FlashMsg struct {
	Text string
	Err  bool
}

// Flash returns a command emitting a success notice.
func Flash(text string) tea.Cmd {
	return func() tea.Msg { return FlashMsg{Text: text} }
}

// FlashError returns a command emitting an error notice.
func FlashError(text string) tea.Cmd {
	return func() tea.Msg { return FlashMsg{Text: text, Err: true} }
}

type flashExpiredMsg struct{ seq int }

type frameMsg struct{}

// Model holds the status bar state.
type Model struct {
	Width int

	Logged bool
	Handle string
	Admin  bool

	flash    string
	flashErr bool
	flashSeq int

	busy    bool
	animate bool
	ticking bool
	spring  harmonica.Spring
	pos     float64
	vel     float64
	target  float64
}

// New creates a status bar model. With animate off the busy indicator is
// drawn statically.
func New(animate bool) Model {
	return Model{
		animate: animate,
		spring:  harmonica.NewSpring(harmonica.FPS(fps), 5.0, 0.4),
		target:  1,
	}
}

// SetIdentity updates the signed-in principal shown in the bar.
func (m *Model) SetIdentity(logged bool, handle string, admin bool) {
	m.Logged = logged
	m.Handle = handle
	m.Admin = admin
}

// Flash returns the current notice text, if any.
func (m Model) Flash() string { return m.flash }

// Busy reports whether the busy indicator is shown.
func (m Model) Busy() bool { return m.busy }

// SetBusy toggles the busy indicator and returns the first animation frame
// when the animation needs to start.
func (m *Model) SetBusy(busy bool) tea.Cmd {
	m.busy = busy
	if !busy || !m.animate || m.ticking {
		return nil
	}
	m.ticking = true
	return frame()
}

// Update handles flash and animation messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FlashMsg:
		m.flash = msg.Text
		m.flashErr = msg.Err
		m.flashSeq++
		seq := m.flashSeq
		return m, tea.Tick(flashTTL, func(time.Time) tea.Msg { return flashExpiredMsg{seq: seq} })

	case flashExpiredMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
		}
		return m, nil

	case frameMsg:
		if !m.busy {
			m.ticking = false
			m.pos, m.vel = 0, 0
			return m, nil
		}
		m.pos, m.vel = m.spring.Update(m.pos, m.vel, m.target)
		if math.Abs(m.pos-m.target) < 0.05 {
			m.target = 1 - m.target
		}
		return m, frame()
	}
	return m, nil
}

func frame() tea.Cmd {
	return tea.Tick(time.Second/fps, func(time.Time) tea.Msg { return frameMsg{} })
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	title := theme.StyleTitle.Render("Yoga")

	var who string
	if m.Logged {
		who = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● "+m.Handle) + " " + theme.RoleBadge(m.Admin)
	} else {
		who = theme.StyleDimmed.Render("○ Signed out")
	}

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := title + sep + who
	if m.busy {
		content += sep + m.renderBusy()
	}
	if m.flash != "" {
		style := theme.StyleSuccess
		if m.flashErr {
			style = theme.StyleError
		}
		content += sep + style.Render(m.flash)
	}

	// One row: the horizontal padding takes two of the width's cells.
	content = ansi.Truncate(content, width-2, "…")

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}

func (m Model) renderBusy() string {
	style := lipgloss.NewStyle().Foreground(theme.ColorPending)
	if !m.animate {
		return style.Render("working…")
	}
	p := m.pos
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	at := int(math.Round(p * float64(pulseWidth-1)))
	bar := strings.Repeat("·", at) + "●" + strings.Repeat("·", pulseWidth-1-at)
	return style.Render(bar)
}
