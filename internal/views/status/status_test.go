package status

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestViewSignedOut(t *testing.T) {
	m := New(false)
	m.Width = 80
	if v := m.View(); !strings.Contains(v, "Signed out") {
		t.Errorf("view should show signed out state, got:\n%s", v)
	}
}

func TestViewIdentity(t *testing.T) {
	m := New(false)
	m.SetIdentity(true, "yoga@studio.com", true)
	v := m.View()
	if !strings.Contains(v, "yoga@studio.com") {
		t.Error("view should contain the handle")
	}
	if !strings.Contains(v, "[admin]") {
		t.Error("view should contain the admin badge")
	}
}

func TestFlashReplacedAndExpired(t *testing.T) {
	m := New(false)
	m.Width = 80
	m, cmd := m.Update(FlashMsg{Text: "Session created !"})
	if cmd == nil {
		t.Fatal("flash should schedule its expiry")
	}
	if !strings.Contains(m.View(), "Session created !") {
		t.Error("view should contain the flash")
	}

	m, _ = m.Update(FlashMsg{Text: "Session deleted !"})
	// The first flash's expiry must not clear the second one.
	m, _ = m.Update(flashExpiredMsg{seq: 1})
	if m.Flash() != "Session deleted !" {
		t.Errorf("Flash() = %q, want second flash kept", m.Flash())
	}
	m, _ = m.Update(flashExpiredMsg{seq: 2})
	if m.Flash() != "" {
		t.Errorf("Flash() = %q, want cleared", m.Flash())
	}
}

func TestBusyStatic(t *testing.T) {
	m := New(false)
	if cmd := m.SetBusy(true); cmd != nil {
		t.Error("static indicator should not schedule frames")
	}
	if !strings.Contains(m.View(), "working") {
		t.Error("busy view should show the indicator")
	}
	m.SetBusy(false)
	if strings.Contains(m.View(), "working") {
		t.Error("idle view should hide the indicator")
	}
}

func TestBusyAnimationStartsOnce(t *testing.T) {
	m := New(true)
	if cmd := m.SetBusy(true); cmd == nil {
		t.Fatal("animation should start")
	}
	if cmd := m.SetBusy(true); cmd != nil {
		t.Error("animation already running should not start twice")
	}

	m, cmd := m.Update(frameMsg{})
	if cmd == nil {
		t.Error("frames continue while busy")
	}
	if m.pos <= 0 {
		t.Errorf("spring should move toward its target, pos = %v", m.pos)
	}

	m.SetBusy(false)
	m, cmd = m.Update(frameMsg{})
	if cmd != nil {
		t.Error("frames stop once idle")
	}
	if m.ticking {
		t.Error("ticking should reset once idle")
	}
}

func TestViewStaysOneRow(t *testing.T) {
	for _, width := range []int{0, 40, 60} {
		m := New(false)
		m.Width = width
		m.SetIdentity(true, strings.Repeat("hélène.thiercelin", 4)+"@studio.com", true)
		m.SetBusy(true)
		m, _ = m.Update(FlashMsg{Text: "An error occurred while saving the session", Err: true})

		v := m.View()
		if n := strings.Count(v, "\n"); n != 2 {
			t.Errorf("width %d: view has %d lines, want 3 (border, content, border):\n%s", width, n+1, v)
		}
		if !utf8.ValidString(v) {
			t.Errorf("width %d: view is not valid UTF-8", width)
		}
		if !strings.Contains(v, "…") {
			t.Errorf("width %d: overflowing content should end with an ellipsis", width)
		}
	}
}
