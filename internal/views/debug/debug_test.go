package debug

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bem92/yoga-app/internal/theme"
	"github.com/charmbracelet/lipgloss"
)

func TestAddEntry(t *testing.T) {
	m := New()
	m.Add("auth", "logged in")
	if len(m.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(m.Entries))
	}
	if m.Entries[0].Kind != "auth" {
		t.Errorf("expected kind 'auth', got %q", m.Entries[0].Kind)
	}
}

func TestMaxEntries(t *testing.T) {
	m := New()
	for i := 0; i < maxEntries+50; i++ {
		m.Add("nav", "/sessions")
	}
	if len(m.Entries) != maxEntries {
		t.Errorf("expected %d entries, got %d", maxEntries, len(m.Entries))
	}
}

func TestScrollUpDown(t *testing.T) {
	m := New()
	for i := 0; i < 20; i++ {
		m.Add("nav", "/sessions")
	}
	if m.Offset != 0 {
		t.Fatal("expected offset 0 after adds")
	}

	m.ScrollUp(5)
	if m.Offset != 5 {
		t.Errorf("expected offset 5, got %d", m.Offset)
	}

	m.ScrollDown(3)
	if m.Offset != 2 {
		t.Errorf("expected offset 2, got %d", m.Offset)
	}

	m.ScrollDown(10) // shouldn't go below 0
	if m.Offset != 0 {
		t.Errorf("expected offset 0, got %d", m.Offset)
	}
}

func TestScrollUpCapped(t *testing.T) {
	m := New()
	for i := 0; i < 5; i++ {
		m.Add("nav", "/sessions")
	}
	m.ScrollUp(100)
	if m.Offset != 4 { // max is len-1
		t.Errorf("expected offset 4, got %d", m.Offset)
	}
}

func TestViewEmpty(t *testing.T) {
	m := New()
	v := m.View(80, 20)
	if !strings.Contains(v, "No events") {
		t.Error("empty view should show 'No events' message")
	}
}

func TestViewWithEntries(t *testing.T) {
	m := New()
	m.Add("nav", "/sessions/detail/1")
	m.Add("err", "timeout")
	v := m.View(80, 20)
	if !strings.Contains(v, "/sessions/detail/1") {
		t.Error("view should contain the navigated path")
	}
	if !strings.Contains(v, "timeout") {
		t.Error("view should contain 'timeout'")
	}
}

func TestAddResetsScroll(t *testing.T) {
	m := New()
	for i := 0; i < 10; i++ {
		m.Add("nav", "/sessions")
	}
	m.ScrollUp(5)
	m.Add("nav", "/me")
	if m.Offset != 0 {
		t.Error("adding entry should reset scroll to 0")
	}
}

func TestKindColors(t *testing.T) {
	if kindColor(KindNav) == kindColor(KindError) {
		t.Error("nav and err entries should be told apart")
	}
	if kindColor(KindOK) != theme.ColorHealthy {
		t.Error("ok entries should use the healthy colour")
	}
	if kindColor("unknown") != theme.ColorDimmed {
		t.Error("unknown kinds should be dimmed")
	}
}

func TestFlashKinds(t *testing.T) {
	m := New()
	m.Flash("Session created !", false)
	m.Flash("Your session has expired", true)
	if m.Entries[0].Kind != KindOK {
		t.Errorf("success flash kind = %q, want %q", m.Entries[0].Kind, KindOK)
	}
	if m.Entries[1].Kind != KindError {
		t.Errorf("error flash kind = %q, want %q", m.Entries[1].Kind, KindError)
	}
}

func TestViewTruncatesByCell(t *testing.T) {
	m := New()
	m.Add(KindNav, strings.Repeat("é", 200))
	v := m.View(60, 20)
	if !utf8.ValidString(v) {
		t.Fatal("view must stay valid UTF-8")
	}
	if !strings.Contains(v, "…") {
		t.Error("long messages should be cut with an ellipsis")
	}
	for _, line := range strings.Split(v, "\n") {
		if w := lipgloss.Width(line); w > 60 {
			t.Errorf("line is %d cells wide, want at most 60", w)
		}
	}
}

func TestAddf(t *testing.T) {
	m := New()
	m.Addf("auth", "logged=%t", true)
	if m.Entries[0].Message != "logged=true" {
		t.Errorf("unexpected message %q", m.Entries[0].Message)
	}
}
