// Package theme provides the Lip Gloss color palette and reusable styles
// for the Yoga studio TUI. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Brand colors.
var (
	ColorPrimary = lipgloss.Color("#7c3aed")
	ColorAccent  = lipgloss.Color("#f472b6")
	ColorDefault = lipgloss.Color("#9ca3af")
)

// Membership colors.
var (
	ColorParticipating    = lipgloss.Color("#16a34a")
	ColorNotParticipating = lipgloss.Color("#6b7280")
	ColorPending          = lipgloss.Color("#d97706")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorBg      = lipgloss.Color("#111827")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
)

// MembershipColor returns the color for a participation state label.
func MembershipColor(state string) lipgloss.Color {
	switch state {
	case "participating":
		return ColorParticipating
	case "not participating":
		return ColorNotParticipating
	case "loading", "mutating":
		return ColorPending
	default:
		return ColorDefault
	}
}

// MembershipGlyph returns a Unicode glyph for a participation state label.
func MembershipGlyph(state string) string {
	switch state {
	case "participating":
		return "✓"
	case "not participating":
		return "○"
	case "loading", "mutating":
		return "◌"
	default:
		return "·"
	}
}

// RoleBadge returns a colored badge for the signed-in principal.
func RoleBadge(admin bool) string {
	if admin {
		return lipgloss.NewStyle().Foreground(ColorAccent).Bold(true).Render("[admin]")
	}
	return lipgloss.NewStyle().Foreground(ColorDefault).Render("[member]")
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorDanger)

	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorHealthy)
)
