package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/gpudash/internal/dashboard"
)

// Dashboard color palette - Gen Z Electric Synthwave
const (
	ColorDarkBg    = lipgloss.Color("#0A0A0F") // Deep void
	ColorSurfaceBg = lipgloss.Color("#12121A") // Dark surface
	ColorBorder    = lipgloss.Color("#2A2A4A") // Glass border (purple tint)

	// Semantic colors for metrics - neon style
	ColorHealthy  = lipgloss.Color("#39FF14") // Neon green
	ColorWarning  = lipgloss.Color("#FFAA00") // Electric amber
	ColorCritical = lipgloss.Color("#FF0055") // Hot red-pink

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0") // Lavender gray
	ColorTextMuted     = lipgloss.Color("#6B6B8D") // Purple-gray

	ColorAccent    = lipgloss.Color("#FF2E97") // Neon pink
	ColorAccentDim = lipgloss.Color("#BF40FF") // Neon purple
	ColorGraph     = lipgloss.Color("#00FFFF") // Neon cyan
)

// Thresholds for GPU utilization and memory coloring.
const (
	WarningThreshold  = 70.0
	CriticalThreshold = 90.0
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	PaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	PaneFocusedStyle = PaneStyle.
				BorderForeground(ColorAccent)

	HostNameStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	CursorStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(ColorGraph).
				Bold(true)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorCritical)

	pillBase = lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true)
)

// Status indicator characters - cyber glyphs
const (
	StatusIdle    = "◌"
	StatusLoading = "◐"
	StatusOK      = "◉"
	StatusError   = "✗"
	CursorGlyph   = "▸"
	CheckOn       = "◉"
	CheckOff      = "○"
)

// LoadingSpinnerFrames rotate through half-circle positions.
var LoadingSpinnerFrames = []string{"◐", "◓", "◑", "◒"}

// PhaseColor returns the color used for a fetch phase.
func PhaseColor(p dashboard.Phase) lipgloss.Color {
	switch p {
	case dashboard.PhaseOK:
		return ColorHealthy
	case dashboard.PhaseLoading:
		return ColorGraph
	case dashboard.PhaseError:
		return ColorCritical
	default:
		return ColorTextMuted
	}
}

// StatusPill renders the fetch phase as a colored label ("ok", "error", ...).
func StatusPill(p dashboard.Phase) string {
	return pillBase.Foreground(ColorDarkBg).Background(PhaseColor(p)).Render(p.String())
}

// PhaseGlyph returns the indicator character for a fetch phase.
func PhaseGlyph(p dashboard.Phase) string {
	switch p {
	case dashboard.PhaseOK:
		return StatusOK
	case dashboard.PhaseLoading:
		return StatusLoading
	case dashboard.PhaseError:
		return StatusError
	default:
		return StatusIdle
	}
}

// NoticeColor returns the toast color for a notice level.
func NoticeColor(level dashboard.NoticeLevel) lipgloss.Color {
	switch level {
	case dashboard.NoticeSuccess:
		return ColorHealthy
	case dashboard.NoticeWarn:
		return ColorWarning
	case dashboard.NoticeError:
		return ColorCritical
	default:
		return ColorGraph
	}
}

// MetricColor returns the appropriate color for a percentage-based metric.
// Uses threshold-based coloring: green < 70%, yellow 70-90%, red > 90%.
func MetricColor(percent float64) lipgloss.Color {
	switch {
	case percent >= CriticalThreshold:
		return ColorCritical
	case percent >= WarningThreshold:
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// MetricStyle returns a style with the appropriate foreground color for the metric.
func MetricStyle(percent float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(MetricColor(percent))
}

// CompactProgressBar renders a minimal progress bar without brackets.
func CompactProgressBar(width int, percent float64) string {
	if width < 1 {
		width = 1
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(percent / 100.0 * float64(width))
	bar := strings.Repeat("▰", filled) + strings.Repeat("▱", width-filled)
	return MetricStyle(percent).Render(bar)
}

// SectionHeader renders a section header with the title on the left and value on the right.
// Format: ╭─ Title ────────────────────────────────────── Value ╮
func SectionHeader(title, value string, width int) string {
	if width < 10 {
		width = 10
	}

	leftWidth := 3 + lipgloss.Width(title) + 1
	rightWidth := 1 + lipgloss.Width(value) + 2
	fillWidth := width - leftWidth - rightWidth
	if fillWidth < 1 {
		fillWidth = 1
	}

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	titleStyle := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)

	return borderStyle.Render("╭─ ") +
		titleStyle.Render(title) +
		borderStyle.Render(" "+strings.Repeat("─", fillWidth)+" ") +
		value +
		borderStyle.Render(" ╮")
}
