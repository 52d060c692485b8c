package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// Color modes accepted by the output.color setting.
const (
	ColorModeAuto   = "auto"
	ColorModeAlways = "always"
	ColorModeNever  = "never"
)

// ApplyColorMode sets the global Lip Gloss color profile. "auto" keeps
// whatever the terminal advertises.
func ApplyColorMode(mode string) error {
	switch mode {
	case "", ColorModeAuto:
		return nil
	case ColorModeAlways:
		lipgloss.SetColorProfile(termenv.ANSI256)
	case ColorModeNever:
		lipgloss.SetColorProfile(termenv.Ascii)
	default:
		return fmt.Errorf("unknown color mode %q", mode)
	}
	return nil
}

// ThresholdColor returns colors for resource usage (GPU utilization, memory).
// Higher values indicate pressure: 0-60% green, 60-80% yellow, 80%+ red.
func ThresholdColor(percent float64) lipgloss.Color {
	switch {
	case percent >= 80:
		return ColorError
	case percent >= 60:
		return ColorWarning
	default:
		return ColorSuccess
	}
}

// ProgressColor returns colors for progress bars, where higher is better:
// 0-50% secondary (blue), 50-80% warning (yellow), 80%+ success (green).
func ProgressColor(percent float64) lipgloss.Color {
	switch {
	case percent >= 80:
		return ColorSuccess
	case percent >= 50:
		return ColorWarning
	default:
		return ColorSecondary
	}
}
