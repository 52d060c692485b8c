package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Progress bar block characters.
const (
	BarFilled = '▰'
	BarEmpty  = '▱'
)

// ClampPercent clamps a percentage to the 0-100 range.
func ClampPercent(percent float64) float64 {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// barString builds the raw bar (without styling) for a 0-100 percentage.
func barString(percent float64, width int) string {
	filled := int((ClampPercent(percent) / 100.0) * float64(width))
	if filled > width {
		filled = width
	}

	var sb strings.Builder
	sb.Grow(width + 2)
	sb.WriteRune('[')
	sb.WriteString(strings.Repeat(string(BarFilled), filled))
	sb.WriteString(strings.Repeat(string(BarEmpty), width-filled))
	sb.WriteRune(']')
	return sb.String()
}

// RenderProgressBar creates a usage bar colored by ThresholdColor.
// The percent parameter should be 0-100 (values outside this range are clamped).
// The width parameter is the width of the bar itself (excluding brackets and percentage).
// Output format: [▰▰▰▰▰▰▰▰▱▱▱▱]  67%
func RenderProgressBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	percent = ClampPercent(percent)
	style := lipgloss.NewStyle().Foreground(ThresholdColor(percent))
	return style.Render(barString(percent, width)) + fmt.Sprintf(" %3.0f%%", percent)
}

// RenderTransferBar is RenderProgressBar colored by ProgressColor, for
// work that fills up rather than resources that run out.
func RenderTransferBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	percent = ClampPercent(percent)
	style := lipgloss.NewStyle().Foreground(ProgressColor(percent))
	return style.Render(barString(percent, width)) + fmt.Sprintf(" %3.0f%%", percent)
}

// FormatBytes formats a byte count as a human-readable string.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	units := []string{"KB", "MB", "GB", "TB", "PB"}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), units[exp])
}

// FormatRate formats a bytes-per-second rate as a human-readable string.
func FormatRate(bytesPerSecond float64) string {
	if bytesPerSecond < 1024 {
		return fmt.Sprintf("%.0f B/s", bytesPerSecond)
	} else if bytesPerSecond < 1024*1024 {
		return fmt.Sprintf("%.1f KB/s", bytesPerSecond/1024)
	} else if bytesPerSecond < 1024*1024*1024 {
		return fmt.Sprintf("%.1f MB/s", bytesPerSecond/(1024*1024))
	}
	return fmt.Sprintf("%.1f GB/s", bytesPerSecond/(1024*1024*1024))
}

// FormatMiB formats a MiB quantity as reported by nvidia-smi.
func FormatMiB(mib int) string {
	if mib < 1024 {
		return fmt.Sprintf("%d MiB", mib)
	}
	return fmt.Sprintf("%.1f GiB", float64(mib)/1024)
}

// TransferStats renders "done / total  rate", or "done  rate" when the total
// is unknown (negative).
func TransferStats(transferred, total int64, bytesPerSecond float64) string {
	size := FormatBytes(transferred)
	if total >= 0 {
		size += " / " + FormatBytes(total)
	}
	return size + "  " + FormatRate(bytesPerSecond)
}

// formatDuration formats elapsed time the way the CLI reports timings.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}
