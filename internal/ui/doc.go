// Package ui provides terminal rendering shared by gpudash's commands and
// dashboard.
//
// The package includes progress bars, a live transfer progress line, tables
// and styled text output using the Lip Gloss library for consistent terminal
// styling across all commands.
//
// # Color Scheme
//
// Colors are defined as ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)  - Successful operations
//	ColorError     (red)    - Failures and errors
//	ColorWarning   (yellow) - Warnings and degraded results
//	ColorInfo      (cyan)   - Informational messages
//	ColorMuted     (gray)   - Secondary text, timing info
//	ColorSecondary (blue)   - In-progress indicators
//
// ApplyColorMode maps the output.color setting onto the Lip Gloss color
// profile ("never" strips all styling).
//
// # Progress Bars
//
// Progress bars use block characters with color thresholds:
//
//	ui.RenderProgressBar(67.5, 20)  // [████████████░░░░░░░░]  68%
//
// Colors change based on percentage: green (0-60%), yellow (60-80%), red (80-100%).
//
// # Transfers
//
// TransferProgress redraws a single line with a bar, byte counts and
// throughput while an upload or download runs outside the dashboard. It
// renders snapshots of a dashboard.TransferSession:
//
//	p := ui.NewTransferProgress("Uploading weights.bin", os.Stderr)
//	p.Start()
//	p.Show(engine.Session(dashboard.Upload))
//	p.Success() // or p.Fail()
package ui
