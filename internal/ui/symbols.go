package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Completed successfully
	SymbolFail     = "✗" // Failed
	SymbolPending  = "○" // Not yet started
	SymbolComplete = "●" // Done / healthy
	SymbolUpload   = "↑"
	SymbolDownload = "↓"
)

// Spinner animation frames - braille scan pattern
var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
