package util

import "strings"

// ShellQuote wraps a string in single quotes, escaping any existing single quotes.
// Suggested commands quote local paths with it so they can be pasted as-is.
func ShellQuote(s string) string {
	// Replace ' with '\'' (end quote, escaped quote, start quote)
	escaped := strings.ReplaceAll(s, "'", "'\\''")
	return "'" + escaped + "'"
}

// ShellQuoteIfNeeded quotes s only when it contains characters the shell
// would interpret.
func ShellQuoteIfNeeded(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"`$\\|&;<>()*?[]#~!{}") {
		return s
	}
	return ShellQuote(s)
}
