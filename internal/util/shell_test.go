package util

import "testing"

func TestShellQuote(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", "'simple'"},
		{"with space", "'with space'"},
		{"with'quote", "'with'\\''quote'"},
		{"", "''"},
		{"path/to/file", "'path/to/file'"},
		{"$variable", "'$variable'"},
		{"$(command)", "'$(command)'"},
		{"`backtick`", "'`backtick`'"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ShellQuote(tt.input)
			if got != tt.expected {
				t.Errorf("ShellQuote(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestShellQuoteIfNeeded(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/home/ops/.ssh/known_hosts", "/home/ops/.ssh/known_hosts"},
		{"gpu-node.example.com", "gpu-node.example.com"},
		{"/Users/Jane Doe/.ssh/known_hosts", "'/Users/Jane Doe/.ssh/known_hosts'"},
		{"~/known_hosts", "'~/known_hosts'"},
		{"it's", "'it'\\''s'"},
		{"", "''"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ShellQuoteIfNeeded(tt.input)
			if got != tt.expected {
				t.Errorf("ShellQuoteIfNeeded(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
