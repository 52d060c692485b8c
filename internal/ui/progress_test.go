package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRenderProgressBar_ZeroWidth(t *testing.T) {
	assert.Empty(t, RenderProgressBar(50, 0), "zero width should return empty string")
	assert.Empty(t, RenderTransferBar(50, -5), "negative width should return empty string")
}

func TestRenderProgressBar_Fill(t *testing.T) {
	tests := []struct {
		name    string
		percent float64
		bar     string
		label   string
	}{
		{"empty", 0, "[▱▱▱▱▱▱▱▱▱▱]", "0%"},
		{"half", 50, "[▰▰▰▰▰▱▱▱▱▱]", "50%"},
		{"full", 100, "[▰▰▰▰▰▰▰▰▰▰]", "100%"},
		{"clamps negative", -10, "[▱▱▱▱▱▱▱▱▱▱]", "0%"},
		{"clamps over", 150, "[▰▰▰▰▰▰▰▰▰▰]", "100%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stripped := stripANSI(RenderProgressBar(tt.percent, 10))
			assert.Contains(t, stripped, tt.bar)
			assert.Contains(t, stripped, tt.label)
		})
	}
}

func TestRenderTransferBar(t *testing.T) {
	stripped := stripANSI(RenderTransferBar(30, 10))
	assert.Contains(t, stripped, "[▰▰▰▱▱▱▱▱▱▱]")
	assert.Contains(t, stripped, "30%")
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{10 * 1024, "10.0 KB"},
		{1536 * 1024, "1.5 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.bytes))
	}
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "512 B/s", FormatRate(512))
	assert.Equal(t, "2.0 KB/s", FormatRate(2048))
	assert.Equal(t, "1.5 MB/s", FormatRate(1.5*1024*1024))
	assert.Equal(t, "2.0 GB/s", FormatRate(2*1024*1024*1024))
}

func TestFormatMiB(t *testing.T) {
	assert.Equal(t, "512 MiB", FormatMiB(512))
	assert.Equal(t, "40.0 GiB", FormatMiB(40960))
}

func TestTransferStats(t *testing.T) {
	assert.Equal(t, "1.0 MB / 4.0 MB  512.0 KB/s", TransferStats(1<<20, 4<<20, 512*1024))
	assert.Equal(t, "1.0 MB  0 B/s", TransferStats(1<<20, -1, 0))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", formatDuration(250*time.Millisecond))
	assert.Equal(t, "2.5s", formatDuration(2500*time.Millisecond))
	assert.Equal(t, "1m05s", formatDuration(65*time.Second))
}
