package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/gpudash/internal/dashboard"
)

// TransferProgress displays a live progress line for an upload or download
// outside Bubble Tea. It draws whatever session snapshot Show last handed
// it. Show is safe to call from the transfer goroutine; a separate goroutine
// redraws the line so the spinner keeps moving while the connection stalls.
type TransferProgress struct {
	mu           sync.Mutex
	label        string
	session      dashboard.TransferSession
	startTime    time.Time
	stopChan     chan struct{}
	doneChan     chan struct{}
	output       io.Writer
	running      bool
	lastRendered string
	width        int
	now          func() time.Time
}

// NewTransferProgress creates a progress line writing to output.
func NewTransferProgress(label string, output io.Writer) *TransferProgress {
	return &TransferProgress{
		label:   label,
		output:  output,
		session: dashboard.TransferSession{Total: -1},
		width:   30,
		now:     time.Now,
	}
}

// SetWidth sets the progress bar width.
func (p *TransferProgress) SetWidth(w int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.width = w
}

// Start begins redrawing the line.
func (p *TransferProgress) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.startTime = p.now()
	p.stopChan = make(chan struct{})
	p.doneChan = make(chan struct{})
	p.mu.Unlock()

	p.render()

	go p.animate()
}

// Show replaces the session snapshot the line is drawn from.
func (p *TransferProgress) Show(s dashboard.TransferSession) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session = s
}

// Stop halts redrawing without printing a final state.
func (p *TransferProgress) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopChan)
	p.mu.Unlock()

	<-p.doneChan
}

// Success stops and prints the completed line.
func (p *TransferProgress) Success() {
	p.Stop()
	p.renderFinal(true)
}

// Fail stops and prints the failed line. The bar stays at the last
// reported position.
func (p *TransferProgress) Fail() {
	p.Stop()
	p.renderFinal(false)
}

func (p *TransferProgress) animate() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	defer close(p.doneChan)

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.render()
		}
	}
}

func (p *TransferProgress) render() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeLocked(p.lineLocked())
}

// lineLocked builds the current progress line. Must be called with lock held.
func (p *TransferProgress) lineLocked() string {
	elapsed := p.now().Sub(p.startTime)
	frame := spinnerFrames[int(elapsed.Milliseconds()/100)%len(spinnerFrames)]
	symbol := lipgloss.NewStyle().Foreground(ColorSecondary).Render(frame)
	s := p.session
	stats := lipgloss.NewStyle().Foreground(ColorMuted).
		Render(TransferStats(s.Transferred, s.Total, s.Throughput))

	if bar := p.barLocked(); bar != "" {
		return fmt.Sprintf("%s %s %s %s", symbol, p.label, bar, stats)
	}
	return fmt.Sprintf("%s %s %s", symbol, p.label, stats)
}

// barLocked renders the bar, or "" while the total is unknown.
func (p *TransferProgress) barLocked() string {
	pct, ok := p.session.Percent()
	if !ok {
		return ""
	}
	return RenderTransferBar(pct, p.width)
}

func (p *TransferProgress) writeLocked(line string) {
	if p.lastRendered != "" {
		clearLen := lipgloss.Width(p.lastRendered)
		fmt.Fprintf(p.output, "\r%s\r", strings.Repeat(" ", clearLen))
	}
	fmt.Fprint(p.output, line)
	p.lastRendered = line
}

func (p *TransferProgress) renderFinal(success bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lastRendered != "" {
		fmt.Fprintf(p.output, "\r%s\r", strings.Repeat(" ", lipgloss.Width(p.lastRendered)))
	}

	symbol := lipgloss.NewStyle().Foreground(ColorSuccess).Render(SymbolSuccess)
	if !success {
		symbol = lipgloss.NewStyle().Foreground(ColorError).Render(SymbolFail)
	}
	muted := lipgloss.NewStyle().Foreground(ColorMuted)

	elapsed := p.now().Sub(p.startTime)
	if s := p.session; !s.FinishedAt.IsZero() && !s.StartedAt.IsZero() {
		elapsed = s.FinishedAt.Sub(s.StartedAt)
	}

	parts := []string{symbol, p.label}
	if bar := p.barLocked(); bar != "" {
		parts = append(parts, bar)
	}
	parts = append(parts,
		muted.Render("("+FormatBytes(p.session.Transferred)+")"),
		muted.Render(formatDuration(elapsed)),
	)
	fmt.Fprintln(p.output, strings.Join(parts, " "))
	p.lastRendered = ""
}
