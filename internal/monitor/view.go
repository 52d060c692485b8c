package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/gpudash/internal/dashboard"
	"github.com/rileyhilliard/gpudash/internal/ui"
)

const (
	// hostPaneWidth is the outer width of the host list, borders included.
	hostPaneWidth = 28

	// chromeHeight is everything that is not a pane: header, spacing, pane
	// borders, two transfer lines, toast and footer.
	chromeHeight = 9

	minBodyHeight = 5
)

// detailSize returns the content size of the detail pane.
func (m Model) detailSize() (int, int) {
	if m.width == 0 {
		return 60, 20
	}
	w := m.width - hostPaneWidth - 4
	if w < 20 {
		w = 20
	}
	return w, m.bodyHeight()
}

func (m Model) bodyHeight() int {
	h := m.height - chromeHeight
	if h < minBodyHeight {
		h = minBodyHeight
	}
	return h
}

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	switch m.mode {
	case ModeFilter:
		b.WriteString(m.renderFilter())
	case ModeUpload, ModeDownload:
		b.WriteString(m.renderForm())
	default:
		b.WriteString(m.renderBody())
	}
	b.WriteString("\n")

	if transfers := m.renderTransfers(); transfers != "" {
		b.WriteString(transfers)
		b.WriteString("\n")
	}
	if toast := m.renderToast(); toast != "" {
		b.WriteString(toast)
		b.WriteString("\n")
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

// renderHeader renders the title bar with fleet counts and refresh timing.
func (m Model) renderHeader() string {
	state := m.sched.State()

	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("gpudash")

	parts := []string{
		fmt.Sprintf("%d hosts", len(state.Hosts())),
	}
	if state.ManualFilter() {
		parts = append(parts, fmt.Sprintf("%d shown (filtered)", len(state.VisibleHosts())))
	}
	if src := state.HostSource(); src != "" {
		parts = append(parts, src)
	}
	if m.schedule.Armed() {
		left := m.schedule.Next().Sub(m.clock.Now()).Round(time.Second)
		if left < 0 {
			left = 0
		}
		parts = append(parts, fmt.Sprintf("next refresh %ds", int(left.Seconds())))
	}

	stats := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(" | " + strings.Join(parts, " | "))

	line := title + stats
	if m.sched.FleetRefreshing() {
		line += "  " + m.spinner.View() + LabelStyle.Render(" refreshing fleet")
	}
	return HeaderStyle.Render(line)
}

// renderBody lays out the host list next to the detail pane.
func (m Model) renderBody() string {
	hostStyle, detailStyle := PaneStyle, PaneStyle
	if m.pane == PaneHosts {
		hostStyle = PaneFocusedStyle
	} else {
		detailStyle = PaneFocusedStyle
	}

	detail := m.renderDetail()
	if m.viewportReady {
		detail = m.detail.View()
	}

	if m.width == 0 {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			hostStyle.Render(m.renderHostList()),
			detailStyle.Render(detail),
		)
	}

	h := m.bodyHeight()
	return lipgloss.JoinHorizontal(lipgloss.Top,
		hostStyle.Width(hostPaneWidth-2).Height(h).Render(m.renderHostList()),
		detailStyle.Width(m.width-hostPaneWidth-2).Height(h).Render(detail),
	)
}

// renderHostList renders the visible hosts with the cursor and the
// selected host's status glyph.
func (m Model) renderHostList() string {
	state := m.sched.State()
	list := state.HostList()

	var b strings.Builder
	b.WriteString(LabelStyle.Render("HOSTS"))
	b.WriteString("\n")

	if !list.HasData {
		switch list.Phase {
		case dashboard.PhaseError:
			b.WriteString(ErrorTextStyle.Render(list.Err))
		default:
			b.WriteString(m.spinner.View() + LabelStyle.Render(" Loading hosts"))
		}
		return b.String()
	}

	hosts := state.Hosts()
	visible := state.VisibleHosts()
	switch {
	case len(hosts) == 0:
		b.WriteString(MutedStyle.Render("No hosts in SSH config"))
	case len(visible) == 0:
		b.WriteString(MutedStyle.Render("All hosts hidden (f to choose)"))
	}

	selected, hasSelection := state.SelectedHost()
	for i, h := range visible {
		cursor := "  "
		if m.pane == PaneHosts && i == m.hostCursor {
			cursor = CursorStyle.Render(CursorGlyph) + " "
		}

		if hasSelection && h == selected {
			phase := state.Status().Phase
			glyph := lipgloss.NewStyle().Foreground(PhaseColor(phase)).Render(PhaseGlyph(phase))
			b.WriteString(cursor + SelectedRowStyle.Render(h) + " " + glyph + "\n")
			continue
		}
		b.WriteString(cursor + ValueStyle.Render(h) + "\n")
	}

	if list.Phase == dashboard.PhaseError {
		b.WriteString(ErrorTextStyle.Render(StatusError + " reload failed"))
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderTransfers renders one line per upload or download that has started.
func (m Model) renderTransfers() string {
	var lines []string
	for _, dir := range []dashboard.Direction{dashboard.Upload, dashboard.Download} {
		s := m.transfers.Session(dir)
		if s.Phase == dashboard.TransferIdle {
			continue
		}

		arrow := ui.SymbolUpload
		where := s.Local + " → " + s.Host + ":" + s.Remote
		if dir == dashboard.Download {
			arrow = ui.SymbolDownload
			where = s.Host + ":" + s.Remote + " → " + s.Local
		}
		prefix := LabelStyle.Render(arrow+" "+dir.String()) + " " + ValueStyle.Render(where) + "  "

		switch s.Phase {
		case dashboard.TransferActive:
			bar := m.spinner.View()
			if pct, ok := s.Percent(); ok {
				bar = m.bars[dir].ViewAs(pct / 100)
			}
			lines = append(lines, prefix+bar+" "+
				MutedStyle.Render(ui.TransferStats(s.Transferred, s.Total, s.Throughput)))
		case dashboard.TransferDone:
			lines = append(lines, prefix+
				lipgloss.NewStyle().Foreground(ColorHealthy).Render(ui.SymbolSuccess+" done")+
				MutedStyle.Render(" "+ui.FormatBytes(s.Transferred)))
		case dashboard.TransferFailed:
			lines = append(lines, prefix+ErrorTextStyle.Render(ui.SymbolFail+" "+s.Err))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderToast() string {
	if m.toast == nil {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(NoticeColor(m.toast.Level)).
		Bold(true).
		Padding(0, 1).
		Render(m.toast.Message)
}

// renderFooter renders the keyboard hints for the current mode.
func (m Model) renderFooter() string {
	var hints []string
	switch m.mode {
	case ModeFilter:
		hints = []string{"space toggle", "a show all", "enter apply", "esc cancel"}
	case ModeUpload, ModeDownload:
		hints = []string{"tab next field", "enter submit", "esc cancel"}
	default:
		hints = []string{"q quit", "r refresh", "R refresh all", "↑↓ move", "enter select", "f filter", "u/d transfer", "? help"}
	}
	return FooterStyle.Render(strings.Join(hints, " | "))
}

// renderForm renders the open upload or download form.
func (m Model) renderForm() string {
	f := m.form
	title := "Upload to " + f.host
	if f.dir == dashboard.Download {
		title = "Download from " + f.host
	}

	var b strings.Builder
	b.WriteString(HostNameStyle.Render(title))
	b.WriteString("\n\n")
	for _, in := range f.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	if f.dir == dashboard.Download {
		b.WriteString("\n")
		b.WriteString(MutedStyle.Render("Saving to " + m.downloadDir))
	}
	return PaneFocusedStyle.Render(strings.TrimRight(b.String(), "\n"))
}
