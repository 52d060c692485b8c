package monitor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rileyhilliard/gpudash/internal/api"
	"github.com/rileyhilliard/gpudash/internal/dashboard"
	"github.com/rileyhilliard/gpudash/internal/ui"
	"github.com/rileyhilliard/gpudash/internal/util"
)

const gpuBarWidth = 10

// renderDetail renders the selected host: summary, GPU table and the
// processes of the selected GPU.
func (m Model) renderDetail() string {
	state := m.sched.State()
	host, ok := state.SelectedHost()
	if !ok {
		return MutedStyle.Render("Select a host to see its GPUs")
	}

	status := state.Status()
	var b strings.Builder
	b.WriteString(HostNameStyle.Render(host) + "  " + StatusPill(status.Phase))
	b.WriteString("\n")
	if status.Phase == dashboard.PhaseError {
		b.WriteString(ErrorTextStyle.Render(status.Err))
		b.WriteString("\n")
	}

	if !status.HasData || status.Data == nil {
		if status.Phase == dashboard.PhaseLoading {
			b.WriteString(m.spinner.View() + LabelStyle.Render(" Loading GPU status"))
		} else if status.Phase != dashboard.PhaseError {
			b.WriteString(MutedStyle.Render("No data yet"))
		}
		return strings.TrimRight(b.String(), "\n")
	}

	report := status.Data
	b.WriteString("\n")
	b.WriteString(renderSummary(report.Summary))
	b.WriteString("\n\n")

	width, _ := m.detailSize()
	selectedGPU, hasGPU := state.SelectedGPU()
	b.WriteString(SectionHeader("GPUs", MutedStyle.Render(strconv.Itoa(len(report.GPUs))), width))
	b.WriteString("\n")
	if len(report.GPUs) == 0 {
		b.WriteString(MutedStyle.Render("No GPUs reported"))
		b.WriteString("\n")
	}
	for i, g := range report.GPUs {
		focused := m.pane == PaneGPUs && i == m.gpuCursor
		b.WriteString(renderGPURow(g, focused, hasGPU && g.Index == selectedGPU))
		b.WriteString("\n")
	}

	if hasGPU {
		b.WriteString("\n")
		b.WriteString(m.renderProcesses(selectedGPU, width))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderSummary(s api.Summary) string {
	return LabelStyle.Render("GPUs ") + ValueStyle.Render(strconv.Itoa(s.Count)) +
		LabelStyle.Render("   Util ") + MetricStyle(s.UtilAvg).Render(fmt.Sprintf("%.0f%%", s.UtilAvg)) +
		LabelStyle.Render("   Memory ") + ValueStyle.Render(ui.FormatMiB(s.MemUsed)+" / "+ui.FormatMiB(s.MemTotal)) +
		MetricStyle(s.MemPct).Render(fmt.Sprintf(" (%.0f%%)", s.MemPct))
}

func renderGPURow(g api.GPU, focused, selected bool) string {
	cursor := "  "
	if focused {
		cursor = CursorStyle.Render(CursorGlyph) + " "
	}
	mark := MutedStyle.Render(CheckOff)
	name := ValueStyle.Render(g.Name)
	if selected {
		mark = SelectedRowStyle.Render(CheckOn)
		name = SelectedRowStyle.Render(g.Name)
	}

	return cursor + mark + " " +
		LabelStyle.Render(fmt.Sprintf("%-2d", g.Index)) + " " +
		name + "  " +
		CompactProgressBar(gpuBarWidth, g.Util) + " " +
		MetricStyle(g.Util).Render(fmt.Sprintf("%3.0f%%", g.Util)) + "  " +
		MetricStyle(g.MemPercent()).Render(ui.FormatMiB(g.MemUsed)) +
		MutedStyle.Render(" / "+ui.FormatMiB(g.MemTotal)) + "  " +
		LabelStyle.Render(fmt.Sprintf("%d°C", g.Temp))
}

// renderProcesses renders the process list of one GPU.
func (m Model) renderProcesses(index, width int) string {
	procs := m.sched.State().Processes()

	var b strings.Builder
	b.WriteString(SectionHeader(fmt.Sprintf("Processes on GPU %d", index), StatusPill(procs.Phase), width))
	b.WriteString("\n")

	if procs.Phase == dashboard.PhaseError {
		b.WriteString(ErrorTextStyle.Render(procs.Err))
		b.WriteString("\n")
	}
	if !procs.HasData {
		if procs.Phase == dashboard.PhaseLoading {
			b.WriteString(m.spinner.View() + LabelStyle.Render(" Loading processes"))
		}
		return strings.TrimRight(b.String(), "\n")
	}

	b.WriteString(LabelStyle.Render(fmt.Sprintf("%d %s detected.", len(procs.Data), util.Pluralize(len(procs.Data), "process", "processes"))))
	b.WriteString("\n")
	if len(procs.Data) == 0 {
		b.WriteString(MutedStyle.Render("No compute processes are running on this GPU."))
		return b.String()
	}

	b.WriteString(MutedStyle.Render(fmt.Sprintf("%-8s %-20s %-10s %s", "PID", "NAME", "MEMORY", "CWD")))
	b.WriteString("\n")
	for _, p := range procs.Data {
		b.WriteString(fmt.Sprintf("%-8s %-20s %-10s ",
			optionalInt(p.PID, strconv.Itoa),
			truncate(p.Name, 20),
			optionalInt(p.MemUsed, ui.FormatMiB),
		))
		b.WriteString(MutedStyle.Render(p.WorkingDir()))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func optionalInt(v *int, format func(int) string) string {
	if v == nil {
		return "-"
	}
	return format(*v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
