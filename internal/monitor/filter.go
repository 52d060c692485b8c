package monitor

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// filterEditor is a checklist over the full host list. Nothing reaches the
// scheduler until it is applied.
type filterEditor struct {
	hosts   []string
	checked map[string]bool
	cursor  int
}

func (m *Model) openFilter() {
	state := m.sched.State()
	checked := make(map[string]bool)
	for _, h := range state.VisibleHosts() {
		checked[h] = true
	}
	m.filter = filterEditor{hosts: state.Hosts(), checked: checked}
	m.mode = ModeFilter
}

func (f *filterEditor) selection() []string {
	out := make([]string, 0, len(f.hosts))
	for _, h := range f.hosts {
		if f.checked[h] {
			out = append(out, h)
		}
	}
	return out
}

func (m *Model) handleFilterKey(msg tea.KeyMsg) tea.Cmd {
	f := &m.filter
	switch msg.String() {
	case "esc", "q":
		m.mode = ModeBrowse
	case "up", "k":
		f.cursor = clamp(f.cursor-1, len(f.hosts))
	case "down", "j":
		f.cursor = clamp(f.cursor+1, len(f.hosts))
	case " ", "space":
		if f.cursor < len(f.hosts) {
			h := f.hosts[f.cursor]
			f.checked[h] = !f.checked[h]
		}
	case "a":
		m.sched.ResetFilter()
		m.mode = ModeBrowse
	case "enter":
		m.sched.SetFilter(f.selection())
		m.mode = ModeBrowse
	}
	return nil
}

func (m Model) renderFilter() string {
	f := m.filter
	var b strings.Builder

	b.WriteString(HostNameStyle.Render("Visible hosts"))
	b.WriteString(MutedStyle.Render(fmt.Sprintf("  %d of %d", len(f.selection()), len(f.hosts))))
	b.WriteString("\n\n")

	if len(f.hosts) == 0 {
		b.WriteString(LabelStyle.Render("No hosts loaded yet"))
		b.WriteString("\n")
	}
	for i, h := range f.hosts {
		cursor := "  "
		if i == f.cursor {
			cursor = CursorStyle.Render(CursorGlyph) + " "
		}
		box := MutedStyle.Render(CheckOff)
		if f.checked[h] {
			box = SelectedRowStyle.Render(CheckOn)
		}
		b.WriteString(cursor + box + " " + ValueStyle.Render(h) + "\n")
	}

	return PaneFocusedStyle.Render(strings.TrimRight(b.String(), "\n"))
}
