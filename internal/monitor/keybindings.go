package monitor

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/gpudash/internal/dashboard"
)

// Pane is the half of the dashboard that owns the cursor.
type Pane int

const (
	PaneHosts Pane = iota
	PaneGPUs
)

// Mode is what the keyboard is currently driving.
type Mode int

const (
	ModeBrowse Mode = iota
	ModeFilter
	ModeUpload
	ModeDownload
)

type keyMap struct {
	Quit       key.Binding
	Refresh    key.Binding
	RefreshAll key.Binding
	Up         key.Binding
	Down       key.Binding
	Select     key.Binding
	Back       key.Binding
	SwitchPane key.Binding
	Filter     key.Binding
	Upload     key.Binding
	Download   key.Binding
	Cancel     key.Binding
	Help       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q / Ctrl+C", "Quit")),
		Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "Refresh selection")),
		RefreshAll: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "Refresh fleet (reload host list)")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up / k", "Move up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down / j", "Move down")),
		Select:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Select host or GPU")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "Clear GPU / back")),
		SwitchPane: key.NewBinding(key.WithKeys("tab"), key.WithHelp("Tab", "Switch hosts / GPUs")),
		Filter:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "Choose visible hosts")),
		Upload:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "Upload to selected host")),
		Download:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "Download from selected host")),
		Cancel:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "Cancel running transfers")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "Toggle this help")),
	}
}

func (k keyMap) helpBindings() []key.Binding {
	return []key.Binding{
		k.Quit, k.Refresh, k.RefreshAll, k.Up, k.Down, k.Select, k.Back,
		k.SwitchPane, k.Filter, k.Upload, k.Download, k.Cancel, k.Help,
	}
}

// HandleKeyMsg processes keyboard input in browse mode.
// Returns true if the key was handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	// Help toggle takes priority
	if key.Matches(msg, m.keys.Help) {
		m.showHelp = !m.showHelp
		return true, nil
	}
	if m.showHelp && key.Matches(msg, m.keys.Back) {
		m.showHelp = false
		return true, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.stop()
		return true, tea.Quit

	case key.Matches(msg, m.keys.Refresh):
		return true, m.run(m.sched.Refresh())

	case key.Matches(msg, m.keys.RefreshAll):
		return true, m.run(m.sched.RefreshAll())

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return true, nil

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return true, nil

	case key.Matches(msg, m.keys.SwitchPane):
		if m.pane == PaneHosts {
			if _, ok := m.sched.State().SelectedHost(); ok {
				m.pane = PaneGPUs
			}
		} else {
			m.pane = PaneHosts
		}
		return true, nil

	case key.Matches(msg, m.keys.Select):
		return true, m.selectUnderCursor()

	case key.Matches(msg, m.keys.Back):
		if _, ok := m.sched.State().SelectedGPU(); ok {
			m.sched.ClearGPU()
		} else {
			m.pane = PaneHosts
		}
		return true, nil

	case key.Matches(msg, m.keys.Filter):
		m.openFilter()
		return true, nil

	case key.Matches(msg, m.keys.Upload):
		return true, m.openForm(dashboard.Upload)

	case key.Matches(msg, m.keys.Download):
		return true, m.openForm(dashboard.Download)

	case key.Matches(msg, m.keys.Cancel):
		m.cancelTransfers()
		return true, nil
	}

	return false, nil
}

func (m *Model) moveCursor(delta int) {
	if m.pane == PaneGPUs {
		n := len(m.gpus())
		m.gpuCursor = clamp(m.gpuCursor+delta, n)
		return
	}
	m.hostCursor = clamp(m.hostCursor+delta, len(m.sched.State().VisibleHosts()))
}

func (m *Model) selectUnderCursor() tea.Cmd {
	if m.pane == PaneGPUs {
		gpus := m.gpus()
		if m.gpuCursor >= len(gpus) {
			return nil
		}
		reqs, err := m.sched.SelectGPU(gpus[m.gpuCursor].Index)
		if err != nil {
			return nil
		}
		return m.run(reqs)
	}

	hosts := m.sched.State().VisibleHosts()
	if m.hostCursor >= len(hosts) {
		return nil
	}
	reqs, err := m.sched.SelectHost(hosts[m.hostCursor])
	if err != nil {
		return nil
	}
	m.pane = PaneGPUs
	m.gpuCursor = 0
	return m.run(reqs)
}

func clamp(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
