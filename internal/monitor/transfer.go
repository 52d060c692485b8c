package monitor

import (
	"context"
	"path/filepath"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/gpudash/internal/config"
	"github.com/rileyhilliard/gpudash/internal/dashboard"
	"github.com/rileyhilliard/gpudash/internal/errors"
)

// progressBuffer bounds queued progress updates per transfer. Progress is
// cumulative, so dropping an update when the UI falls behind loses nothing.
const progressBuffer = 64

// transferForm collects the fields for one upload or download. The host is
// captured when the form opens.
type transferForm struct {
	dir    dashboard.Direction
	host   string
	inputs []textinput.Model
	focus  int
}

func newTransferForm(dir dashboard.Direction, host string) transferForm {
	field := func(prompt, placeholder string) textinput.Model {
		ti := textinput.New()
		ti.Prompt = prompt
		ti.Placeholder = placeholder
		ti.PromptStyle = LabelStyle
		ti.CharLimit = 1024
		ti.Width = 48
		return ti
	}

	f := transferForm{dir: dir, host: host}
	if dir == dashboard.Upload {
		f.inputs = []textinput.Model{
			field("Local file   ", "~/data/weights.bin"),
			field("Remote path  ", "/home/user/ (trailing / keeps the file name)"),
		}
	} else {
		f.inputs = []textinput.Model{
			field("Remote path  ", "/home/user/model.pt"),
			field("Save as      ", "optional, defaults to the remote file name"),
		}
	}
	return f
}

func (f *transferForm) value(i int) string {
	return f.inputs[i].Value()
}

func (f *transferForm) setFocus(i int) tea.Cmd {
	f.focus = clamp(i, len(f.inputs))
	var cmd tea.Cmd
	for j := range f.inputs {
		if j == f.focus {
			cmd = f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
	return cmd
}

func (f *transferForm) update(msg tea.Msg) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (m *Model) openForm(dir dashboard.Direction) tea.Cmd {
	host, ok := m.sched.State().SelectedHost()
	if !ok {
		return m.showToast(dashboard.Notice{Level: dashboard.NoticeWarn, Message: "Select a host first"})
	}
	if m.transfers.Session(dir).Busy() {
		return m.showToast(dashboard.Notice{
			Level:   dashboard.NoticeWarn,
			Message: "The " + dir.String() + " is still running",
		})
	}

	m.transfers.Reset(dir)
	m.form = newTransferForm(dir, host)
	if dir == dashboard.Upload {
		m.mode = ModeUpload
	} else {
		m.mode = ModeDownload
	}
	return m.form.setFocus(0)
}

func (m *Model) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.mode = ModeBrowse
		return nil
	case "tab", "down":
		return m.form.setFocus((m.form.focus + 1) % len(m.form.inputs))
	case "shift+tab", "up":
		return m.form.setFocus((m.form.focus + len(m.form.inputs) - 1) % len(m.form.inputs))
	case "enter":
		if m.form.focus < len(m.form.inputs)-1 {
			return m.form.setFocus(m.form.focus + 1)
		}
		return m.submitForm()
	}
	return m.form.update(msg)
}

// submitForm starts the transfer. Invalid input keeps the form open; the
// engine has already announced what is wrong.
func (m *Model) submitForm() tea.Cmd {
	f := &m.form

	var (
		session dashboard.TransferSession
		err     error
	)
	if f.dir == dashboard.Upload {
		session, err = m.transfers.StartUpload(dashboard.UploadInput{
			Host:       f.host,
			LocalPath:  config.ExpandTilde(f.value(0)),
			RemotePath: f.value(1),
		})
	} else {
		session, err = m.transfers.StartDownload(dashboard.DownloadInput{
			Host:       f.host,
			RemotePath: f.value(0),
			LocalName:  f.value(1),
			Dir:        m.downloadDir,
		})
	}
	if err != nil {
		m.log.Debug("%s not started: %s", f.dir, errors.Message(err))
		return nil
	}

	m.mode = ModeBrowse
	return m.startTransfer(session)
}

// transferUpdate is one report from a running transfer. The last one sent
// has done set.
type transferUpdate struct {
	transferred int64
	total       int64
	done        bool
	err         error
}

// transferRun is the goroutine side of a transfer session. quit closes when
// the program exits; cancel only aborts this transfer.
type transferRun struct {
	id      string
	updates chan transferUpdate
	cancel  context.CancelFunc
	quit    <-chan struct{}
}

// transferMsg delivers one update (or the end of the stream) to Update.
type transferMsg struct {
	dir    dashboard.Direction
	run    *transferRun
	update transferUpdate
	closed bool
}

// startTransfer registers the run and returns a command that launches the
// transfer and delivers its first update.
func (m *Model) startTransfer(s dashboard.TransferSession) tea.Cmd {
	ctx, cancel := context.WithCancel(m.ctx)
	run := &transferRun{
		id:      s.ID,
		updates: make(chan transferUpdate, progressBuffer),
		cancel:  cancel,
		quit:    m.ctx.Done(),
	}
	m.runs[s.Direction] = run
	m.log.Info("%s %s started: host=%s remote=%s local=%s", s.Direction, s.ID, s.Host, s.Remote, s.Local)

	mover := m.mover
	return func() tea.Msg {
		go runTransfer(ctx, mover, s, run)
		return pollTransfer(s.Direction, run)()
	}
}

func runTransfer(ctx context.Context, mover Transferer, s dashboard.TransferSession, run *transferRun) {
	defer close(run.updates)
	defer run.cancel()

	progress := func(transferred, total int64) {
		select {
		case run.updates <- transferUpdate{transferred: transferred, total: total}:
		default:
		}
	}

	var err error
	if s.Direction == dashboard.Upload {
		err = mover.UploadFile(ctx, s.Host, s.Local, s.Remote, progress)
	} else {
		_, err = mover.DownloadFile(ctx, s.Host, s.Remote, filepath.Dir(s.Local), filepath.Base(s.Local), progress)
	}
	// Nobody polls after quit, so the final update may have no reader.
	select {
	case run.updates <- transferUpdate{done: true, err: err}:
	case <-run.quit:
	}
}

// pollTransfer reads the next update. Update re-arms it until the channel
// closes.
func pollTransfer(dir dashboard.Direction, run *transferRun) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-run.updates
		if !ok {
			return transferMsg{dir: dir, run: run, closed: true}
		}
		return transferMsg{dir: dir, run: run, update: u}
	}
}

func (m *Model) handleTransfer(msg transferMsg) tea.Cmd {
	if msg.closed {
		if m.runs[msg.dir] == msg.run {
			m.runs[msg.dir] = nil
		}
		return nil
	}

	u := msg.update
	id := msg.run.id
	switch {
	case !u.done:
		m.transfers.Progress(msg.dir, id, u.transferred, u.total)
	case u.err != nil:
		m.log.Warn("%s %s failed: %v", msg.dir, id, u.err)
		m.transfers.Fail(msg.dir, id, errors.Message(u.err))
	default:
		m.log.Info("%s %s complete", msg.dir, id)
		m.transfers.Complete(msg.dir, id)
	}
	return pollTransfer(msg.dir, msg.run)
}

// cancelTransfers aborts every running transfer. Each one then fails with a
// cancellation message through the normal update path.
func (m *Model) cancelTransfers() {
	for _, run := range m.runs {
		if run != nil {
			run.cancel()
		}
	}
}
