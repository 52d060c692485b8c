package monitor

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/gpudash/internal/api"
	"github.com/rileyhilliard/gpudash/internal/dashboard"
	dashtest "github.com/rileyhilliard/gpudash/internal/dashboard/testing"
	"github.com/rileyhilliard/gpudash/internal/logger"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// fakeMover reports the configured progress and then finishes.
type fakeMover struct {
	mu     sync.Mutex
	calls  []string
	chunks []int64
	total  int64
	err    error
}

func (f *fakeMover) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeMover) UploadFile(ctx context.Context, host, localPath, remotePath string, progress api.ProgressFunc) error {
	f.record("upload " + localPath + " " + host + ":" + remotePath)
	for _, c := range f.chunks {
		progress(c, f.total)
	}
	return f.err
}

func (f *fakeMover) DownloadFile(ctx context.Context, host, remotePath, dir, localName string, progress api.ProgressFunc) (string, error) {
	f.record("download " + host + ":" + remotePath + " " + filepath.Join(dir, localName))
	for _, c := range f.chunks {
		progress(c, f.total)
	}
	if f.err != nil {
		return "", f.err
	}
	return filepath.Join(dir, localName), nil
}

type delayed struct {
	d  time.Duration
	fn func(time.Time) tea.Msg
}

// testModel drives a Model synchronously: every command is executed inline
// and its message fed back through Update.
type testModel struct {
	t       *testing.T
	m       Model
	clock   *dashtest.FakeClock
	fetcher *dashtest.FakeFetcher
	mover   *fakeMover
	log     *logger.BufferLogger
	delays  []delayed
}

func newTestModel(t *testing.T, opts Options, hosts ...string) *testModel {
	t.Helper()
	tm := &testModel{
		t:       t,
		clock:   dashtest.NewFakeClock(epoch),
		fetcher: dashtest.NewFakeFetcher(hosts...),
		mover:   &fakeMover{},
		log:     logger.NewBufferLogger(),
	}
	opts.Fetcher = tm.fetcher
	opts.Transfers = tm.mover
	opts.Clock = tm.clock
	opts.Logger = tm.log
	if opts.Host == "" {
		opts.GPU = dashboard.NoGPU
	}

	tm.m = NewModel(opts)
	tm.m.after = func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
		tm.delays = append(tm.delays, delayed{d: d, fn: fn})
		return nil
	}
	return tm
}

// start sizes the terminal and runs Init.
func (tm *testModel) start() *testModel {
	tm.send(tea.WindowSizeMsg{Width: 120, Height: 50})
	tm.drive(tm.m.Init())
	return tm
}

func (tm *testModel) send(msg tea.Msg) {
	tm.t.Helper()
	model, cmd := tm.m.Update(msg)
	tm.m = model.(Model)
	tm.drive(cmd)
}

// sendOnly updates without running the returned command. Text inputs return
// cursor blink commands that sleep and re-arm forever.
func (tm *testModel) sendOnly(msg tea.Msg) {
	tm.t.Helper()
	model, _ := tm.m.Update(msg)
	tm.m = model.(Model)
}

func (tm *testModel) drive(cmd tea.Cmd) {
	tm.t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case nil, spinner.TickMsg, tea.QuitMsg:
	case tea.BatchMsg:
		for _, c := range msg {
			tm.drive(c)
		}
	default:
		tm.send(msg)
	}
}

func (tm *testModel) press(keys ...string) {
	tm.t.Helper()
	for _, k := range keys {
		tm.send(keyMsg(k))
	}
}

func (tm *testModel) typeText(s string) {
	tm.sendOnly(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (tm *testModel) view() string {
	return tm.m.View()
}

func (tm *testModel) state() *dashboard.State {
	return tm.m.Scheduler().State()
}

func (tm *testModel) toast() string {
	n, ok := tm.m.Toast()
	if !ok {
		return ""
	}
	return n.Message
}

// fire delivers the most recent delayed message scheduled for d.
func (tm *testModel) fire(d time.Duration) {
	tm.t.Helper()
	for i := len(tm.delays) - 1; i >= 0; i-- {
		if tm.delays[i].d == d {
			tm.send(tm.delays[i].fn(tm.clock.Now()))
			return
		}
	}
	tm.t.Fatalf("nothing scheduled for %s", d)
}

func (tm *testModel) countDelays(d time.Duration) int {
	n := 0
	for _, dl := range tm.delays {
		if dl.d == d {
			n++
		}
	}
	return n
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func twoGPUReport(host string) *api.StatusReport {
	return &api.StatusReport{
		Host:    host,
		OK:      true,
		Summary: api.Summary{Count: 2, UtilAvg: 40, MemUsed: 2048, MemTotal: 16384, MemPct: 12.5},
		GPUs: []api.GPU{
			{Index: 0, Name: "A100", Util: 30, Temp: 50, MemUsed: 1024, MemTotal: 8192},
			{Index: 1, Name: "A100", Util: 50, Temp: 61, MemUsed: 1024, MemTotal: 8192},
		},
	}
}

func intPtr(v int) *int {
	return &v
}

func tempFile(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weights.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	return path
}

func teaWindow(w, h int) tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: w, Height: h}
}
