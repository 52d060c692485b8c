package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/gpudash/internal/api"
	"github.com/rileyhilliard/gpudash/internal/dashboard"
	"github.com/rileyhilliard/gpudash/internal/logger"
	"github.com/rileyhilliard/gpudash/internal/util"
)

// toastTTL is how long a notice stays on screen.
const toastTTL = 5 * time.Second

// Transferer moves files between this machine and a fleet host.
// *api.Client implements it.
type Transferer interface {
	UploadFile(ctx context.Context, host, localPath, remotePath string, progress api.ProgressFunc) error
	DownloadFile(ctx context.Context, host, remotePath, dir, localName string, progress api.ProgressFunc) (string, error)
}

// Options configures a dashboard Model.
type Options struct {
	Fetcher   dashboard.Fetcher
	Transfers Transferer
	Clock     dashboard.Clock
	Logger    logger.Logger

	// DownloadDir is where downloads are saved.
	DownloadDir string

	// Filter is the initial set of visible hosts. Empty shows every host.
	Filter []string

	// Host and GPU are selected once the host list first loads. GPU is
	// ignored without Host; use dashboard.NoGPU for none.
	Host string
	GPU  int
}

// startup holds selections requested on the command line until the first
// host list arrives.
type startup struct {
	filter []string
	host   string
	gpu    int
}

// eventQueue buffers core events until Update gets to them. Subscribers run
// inside Apply, before the new state is rendered.
type eventQueue struct {
	events []dashboard.Event
}

func (q *eventQueue) push(ev dashboard.Event) {
	q.events = append(q.events, ev)
}

func (q *eventQueue) drain() []dashboard.Event {
	evs := q.events
	q.events = nil
	return evs
}

// Model is the Bubble Tea model for the GPU fleet dashboard.
type Model struct {
	sched     *dashboard.Scheduler
	transfers *dashboard.TransferEngine
	fetcher   dashboard.Fetcher
	mover     Transferer
	clock     dashboard.Clock
	log       logger.Logger

	downloadDir string

	// ctx is cancelled on quit and parents every fetch and transfer.
	ctx  context.Context
	stop context.CancelFunc

	schedule *dashboard.Schedule
	after    func(time.Duration, func(time.Time) tea.Msg) tea.Cmd

	events  *eventQueue
	startup *startup

	mode       Mode
	pane       Pane
	hostCursor int
	gpuCursor  int
	showHelp   bool
	quitting   bool
	width      int
	height     int

	toast    *dashboard.Notice
	toastSeq uint64

	filter filterEditor
	form   transferForm
	runs   [2]*transferRun

	keys    keyMap
	spinner spinner.Model
	bars    [2]progress.Model

	detail        viewport.Model
	viewportReady bool
}

// resultMsg carries a finished backend request back to the event loop.
type resultMsg dashboard.Result

// tickMsg is one firing of the refresh schedule.
type tickMsg struct {
	seq uint64
}

// toastExpiredMsg hides the toast it was scheduled for.
type toastExpiredMsg struct {
	seq uint64
}

// NewModel creates a dashboard model. Nothing is fetched until Init.
func NewModel(opts Options) Model {
	clock := opts.Clock
	if clock == nil {
		clock = dashboard.RealClock()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}
	dir := opts.DownloadDir
	if dir == "" {
		dir = "."
	}

	queue := &eventQueue{}
	sched := dashboard.NewScheduler(clock)
	sched.Subscribe(queue.push)
	transfers := dashboard.NewTransferEngine(clock)
	transfers.Subscribe(queue.push)

	var st *startup
	if len(opts.Filter) > 0 || opts.Host != "" {
		gpu := opts.GPU
		if opts.Host == "" {
			gpu = dashboard.NoGPU
		}
		st = &startup{filter: opts.Filter, host: opts.Host, gpu: gpu}
	}

	var bars [2]progress.Model
	for i := range bars {
		bars[i] = progress.New(
			progress.WithGradient(string(ColorAccentDim), string(ColorAccent)),
			progress.WithoutPercentage(),
		)
		bars[i].Width = 30
	}

	ctx, stop := context.WithCancel(context.Background())

	return Model{
		sched:       sched,
		transfers:   transfers,
		fetcher:     opts.Fetcher,
		mover:       opts.Transfers,
		clock:       clock,
		log:         log,
		downloadDir: dir,
		ctx:         ctx,
		stop:        stop,
		schedule:    dashboard.NewSchedule(dashboard.RefreshInterval),
		after:       tea.Tick,
		events:      queue,
		startup:     st,
		keys:        defaultKeyMap(),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Spinner{Frames: LoadingSpinnerFrames, FPS: 150 * time.Millisecond}),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(ColorGraph)),
		),
		bars: bars,
	}
}

// Init loads the host list, arms the refresh schedule and starts the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.run(m.sched.LoadHosts()),
		m.armTick(),
		m.spinner.Tick,
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tickMsg:
		if !m.schedule.Accept(msg.seq) {
			return m, nil
		}
		cmds = append(cmds, m.run(m.sched.Tick()), m.armTick())

	case resultMsg:
		res := dashboard.Result(msg)
		if res.Err != nil {
			m.log.Debug("%s failed: %v", res.Request.Target, res.Err)
		}
		cmds = append(cmds, m.run(m.sched.Apply(res)))

	case transferMsg:
		cmds = append(cmds, m.handleTransfer(msg))

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = nil
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	default:
		if m.mode == ModeUpload || m.mode == ModeDownload {
			cmds = append(cmds, m.form.update(msg))
		}
	}

	cmds = append(cmds, m.drainEvents())
	m.syncDetail()
	return m, tea.Batch(cmds...)
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderDashboard()
}

// Scheduler exposes the synchronization core driving this model.
func (m Model) Scheduler() *dashboard.Scheduler {
	return m.sched
}

// Transfers exposes the transfer engine driving this model.
func (m Model) Transfers() *dashboard.TransferEngine {
	return m.transfers
}

// Mode reports what the keyboard is currently driving.
func (m Model) Mode() Mode {
	return m.mode
}

// Toast returns the notice on screen, if any.
func (m Model) Toast() (dashboard.Notice, bool) {
	if m.toast == nil {
		return dashboard.Notice{}, false
	}
	return *m.toast, true
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch m.mode {
	case ModeFilter:
		return m.handleFilterKey(msg)
	case ModeUpload, ModeDownload:
		return m.handleFormKey(msg)
	}

	if handled, cmd := m.HandleKeyMsg(msg); handled {
		return cmd
	}

	// Anything else scrolls the detail pane.
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return cmd
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	w, h := m.detailSize()
	if !m.viewportReady {
		m.detail = viewport.New(w, h)
		m.viewportReady = true
	} else {
		m.detail.Width = w
		m.detail.Height = h
	}

	barWidth := width / 3
	if barWidth < 10 {
		barWidth = 10
	}
	for i := range m.bars {
		m.bars[i].Width = barWidth
	}
}

// run turns scheduler requests into commands that execute off the event
// loop and report back as resultMsg.
func (m *Model) run(reqs []dashboard.Request) tea.Cmd {
	if len(reqs) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(reqs))
	for _, req := range reqs {
		m.log.Debug("fetch %s (force=%v)", req.Target, req.Force)
		cmds = append(cmds, fetchCmd(m.ctx, m.fetcher, req))
	}
	return tea.Batch(cmds...)
}

func fetchCmd(ctx context.Context, f dashboard.Fetcher, req dashboard.Request) tea.Cmd {
	return func() tea.Msg {
		return resultMsg(dashboard.Execute(ctx, f, req))
	}
}

// armTick re-arms the refresh schedule and returns the command delivering
// its firing.
func (m *Model) armTick() tea.Cmd {
	seq := m.schedule.Arm(m.clock.Now())
	return m.delay(m.schedule.Interval, func(time.Time) tea.Msg {
		return tickMsg{seq: seq}
	})
}

func (m *Model) delay(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	if m.after == nil {
		return nil
	}
	return m.after(d, fn)
}

func (m *Model) showToast(n dashboard.Notice) tea.Cmd {
	m.toastSeq++
	m.toast = &n
	seq := m.toastSeq
	return m.delay(toastTTL, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

// drainEvents reacts to everything the core emitted during this update.
// Reactions can emit more events, so it loops until the queue is empty.
func (m *Model) drainEvents() tea.Cmd {
	var cmds []tea.Cmd
	for {
		evs := m.events.drain()
		if len(evs) == 0 {
			break
		}
		for _, ev := range evs {
			switch ev.Kind {
			case dashboard.EventNotice:
				m.log.Info("%s", ev.Notice.Message)
				cmds = append(cmds, m.showToast(ev.Notice))

			case dashboard.EventHostsChanged:
				cmds = append(cmds, m.applyStartup())
				m.clampCursors()

			case dashboard.EventFilterChanged, dashboard.EventStatusChanged:
				m.clampCursors()

			case dashboard.EventSelectionChanged:
				if _, ok := m.sched.State().SelectedHost(); !ok {
					m.pane = PaneHosts
				}
				m.clampCursors()

			case dashboard.EventFleetRefreshed:
				m.log.Info("fleet refresh: %s", ev.Fleet)
			}
		}
	}
	return tea.Batch(cmds...)
}

// applyStartup applies command-line selections once a host list has loaded.
func (m *Model) applyStartup() tea.Cmd {
	st := m.startup
	if st == nil || m.sched.State().HostList().Phase != dashboard.PhaseOK {
		return nil
	}
	m.startup = nil

	if len(st.filter) > 0 {
		m.sched.SetFilter(st.filter)
	}
	if st.host == "" {
		return nil
	}

	reqs, err := m.sched.SelectHost(st.host)
	if err != nil {
		hosts := m.sched.State().Hosts()
		return m.showToast(dashboard.Notice{
			Level: dashboard.NoticeWarn,
			Message: strings.TrimSpace(fmt.Sprintf("No host %q in the fleet. %s", st.host,
				util.DidYouMean(util.SuggestSimilar(st.host, hosts, 2), ""))),
		})
	}
	for i, h := range m.sched.State().VisibleHosts() {
		if h == st.host {
			m.hostCursor = i
		}
	}
	m.pane = PaneGPUs

	if st.gpu != dashboard.NoGPU {
		more, err := m.sched.SelectGPU(st.gpu)
		if err == nil {
			reqs = append(reqs, more...)
		}
		for i, g := range m.gpus() {
			if g.Index == st.gpu {
				m.gpuCursor = i
			}
		}
	}
	return m.run(reqs)
}

func (m *Model) clampCursors() {
	m.hostCursor = clamp(m.hostCursor, len(m.sched.State().VisibleHosts()))
	m.gpuCursor = clamp(m.gpuCursor, len(m.gpus()))
}

// gpus returns the last known GPU list of the selected host.
func (m Model) gpus() []api.GPU {
	status := m.sched.State().Status()
	if !status.HasData || status.Data == nil {
		return nil
	}
	return status.Data.GPUs
}

func (m *Model) syncDetail() {
	if !m.viewportReady {
		return
	}
	m.detail.SetContent(m.renderDetail())
}
