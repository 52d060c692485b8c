package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/rileyhilliard/gpudash/internal/api"
	"github.com/rileyhilliard/gpudash/internal/errors"
)

// TargetKind says which backend resource a request loads.
type TargetKind int

const (
	TargetHosts TargetKind = iota
	TargetStatus
	TargetProcesses
)

func (k TargetKind) String() string {
	switch k {
	case TargetStatus:
		return "status"
	case TargetProcesses:
		return "processes"
	default:
		return "hosts"
	}
}

// Target identifies one cached resource: the host list, a host's status, or
// the processes of one GPU on a host.
type Target struct {
	Kind TargetKind
	Host string
	GPU  int
}

// HostsTarget is the host list.
func HostsTarget() Target { return Target{Kind: TargetHosts} }

// StatusTarget is the GPU status of host.
func StatusTarget(host string) Target { return Target{Kind: TargetStatus, Host: host} }

// ProcessesTarget is the process list of one GPU on host.
func ProcessesTarget(host string, gpu int) Target {
	return Target{Kind: TargetProcesses, Host: host, GPU: gpu}
}

func (t Target) String() string {
	switch t.Kind {
	case TargetStatus:
		return "status " + t.Host
	case TargetProcesses:
		return fmt.Sprintf("processes %s/gpu%d", t.Host, t.GPU)
	default:
		return "host list"
	}
}

// Request is a fetch the driver must run. IssuedAt becomes the cache
// timestamp when the result lands.
type Request struct {
	Target   Target
	Force    bool
	IssuedAt time.Time
}

// Result is the outcome of a Request, fed back through Scheduler.Apply.
type Result struct {
	Request   Request
	Hosts     *api.HostList
	Status    *api.StatusReport
	Processes []api.Process
	Err       error
}

// Fetcher is the backend surface the scheduler needs. *api.Client implements it.
type Fetcher interface {
	ListHosts(ctx context.Context) (*api.HostList, error)
	Status(ctx context.Context, host string) (*api.StatusReport, error)
	Processes(ctx context.Context, host string, index int) (*api.ProcessReport, error)
}

// Execute runs req against f. It blocks, so drivers call it off the event loop.
func Execute(ctx context.Context, f Fetcher, req Request) Result {
	res := Result{Request: req}
	switch req.Target.Kind {
	case TargetHosts:
		res.Hosts, res.Err = f.ListHosts(ctx)
	case TargetStatus:
		res.Status, res.Err = f.Status(ctx, req.Target.Host)
	case TargetProcesses:
		report, err := f.Processes(ctx, req.Target.Host, req.Target.GPU)
		if err != nil {
			res.Err = err
			break
		}
		res.Processes = report.Processes
		if res.Processes == nil {
			res.Processes = []api.Process{}
		}
	}
	return res
}

// fleetRun tracks one refresh-all until every sub-result has landed.
type fleetRun struct {
	awaitingHosts   bool
	pending         map[Target]bool
	statusFailed    bool
	processesFailed bool
}

// Scheduler owns the State and decides what to fetch and when. All methods
// must be called from one goroutine (the driver's event loop).
type Scheduler struct {
	observers

	state     *State
	clock     Clock
	threshold time.Duration
	inflight  map[Target]bool
	fleet     *fleetRun
}

// NewScheduler returns a scheduler over an empty State.
func NewScheduler(clock Clock) *Scheduler {
	if clock == nil {
		clock = RealClock()
	}
	return &Scheduler{
		state:     NewState(),
		clock:     clock,
		threshold: StaleThreshold,
		inflight:  make(map[Target]bool),
	}
}

// State exposes the selection model for reading. Mutate it through the
// scheduler so the right fetches are issued.
func (s *Scheduler) State() *State {
	return s.state
}

// InFlight reports whether a request for t is outstanding.
func (s *Scheduler) InFlight(t Target) bool {
	return s.inflight[t]
}

// FleetRefreshing reports whether a refresh-all is still collecting results.
func (s *Scheduler) FleetRefreshing() bool {
	return s.fleet != nil
}

// LoadHosts requests the host list.
func (s *Scheduler) LoadHosts() []Request {
	return collect(s.issue(HostsTarget(), true))
}

// SelectHost selects host and requests its status.
func (s *Scheduler) SelectHost(host string) ([]Request, error) {
	changed, err := s.state.SelectHost(host)
	if err != nil {
		s.notify(NoticeWarn, errors.Message(err))
		return nil, err
	}
	if !changed {
		return nil, nil
	}
	s.emit(Event{Kind: EventSelectionChanged})
	return collect(s.issue(StatusTarget(host), true)), nil
}

// SelectGPU selects a GPU on the current host and requests its processes.
// Selecting the already-selected GPU forces a reload.
func (s *Scheduler) SelectGPU(index int) ([]Request, error) {
	changed, err := s.state.SelectGPU(index)
	if err != nil {
		s.notify(NoticeWarn, errors.Message(err))
		return nil, err
	}
	if changed {
		s.emit(Event{Kind: EventSelectionChanged})
	}
	return collect(s.issue(ProcessesTarget(s.state.selectedHost, index), true)), nil
}

// ClearGPU drops the GPU selection.
func (s *Scheduler) ClearGPU() {
	if s.state.ClearGPU() {
		s.emit(Event{Kind: EventSelectionChanged})
	}
}

// SetFilter curates the visible hosts.
func (s *Scheduler) SetFilter(subset []string) {
	s.state.SetFilter(subset)
	s.emit(Event{Kind: EventFilterChanged})
}

// ResetFilter shows every host again.
func (s *Scheduler) ResetFilter() {
	s.state.ResetFilter()
	s.emit(Event{Kind: EventFilterChanged})
}

// Tick is the background refresh: reload the selected status and processes
// if they are stale.
func (s *Scheduler) Tick() []Request {
	return s.refreshSelection(false)
}

// Refresh reloads the current selection regardless of age.
func (s *Scheduler) Refresh() []Request {
	return s.refreshSelection(true)
}

func (s *Scheduler) refreshSelection(force bool) []Request {
	host, ok := s.state.SelectedHost()
	if !ok {
		return nil
	}
	reqs := collect(s.issue(StatusTarget(host), force))
	if gpu, ok := s.state.SelectedGPU(); ok {
		reqs = append(reqs, collect(s.issue(ProcessesTarget(host, gpu), force))...)
	}
	return reqs
}

// RefreshAll reloads the host list, then forces a refresh of whatever
// selection survives it. An EventFleetRefreshed reports the combined outcome.
func (s *Scheduler) RefreshAll() []Request {
	if s.fleet != nil {
		return nil
	}
	s.fleet = &fleetRun{awaitingHosts: true, pending: make(map[Target]bool)}
	return collect(s.issue(HostsTarget(), true))
}

// Apply folds a finished request into the state. Results whose target is no
// longer selected are dropped. Apply may return follow-up requests.
func (s *Scheduler) Apply(res Result) []Request {
	t := res.Request.Target
	delete(s.inflight, t)

	var next []Request
	switch t.Kind {
	case TargetHosts:
		next = s.applyHosts(res)
	case TargetStatus:
		s.applyStatus(res)
	case TargetProcesses:
		s.applyProcesses(res)
	}
	s.resolveFleet(res)
	return next
}

func (s *Scheduler) applyHosts(res Result) []Request {
	at := res.Request.IssuedAt
	if res.Err != nil {
		msg := failureMessage(res.Err, "Failed to load host list")
		s.state.hostList.Fail(msg, at)
		s.emit(Event{Kind: EventHostsChanged})
		s.notify(NoticeError, msg)
		if s.fleet != nil && s.fleet.awaitingHosts {
			s.finishFleet(FleetFailed)
		}
		return nil
	}

	var hosts []string
	if res.Hosts != nil {
		hosts = res.Hosts.Hosts
		s.state.hostSource = res.Hosts.Config
	}
	previous, _ := s.state.SelectedHost()
	cleared := s.state.SetHostList(hosts)
	s.state.hostList.Succeed(s.state.Hosts(), at)

	s.emit(Event{Kind: EventHostsChanged})
	s.emit(Event{Kind: EventFilterChanged})
	if cleared {
		s.emit(Event{Kind: EventSelectionChanged})
		s.notify(NoticeWarn, previous+" is no longer in the host list")
	}

	if s.fleet == nil || !s.fleet.awaitingHosts {
		return nil
	}
	s.fleet.awaitingHosts = false

	var reqs []Request
	if host, ok := s.state.SelectedHost(); ok {
		st := StatusTarget(host)
		s.fleet.pending[st] = true
		reqs = append(reqs, collect(s.issue(st, true))...)
		if gpu, ok := s.state.SelectedGPU(); ok {
			pt := ProcessesTarget(host, gpu)
			s.fleet.pending[pt] = true
			reqs = append(reqs, collect(s.issue(pt, true))...)
		}
	}
	if len(s.fleet.pending) == 0 {
		s.finishFleet(FleetUpdated)
	}
	return reqs
}

func (s *Scheduler) applyStatus(res Result) {
	t := res.Request.Target
	if !s.state.isCurrent(t) {
		return
	}
	at := res.Request.IssuedAt
	if res.Err != nil {
		msg := failureMessage(res.Err, "Failed to load GPU status for "+t.Host)
		s.state.status.Fail(msg, at)
		s.emit(Event{Kind: EventStatusChanged})
		s.notify(NoticeError, msg)
		return
	}
	s.state.status.Succeed(res.Status, at)
	s.emit(Event{Kind: EventStatusChanged})
}

func (s *Scheduler) applyProcesses(res Result) {
	t := res.Request.Target
	if !s.state.isCurrent(t) {
		return
	}
	at := res.Request.IssuedAt
	if res.Err != nil {
		msg := failureMessage(res.Err, fmt.Sprintf("Failed to load processes for GPU %d on %s", t.GPU, t.Host))
		s.state.processes.Fail(msg, at)
		s.emit(Event{Kind: EventProcessesChanged})
		s.notify(NoticeError, msg)
		return
	}
	s.state.processes.Succeed(res.Processes, at)
	s.emit(Event{Kind: EventProcessesChanged})
}

// resolveFleet counts a status or process result toward a pending
// refresh-all, whether or not the result was applied.
func (s *Scheduler) resolveFleet(res Result) {
	t := res.Request.Target
	if s.fleet == nil || s.fleet.awaitingHosts || !s.fleet.pending[t] {
		return
	}
	delete(s.fleet.pending, t)
	if res.Err != nil {
		if t.Kind == TargetStatus {
			s.fleet.statusFailed = true
		} else {
			s.fleet.processesFailed = true
		}
	}
	if len(s.fleet.pending) > 0 {
		return
	}

	switch {
	case s.fleet.statusFailed:
		s.finishFleet(FleetFailed)
	case s.fleet.processesFailed:
		s.finishFleet(FleetProcessesFailed)
	default:
		s.finishFleet(FleetUpdated)
	}
}

func (s *Scheduler) finishFleet(outcome FleetOutcome) {
	s.fleet = nil
	s.emit(Event{Kind: EventFleetRefreshed, Fleet: outcome})

	level := NoticeSuccess
	switch outcome {
	case FleetFailed:
		level = NoticeError
	case FleetProcessesFailed:
		level = NoticeWarn
	}
	s.notify(level, "Fleet "+string(outcome))
}

// issue returns a request for t unless it is fresh (and not forced) or
// already in flight. An in-flight request serves the caller instead.
func (s *Scheduler) issue(t Target, force bool) (Request, bool) {
	now := s.clock.Now()

	switch t.Kind {
	case TargetHosts:
		if !s.state.hostList.Due(now, s.threshold, force) {
			return Request{}, false
		}
		s.state.hostList.Begin()
	case TargetStatus:
		if !s.state.status.Due(now, s.threshold, force) {
			return Request{}, false
		}
		s.state.status.Begin()
	case TargetProcesses:
		if !s.state.processes.Due(now, s.threshold, force) {
			return Request{}, false
		}
		s.state.processes.Begin()
	}

	if s.inflight[t] {
		return Request{}, false
	}
	s.inflight[t] = true
	return Request{Target: t, Force: force, IssuedAt: now}, true
}

func collect(req Request, ok bool) []Request {
	if !ok {
		return nil
	}
	return []Request{req}
}

// failureMessage uses the backend's own message for application failures
// and a generic one for everything else.
func failureMessage(err error, generic string) string {
	if errors.IsCode(err, errors.ErrApplication) {
		return errors.Message(err)
	}
	return generic
}
