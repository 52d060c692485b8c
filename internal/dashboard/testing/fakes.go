// Package testing provides test doubles for the dashboard package.
package testing

import (
	"context"
	"sync"
	"time"

	"github.com/rileyhilliard/gpudash/internal/api"
)

// FakeClock is a manually advanced clock.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock returns a clock stopped at start.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set jumps the clock to t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// FetchCall records one call made to a FakeFetcher.
type FetchCall struct {
	Method string // "hosts", "status" or "processes"
	Host   string
	Index  int
}

type statusReply struct {
	report *api.StatusReport
	err    error
}

type processReply struct {
	report *api.ProcessReport
	err    error
}

// FakeFetcher serves canned backend responses and records calls.
// Unconfigured hosts answer with an empty successful report.
type FakeFetcher struct {
	mu sync.Mutex

	Calls []FetchCall

	hosts     *api.HostList
	hostsErr  error
	status    map[string]statusReply
	processes map[string]map[int]processReply
}

// NewFakeFetcher returns a fetcher that knows the given hosts.
func NewFakeFetcher(hosts ...string) *FakeFetcher {
	return &FakeFetcher{
		hosts:     &api.HostList{Config: "~/.ssh/config", Hosts: hosts},
		status:    make(map[string]statusReply),
		processes: make(map[string]map[int]processReply),
	}
}

// SetHosts replaces the host list and clears any host-list error.
func (f *FakeFetcher) SetHosts(hosts ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hosts = &api.HostList{Config: f.hosts.Config, Hosts: hosts}
	f.hostsErr = nil
}

// SetHostsError makes ListHosts fail.
func (f *FakeFetcher) SetHostsError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hostsErr = err
}

// SetStatus sets the status reply for host.
func (f *FakeFetcher) SetStatus(host string, report *api.StatusReport, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[host] = statusReply{report: report, err: err}
}

// SetProcesses sets the process reply for one GPU on host.
func (f *FakeFetcher) SetProcesses(host string, index int, procs []api.Process, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.processes[host] == nil {
		f.processes[host] = make(map[int]processReply)
	}
	var report *api.ProcessReport
	if err == nil {
		report = &api.ProcessReport{Host: host, OK: true, Processes: procs}
	}
	f.processes[host][index] = processReply{report: report, err: err}
}

// ListHosts implements dashboard.Fetcher.
func (f *FakeFetcher) ListHosts(ctx context.Context) (*api.HostList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, FetchCall{Method: "hosts"})
	if f.hostsErr != nil {
		return nil, f.hostsErr
	}
	list := *f.hosts
	list.Hosts = append([]string(nil), f.hosts.Hosts...)
	return &list, nil
}

// Status implements dashboard.Fetcher.
func (f *FakeFetcher) Status(ctx context.Context, host string) (*api.StatusReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, FetchCall{Method: "status", Host: host})
	reply, ok := f.status[host]
	if !ok {
		return &api.StatusReport{Host: host, OK: true}, nil
	}
	return reply.report, reply.err
}

// Processes implements dashboard.Fetcher.
func (f *FakeFetcher) Processes(ctx context.Context, host string, index int) (*api.ProcessReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, FetchCall{Method: "processes", Host: host, Index: index})
	reply, ok := f.processes[host][index]
	if !ok {
		return &api.ProcessReport{Host: host, OK: true, Processes: []api.Process{}}, nil
	}
	return reply.report, reply.err
}

// CallCount returns how many calls used method.
func (f *FakeFetcher) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Reset clears recorded calls.
func (f *FakeFetcher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = nil
}
