package dashboard

import (
	"fmt"
	"slices"

	"github.com/rileyhilliard/gpudash/internal/api"
	"github.com/rileyhilliard/gpudash/internal/errors"
)

// NoGPU is the GPU index when no GPU is selected.
const NoGPU = -1

// State is the selection model: known hosts, the selected host and GPU, the
// visible-host filter, and the cached data hanging off the selection.
//
// The selected host is always a member of the host list once a list has
// loaded. Changing the host clears the GPU and its processes.
type State struct {
	hosts        []string
	hostSource   string
	selectedHost string
	selectedGPU  int

	filter       []string
	manualFilter bool

	status    Resource[*api.StatusReport]
	processes Resource[[]api.Process]
	hostList  Resource[[]string]
}

// NewState returns an empty state with nothing selected.
func NewState() *State {
	return &State{selectedGPU: NoGPU}
}

// Hosts returns the known hosts in backend order.
func (s *State) Hosts() []string {
	return slices.Clone(s.hosts)
}

// HostSource is the SSH config path the backend read the host list from.
func (s *State) HostSource() string {
	return s.hostSource
}

// SelectedHost returns the selected host, if any.
func (s *State) SelectedHost() (string, bool) {
	return s.selectedHost, s.selectedHost != ""
}

// SelectedGPU returns the selected GPU index, if any.
func (s *State) SelectedGPU() (int, bool) {
	return s.selectedGPU, s.selectedGPU != NoGPU
}

// Filter returns the visible-host subset.
func (s *State) Filter() []string {
	return slices.Clone(s.filter)
}

// ManualFilter reports whether the operator curated the filter.
func (s *State) ManualFilter() bool {
	return s.manualFilter
}

// Status returns the status cache for the selected host.
func (s *State) Status() Resource[*api.StatusReport] {
	return s.status
}

// Processes returns the process cache for the selected GPU.
func (s *State) Processes() Resource[[]api.Process] {
	return s.processes
}

// HostList returns the load state of the host list itself.
func (s *State) HostList() Resource[[]string] {
	return s.hostList
}

// HasHost reports whether host is in the current host list.
func (s *State) HasHost(host string) bool {
	return slices.Contains(s.hosts, host)
}

// VisibleHosts returns the hosts that pass the filter, in host order.
func (s *State) VisibleHosts() []string {
	out := make([]string, 0, len(s.filter))
	for _, h := range s.hosts {
		if slices.Contains(s.filter, h) {
			out = append(out, h)
		}
	}
	return out
}

// SelectHost makes host the selection. Selecting the current host is a
// no-op and returns false. The status cache is reset and the GPU selection
// and its processes are dropped.
func (s *State) SelectHost(host string) (bool, error) {
	if host == "" {
		return false, errors.Validation("Select a host first")
	}
	if host == s.selectedHost {
		return false, nil
	}
	if !s.HasHost(host) {
		return false, errors.Validation(fmt.Sprintf("Unknown host %q", host))
	}

	s.selectedHost = host
	s.status.Reset()
	s.clearGPU()
	return true, nil
}

// SelectGPU makes index the GPU selection. It returns false when index is
// already selected, which callers treat as a refresh request.
func (s *State) SelectGPU(index int) (bool, error) {
	if s.selectedHost == "" {
		return false, errors.Validation("Select a host before choosing a GPU")
	}
	if index < 0 {
		return false, errors.Validation(fmt.Sprintf("Invalid GPU index %d", index))
	}
	if index == s.selectedGPU {
		return false, nil
	}

	s.selectedGPU = index
	s.processes.Reset()
	return true, nil
}

// ClearGPU drops the GPU selection and its process data.
func (s *State) ClearGPU() bool {
	if s.selectedGPU == NoGPU {
		return false
	}
	s.clearGPU()
	return true
}

func (s *State) clearGPU() {
	s.selectedGPU = NoGPU
	s.processes.Reset()
}

func (s *State) clearSelection() {
	s.selectedHost = ""
	s.status.Reset()
	s.clearGPU()
}

// SetHostList replaces the known hosts. Duplicates and blanks are dropped,
// order is kept. It returns true when the selected host disappeared and the
// selection was cleared.
//
// An uncurated filter follows the list. A curated filter is intersected
// with it, so removed hosts drop out and new hosts are not added. An empty
// list resets the filter to uncurated.
func (s *State) SetHostList(hosts []string) (cleared bool) {
	seen := make(map[string]bool, len(hosts))
	next := make([]string, 0, len(hosts))
	for _, h := range hosts {
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		next = append(next, h)
	}
	s.hosts = next

	if s.selectedHost != "" && !seen[s.selectedHost] {
		s.clearSelection()
		cleared = true
	}

	switch {
	case len(next) == 0:
		s.filter = []string{}
		s.manualFilter = false
	case !s.manualFilter:
		s.filter = slices.Clone(next)
	default:
		s.filter = s.intersect(s.filter)
	}
	return cleared
}

// SetFilter replaces the filter with subset ∩ hosts, in host order, and
// marks it curated.
func (s *State) SetFilter(subset []string) {
	s.filter = s.intersect(subset)
	s.manualFilter = true
}

// ResetFilter goes back to showing every host.
func (s *State) ResetFilter() {
	s.filter = slices.Clone(s.hosts)
	s.manualFilter = false
}

func (s *State) intersect(subset []string) []string {
	out := make([]string, 0, len(subset))
	for _, h := range s.hosts {
		if slices.Contains(subset, h) {
			out = append(out, h)
		}
	}
	return out
}

// isCurrent reports whether t still matches the selection.
func (s *State) isCurrent(t Target) bool {
	switch t.Kind {
	case TargetHosts:
		return true
	case TargetStatus:
		return s.selectedHost != "" && t.Host == s.selectedHost
	case TargetProcesses:
		return s.selectedHost != "" && t.Host == s.selectedHost && t.GPU == s.selectedGPU
	}
	return false
}
