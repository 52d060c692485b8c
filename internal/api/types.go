// Package api is the HTTP client for the GPU backend: host list, per-host
// status, per-GPU processes, and streaming file transfers.
package api

// HostList is the backend's view of the fleet: the SSH config it read and the
// host aliases found there, in file order.
type HostList struct {
	Config string   `json:"config"`
	Hosts  []string `json:"hosts"`
}

// Summary aggregates GPU metrics across one host.
type Summary struct {
	Count    int     `json:"count"`
	UtilAvg  float64 `json:"util_avg"`
	MemUsed  int     `json:"mem_used"`
	MemTotal int     `json:"mem_total"`
	MemPct   float64 `json:"mem_pct"`
}

// GPU is a single nvidia-smi row. Memory is in MiB.
type GPU struct {
	Index    int     `json:"index"`
	Name     string  `json:"name"`
	Util     float64 `json:"util"`
	Temp     int     `json:"temp"`
	MemUsed  int     `json:"mem_used"`
	MemTotal int     `json:"mem_total"`
}

// MemPercent returns memory usage as a 0-100 percentage.
func (g GPU) MemPercent() float64 {
	if g.MemTotal <= 0 {
		return 0
	}
	return float64(g.MemUsed) / float64(g.MemTotal) * 100
}

// StatusReport is the response of the status endpoint.
type StatusReport struct {
	Host    string  `json:"host"`
	OK      bool    `json:"ok"`
	Error   string  `json:"error,omitempty"`
	Summary Summary `json:"summary"`
	GPUs    []GPU   `json:"gpus"`
}

// Process is a compute process running on a GPU. PID, memory and GPU index
// are optional because nvidia-smi does not always report them.
type Process struct {
	PID      *int   `json:"pid"`
	Name     string `json:"name"`
	MemUsed  *int   `json:"mem_used"`
	GPUIndex *int   `json:"gpu_index"`
	Cwd      string `json:"cwd,omitempty"`
	CwdError string `json:"cwd_error,omitempty"`
}

// WorkingDir returns the process working directory, or the reason it could
// not be read.
func (p Process) WorkingDir() string {
	switch {
	case p.Cwd != "":
		return p.Cwd
	case p.CwdError != "":
		return p.CwdError
	default:
		return "unavailable"
	}
}

// ProcessReport is the response of the processes endpoint.
type ProcessReport struct {
	Host      string    `json:"host"`
	OK        bool      `json:"ok"`
	Error     string    `json:"error,omitempty"`
	Index     *int      `json:"index,omitempty"`
	Processes []Process `json:"processes"`
}

// envelope is the ok/error pair every JSON response may carry.
type envelope struct {
	OK    *bool  `json:"ok"`
	Error string `json:"error"`
}
