package doctor

import (
	"context"
	stderrors "errors"
	"fmt"
	"slices"
	"time"

	"github.com/rileyhilliard/gpudash/internal/api"
	"github.com/rileyhilliard/gpudash/internal/errors"
	"github.com/rileyhilliard/gpudash/internal/util"
	"github.com/rileyhilliard/gpudash/pkg/sshutil"
)

// DefaultBackendTimeout bounds the backend reachability check.
const DefaultBackendTimeout = 10 * time.Second

// HostLister is the part of the backend client the checks need.
type HostLister interface {
	ListHosts(ctx context.Context) (*api.HostList, error)
}

// BackendCheck asks the backend for its host list.
type BackendCheck struct {
	Lister  HostLister
	Server  string
	Timeout time.Duration

	Hosts *api.HostList // Populated after Run()
}

func (c *BackendCheck) Name() string     { return "backend" }
func (c *BackendCheck) Category() string { return "BACKEND" }

func (c *BackendCheck) Run(ctx context.Context) CheckResult {
	timeout := c.Timeout
	if timeout == 0 {
		timeout = DefaultBackendTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	list, err := c.Lister.ListHosts(ctx)
	if err != nil {
		return result(c, StatusFail,
			fmt.Sprintf("Cannot list hosts from %s: %s", c.Server, errors.Message(err)),
			suggestionOf(err, "Check that the backend is running and --server points at it"))
	}
	c.Hosts = list

	if len(list.Hosts) == 0 {
		return result(c, StatusWarn,
			fmt.Sprintf("Backend at %s reports no hosts", c.Server),
			fmt.Sprintf("Add Host entries to %s on the backend machine", list.Config))
	}

	return result(c, StatusPass,
		fmt.Sprintf("Backend at %s lists %d %s from %s", c.Server, len(list.Hosts), util.Pluralize(len(list.Hosts), "host", "hosts"), list.Config),
		"")
}

// HostListMatchCheck compares the backend's hosts with the local SSH config.
// It reads the result of the BackendCheck, so it must run after it.
type HostListMatchCheck struct {
	Backend       *BackendCheck
	SSHConfigPath string
}

func (c *HostListMatchCheck) Name() string     { return "host_list_match" }
func (c *HostListMatchCheck) Category() string { return "BACKEND" }

func (c *HostListMatchCheck) Run(context.Context) CheckResult {
	if c.Backend == nil || c.Backend.Hosts == nil {
		return result(c, StatusPass, "Skipped: backend host list unavailable", "")
	}

	entries, err := sshutil.ParseSSHConfigFile(c.SSHConfigPath)
	if err != nil {
		return result(c, StatusWarn, fmt.Sprintf("Cannot read %s: %v", c.SSHConfigPath, err), "")
	}
	local := sshutil.Aliases(entries)
	remote := c.Backend.Hosts.Hosts

	var onlyRemote, onlyLocal []string
	for _, h := range remote {
		if !slices.Contains(local, h) {
			onlyRemote = append(onlyRemote, h)
		}
	}
	for _, h := range local {
		if !slices.Contains(remote, h) {
			onlyLocal = append(onlyLocal, h)
		}
	}

	if len(onlyRemote) == 0 && len(onlyLocal) == 0 {
		return result(c, StatusPass, "Backend hosts match "+c.SSHConfigPath, "")
	}

	return result(c, StatusWarn,
		fmt.Sprintf("Backend hosts differ from %s (backend only: %s; local only: %s)",
			c.SSHConfigPath, util.JoinOrNone(onlyRemote), util.JoinOrNone(onlyLocal)),
		"Expected when the backend runs on another machine; otherwise restart it to reread the SSH config")
}

// NewBackendChecks creates the backend checks in the order they must run.
func NewBackendChecks(lister HostLister, server, sshConfigPath string, timeout time.Duration) []Check {
	if sshConfigPath == "" {
		sshConfigPath = sshutil.DefaultConfigPath()
	}
	backend := &BackendCheck{Lister: lister, Server: server, Timeout: timeout}
	return []Check{
		backend,
		&HostListMatchCheck{Backend: backend, SSHConfigPath: sshConfigPath},
	}
}

// suggestionOf returns the suggestion carried by a structured error.
func suggestionOf(err error, fallback string) string {
	var gdErr *errors.Error
	if stderrors.As(err, &gdErr) && gdErr.Suggestion != "" {
		return gdErr.Suggestion
	}
	return fallback
}
