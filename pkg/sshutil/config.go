// Package sshutil inspects the local OpenSSH client setup: the host aliases
// in ~/.ssh/config and whether known_hosts already trusts them. The GPU
// backend reads the same files when it runs on this machine, so these are
// what 'gpudash doctor' compares its answers against.
package sshutil

import (
	"bytes"
	"net"
	"os"
	"strings"

	"github.com/kevinburke/ssh_config"
)

// SSHHostEntry represents a parsed host entry from SSH config.
type SSHHostEntry struct {
	Alias        string // The Host pattern (alias)
	Hostname     string // The HostName value (actual host to connect to)
	User         string // The User value
	Port         string // The Port value
	IdentityFile string // The IdentityFile value
}

// Description returns a user-friendly description of the host.
func (h SSHHostEntry) Description() string {
	parts := []string{}

	if h.Hostname != "" && h.Hostname != h.Alias {
		parts = append(parts, h.Hostname)
	}

	if h.User != "" {
		parts = append(parts, "user: "+h.User)
	}

	if h.Port != "" && h.Port != "22" {
		parts = append(parts, "port: "+h.Port)
	}

	if len(parts) == 0 {
		return h.Alias
	}

	return strings.Join(parts, ", ")
}

// Address is the host:port ssh would dial for this alias.
func (h SSHHostEntry) Address() string {
	host := h.Hostname
	if host == "" {
		host = h.Alias
	}
	port := h.Port
	if port == "" {
		port = "22"
	}
	return net.JoinHostPort(host, port)
}

// ParseSSHConfigFile returns the concrete host aliases of an SSH config in
// file order, the same order the backend lists them in. Wildcard patterns
// are skipped and parsing stops at the first Match block. A missing file
// yields no hosts and no error.
func ParseSSHConfigFile(configPath string) ([]SSHHostEntry, error) {
	content, _, err := preprocessSSHConfig(expandPath(configPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // No SSH config is fine
		}
		return nil, err
	}

	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	var hosts []SSHHostEntry
	seen := make(map[string]bool)

	for _, host := range cfg.Hosts {
		for _, pattern := range host.Patterns {
			alias := pattern.String()

			if strings.ContainsAny(alias, "*?!") || seen[alias] {
				continue
			}
			seen[alias] = true

			entry := SSHHostEntry{Alias: alias}
			entry.Hostname, _ = cfg.Get(alias, "HostName")
			entry.User, _ = cfg.Get(alias, "User")
			entry.Port, _ = cfg.Get(alias, "Port")
			if identity, _ := cfg.Get(alias, "IdentityFile"); identity != "" {
				entry.IdentityFile = expandPath(identity)
			}

			hosts = append(hosts, entry)
		}
	}

	return hosts, nil
}

// Aliases returns the alias of every entry.
func Aliases(entries []SSHHostEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Alias
	}
	return out
}
