package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/gpudash/internal/util"
	"github.com/rileyhilliard/gpudash/pkg/sshutil"
)

// SSHConfigCheck verifies the SSH config has hosts for the backend to list.
type SSHConfigCheck struct {
	Path string
}

func (c *SSHConfigCheck) Name() string     { return "ssh_config" }
func (c *SSHConfigCheck) Category() string { return "SSH" }

func (c *SSHConfigCheck) Run(context.Context) CheckResult {
	entries, err := sshutil.ParseSSHConfigFile(c.Path)
	if err != nil {
		return result(c, StatusFail, fmt.Sprintf("Cannot parse %s: %v", c.Path, err),
			"Fix the syntax error; the backend reads the same file")
	}
	if len(entries) == 0 {
		return result(c, StatusWarn, "No hosts in "+c.Path,
			"Add a Host entry per GPU machine; wildcard patterns are not listed")
	}
	return result(c, StatusPass, fmt.Sprintf("%d %s in %s", len(entries), util.Pluralize(len(entries), "host", "hosts"), c.Path), "")
}

// KnownHostsCheck verifies every SSH host already has a trusted key, so the
// backend's non-interactive ssh does not stall on a host key prompt.
type KnownHostsCheck struct {
	SSHConfigPath  string
	KnownHostsPath string
}

func (c *KnownHostsCheck) Name() string     { return "known_hosts" }
func (c *KnownHostsCheck) Category() string { return "SSH" }

func (c *KnownHostsCheck) Run(context.Context) CheckResult {
	entries, err := sshutil.ParseSSHConfigFile(c.SSHConfigPath)
	if err != nil || len(entries) == 0 {
		return result(c, StatusPass, "No hosts to check", "")
	}

	results, err := sshutil.CheckKnownHosts(c.KnownHostsPath, entries)
	if err != nil {
		return result(c, StatusFail, fmt.Sprintf("Cannot read %s: %v", c.KnownHostsPath, err),
			"Remove or fix the malformed line")
	}

	var unknown []string
	for _, r := range results {
		if !r.Known {
			unknown = append(unknown, r.Alias)
		}
	}
	if len(unknown) == 0 {
		return result(c, StatusPass, fmt.Sprintf("All %d %s in known_hosts", len(results), util.Pluralize(len(results), "host", "hosts")), "")
	}

	return result(c, StatusWarn,
		fmt.Sprintf("%d of %d hosts not in known_hosts: %s", len(unknown), len(results), util.JoinOrNone(unknown)),
		fmt.Sprintf("Connect once with 'ssh %s', or: ssh-keyscan -H <hostname> >> %s",
			util.ShellQuoteIfNeeded(unknown[0]), util.ShellQuoteIfNeeded(c.KnownHostsPath)))
}

// SSHKeyPermissionsCheck verifies SSH key file permissions.
type SSHKeyPermissionsCheck struct {
	Home string // Defaults to the user's home directory
}

func (c *SSHKeyPermissionsCheck) Name() string     { return "ssh_key_permissions" }
func (c *SSHKeyPermissionsCheck) Category() string { return "SSH" }

func (c *SSHKeyPermissionsCheck) Run(context.Context) CheckResult {
	home := c.Home
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return result(c, StatusPass, "Skipped: no home directory", "")
		}
	}

	var badPerms []string
	var foundKey bool

	for _, name := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
		info, err := os.Stat(filepath.Join(home, ".ssh", name))
		if err != nil {
			continue // Key doesn't exist
		}
		foundKey = true

		// Check permissions (should be 0600 or 0400)
		if info.Mode().Perm()&0077 != 0 {
			badPerms = append(badPerms, name)
		}
	}

	if !foundKey {
		return result(c, StatusPass, "No private keys to check", "")
	}
	if len(badPerms) > 0 {
		return result(c, StatusWarn,
			fmt.Sprintf("Insecure permissions on: %s", strings.Join(badPerms, ", ")),
			"Fix: chmod 600 ~/.ssh/<keyfile>")
	}
	return result(c, StatusPass, "SSH key permissions OK", "")
}

// NewSSHChecks creates all SSH-related checks.
func NewSSHChecks(sshConfigPath, knownHostsPath string) []Check {
	if sshConfigPath == "" {
		sshConfigPath = sshutil.DefaultConfigPath()
	}
	if knownHostsPath == "" {
		knownHostsPath = sshutil.DefaultKnownHostsPath()
	}
	return []Check{
		&SSHConfigCheck{Path: sshConfigPath},
		&KnownHostsCheck{SSHConfigPath: sshConfigPath, KnownHostsPath: knownHostsPath},
		&SSHKeyPermissionsCheck{},
	}
}
