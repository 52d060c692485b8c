package doctor

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/rileyhilliard/gpudash/pkg/sshutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

func writeSSHConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func knownHostsLine(t *testing.T, address string) string {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	key, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)
	return knownhosts.Line([]string{knownhosts.Normalize(address)}, key) + "\n"
}

const twoHostConfig = `
Host gpu1
    HostName gpu1.example.com

Host gpu2
    HostName gpu2.example.com
`

func TestSSHConfigCheck(t *testing.T) {
	t.Run("hosts found", func(t *testing.T) {
		path := writeSSHConfig(t, twoHostConfig)
		res := (&SSHConfigCheck{Path: path}).Run(context.Background())
		assert.Equal(t, StatusPass, res.Status)
		assert.Equal(t, "2 hosts in "+path, res.Message)
	})

	t.Run("only wildcards", func(t *testing.T) {
		path := writeSSHConfig(t, "Host *\n    User root\n")
		res := (&SSHConfigCheck{Path: path}).Run(context.Background())
		assert.Equal(t, StatusWarn, res.Status)
		assert.Contains(t, res.Message, "No hosts")
	})

	t.Run("missing file", func(t *testing.T) {
		res := (&SSHConfigCheck{Path: filepath.Join(t.TempDir(), "none")}).Run(context.Background())
		assert.Equal(t, StatusWarn, res.Status)
	})
}

func TestKnownHostsCheck(t *testing.T) {
	cfg := writeSSHConfig(t, twoHostConfig)

	t.Run("all known", func(t *testing.T) {
		kh := writeSSHConfig(t, knownHostsLine(t, "gpu1.example.com:22")+knownHostsLine(t, "gpu2.example.com:22"))
		res := (&KnownHostsCheck{SSHConfigPath: cfg, KnownHostsPath: kh}).Run(context.Background())
		assert.Equal(t, StatusPass, res.Status)
		assert.Equal(t, "All 2 hosts in known_hosts", res.Message)
	})

	t.Run("one unknown", func(t *testing.T) {
		kh := writeSSHConfig(t, knownHostsLine(t, "gpu1.example.com:22"))
		res := (&KnownHostsCheck{SSHConfigPath: cfg, KnownHostsPath: kh}).Run(context.Background())
		assert.Equal(t, StatusWarn, res.Status)
		assert.Equal(t, "1 of 2 hosts not in known_hosts: gpu2", res.Message)
		assert.Contains(t, res.Suggestion, "ssh gpu2")
		assert.Contains(t, res.Suggestion, kh)
	})

	t.Run("no known_hosts file", func(t *testing.T) {
		kh := filepath.Join(t.TempDir(), "known_hosts")
		res := (&KnownHostsCheck{SSHConfigPath: cfg, KnownHostsPath: kh}).Run(context.Background())
		assert.Equal(t, StatusWarn, res.Status)
		assert.Contains(t, res.Message, "gpu1, gpu2")
	})

	t.Run("malformed known_hosts", func(t *testing.T) {
		kh := writeSSHConfig(t, "gpu1 ssh-ed25519 not-base64!!\n")
		res := (&KnownHostsCheck{SSHConfigPath: cfg, KnownHostsPath: kh}).Run(context.Background())
		assert.Equal(t, StatusFail, res.Status)
	})

	t.Run("no hosts", func(t *testing.T) {
		empty := writeSSHConfig(t, "")
		res := (&KnownHostsCheck{SSHConfigPath: empty, KnownHostsPath: "unused"}).Run(context.Background())
		assert.Equal(t, StatusPass, res.Status)
	})
}

func TestSSHKeyPermissionsCheck(t *testing.T) {
	writeKey := func(t *testing.T, home, name string, perm os.FileMode) {
		t.Helper()
		dir := filepath.Join(home, ".ssh")
		require.NoError(t, os.MkdirAll(dir, 0700))
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("key"), perm))
		require.NoError(t, os.Chmod(path, perm))
	}

	t.Run("no keys", func(t *testing.T) {
		res := (&SSHKeyPermissionsCheck{Home: t.TempDir()}).Run(context.Background())
		assert.Equal(t, StatusPass, res.Status)
		assert.Equal(t, "No private keys to check", res.Message)
	})

	t.Run("secure key", func(t *testing.T) {
		home := t.TempDir()
		writeKey(t, home, "id_ed25519", 0600)
		res := (&SSHKeyPermissionsCheck{Home: home}).Run(context.Background())
		assert.Equal(t, StatusPass, res.Status)
		assert.Equal(t, "SSH key permissions OK", res.Message)
	})

	t.Run("group readable key", func(t *testing.T) {
		home := t.TempDir()
		writeKey(t, home, "id_rsa", 0644)
		res := (&SSHKeyPermissionsCheck{Home: home}).Run(context.Background())
		assert.Equal(t, StatusWarn, res.Status)
		assert.Contains(t, res.Message, "id_rsa")
	})
}

func TestNewSSHChecks_DefaultPaths(t *testing.T) {
	checks := NewSSHChecks("", "")
	require.Len(t, checks, 3)
	assert.Equal(t, sshutil.DefaultConfigPath(), checks[0].(*SSHConfigCheck).Path)
	kh := checks[1].(*KnownHostsCheck)
	assert.Equal(t, sshutil.DefaultConfigPath(), kh.SSHConfigPath)
	assert.Equal(t, sshutil.DefaultKnownHostsPath(), kh.KnownHostsPath)
}

func TestNewSSHChecks(t *testing.T) {
	checks := NewSSHChecks("cfg", "kh")
	require.Len(t, checks, 3)
	assert.Equal(t, "ssh_config", checks[0].Name())
	assert.Equal(t, "known_hosts", checks[1].Name())
	assert.Equal(t, "ssh_key_permissions", checks[2].Name())
	for _, c := range checks {
		assert.Equal(t, "SSH", c.Category())
	}
}
