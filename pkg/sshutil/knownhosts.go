package sshutil

import (
	"crypto/ed25519"
	"crypto/rand"
	stderrors "errors"
	"net"
	"os"
	"strconv"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// KnownHostResult says whether known_hosts has a key for one SSH alias.
type KnownHostResult struct {
	Alias   string
	Address string
	Known   bool
}

// CheckKnownHosts looks up every entry in a known_hosts file. Hashed entries
// are matched too. A missing file means nothing is known.
func CheckKnownHosts(knownHostsPath string, entries []SSHHostEntry) ([]KnownHostResult, error) {
	path := expandPath(knownHostsPath)
	results := make([]KnownHostResult, len(entries))
	for i, e := range entries {
		results[i] = KnownHostResult{Alias: e.Alias, Address: e.Address()}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return results, nil
	}

	callback, err := knownhosts.New(path)
	if err != nil {
		return nil, err
	}

	// The callback only answers "is this exact key trusted", so ask with a
	// throwaway key: a KeyError that lists wanted keys means the host is known.
	probe, err := throwawayKey()
	if err != nil {
		return nil, err
	}

	for i := range results {
		results[i].Known = isKnown(callback, results[i].Address, probe)
	}
	return results, nil
}

func isKnown(callback ssh.HostKeyCallback, address string, probe ssh.PublicKey) bool {
	_, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return false
	}
	port, _ := strconv.Atoi(portStr)

	err = callback(address, &net.TCPAddr{IP: net.IPv4zero, Port: port}, probe)
	if err == nil {
		return true
	}
	var keyErr *knownhosts.KeyError
	if stderrors.As(err, &keyErr) {
		return len(keyErr.Want) > 0
	}
	var revoked *knownhosts.RevokedError
	return stderrors.As(err, &revoked)
}

func throwawayKey() (ssh.PublicKey, error) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return ssh.NewPublicKey(pub)
}
