package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rileyhilliard/gpudash/internal/api"
	"github.com/rileyhilliard/gpudash/internal/logger"
)

// RequireBackend skips the test unless a live backend is configured.
func RequireBackend(t *testing.T) {
	t.Helper()
	if os.Getenv("GPUDASH_TEST_SERVER") == "" {
		t.Skip("Skipping: GPUDASH_TEST_SERVER not set (backend not available)")
	}
}

// GetClient returns a client for the test backend.
func GetClient(t *testing.T) *api.Client {
	t.Helper()
	RequireBackend(t)
	return api.New(api.Options{
		BaseURL:         os.Getenv("GPUDASH_TEST_SERVER"),
		Timeout:         30 * time.Second,
		TransferTimeout: 2 * time.Minute,
		Logger:          logger.NewEnvLogger("[integration]"),
	})
}

// GetTestHost returns GPUDASH_TEST_HOST, or the first host the backend lists.
func GetTestHost(t *testing.T, client *api.Client) string {
	t.Helper()
	if h := os.Getenv("GPUDASH_TEST_HOST"); h != "" {
		return h
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	list, err := client.ListHosts(ctx)
	if err != nil {
		t.Fatalf("Failed to list hosts: %v", err)
	}
	if len(list.Hosts) == 0 {
		t.Skip("Skipping: backend lists no hosts")
	}
	return list.Hosts[0]
}

// GetRemoteDir returns the remote directory transfers may write into.
func GetRemoteDir() string {
	if d := os.Getenv("GPUDASH_TEST_REMOTE_DIR"); d != "" {
		return d
	}
	return "/tmp/"
}
