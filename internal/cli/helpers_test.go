package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/rileyhilliard/gpudash/internal/api"
)

// fakeBackend serves the backend routes from in-memory state.
type fakeBackend struct {
	mu      sync.Mutex
	hosts   []string
	failing map[string]string // host -> status error
	files   map[string]string // remote path -> content
	uploads map[string][]byte // path+name -> body
	server  *httptest.Server
}

func newFakeBackend(t *testing.T, hosts ...string) (*fakeBackend, *api.Client) {
	t.Helper()
	b := &fakeBackend{
		hosts:   hosts,
		failing: make(map[string]string),
		files:   make(map[string]string),
		uploads: make(map[string][]byte),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/servers-list", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"config": "/etc/gpu/ssh_config", "hosts": b.hosts})
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		host := r.URL.Query().Get("host")
		b.mu.Lock()
		msg, failed := b.failing[host]
		b.mu.Unlock()
		if failed {
			writeJSON(w, http.StatusOK, map[string]any{"host": host, "ok": false, "error": msg})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"host": host,
			"ok":   true,
			"summary": map[string]any{
				"count": 2, "util_avg": 40.0, "mem_used": 20480, "mem_total": 81920, "mem_pct": 25.0,
			},
			"gpus": []map[string]any{
				{"index": 0, "name": "A100", "util": 30.0, "temp": 50, "mem_used": 10240, "mem_total": 40960},
				{"index": 1, "name": "A100", "util": 50.0, "temp": 61, "mem_used": 10240, "mem_total": 40960},
			},
		})
	})
	mux.HandleFunc("/processes", func(w http.ResponseWriter, r *http.Request) {
		if !slices.Contains(b.hosts, r.URL.Query().Get("host")) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "Unknown host"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"host":  r.URL.Query().Get("host"),
			"ok":    true,
			"index": 0,
			"processes": []map[string]any{
				{"pid": 4242, "name": "python", "mem_used": 2048, "gpu_index": 0, "cwd": "/home/ops/train"},
				{"pid": nil, "name": "[unknown]", "mem_used": nil, "gpu_index": 0, "cwd_error": "permission denied"},
			},
		})
	})
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		q := r.URL.Query()
		b.mu.Lock()
		if msg, failed := b.failing[q.Get("host")]; failed {
			b.mu.Unlock()
			writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": msg})
			return
		}
		b.uploads[q.Get("host")+":"+q.Get("path")+q.Get("name")] = body
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	mux.HandleFunc("/download", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		content, ok := b.files[r.URL.Query().Get("path")]
		b.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "No such file"})
			return
		}
		io.WriteString(w, content)
	})

	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b, api.New(api.Options{BaseURL: b.server.URL, Timeout: 5 * time.Second})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// withGlobals restores the package-level flag values after a test.
func withGlobals(t *testing.T) {
	t.Helper()
	oldCfg, oldServer, oldNoColor := cfgFile, serverFlag, noColor
	t.Cleanup(func() {
		cfgFile, serverFlag, noColor = oldCfg, oldServer, oldNoColor
	})
}
