package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/rileyhilliard/gpudash/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type progressLog struct {
	mu    sync.Mutex
	calls [][2]int64
}

func (p *progressLog) record(n, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, [2]int64{n, total})
}

func (p *progressLog) last() [2]int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.calls) == 0 {
		return [2]int64{}
	}
	return p.calls[len(p.calls)-1]
}

func TestUpload(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 256<<10)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/upload", r.URL.Path)
		assert.Equal(t, "gpu1", r.URL.Query().Get("host"))
		assert.Equal(t, "/data/", r.URL.Query().Get("path"))
		assert.Equal(t, "weights.bin", r.URL.Query().Get("name"))
		assert.Equal(t, strconv.Itoa(len(payload)), r.Header.Get("Content-Length"))
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))

		got, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, len(payload), len(got))
		w.Write([]byte(`{"ok":true}`))
	})

	var progress progressLog
	err := c.Upload(context.Background(), "gpu1", "/data/", "weights.bin",
		bytes.NewReader(payload), int64(len(payload)), progress.record)
	require.NoError(t, err)
	assert.Equal(t, [2]int64{int64(len(payload)), int64(len(payload))}, progress.last())
}

func TestUpload_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"json error body", http.StatusBadRequest, `{"ok":false,"error":"permission denied"}`, "permission denied"},
		{"plain body", http.StatusBadGateway, "upstream down", "Upload failed (HTTP 502)"},
		{"2xx with ok=false", http.StatusOK, `{"ok":false,"error":"disk full"}`, "disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				io.Copy(io.Discard, r.Body)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			err := c.Upload(context.Background(), "gpu1", "/tmp/x", "x", bytes.NewReader([]byte("abc")), 3, nil)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrTransfer))
			assert.Equal(t, tt.wantMsg, errors.Message(err))
		})
	}
}

func TestUpload_Validation(t *testing.T) {
	c := New(Options{BaseURL: "http://unused"})

	err := c.Upload(context.Background(), "", "/tmp/x", "x", bytes.NewReader(nil), 0, nil)
	assert.True(t, errors.IsCode(err, errors.ErrValidation))

	err = c.Upload(context.Background(), "gpu1", "  ", "x", bytes.NewReader(nil), 0, nil)
	assert.True(t, errors.IsCode(err, errors.ErrValidation))
}

func TestUploadFile(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(local, []byte("hello"), 0644))

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "notes.txt", r.URL.Query().Get("name"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "hello", string(body))
		w.Write([]byte(`{"ok":true}`))
	})

	require.NoError(t, c.UploadFile(context.Background(), "gpu1", local, "~/", nil))

	t.Run("missing file", func(t *testing.T) {
		err := c.UploadFile(context.Background(), "gpu1", filepath.Join(dir, "nope"), "~/", nil)
		assert.True(t, errors.IsCode(err, errors.ErrValidation))
	})

	t.Run("directory", func(t *testing.T) {
		err := c.UploadFile(context.Background(), "gpu1", dir, "~/", nil)
		assert.True(t, errors.IsCode(err, errors.ErrValidation))
	})
}

func TestDownload_KnownLength(t *testing.T) {
	payload := bytes.Repeat([]byte("m"), 100<<10)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/download", r.URL.Path)
		assert.Equal(t, "/home/u/model.pt", r.URL.Query().Get("path"))
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		w.Write(payload)
	})

	var buf bytes.Buffer
	var progress progressLog
	n, err := c.Download(context.Background(), "gpu1", "/home/u/model.pt", &buf, progress.record)
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)
	assert.Equal(t, len(payload), buf.Len())
	assert.Equal(t, [2]int64{int64(len(payload)), int64(len(payload))}, progress.last())
}

func TestDownload_UnknownLength(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("part one "))
		w.(http.Flusher).Flush()
		w.Write([]byte("part two"))
	})

	var buf bytes.Buffer
	var progress progressLog
	_, err := c.Download(context.Background(), "gpu1", "/f", &buf, progress.record)
	require.NoError(t, err)
	assert.Equal(t, "part one part two", buf.String())
	assert.Equal(t, int64(-1), progress.last()[1], "total is unknown without Content-Length")
}

func TestDownload_Failures(t *testing.T) {
	t.Run("structured error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"ok":false,"error":"No such file"}`))
		})
		_, err := c.Download(context.Background(), "gpu1", "/missing", io.Discard, nil)
		require.Error(t, err)
		assert.Equal(t, "No such file", errors.Message(err))
	})

	t.Run("generic fallback", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("oops"))
		})
		_, err := c.Download(context.Background(), "gpu1", "/missing", io.Discard, nil)
		require.Error(t, err)
		assert.Equal(t, "Download failed (HTTP 500)", errors.Message(err))
	})

	t.Run("validation", func(t *testing.T) {
		c := New(Options{BaseURL: "http://unused"})
		_, err := c.Download(context.Background(), "gpu1", "", io.Discard, nil)
		assert.True(t, errors.IsCode(err, errors.ErrValidation))
	})
}

func TestDownloadFile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("path") == "/bad" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"ok":false,"error":"nope"}`))
			return
		}
		w.Write([]byte("tensor bytes"))
	})

	dir := t.TempDir()
	path, err := c.DownloadFile(context.Background(), "gpu1", "/home/u/model.pt", dir, "model.pt", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "model.pt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "tensor bytes", string(data))

	t.Run("failure leaves no partial file", func(t *testing.T) {
		failDir := t.TempDir()
		_, err := c.DownloadFile(context.Background(), "gpu1", "/bad", failDir, "bad", nil)
		require.Error(t, err)

		entries, err := os.ReadDir(failDir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("rejects names with separators", func(t *testing.T) {
		_, err := c.DownloadFile(context.Background(), "gpu1", "/x", dir, "../escape", nil)
		assert.True(t, errors.IsCode(err, errors.ErrValidation))
	})
}
