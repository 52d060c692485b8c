package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/gpudash/internal/errors"
)

// ProgressFunc receives cumulative bytes moved and the expected total.
// total is -1 when the size is unknown.
type ProgressFunc func(transferred, total int64)

// countingReader reports cumulative bytes read to a ProgressFunc.
type countingReader struct {
	r     io.Reader
	n     int64
	total int64
	fn    ProgressFunc
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.n += int64(n)
		if cr.fn != nil {
			cr.fn(cr.n, cr.total)
		}
	}
	return n, err
}

// Upload streams size bytes from r to remotePath on host. name is the local
// file's base name; the backend appends it when remotePath ends in "/".
func (c *Client) Upload(ctx context.Context, host, remotePath, name string, r io.Reader, size int64, progress ProgressFunc) error {
	if host == "" {
		return errors.Validation("Select a host before uploading")
	}
	if strings.TrimSpace(remotePath) == "" {
		return errors.Validation("Remote path is required")
	}

	q := url.Values{"host": {host}, "path": {remotePath}}
	if name != "" {
		q.Set("name", name)
	}
	endpoint := c.url(c.endpoints.Upload, q)

	body := &countingReader{r: r, total: size, fn: progress}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrTransfer, "Failed to build upload request", "")
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", "application/octet-stream")
	id := c.stamp(req)

	c.log.Debug("upload %s:%s (%d bytes, request %s)", host, remotePath, size, id)

	resp, err := c.transfer.Do(req)
	if err != nil {
		return transferError(ctx, err, "Upload failed")
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return transferFailure(resp.StatusCode, raw, "Upload failed")
	}

	// A 2xx can still carry ok=false.
	var env envelope
	if json.Unmarshal(raw, &env) == nil && env.OK != nil && !*env.OK {
		msg := strings.TrimSpace(env.Error)
		if msg == "" {
			msg = "Upload failed"
		}
		return errors.New(errors.ErrTransfer, msg, "")
	}
	return nil
}

// UploadFile uploads the file at localPath to remotePath on host.
func (c *Client) UploadFile(ctx context.Context, host, localPath, remotePath string, progress ProgressFunc) error {
	f, err := os.Open(localPath)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrValidation,
			"Cannot open "+localPath,
			"Check the file exists and is readable")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrValidation, "Cannot stat "+localPath, "")
	}
	if info.IsDir() {
		return errors.Validation(localPath + " is a directory; choose a file")
	}

	return c.Upload(ctx, host, remotePath, filepath.Base(localPath), f, info.Size(), progress)
}

// Download streams remotePath on host into w and returns the bytes written.
// Progress totals come from Content-Length when the backend sends it.
func (c *Client) Download(ctx context.Context, host, remotePath string, w io.Writer, progress ProgressFunc) (int64, error) {
	if host == "" {
		return 0, errors.Validation("Select a host before downloading")
	}
	if strings.TrimSpace(remotePath) == "" {
		return 0, errors.Validation("Remote path is required")
	}

	q := url.Values{"host": {host}, "path": {remotePath}}
	endpoint := c.url(c.endpoints.Download, q)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrTransfer, "Failed to build download request", "")
	}
	id := c.stamp(req)

	c.log.Debug("download %s:%s (request %s)", host, remotePath, id)

	resp, err := c.transfer.Do(req)
	if err != nil {
		return 0, transferError(ctx, err, "Download failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return 0, transferFailure(resp.StatusCode, raw, "Download failed")
	}

	total := resp.ContentLength // -1 when unknown
	if progress != nil {
		progress(0, total)
	}

	body := &countingReader{r: resp.Body, total: total, fn: progress}
	n, err := io.Copy(w, body)
	if err != nil {
		return n, transferError(ctx, err, "Download interrupted")
	}
	if total >= 0 && n != total {
		return n, errors.New(errors.ErrTransfer,
			fmt.Sprintf("Download truncated (%d of %d bytes)", n, total), "Try again")
	}
	return n, nil
}

// DownloadFile downloads remotePath into dir/localName. Bytes land in a temp
// file in dir first, renamed on success and removed on failure, so a partial
// download never shows up under the final name.
func (c *Client) DownloadFile(ctx context.Context, host, remotePath, dir, localName string, progress ProgressFunc) (string, error) {
	if localName == "" || localName != filepath.Base(localName) {
		return "", errors.Validation(fmt.Sprintf("Invalid local file name %q", localName))
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrTransfer,
			"Cannot create download directory "+dir, "Check directory permissions")
	}

	tmp, err := os.CreateTemp(dir, "."+localName+".*.part")
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrTransfer,
			"Cannot create file in "+dir, "Check directory permissions")
	}
	tmpPath := tmp.Name()

	_, dlErr := c.Download(ctx, host, remotePath, tmp, progress)
	closeErr := tmp.Close()
	if dlErr == nil && closeErr != nil {
		dlErr = errors.WrapWithCode(closeErr, errors.ErrTransfer, "Failed to save download", "")
	}
	if dlErr != nil {
		_ = os.Remove(tmpPath)
		return "", dlErr
	}

	final := filepath.Join(dir, localName)
	if err := os.Rename(tmpPath, final); err != nil {
		_ = os.Remove(tmpPath)
		return "", errors.WrapWithCode(err, errors.ErrTransfer,
			"Failed to save download as "+final, "Check directory permissions")
	}
	return final, nil
}

// transferFailure decodes {error} from a failed transfer response, falling
// back to "<prefix> (HTTP <code>)".
func transferFailure(status int, raw []byte, prefix string) error {
	var env envelope
	if json.Unmarshal(raw, &env) == nil && strings.TrimSpace(env.Error) != "" {
		return errors.New(errors.ErrTransfer, strings.TrimSpace(env.Error), "")
	}
	return errors.New(errors.ErrTransfer, fmt.Sprintf("%s (HTTP %d)", prefix, status), "")
}

func transferError(ctx context.Context, err error, msg string) error {
	if ctx.Err() != nil {
		return errors.WrapWithCode(ctx.Err(), errors.ErrTransfer, msg+": cancelled", "")
	}
	return errors.WrapWithCode(err, errors.ErrTransfer, msg,
		"Check the backend is reachable; large files may need a longer transfer_timeout")
}
