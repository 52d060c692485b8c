package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/gpudash/internal/api"
	"github.com/rileyhilliard/gpudash/internal/config"
	"github.com/rileyhilliard/gpudash/internal/dashboard"
	"github.com/rileyhilliard/gpudash/internal/errors"
	"github.com/rileyhilliard/gpudash/internal/ui"
	"golang.org/x/term"
)

// transferStatsWidth is the room kept after the bar for the spinner, byte
// counts and rate.
const transferStatsWidth = 36

// hostPrompter picks a host when --host is missing. Tests replace it.
var hostPrompter = func(ctx context.Context, client *api.Client, action string) (string, error) {
	if !isInteractive() {
		return "", errors.New(errors.ErrValidation,
			"No host given",
			"Pass --host with one of the hosts from 'gpudash hosts'.")
	}
	listCtx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()
	list, err := client.ListHosts(listCtx)
	if err != nil {
		return "", err
	}
	return promptHost(list.Hosts, action)
}

func uploadCommand(ctx context.Context, w io.Writer, host, local, remote string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return runUpload(ctx, newClient(cfg), w, host, config.ExpandTilde(local), remote)
}

func downloadCommand(ctx context.Context, w io.Writer, host, remote, name, dir string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if dir == "" {
		dir = cfg.DownloadDir
	}
	return runDownload(ctx, newClient(cfg), w, host, remote, name, config.ExpandTilde(dir))
}

// runUpload validates the request the same way the dashboard does, then
// streams the file with a progress line on w.
func runUpload(ctx context.Context, client *api.Client, w io.Writer, host, local, remote string) error {
	if host == "" {
		var err error
		if host, err = hostPrompter(ctx, client, "upload to"); err != nil {
			return err
		}
	}

	engine := dashboard.NewTransferEngine(nil)
	session, err := engine.StartUpload(dashboard.UploadInput{Host: host, LocalPath: local, RemotePath: remote})
	if err != nil {
		return err
	}

	label := fmt.Sprintf("%s %s → %s:%s", ui.SymbolUpload, filepath.Base(local), host, session.Remote)
	return transferWithProgress(w, engine, session, label, func(progress api.ProgressFunc) error {
		return client.UploadFile(ctx, host, local, session.Remote, progress)
	})
}

// runDownload validates the request, derives the local name, and saves the
// remote file into dir.
func runDownload(ctx context.Context, client *api.Client, w io.Writer, host, remote, name, dir string) error {
	if host == "" {
		var err error
		if host, err = hostPrompter(ctx, client, "download from"); err != nil {
			return err
		}
	}

	engine := dashboard.NewTransferEngine(nil)
	session, err := engine.StartDownload(dashboard.DownloadInput{Host: host, RemotePath: remote, LocalName: name, Dir: dir})
	if err != nil {
		return err
	}

	label := fmt.Sprintf("%s %s:%s → %s", ui.SymbolDownload, host, session.Remote, session.Local)
	return transferWithProgress(w, engine, session, label, func(progress api.ProgressFunc) error {
		_, err := client.DownloadFile(ctx, host, session.Remote, filepath.Dir(session.Local), filepath.Base(session.Local), progress)
		return err
	})
}

// transferWithProgress runs fn with a live progress line drawn from the
// engine's session. The progress callback may fire from the HTTP transport's
// goroutine, so every engine call happens under mu.
func transferWithProgress(w io.Writer, engine *dashboard.TransferEngine, s dashboard.TransferSession, label string, fn func(api.ProgressFunc) error) error {
	p := ui.NewTransferProgress(label, w)
	if width := barWidth(w, label); width > 0 {
		p.SetWidth(width)
	}
	p.Show(s)
	p.Start()

	var mu sync.Mutex
	err := fn(func(transferred, total int64) {
		mu.Lock()
		defer mu.Unlock()
		if engine.Progress(s.Direction, s.ID, transferred, total) {
			p.Show(engine.Session(s.Direction))
		}
	})

	mu.Lock()
	defer mu.Unlock()
	return finishTransfer(w, engine, p, s, err)
}

// barWidth sizes the progress bar to fit the terminal behind w, leaving room
// for the label and byte counts. Returns 0 when w is not a terminal.
func barWidth(w io.Writer, label string) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return max(10, min(40, cols-lipgloss.Width(label)-transferStatsWidth))
}

// finishTransfer records the outcome on the session, prints the final
// progress line, then the same message the dashboard would show.
func finishTransfer(w io.Writer, engine *dashboard.TransferEngine, p *ui.TransferProgress, s dashboard.TransferSession, err error) error {
	var notice dashboard.Notice
	unsubscribe := engine.Subscribe(func(ev dashboard.Event) {
		if ev.Kind == dashboard.EventNotice {
			notice = ev.Notice
		}
	})
	defer unsubscribe()

	if err != nil {
		engine.Fail(s.Direction, s.ID, errors.Message(err))
		p.Show(engine.Session(s.Direction))
		p.Fail()
		return err
	}

	engine.Complete(s.Direction, s.ID)
	p.Show(engine.Session(s.Direction))
	p.Success()
	fmt.Fprintf(w, "%s %s\n", ui.SymbolSuccess, notice.Message)
	return nil
}
