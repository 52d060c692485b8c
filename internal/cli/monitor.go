package cli

import (
	"context"
	"io"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/gpudash/internal/dashboard"
	"github.com/rileyhilliard/gpudash/internal/errors"
	"github.com/rileyhilliard/gpudash/internal/logger"
	"github.com/rileyhilliard/gpudash/internal/monitor"
)

// debugLogFile receives log output while the dashboard owns the terminal.
const debugLogFile = "gpudash-debug.log"

// listTimeout bounds host list lookups made before the dashboard starts.
const listTimeout = 15 * time.Second

var (
	rootMonitorFlags MonitorFlags
	monitorFlags     MonitorFlags
)

// monitorCommand starts the TUI dashboard.
func monitorCommand(ctx context.Context, flags MonitorFlags) error {
	if !isInteractive() {
		return errors.New(errors.ErrValidation,
			"The dashboard needs an interactive terminal",
			"Use 'gpudash status' or 'gpudash status --json' for plain output.")
	}
	if flags.GPU != dashboard.NoGPU && flags.Host == "" {
		return errors.New(errors.ErrValidation,
			"--gpu needs --host",
			"Pass the host the GPU belongs to, e.g. --host gpu1 --gpu 0.")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := newClient(cfg)

	filter := ParseHostList(flags.Hosts)
	if flags.Pick {
		listCtx, cancel := context.WithTimeout(ctx, listTimeout)
		list, err := client.ListHosts(listCtx)
		cancel()
		if err != nil {
			return err
		}
		if filter, err = pickHosts(list.Hosts, filter); err != nil {
			return err
		}
	}

	// The dashboard owns the screen, so log lines go to a file or nowhere.
	if logger.DebugEnabled() {
		f, err := tea.LogToFile(debugLogFile, "gpudash")
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot open "+debugLogFile,
				"Run from a writable directory or unset "+logger.DebugEnvVar)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	model := monitor.NewModel(monitor.Options{
		Fetcher:     client,
		Transfers:   client,
		Logger:      logger.NewEnvLogger("[monitor]"),
		DownloadDir: cfg.DownloadDir,
		Filter:      filter,
		Host:        flags.Host,
		GPU:         flags.GPU,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	if err != nil && ctx.Err() != nil {
		// Interrupted; nothing left to report.
		return nil
	}
	return err
}
