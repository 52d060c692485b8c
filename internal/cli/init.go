package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/gpudash/internal/api"
	"github.com/rileyhilliard/gpudash/internal/config"
	"github.com/rileyhilliard/gpudash/internal/errors"
	"github.com/rileyhilliard/gpudash/internal/logger"
	"github.com/rileyhilliard/gpudash/internal/ui"
	"github.com/rileyhilliard/gpudash/internal/util"
)

// initProbeTimeout bounds the reachability check after the server is chosen.
const initProbeTimeout = 10 * time.Second

// InitOptions holds options for the init command.
type InitOptions struct {
	Server         string // Backend URL; prompted for when empty
	Overwrite      bool   // Overwrite existing config without asking
	Global         bool   // Write the global config instead of ./.gpudash.yaml
	NonInteractive bool   // Skip prompts
	Path           string // Overrides the target path (tests)
}

// Init writes a config file pointing at the backend.
func Init(ctx context.Context, w io.Writer, opts InitOptions) error {
	configPath, err := initPath(opts)
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", configPath)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(w, "Cancelled.")
			return nil
		}
		opts.Overwrite = true
	}

	server := strings.TrimSpace(opts.Server)
	if server == "" {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				"Backend server is required in non-interactive mode",
				"Provide --server or run interactively")
		}

		server = config.DefaultServer
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Backend server").
					Description("Address of the GPU fleet backend").
					Placeholder(config.DefaultServer).
					Value(&server).
					Validate(func(s string) error {
						if err := config.ValidateServer(strings.TrimSpace(s)); err != nil {
							return fmt.Errorf("%s", errors.Message(err))
						}
						return nil
					}),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Check terminal compatibility or pass --server")
		}
		server = strings.TrimSpace(server)
	}

	cfg := config.DefaultConfig()
	cfg.Server = strings.TrimSuffix(server, "/")

	// A backend that is down now may be up later; report and save anyway.
	probeBackend(ctx, w, cfg)

	if err := config.Write(configPath, cfg, opts.Overwrite); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s Created %s\n\n", ui.SymbolSuccess, configPath)
	fmt.Fprintln(w, "Next steps:")
	fmt.Fprintln(w, "  gpudash          - Open the fleet dashboard")
	fmt.Fprintln(w, "  gpudash status   - Print GPU status for every host")
	fmt.Fprintln(w, "  gpudash doctor   - Check configuration")
	return nil
}

func initPath(opts InitOptions) (string, error) {
	switch {
	case opts.Path != "":
		return opts.Path, nil
	case opts.Global:
		return config.GlobalPath()
	default:
		return filepath.Join(".", config.ConfigFileName), nil
	}
}

// probeBackend lists hosts once and prints what it found.
func probeBackend(ctx context.Context, w io.Writer, cfg *config.Config) {
	if err := config.ValidateServer(cfg.Server); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, initProbeTimeout)
	defer cancel()

	client := api.NewClient(cfg, logger.NewEnvLogger("[api]"))
	list, err := client.ListHosts(ctx)
	if err != nil {
		fmt.Fprintf(w, "%s Backend at %s not reachable: %s\n", ui.SymbolFail, cfg.Server, errors.Message(err))
		fmt.Fprintln(w, "  Saving anyway; run 'gpudash doctor' once it is up.")
		return
	}
	fmt.Fprintf(w, "%s Backend at %s lists %d %s\n", ui.SymbolSuccess, cfg.Server, len(list.Hosts), util.Pluralize(len(list.Hosts), "host", "hosts"))
}

// initCommand is the implementation called by the cobra command.
func initCommand(ctx context.Context, w io.Writer, opts InitOptions) error {
	opts.NonInteractive = !isInteractive()
	return Init(ctx, w, opts)
}
