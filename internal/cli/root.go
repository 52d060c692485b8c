package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rileyhilliard/gpudash/internal/config"
	"github.com/rileyhilliard/gpudash/internal/errors"
	"github.com/rileyhilliard/gpudash/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile    string
	serverFlag string
	noColor    bool
)

// rootCmd opens the dashboard when run without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "gpudash",
	Short: "Terminal dashboard for a GPU fleet",
	Long: `gpudash watches the GPUs on every host in your SSH config through the
fleet backend, and moves files to and from the host you pick.

Run without a subcommand to open the live dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor {
			return ui.ApplyColorMode(ui.ColorModeNever)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return monitorCommand(cmd.Context(), rootMonitorFlags)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .gpudash.yaml, then ~/.config/gpudash/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "backend URL, overrides the config file")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	AddMonitorFlags(rootCmd, &rootMonitorFlags)
}

// Config returns the --config flag value.
func Config() string {
	return cfgFile
}

// loadConfig loads the config, applies --server, and validates the result.
// The color mode from the file applies unless --no-color was given.
func loadConfig() (*config.Config, error) {
	cfg, _, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	if serverFlag != "" {
		cfg.Server = serverFlag
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if !noColor {
		if err := ui.ApplyColorMode(cfg.Output.Color); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig, err.Error(),
				"Use auto, always, or never for output.color")
		}
	}
	return cfg, nil
}

// Execute runs the root command and exits with a non-zero status on error.
// Ctrl+C cancels the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err == nil {
		return
	}
	if code, ok := errors.GetExitCode(err); ok {
		os.Exit(code)
	}
	msg := err.Error()
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprint(os.Stderr, msg)
	os.Exit(1)
}
