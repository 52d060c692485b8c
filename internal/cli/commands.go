package cli

import (
	"os"

	"github.com/rileyhilliard/gpudash/internal/errors"
	"github.com/spf13/cobra"
)

// Command-specific flags
var (
	hostsJSON     bool
	statusJSON    bool
	processesJSON bool
	uploadHost    string
	downloadHost  string
	downloadDir   string
	initForce     bool
	initGlobal    bool
)

// monitorCmd starts the TUI dashboard
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live GPU dashboard for the fleet",
	Long: `Open an interactive dashboard of every host the backend lists.

The host list reloads every 30 seconds, along with the selected host's GPU
status and, when a GPU is selected, its processes. Uploads and downloads run
in the background against the selected host.

Keyboard shortcuts:
  q / Ctrl+C  Quit
  r           Refresh the selection
  R           Reload the host list and refresh
  up/k        Move up
  down/j      Move down
  Enter       Select host or GPU
  Tab         Switch between hosts and GPUs
  Esc         Clear GPU / go back
  f           Choose visible hosts
  u / d       Upload to / download from the selected host
  x           Cancel running transfers
  ?           Show help

Examples:
  gpudash monitor
  gpudash monitor --hosts gpu1,gpu2
  gpudash monitor --pick
  gpudash monitor --host gpu1 --gpu 0`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return monitorCommand(cmd.Context(), monitorFlags)
	},
}

// hostsCmd lists the hosts the backend knows about
var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "List the hosts the backend reports",
	Long: `List the host aliases the backend found in its SSH config.

Examples:
  gpudash hosts
  gpudash hosts --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return hostsCommand(cmd.Context(), cmd.OutOrStdout())
	},
}

// statusCmd prints a fleet status table
var statusCmd = &cobra.Command{
	Use:   "status [host...]",
	Short: "Show GPU status for the fleet",
	Long: `Query every host (or just the ones named) concurrently and print one
row per host: GPU count, average utilization, and memory.

Exits with status 1 if any host failed to report.

Examples:
  gpudash status
  gpudash status gpu1 gpu2
  gpudash status --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusCommand(cmd.Context(), cmd.OutOrStdout(), args)
	},
}

// processesCmd lists compute processes on one GPU
var processesCmd = &cobra.Command{
	Use:   "processes <host> <gpu>",
	Short: "List compute processes on a GPU",
	Long: `List the compute processes running on one GPU of a host, with their
memory use and working directory.

Examples:
  gpudash processes gpu1 0
  gpudash processes gpu1 3 --json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return processesCommand(cmd.Context(), cmd.OutOrStdout(), args[0], args[1])
	},
}

// uploadCmd sends a local file to a host
var uploadCmd = &cobra.Command{
	Use:   "upload <local-file> <remote-path>",
	Short: "Upload a file to a host",
	Long: `Upload a local file to a fleet host through the backend.

A remote path ending in / is a directory; the file keeps its local name.
Without --host you are asked to pick one.

Examples:
  gpudash upload weights.bin /data/ --host gpu1
  gpudash upload ./train.py /home/me/train.py --host gpu2`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return uploadCommand(cmd.Context(), cmd.ErrOrStderr(), uploadHost, args[0], args[1])
	},
}

// downloadCmd fetches a remote file
var downloadCmd = &cobra.Command{
	Use:   "download <remote-path> [local-name]",
	Short: "Download a file from a host",
	Long: `Download a file from a fleet host through the backend.

The local name defaults to the last part of the remote path. Files are saved
to --dir, or download_dir from the config.

Examples:
  gpudash download /data/model.pt --host gpu1
  gpudash download /var/log/train.log run3.log --host gpu2 --dir ./logs`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 2 {
			name = args[1]
		}
		return downloadCommand(cmd.Context(), cmd.ErrOrStderr(), downloadHost, args[0], name, downloadDir)
	},
}

// doctorCmd diagnoses configuration and connectivity issues
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose config, backend, and SSH issues",
	Long: `Run diagnostic checks to find common setup problems.

Checks:
  - Config file and settings
  - Backend reachability and its host list
  - Local SSH config and known_hosts entries

Examples:
  gpudash doctor
  gpudash doctor --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd.Context(), cmd.OutOrStdout())
	},
}

// initCmd writes a config file
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .gpudash.yaml configuration",
	Long: `Write a config file with the backend address.

Creates .gpudash.yaml in the current directory, or the global config with
--global. Asks for the server when --server is not given.

Examples:
  gpudash init
  gpudash init --server http://gpu-gateway:8000
  gpudash init --global --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(cmd.Context(), cmd.OutOrStdout(), InitOptions{
			Server:    serverFlag,
			Overwrite: initForce,
			Global:    initGlobal,
		})
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for gpudash.

Examples:
  # Bash
  gpudash completion bash > /etc/bash_completion.d/gpudash

  # Zsh
  gpudash completion zsh > "${fpath[1]}/_gpudash"

  # Fish
  gpudash completion fish > ~/.config/fish/completions/gpudash.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		default:
			return errors.New(errors.ErrValidation,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	AddMonitorFlags(monitorCmd, &monitorFlags)

	hostsCmd.Flags().BoolVar(&hostsJSON, "json", false, "output in JSON format")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output in JSON format")
	processesCmd.Flags().BoolVar(&processesJSON, "json", false, "output in JSON format")

	uploadCmd.Flags().StringVar(&uploadHost, "host", "", "target host (prompted when omitted)")
	downloadCmd.Flags().StringVar(&downloadHost, "host", "", "source host (prompted when omitted)")
	downloadCmd.Flags().StringVar(&downloadDir, "dir", "", "directory to save into (default: download_dir from config)")

	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output in JSON format")

	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initGlobal, "global", false, "write ~/.config/gpudash/config.yaml instead")

	// Register all commands
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(hostsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(processesCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
}
