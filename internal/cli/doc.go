// Package cli implements the gpudash command-line interface.
//
// Each Cobra command loads the config, builds an api.Client for the backend,
// and hands off to a package that does the work: monitor for the dashboard,
// doctor for diagnostics, dashboard for transfer validation.
//
// # Command Structure
//
// The root command is "gpudash". Without a subcommand it opens the dashboard:
//
//	gpudash [monitor]        - Live fleet dashboard (TUI)
//	gpudash hosts            - Hosts the backend lists
//	gpudash status [host...] - One-shot fleet status table
//	gpudash processes <h> <i> - Compute processes on one GPU
//	gpudash upload / download - One-shot transfers with a progress line
//	gpudash doctor           - Diagnose config, backend, and SSH setup
//	gpudash init             - Write .gpudash.yaml
//
// # Flag Handling
//
// Global flags (--config, --server, --no-color) live on the root command.
// --server overrides the config file and GPUDASH_SERVER. The dashboard
// flags (--hosts, --pick, --host, --gpu) are registered on both the root
// and monitor commands through AddMonitorFlags.
//
// # Machine Output
//
// Commands with --json wrap their output in JSONEnvelope. Failures in that
// mode are written as JSON and surface as an ExitError, so nothing is
// printed twice.
package cli
