package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rileyhilliard/gpudash/internal/api"
	"github.com/rileyhilliard/gpudash/internal/config"
	"github.com/rileyhilliard/gpudash/internal/dashboard"
	"github.com/rileyhilliard/gpudash/internal/errors"
	"github.com/rileyhilliard/gpudash/internal/logger"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// MonitorFlags holds the dashboard flags shared by the root and monitor commands.
type MonitorFlags struct {
	Hosts string
	Pick  bool
	Host  string
	GPU   int
}

// AddMonitorFlags registers --hosts, --pick, --host, and --gpu on a command.
func AddMonitorFlags(cmd *cobra.Command, flags *MonitorFlags) {
	cmd.Flags().StringVar(&flags.Hosts, "hosts", "", "only show these hosts (comma-separated)")
	cmd.Flags().BoolVar(&flags.Pick, "pick", false, "choose the visible hosts interactively before starting")
	cmd.Flags().StringVar(&flags.Host, "host", "", "select this host on startup")
	cmd.Flags().IntVar(&flags.GPU, "gpu", dashboard.NoGPU, "select this GPU index on startup (requires --host)")
}

// ParseHostList splits a comma-separated host list, dropping blanks and
// duplicates while keeping order.
func ParseHostList(s string) []string {
	var hosts []string
	seen := make(map[string]bool)
	for _, h := range strings.Split(s, ",") {
		h = strings.TrimSpace(h)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		hosts = append(hosts, h)
	}
	return hosts
}

// ParseGPUIndex parses a GPU index argument.
func ParseGPUIndex(s string) (int, error) {
	idx, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || idx < 0 {
		return 0, errors.New(errors.ErrValidation,
			fmt.Sprintf("'%s' isn't a GPU index", s),
			"Use the number shown in the GPU list, like 0 or 3.")
	}
	return idx, nil
}

// isInteractive reports whether stdin and stdout are both terminals.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// newClient builds the backend client for a loaded config.
func newClient(cfg *config.Config) *api.Client {
	return api.NewClient(cfg, logger.NewEnvLogger("[api]"))
}
