package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/gpudash/internal/api"
	"github.com/rileyhilliard/gpudash/internal/errors"
	"github.com/rileyhilliard/gpudash/internal/ui"
	"github.com/rileyhilliard/gpudash/internal/util"
)

// statusConcurrency caps in-flight status requests; each one is an SSH
// round trip on the backend.
const statusConcurrency = 8

// HostsOutput is the JSON payload of 'gpudash hosts'.
type HostsOutput struct {
	Config string   `json:"config"`
	Hosts  []string `json:"hosts"`
}

// StatusOutput is the JSON payload of 'gpudash status'.
type StatusOutput struct {
	Hosts   []api.StatusReport `json:"hosts"`
	Healthy int                `json:"healthy"`
	Failed  int                `json:"failed"`
}

func hostsCommand(ctx context.Context, w io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return listHosts(ctx, newClient(cfg), w, hostsJSON)
}

func listHosts(ctx context.Context, client *api.Client, w io.Writer, asJSON bool) error {
	list, err := client.ListHosts(ctx)
	if err != nil {
		if asJSON {
			return writeJSONFailure(w, err)
		}
		return err
	}

	if asJSON {
		hosts := list.Hosts
		if hosts == nil {
			hosts = []string{}
		}
		return WriteJSONSuccess(w, HostsOutput{Config: list.Config, Hosts: hosts})
	}

	mutedStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)
	if len(list.Hosts) == 0 {
		fmt.Fprintf(w, "No hosts in %s\n", list.Config)
		return nil
	}
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d %s from %s", len(list.Hosts), util.Pluralize(len(list.Hosts), "host", "hosts"), list.Config)))
	for _, h := range list.Hosts {
		fmt.Fprintf(w, "  %s %s\n", ui.SymbolPending, h)
	}
	return nil
}

func statusCommand(ctx context.Context, w io.Writer, hosts []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return fleetStatus(ctx, newClient(cfg), w, hosts, statusJSON)
}

// fleetStatus queries every host concurrently and prints one row per host
// in host-list order. Any failed host makes the command exit 1.
func fleetStatus(ctx context.Context, client *api.Client, w io.Writer, hosts []string, asJSON bool) error {
	if len(hosts) == 0 {
		list, err := client.ListHosts(ctx)
		if err != nil {
			if asJSON {
				return writeJSONFailure(w, err)
			}
			return err
		}
		hosts = list.Hosts
	}

	reports := client.StatusMany(ctx, hosts, statusConcurrency)
	failed := 0
	for _, r := range reports {
		if !r.OK {
			failed++
		}
	}

	if asJSON {
		if reports == nil {
			reports = []api.StatusReport{}
		}
		if err := WriteJSONSuccess(w, StatusOutput{Hosts: reports, Healthy: len(reports) - failed, Failed: failed}); err != nil {
			return err
		}
	} else {
		fmt.Fprint(w, ui.RenderFleetTable(FleetRows(reports)))
		if len(reports) > 0 {
			fmt.Fprintf(w, "\n%d of %d %s reporting\n", len(reports)-failed, len(reports), util.Pluralize(len(reports), "host", "hosts"))
		} else {
			fmt.Fprintln(w)
		}
	}

	if failed > 0 {
		return errors.NewExitError(1)
	}
	return nil
}

// FleetRows converts status reports into fleet table rows.
func FleetRows(reports []api.StatusReport) []ui.FleetStatusRow {
	rows := make([]ui.FleetStatusRow, 0, len(reports))
	for _, r := range reports {
		count := r.Summary.Count
		if count == 0 {
			count = len(r.GPUs)
		}
		rows = append(rows, ui.FleetStatusRow{
			Host:     r.Host,
			OK:       r.OK,
			GPUs:     count,
			UtilAvg:  r.Summary.UtilAvg,
			MemUsed:  r.Summary.MemUsed,
			MemTotal: r.Summary.MemTotal,
			Error:    r.Error,
		})
	}
	return rows
}

func processesCommand(ctx context.Context, w io.Writer, host, gpu string) error {
	index, err := ParseGPUIndex(gpu)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return listProcesses(ctx, newClient(cfg), w, host, index, processesJSON)
}

func listProcesses(ctx context.Context, client *api.Client, w io.Writer, host string, index int, asJSON bool) error {
	report, err := client.Processes(ctx, host, index)
	if err != nil {
		if errors.IsCode(err, errors.ErrApplication) {
			err = explainUnknownHost(ctx, client, host, err)
		}
		if asJSON {
			return writeJSONFailure(w, err)
		}
		return err
	}

	if asJSON {
		if report.Processes == nil {
			report.Processes = []api.Process{}
		}
		return WriteJSONSuccess(w, report)
	}

	headerStyle := lipgloss.NewStyle().Bold(true)
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s GPU %d", host, index)))
	if len(report.Processes) == 0 {
		fmt.Fprintln(w, "No compute processes are running on this GPU.")
		return nil
	}
	fmt.Fprintf(w, "%d processes detected.\n\n", len(report.Processes))

	columns := []ui.TableColumn{
		{Title: "PID", Width: 8},
		{Title: "NAME", Width: 24},
		{Title: "MEMORY", Width: 10},
		{Title: "CWD", Width: 40},
	}
	rows := make([][]string, 0, len(report.Processes))
	for _, p := range report.Processes {
		mem := "-"
		if p.MemUsed != nil {
			mem = ui.FormatMiB(*p.MemUsed)
		}
		rows = append(rows, []string{optionalInt(p.PID), p.Name, mem, p.WorkingDir()})
	}
	fmt.Fprintln(w, ui.RenderSimpleTable(columns, rows))
	return nil
}

func optionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

// explainUnknownHost replaces a backend failure with a validation error when
// host is not in the fleet, suggesting close matches.
func explainUnknownHost(ctx context.Context, client *api.Client, host string, err error) error {
	list, listErr := client.ListHosts(ctx)
	if listErr != nil || slices.Contains(list.Hosts, host) {
		return err
	}
	return errors.New(errors.ErrValidation,
		fmt.Sprintf("No host '%s' in the fleet", host),
		util.DidYouMean(util.SuggestSimilar(host, list.Hosts, 2), "Run 'gpudash hosts' to see available hosts"))
}
