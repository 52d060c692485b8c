package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/gpudash/internal/config"
	"github.com/rileyhilliard/gpudash/internal/doctor"
	"github.com/rileyhilliard/gpudash/internal/errors"
	"github.com/rileyhilliard/gpudash/internal/ui"
)

var doctorJSON bool

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	AllClear bool `json:"all_clear"`
}

// doctorCommand implements the doctor command logic.
func doctorCommand(ctx context.Context, w io.Writer) error {
	checks := collectChecks(cfgFile, serverFlag)

	// The host list comparison reads the backend check's result, so the
	// checks run in order.
	results := doctor.RunAll(ctx, checks)

	var err error
	if doctorJSON {
		err = outputDoctorJSON(w, results)
	} else {
		err = outputDoctorText(w, results)
	}
	if err != nil {
		return err
	}

	if doctor.HasFailures(results) {
		return errors.NewExitError(1)
	}
	return nil
}

// collectChecks gathers all diagnostic checks. A broken config still gets
// backend and SSH checks, run against the defaults.
func collectChecks(cfgPath, server string) []doctor.Check {
	var checks []doctor.Check

	checks = append(checks, doctor.NewConfigChecks(cfgPath)...)

	cfg, _, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		// The config checks report the error; fall back to OpenSSH's paths.
		cfg = config.DefaultConfig()
		cfg.SSHConfig, cfg.KnownHosts = "", ""
	}
	if server != "" {
		cfg.Server = server
	}

	if config.ValidateServer(cfg.Server) == nil {
		checks = append(checks, doctor.NewBackendChecks(newClient(cfg), cfg.Server, cfg.SSHConfig, 0)...)
	}
	checks = append(checks, doctor.NewSSHChecks(cfg.SSHConfig, cfg.KnownHosts)...)

	return checks
}

// outputDoctorJSON outputs results in JSON format.
func outputDoctorJSON(w io.Writer, results []doctor.CheckResult) error {
	order, grouped := doctor.GroupByCategory(results)

	output := DoctorOutput{
		Categories: make([]CategoryOutput, 0, len(order)),
	}
	for _, cat := range order {
		output.Categories = append(output.Categories, CategoryOutput{
			Name:    cat,
			Results: grouped[cat],
		})
	}

	counts := doctor.CountByStatus(results)
	output.Summary = SummaryOutput{
		Pass:     counts[doctor.StatusPass],
		Warn:     counts[doctor.StatusWarn],
		Fail:     counts[doctor.StatusFail],
		AllClear: !doctor.HasIssues(results),
	}

	return WriteJSONSuccess(w, output)
}

// outputDoctorText outputs results in human-readable format.
func outputDoctorText(w io.Writer, results []doctor.CheckResult) error {
	successStyle := lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	errorStyle := lipgloss.NewStyle().Foreground(ui.ColorError)
	headerStyle := lipgloss.NewStyle().Bold(true)

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("gpudash Diagnostic Report"))
	fmt.Fprintln(w)

	rows := make([]ui.DoctorCheckRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, ui.DoctorCheckRow{
			Status:     r.Status.String(),
			Category:   r.Category,
			Message:    r.Message,
			Suggestion: r.Suggestion,
		})
	}
	fmt.Fprint(w, ui.RenderDoctorTable(rows))

	fmt.Fprintln(w, strings.Repeat("━", 60))
	fmt.Fprintln(w)

	symbol := successStyle.Render(ui.SymbolSuccess)
	if doctor.HasIssues(results) {
		symbol = errorStyle.Render(ui.SymbolFail)
	}
	fmt.Fprintf(w, "%s %s\n\n", symbol, doctor.Summary(results))
	return nil
}
