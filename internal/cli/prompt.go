package cli

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/gpudash/internal/errors"
)

// pickHosts asks which hosts the dashboard should show. Hosts in current
// start out checked; with none, every host does.
func pickHosts(hosts, current []string) ([]string, error) {
	if len(hosts) == 0 {
		return nil, errors.New(errors.ErrValidation,
			"The backend reports no hosts to pick from",
			"Add Host entries to the SSH config the backend reads.")
	}

	options := make([]huh.Option[string], 0, len(hosts))
	for _, h := range hosts {
		checked := len(current) == 0 || slices.Contains(current, h)
		options = append(options, huh.NewOption(h, h).Selected(checked))
	}

	var selected []string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Visible hosts").
				Description("Space toggles, enter confirms").
				Options(options...).
				Value(&selected).
				Validate(func(s []string) error {
					if len(s) == 0 {
						return fmt.Errorf("pick at least one host")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrValidation,
			"Host selection cancelled",
			"Use --hosts a,b to choose hosts without a prompt")
	}
	return selected, nil
}

// promptHost asks for the target host of a one-shot transfer.
func promptHost(hosts []string, action string) (string, error) {
	if len(hosts) == 0 {
		return "", errors.New(errors.ErrValidation,
			"The backend reports no hosts",
			"Add Host entries to the SSH config the backend reads.")
	}

	var host string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("Host to %s", action)).
				Options(huh.NewOptions(hosts...)...).
				Value(&host),
		),
	)
	if err := form.Run(); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrValidation,
			"Host selection cancelled",
			"Pass --host to skip the prompt")
	}
	return host, nil
}
