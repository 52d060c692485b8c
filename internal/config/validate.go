package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rileyhilliard/gpudash/internal/errors"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but gpudash only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade gpudash or regenerate the file with 'gpudash init --force'.")
	}

	if err := ValidateServer(cfg.Server); err != nil {
		return err
	}

	if cfg.Timeout < 0 {
		return errors.New(errors.ErrConfig,
			"timeout can't be negative",
			"Use a duration like '45s', or remove the setting to use the default.")
	}
	if cfg.TransferTimeout < 0 {
		return errors.New(errors.ErrConfig,
			"transfer_timeout can't be negative",
			"Use 0 for no limit, or a duration like '30m'.")
	}

	if err := validateEndpoints(cfg.Endpoints); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'endpoints' section in your .gpudash.yaml.")
	}

	if err := validateOutput(cfg.Output); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'output' section in your .gpudash.yaml.")
	}

	return nil
}

// ValidateServer checks that the backend address is an absolute http(s) URL.
func ValidateServer(server string) error {
	if strings.TrimSpace(server) == "" {
		return errors.New(errors.ErrConfig,
			"No backend server configured",
			"Set 'server' in .gpudash.yaml, export GPUDASH_SERVER, or pass --server.")
	}

	u, err := url.Parse(server)
	if err != nil || u.Host == "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Server '%s' isn't a valid URL", server),
			"Use a full address like 'http://gpu-gateway:8000'.")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Server '%s' uses scheme '%s'", server, u.Scheme),
			"Only http:// and https:// backends are supported.")
	}
	return nil
}

// validateEndpoints checks that every route is an absolute path.
func validateEndpoints(ep EndpointsConfig) error {
	routes := []struct {
		name string
		path string
	}{
		{"servers", ep.Servers},
		{"status", ep.Status},
		{"processes", ep.Processes},
		{"upload", ep.Upload},
		{"download", ep.Download},
	}
	for _, r := range routes {
		if r.path == "" {
			return fmt.Errorf("endpoints.%s is empty", r.name)
		}
		if !strings.HasPrefix(r.path, "/") {
			return fmt.Errorf("endpoints.%s '%s' needs to start with '/'", r.name, r.path)
		}
		if strings.ContainsAny(r.path, "?#") {
			return fmt.Errorf("endpoints.%s '%s' can't carry a query string - gpudash adds its own parameters", r.name, r.path)
		}
	}
	return nil
}

// validateOutput checks output configuration.
func validateOutput(out OutputConfig) error {
	validColors := map[string]bool{"auto": true, "always": true, "never": true, "": true}
	if !validColors[out.Color] {
		return fmt.Errorf("output.color '%s' isn't valid - use 'auto', 'always', or 'never'", out.Color)
	}
	return nil
}
