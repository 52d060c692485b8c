package doctor

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/gpudash/internal/config"
	"github.com/rileyhilliard/gpudash/internal/errors"
)

// ConfigFileCheck reports which config file is in use. Running without one
// is fine; every setting has a default.
type ConfigFileCheck struct {
	ConfigPath string // Explicit path, or empty to search
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return "CONFIG" }

func (c *ConfigFileCheck) Run(context.Context) CheckResult {
	path, err := config.Find(c.ConfigPath)
	if err != nil {
		return result(c, StatusFail, errors.Message(err), "Check the --config path or run 'gpudash init'")
	}
	if path == "" {
		return result(c, StatusWarn, "No config file, using defaults",
			"Run 'gpudash init' to save the backend address")
	}
	return result(c, StatusPass, "Config file: "+path, "")
}

// ConfigSchemaCheck loads and validates the config, defaults included.
type ConfigSchemaCheck struct {
	ConfigPath string
}

func (c *ConfigSchemaCheck) Name() string     { return "config_schema" }
func (c *ConfigSchemaCheck) Category() string { return "CONFIG" }

func (c *ConfigSchemaCheck) Run(context.Context) CheckResult {
	cfg, _, err := config.LoadOrDefault(c.ConfigPath)
	if err != nil {
		return result(c, StatusFail, fmt.Sprintf("Failed to load config: %s", errors.Message(err)),
			"Check the YAML syntax in your config file")
	}

	if err := config.Validate(cfg); err != nil {
		return result(c, StatusFail, fmt.Sprintf("Schema error: %s", errors.Message(err)),
			"Fix the configuration errors in your .gpudash.yaml")
	}

	return result(c, StatusPass, "Backend: "+cfg.Server, "")
}

// NewConfigChecks creates all config-related checks.
func NewConfigChecks(configPath string) []Check {
	return []Check{
		&ConfigFileCheck{ConfigPath: configPath},
		&ConfigSchemaCheck{ConfigPath: configPath},
	}
}
