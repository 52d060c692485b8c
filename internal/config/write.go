package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rileyhilliard/gpudash/internal/errors"
	"gopkg.in/yaml.v3"
)

const configHeader = `# gpudash configuration
# Run 'gpudash' to open the fleet monitor, 'gpudash doctor' to check connectivity.
# Any key can be overridden with a GPUDASH_ environment variable (GPUDASH_SERVER, ...).

`

// Marshal renders cfg as YAML with the standard header comment.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate config",
			"This shouldn't happen - please report this bug")
	}
	return append([]byte(configHeader), data...), nil
}

// Write saves cfg to path, creating parent directories as needed.
// An existing file is only replaced when overwrite is set.
func Write(path string, cfg *Config, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Config file already exists: %s", path),
			"Use --force to overwrite")
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	content, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Failed to create config directory: %s", dir),
				"Check directory permissions")
		}
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", path),
			"Check directory permissions")
	}
	return nil
}

// GlobalPath returns ~/.config/gpudash/config.yaml.
func GlobalPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine home directory",
			"Set $HOME or pass an explicit path")
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile), nil
}
