package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// DefaultServer is the backend address used when nothing else is configured.
const DefaultServer = "http://localhost:8000"

// Config represents the complete .gpudash.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// Server is the base URL of the GPU backend.
	Server string `yaml:"server" mapstructure:"server"`

	// Timeout bounds a single host-list, status, or process request.
	// The backend itself waits up to 30s on SSH, so keep this above that.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// TransferTimeout bounds an upload or download. Zero means no limit.
	TransferTimeout time.Duration `yaml:"transfer_timeout" mapstructure:"transfer_timeout"`

	Endpoints EndpointsConfig `yaml:"endpoints" mapstructure:"endpoints"`

	// DownloadDir is where downloaded files are saved.
	DownloadDir string `yaml:"download_dir" mapstructure:"download_dir"`

	// SSHConfig and KnownHosts are only read by 'gpudash doctor' to compare
	// the local SSH setup with what the backend reports.
	SSHConfig  string `yaml:"ssh_config" mapstructure:"ssh_config"`
	KnownHosts string `yaml:"known_hosts" mapstructure:"known_hosts"`

	Output OutputConfig `yaml:"output" mapstructure:"output"`
}

// EndpointsConfig holds the backend route paths.
type EndpointsConfig struct {
	Servers   string `yaml:"servers" mapstructure:"servers"`
	Status    string `yaml:"status" mapstructure:"status"`
	Processes string `yaml:"processes" mapstructure:"processes"`
	Upload    string `yaml:"upload" mapstructure:"upload"`
	Download  string `yaml:"download" mapstructure:"download"`
}

// OutputConfig controls terminal output formatting.
type OutputConfig struct {
	// Color mode: "auto", "always", or "never".
	// "auto" disables color when output is piped.
	Color string `yaml:"color" mapstructure:"color"`
}

// DefaultEndpoints returns the stock backend routes.
func DefaultEndpoints() EndpointsConfig {
	return EndpointsConfig{
		Servers:   "/servers-list",
		Status:    "/status",
		Processes: "/processes",
		Upload:    "/upload",
		Download:  "/download",
	}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:         CurrentConfigVersion,
		Server:          DefaultServer,
		Timeout:         45 * time.Second,
		TransferTimeout: 0,
		Endpoints:       DefaultEndpoints(),
		DownloadDir:     ".",
		SSHConfig:       "~/.ssh/config",
		KnownHosts:      "~/.ssh/known_hosts",
		Output: OutputConfig{
			Color: "auto",
		},
	}
}
