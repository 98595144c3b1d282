package appconfig

import (
	"os"
	"path/filepath"

	"pkt.systems/scrawl/schema"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int             `mapstructure:"config_version" yaml:"config_version"`
	Relay         RelayConfig     `mapstructure:"relay" yaml:"relay"`
	Surface       SurfaceConfig   `mapstructure:"surface" yaml:"surface"`
	Discovery     DiscoveryConfig `mapstructure:"discovery" yaml:"discovery"`
	Client        ClientConfig    `mapstructure:"client" yaml:"client"`
	Logging       LoggingConfig   `mapstructure:"logging" yaml:"logging"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// RelayConfig configures the relay server.
type RelayConfig struct {
	Addr       string `mapstructure:"addr" yaml:"addr"`
	HistoryCap int    `mapstructure:"history_cap" yaml:"history_cap"`
}

// SurfaceConfig sets the drawing surface dimensions in pixels.
type SurfaceConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// DiscoveryConfig controls mDNS announcement of the relay.
type DiscoveryConfig struct {
	Advertise bool `mapstructure:"advertise" yaml:"advertise"`
}

// ClientConfig configures the drawing client.
type ClientConfig struct {
	RelayURL  string `mapstructure:"relay_url" yaml:"relay_url"`
	ExportDir string `mapstructure:"export_dir" yaml:"export_dir"`
}

// LoggingConfig controls audit logging behavior.
type LoggingConfig struct {
	DisableAuditTrails bool `mapstructure:"disable_audit_trails" yaml:"disable_audit_trails"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Relay: RelayConfig{
			Addr:       schema.DefaultAddr,
			HistoryCap: schema.DefaultHistoryCap,
		},
		Surface: SurfaceConfig{
			Width:  schema.DefaultSurfaceWidth,
			Height: schema.DefaultSurfaceHeight,
		},
		Discovery: DiscoveryConfig{
			Advertise: true,
		},
		Client: ClientConfig{
			RelayURL:  "",
			ExportDir: filepath.Join(home, ".scrawl", "exports"),
		},
		Logging: LoggingConfig{
			DisableAuditTrails: false,
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".scrawl", "config.yaml"), nil
}
