package schema

import "errors"

// ServiceConfig defines defaults and limits for the relay and for client
// surfaces.
type ServiceConfig struct {
	// Addr is the listen address of the relay HTTP endpoint.
	Addr string
	// HistoryCap bounds the relay history log used for late-joiner replay.
	HistoryCap int
	// SurfaceWidth and SurfaceHeight fix the raster surface dimensions for
	// a surface instance's lifetime.
	SurfaceWidth  int
	SurfaceHeight int
}

const (
	// DefaultHistoryCap bounds the relay history log.
	DefaultHistoryCap = 200
	// DefaultAddr is the relay listen address.
	DefaultAddr = ":8667"
	// DefaultSurfaceWidth is the default raster surface width in pixels.
	DefaultSurfaceWidth = 800
	// DefaultSurfaceHeight is the default raster surface height in pixels.
	DefaultSurfaceHeight = 600
)

// NormalizeServiceConfig applies defaults and validates the config.
func NormalizeServiceConfig(cfg ServiceConfig) (ServiceConfig, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.HistoryCap <= 0 {
		cfg.HistoryCap = DefaultHistoryCap
	}
	if cfg.SurfaceWidth <= 0 {
		cfg.SurfaceWidth = DefaultSurfaceWidth
	}
	if cfg.SurfaceHeight <= 0 {
		cfg.SurfaceHeight = DefaultSurfaceHeight
	}
	if cfg.SurfaceWidth > 8192 || cfg.SurfaceHeight > 8192 {
		return ServiceConfig{}, errors.New("surface dimensions exceed 8192")
	}
	return cfg, nil
}
