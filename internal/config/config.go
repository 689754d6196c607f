// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers a YAML file and FRESHPOINT_* env vars on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DefaultUpstreamURL is the Paris open-data records endpoint for cool-spot
// amenities and activities.
const DefaultUpstreamURL = "https://opendata.paris.fr/api/explore/v2.1/catalog/datasets/ilots-de-fraicheur-equipements-activites/records"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address.
	Addr string `koanf:"addr"`

	// UpstreamURL is queried by GET /freshpoint/{id}.
	UpstreamURL string `koanf:"upstream_url"`

	// UpstreamLimit is the page size requested from the upstream API.
	UpstreamLimit int `koanf:"upstream_limit"`

	// UpstreamTimeout bounds one outbound fetch. Zero disables the timeout.
	UpstreamTimeout time.Duration `koanf:"upstream_timeout"`

	// StrictIndex turns an out-of-range id into 404 instead of {"data": null}.
	StrictIndex bool `koanf:"strict_index"`

	// PublicDir serves the site from disk instead of the embedded tree.
	PublicDir string `koanf:"public_dir"`

	// MaxBodyBytes caps POST bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// CORSAllowedOrigins lists origins accepted by the CORS middleware.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// MetricsEnabled turns request-path metric recording on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsRefreshInterval is the period of the process gauge updater.
	MetricsRefreshInterval time.Duration `koanf:"metrics_refresh_interval"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   "127.0.0.1:8070",
		UpstreamURL:            DefaultUpstreamURL,
		UpstreamLimit:          100,
		UpstreamTimeout:        0,
		StrictIndex:            true,
		PublicDir:              "",
		MaxBodyBytes:           1 << 20,
		CORSAllowedOrigins:     []string{"*"},
		ShutdownTimeout:        30 * time.Second,
		MetricsEnabled:         true,
		MetricsRefreshInterval: 10 * time.Second,
	}
}

// Validate checks that the configuration can run a server.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.UpstreamLimit <= 0:
		return fmt.Errorf("%w: upstream_limit must be positive, got %d", ErrInvalidConfig, c.UpstreamLimit)
	case c.UpstreamTimeout < 0:
		return fmt.Errorf("%w: upstream_timeout must not be negative", ErrInvalidConfig)
	case c.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	case c.MetricsRefreshInterval <= 0:
		return fmt.Errorf("%w: metrics_refresh_interval must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	u, err := url.Parse(c.UpstreamURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: upstream_url %q is not an absolute URL", ErrInvalidConfig, c.UpstreamURL)
	}
	return nil
}
