package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/basicbundles/internal/assets"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ManifestPaths []string          // .hcl, .yaml, .yml, .json, .jsonc files or directories
	Variables     map[string]string // HCL variable overrides
	ContentRoot   string            // directory "~/" maps to
	BasePath      string            // URL prefix assets are served under

	Addr            string
	HealthcheckPort int

	Mode   string // individual or bundled
	Flavor string // standard or minified

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.ManifestPaths) == 0 {
		return nil, errors.New("at least one manifest path is required")
	}
	if cfg.ContentRoot == "" {
		cfg.ContentRoot = "."
	}
	if cfg.BasePath == "" {
		cfg.BasePath = "/"
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.HealthcheckPort < 0 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}
	if cfg.Mode == "" {
		cfg.Mode = assets.Individual.String()
	}
	if _, err := assets.ParseRenderMode(cfg.Mode); err != nil {
		return nil, err
	}
	if cfg.Flavor == "" {
		cfg.Flavor = assets.Standard.String()
	}
	if _, err := assets.ParseFlavor(cfg.Flavor); err != nil {
		return nil, err
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, errors.New("invalid log-format: must be 'text' or 'json'")
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return nil, errors.New("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	return &cfg, nil
}
