package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}

	if c.Database.Enabled() && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters when database.dsn is set (got %d)", len(c.Auth.JWTSecret))
	}

	if err := c.Export.validate(); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	return nil
}

func (e *ExportConfig) validate() error {
	e.DefaultDeckName = strings.TrimSpace(e.DefaultDeckName)
	if e.DefaultDeckName == "" {
		return fmt.Errorf("default_deck_name must not be empty")
	}
	if e.MediaTimeout <= 0 {
		return fmt.Errorf("media_timeout must be > 0 (got %s)", e.MediaTimeout)
	}
	if e.MediaMaxBytes <= 0 {
		return fmt.Errorf("media_max_bytes must be > 0 (got %d)", e.MediaMaxBytes)
	}
	if e.MediaConcurrency < 1 {
		return fmt.Errorf("media_concurrency must be >= 1 (got %d)", e.MediaConcurrency)
	}
	if e.MaxItems < 1 {
		return fmt.Errorf("max_items must be >= 1 (got %d)", e.MaxItems)
	}
	if e.RateLimitPerMinute < 0 {
		return fmt.Errorf("rate_limit_per_minute must be >= 0 (got %d)", e.RateLimitPerMinute)
	}
	return nil
}
