package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./config.yaml"

// Load reads configuration with priority ENV > YAML > env-default tags,
// normalizes it and validates it.
//
// The YAML file is CONFIG_PATH, or ./config.yaml when CONFIG_PATH is unset.
// A missing default file is not an error; a missing explicit one is.
func Load() (*Config, error) {
	var cfg Config

	path, explicit := configPath()
	if err := read(path, explicit, &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

func configPath() (string, bool) {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p, true
	}
	return defaultConfigPath, false
}

func read(path string, explicit bool, cfg *Config) error {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return fmt.Errorf("config: read %s: %w", path, err)
		}
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("config: file %s: %w", path, err)
	default:
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return fmt.Errorf("config: read env: %w", err)
		}
	}
	return nil
}

// normalize trims operator-supplied strings and cleans export directories.
func (c *Config) normalize() {
	c.Auth.JWTIssuer = strings.TrimSpace(c.Auth.JWTIssuer)
	c.Export.DefaultDeckName = strings.TrimSpace(c.Export.DefaultDeckName)
	c.Export.OutputDir = cleanDir(c.Export.OutputDir)
	c.Export.TempDir = cleanDir(c.Export.TempDir)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
}

// cleanDir returns "" for a blank path so an unset TempDir keeps meaning
// "use the OS default".
func cleanDir(dir string) string {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return ""
	}
	return filepath.Clean(dir)
}
