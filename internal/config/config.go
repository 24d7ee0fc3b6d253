package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Env holds settings read from the process environment.
type Env struct {
	DBConnection string `env:"SNAPRISE_DB_CONNECTION"`
	Debug        bool   `env:"SNAPRISE_DEBUG" envDefault:"false"`
	RiddlePack   string `env:"SNAPRISE_RIDDLE_PACK"`
	ConfigDir    string `env:"SNAPRISE_CONFIG_DIR"`
}

// Load parses the SNAPRISE_* environment variables.
func Load() (Env, error) {
	cfg, err := env.ParseAs[Env]()
	if err != nil {
		return Env{}, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.RiddlePack != "" {
		cfg.RiddlePack, err = ExpandPath(cfg.RiddlePack)
		if err != nil {
			return Env{}, err
		}
	}
	return cfg, nil
}

// IsPostgres reports whether a config value is a PostgreSQL connection string.
func IsPostgres(conn string) bool {
	return strings.HasPrefix(conn, "postgres://") ||
		strings.HasPrefix(conn, "postgresql://") ||
		strings.Contains(conn, "host=")
}

// ExpandPath resolves a leading "~" to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// ConfigDirFor picks the directory holding logs and backups. An explicit
// SNAPRISE_CONFIG_DIR wins; otherwise the SQLite database's directory is
// used, falling back to the user config dir for PostgreSQL setups.
func (e Env) ConfigDirFor(storePath string) (string, error) {
	if e.ConfigDir != "" {
		return ExpandPath(e.ConfigDir)
	}
	if storePath != "" && !IsPostgres(storePath) {
		return filepath.Dir(storePath), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config directory: %w", err)
	}
	return filepath.Join(dir, "snaprise"), nil
}
