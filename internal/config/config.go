// Package config loads application settings from viper into explicit structs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/settle-up/internal/common"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// Default locations, expanded with ExpandPath.
const (
	DefaultSQLitePath = "$HOME/.local/share/settle/settle.db"
	DefaultJSONDir    = "$HOME/.local/share/settle/data"
	DefaultReportDir  = "."
)

// Config is the resolved application configuration.
type Config struct {
	Storage  StorageConfig
	Logging  LoggingConfig
	Report   ReportConfig
	Currency string
}

// StorageConfig selects and locates the ledger store.
type StorageConfig struct {
	Backend string // sqlite or json
	Path    string // database file for sqlite, data directory for json
}

// LoggingConfig controls the global logger.
type LoggingConfig struct {
	Level  string
	Format string
}

// ReportConfig controls file exports.
type ReportConfig struct {
	Dir string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", BackendSQLite)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("report.dir", DefaultReportDir)
	v.SetDefault("currency", "$")
}

// Load reads the configuration from v and validates it.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	cfg := Config{
		Storage: StorageConfig{
			Backend: strings.ToLower(strings.TrimSpace(v.GetString("storage.backend"))),
			Path:    v.GetString("storage.path"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Report: ReportConfig{
			Dir: ExpandPath(v.GetString("report.dir")),
		},
		Currency: v.GetString("currency"),
	}

	switch cfg.Storage.Backend {
	case BackendSQLite:
		if cfg.Storage.Path == "" {
			cfg.Storage.Path = DefaultSQLitePath
		}
	case BackendJSON:
		if cfg.Storage.Path == "" {
			cfg.Storage.Path = DefaultJSONDir
		}
	default:
		return Config{}, fmt.Errorf("%w: unknown storage backend %q (use %s or %s)",
			common.ErrInvalidConfig, cfg.Storage.Backend, BackendSQLite, BackendJSON)
	}
	cfg.Storage.Path = ExpandPath(cfg.Storage.Path)

	if _, err := common.ParseLevel(cfg.Logging.Level); err != nil {
		return Config{}, err
	}
	switch cfg.Logging.Format {
	case "console", "json":
	default:
		return Config{}, fmt.Errorf("%w: log format %q", common.ErrInvalidConfig, cfg.Logging.Format)
	}

	return cfg, nil
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}
