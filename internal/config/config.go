// Package config loads service settings from an optional YAML file and the
// environment, and opens the configured storage backend.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dialin/internal/database"
	"dialin/internal/database/boltstore"
	"dialin/internal/database/sqlitestore"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const maxConfigFileSize = 1 << 20

// Storage backends.
const (
	StorageBolt   = "bolt"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// ErrUnknownStorage is returned for a storage kind other than bolt, sqlite
// or memory.
var ErrUnknownStorage = errors.New("unknown storage backend")

// ErrInvalidPort is returned when the port is not a number in 1-65535.
var ErrInvalidPort = errors.New("invalid port")

// Config holds the service settings.
type Config struct {
	Port    string `koanf:"port"`
	DBPath  string `koanf:"db_path"`
	Storage string `koanf:"storage"`
	// StaticDir holds the web client.
	StaticDir string `koanf:"static_dir"`
	// AssetOrigin, when set, is where the offline cache fetches assets from
	// instead of StaticDir.
	AssetOrigin     string        `koanf:"asset_origin"`
	Tracing         bool          `koanf:"tracing"`
	MetricsInterval time.Duration `koanf:"metrics_interval"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Port:            "18920",
		DBPath:          DefaultDBPath(),
		Storage:         StorageBolt,
		StaticDir:       "static",
		MetricsInterval: 30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// DefaultDBPath is $XDG_DATA_HOME/dialin/dialin.db, falling back to
// ~/.local/share and then the working directory.
func DefaultDBPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "dialin.db"
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "dialin", "dialin.db")
}

// DefaultConfigPath is ~/.config/dialin/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "dialin", "config.yaml")
}

// envKey maps environment variables to config keys:
//
//	PORT             -> port
//	METRICS_INTERVAL -> metrics_interval
//	DIALIN_DB_PATH   -> db_path
//
// Anything else is ignored.
func envKey(s string) string {
	switch s {
	case "PORT", "METRICS_INTERVAL":
		return strings.ToLower(s)
	}
	if rest, ok := strings.CutPrefix(s, "DIALIN_"); ok {
		return strings.ToLower(rest)
	}
	return ""
}

// Load reads defaults, then the YAML file at path if it exists, then the
// environment. An empty path skips the file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		if content != nil {
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}
	return io.ReadAll(f)
}

// Validate checks the storage kind, port and intervals.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageBolt, StorageSQLite, StorageMemory:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorage, c.Storage)
	}
	if n, err := strconv.Atoi(c.Port); err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("%w: %q", ErrInvalidPort, c.Port)
	}
	if c.MetricsInterval <= 0 {
		return fmt.Errorf("metrics_interval must be positive, got %s", c.MetricsInterval)
	}
	return nil
}

// OpenStore opens the key/value store for kind at path.
func OpenStore(kind, path string) (database.Store, error) {
	switch kind {
	case StorageBolt, "":
		store, err := boltstore.Open(boltstore.Options{Path: path})
		if err != nil {
			return nil, err
		}
		return store, nil
	case StorageSQLite:
		store, err := sqlitestore.Open(path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StorageMemory:
		return database.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStorage, kind)
}

// OpenStore opens the configured store.
func (c *Config) OpenStore() (database.Store, error) {
	return OpenStore(c.Storage, c.DBPath)
}
