// Package config loads and saves the dungeonbuilder configuration file.
//
// The file is TOML, normally at $XDG_CONFIG_HOME/dungeonbuilder/config.toml:
//
//	log_level = "info"
//	history_limit = 50
//
//	[store]
//	backend = "file"        # file, sqlite or mongo
//	dir = ""                # defaults to ~/.local/share/dungeonbuilder/layouts
//
//	[cache]
//	backend = "file"        # file, redis or none
//	ttl = "24h"
//
//	[validation]
//	neighbor_threshold = 1.0
//	world_bound = 1000.0
//
//	[server]
//	addr = ":8080"
//
// A missing file yields [Default]. Keys not listed above are rejected so
// typos do not silently fall back to defaults. A few settings can be
// overridden from the environment; see [Config.ApplyEnv].
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/dungeonbuilder/pkg/errors"
)

// AppName names the configuration, data and cache directories.
const AppName = "dungeonbuilder"

// Store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// =============================================================================
// Types
// =============================================================================

// Config is the full configuration file.
type Config struct {
	LogLevel     string `toml:"log_level"`
	HistoryLimit int    `toml:"history_limit"`

	Store      StoreConfig      `toml:"store"`
	Cache      CacheConfig      `toml:"cache"`
	Validation ValidationConfig `toml:"validation"`
	Server     ServerConfig     `toml:"server"`
}

// StoreConfig selects where named layouts are kept.
type StoreConfig struct {
	Backend         string `toml:"backend"`
	Dir             string `toml:"dir"`
	SQLitePath      string `toml:"sqlite_path"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// CacheConfig selects where validation reports are cached.
type CacheConfig struct {
	Backend   string `toml:"backend"`
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
	TTL       string `toml:"ttl"`
}

// ValidationConfig holds validator thresholds.
type ValidationConfig struct {
	NeighborThreshold float32 `toml:"neighbor_threshold"`
	WorldBound        float32 `toml:"world_bound"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:     "info",
		HistoryLimit: 50,
		Store: StoreConfig{
			Backend:         StoreFile,
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   AppName,
			MongoCollection: "layouts",
		},
		Cache: CacheConfig{
			Backend:   CacheFile,
			RedisAddr: "localhost:6379",
			TTL:       "24h",
		},
		Validation: ValidationConfig{
			NeighborThreshold: 1.0,
			WorldBound:        1000.0,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// =============================================================================
// Load / Save
// =============================================================================

// Load reads the file at path on top of [Default]. A missing file is not an
// error. Invalid TOML, unknown keys or bad values are.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errs.New(errs.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories as needed.
func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Validate checks enumerated and numeric settings.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case StoreFile, StoreSQLite, StoreMongo:
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}
	switch c.Cache.Backend {
	case CacheFile, CacheRedis, CacheNone:
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	if c.HistoryLimit < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "history_limit must not be negative")
	}
	if c.Validation.NeighborThreshold < 0 || c.Validation.WorldBound < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "validation thresholds must not be negative")
	}
	return nil
}

// CacheTTL parses the cache TTL. An empty value means entries never expire.
func (c Config) CacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0, errs.Wrap(errs.ErrCodeInvalidConfig, err, "invalid cache ttl %q", c.Cache.TTL)
	}
	return d, nil
}

// =============================================================================
// Environment
// =============================================================================

// Environment variables consulted by ApplyEnv.
const (
	EnvStore        = "DUNGEONBUILDER_STORE"
	EnvStoreDir     = "DUNGEONBUILDER_STORE_DIR"
	EnvCache        = "DUNGEONBUILDER_CACHE"
	EnvRedisAddr    = "DUNGEONBUILDER_REDIS_ADDR"
	EnvMongoURI     = "DUNGEONBUILDER_MONGO_URI"
	EnvHistoryLimit = "DUNGEONBUILDER_HISTORY_LIMIT"
	EnvServerAddr   = "DUNGEONBUILDER_ADDR"
)

// ApplyEnv overrides settings from the environment. Empty or unparsable
// variables leave the setting alone.
func (c *Config) ApplyEnv() {
	c.Store.Backend = getEnv(EnvStore, c.Store.Backend)
	c.Store.Dir = getEnv(EnvStoreDir, c.Store.Dir)
	c.Cache.Backend = getEnv(EnvCache, c.Cache.Backend)
	c.Cache.RedisAddr = getEnv(EnvRedisAddr, c.Cache.RedisAddr)
	c.Store.MongoURI = getEnv(EnvMongoURI, c.Store.MongoURI)
	c.HistoryLimit = getEnvAsInt(EnvHistoryLimit, c.HistoryLimit)
	c.Server.Addr = getEnv(EnvServerAddr, c.Server.Addr)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

// =============================================================================
// Paths
// =============================================================================

// DefaultPath returns the config file location using the XDG standard
// (~/.config/dungeonbuilder/config.toml).
func DefaultPath() (string, error) {
	dir, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DataDir returns the directory for stored layouts
// (~/.local/share/dungeonbuilder).
func DataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// CacheDir returns the cache directory (~/.cache/dungeonbuilder).
func CacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, AppName), nil
}
