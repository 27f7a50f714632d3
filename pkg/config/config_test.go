package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	errs "github.com/matzehuels/dungeonbuilder/pkg/errors"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load(missing) = %+v, want defaults", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := Default()
	cfg.HistoryLimit = 10
	cfg.Store.Backend = StoreSQLite
	cfg.Store.SQLitePath = "/tmp/layouts.db"
	cfg.Cache.Backend = CacheNone
	cfg.Validation.NeighborThreshold = 2.5

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != cfg {
		t.Errorf("round trip = %+v, want %+v", got, cfg)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "history_limit = 5\n\n[cache]\nbackend = \"redis\"\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HistoryLimit != 5 || cfg.Cache.Backend != CacheRedis {
		t.Errorf("explicit values not applied: %+v", cfg)
	}
	if cfg.Store.Backend != StoreFile || cfg.Cache.TTL != "24h" || cfg.Server.Addr != ":8080" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid toml", "history_limit = ["},
		{"unknown key", "histroy_limit = 5"},
		{"unknown backend", "[store]\nbackend = \"postgres\""},
		{"bad ttl", "[cache]\nttl = \"soon\""},
		{"negative limit", "history_limit = -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load succeeded")
			}
			if !errs.Is(err, errs.ErrCodeInvalidConfig) {
				t.Errorf("error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestCacheTTL(t *testing.T) {
	cfg := Default()
	if d, _ := cfg.CacheTTL(); d != 24*time.Hour {
		t.Errorf("CacheTTL() = %v", d)
	}
	cfg.Cache.TTL = ""
	if d, err := cfg.CacheTTL(); d != 0 || err != nil {
		t.Errorf("empty ttl = %v, %v", d, err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvStore, StoreMongo)
	t.Setenv(EnvMongoURI, "mongodb://db:27017")
	t.Setenv(EnvHistoryLimit, "7")
	t.Setenv(EnvRedisAddr, "")

	cfg := Default()
	cfg.ApplyEnv()
	if cfg.Store.Backend != StoreMongo || cfg.Store.MongoURI != "mongodb://db:27017" || cfg.HistoryLimit != 7 {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.Cache.RedisAddr != Default().Cache.RedisAddr {
		t.Error("empty env var should not override")
	}
}

func TestXDGPaths(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)
	t.Setenv("XDG_CACHE_HOME", base)
	t.Setenv("XDG_DATA_HOME", base)

	path, err := DefaultPath()
	if err != nil || path != filepath.Join(base, AppName, "config.toml") {
		t.Errorf("DefaultPath() = %q, %v", path, err)
	}
	if dir, _ := CacheDir(); dir != filepath.Join(base, AppName) {
		t.Errorf("CacheDir() = %q", dir)
	}
	if dir, _ := DataDir(); dir != filepath.Join(base, AppName) {
		t.Errorf("DataDir() = %q", dir)
	}
}
