package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kciter/pegboard-sub000/pkg/board"
	"github.com/kciter/pegboard-sub000/pkg/place"
)

func TestLoadConfigDefaults(t *testing.T) {
	// Point the search paths somewhere empty so no real config leaks in.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Grid.Columns != 12 {
		t.Errorf("default columns = %d, want 12", cfg.Grid.Columns)
	}
	if cfg.Store.Backend != StoreBackendFile {
		t.Errorf("default backend = %q, want file", cfg.Store.Backend)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, configFileName)
	content := `
[grid]
columns = 8
rows = 6
cell_width = 32
cell_height = 32
gap = 2

[engine]
reflow = "smart-fill"
lasso = true

[store]
backend = "redis"
redis_addr = "redis.internal:6379"

[api]
listen = "0.0.0.0:9000"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Grid.Columns != 8 || cfg.Grid.Rows != 6 {
		t.Errorf("grid = %dx%d, want 8x6", cfg.Grid.Columns, cfg.Grid.Rows)
	}
	if cfg.Engine.Reflow != string(place.PolicySmartFill) {
		t.Errorf("reflow = %q", cfg.Engine.Reflow)
	}
	if cfg.Store.Backend != StoreBackendRedis || cfg.Store.RedisAddr != "redis.internal:6379" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.API.Listen != "0.0.0.0:9000" {
		t.Errorf("listen = %q", cfg.API.Listen)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Store.MongoDatabase == "" {
		t.Error("mongo database default was lost")
	}
}

func TestLoadConfigInvalidGrid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, configFileName)
	if err := os.WriteFile(path, []byte("[grid]\ncolumns = -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for negative columns")
	}
}

func TestEngineOptions(t *testing.T) {
	cfg := DefaultConfig()
	opts, err := cfg.EngineOptions()
	if err != nil {
		t.Fatalf("EngineOptions: %v", err)
	}
	if opts.Reflow != place.PolicyPushAway {
		t.Errorf("reflow = %q, want push-away", opts.Reflow)
	}
	if opts.SelectionMode != board.SelectSingle {
		t.Errorf("selection mode = %q, want single", opts.SelectionMode)
	}

	cfg.Engine.Reflow = "sideways"
	if _, err := cfg.EngineOptions(); err == nil || !strings.Contains(err.Error(), "sideways") {
		t.Fatalf("expected unknown policy error, got %v", err)
	}
}

func TestDataDirUsesXDG(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_DATA_HOME", base)

	dir, err := dataDir()
	if err != nil {
		t.Fatalf("dataDir: %v", err)
	}
	if dir != filepath.Join(base, appName) {
		t.Errorf("dataDir = %q", dir)
	}
}

func TestConfigDirDefaultsToHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")

	dir, err := configDir()
	if err != nil {
		t.Fatalf("configDir: %v", err)
	}
	home, _ := os.UserHomeDir()
	if !strings.HasPrefix(dir, home) {
		t.Errorf("configDir = %q, should be under home %q", dir, home)
	}
}
