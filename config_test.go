package sentiment

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.DataDir != "data" || cfg.CacheDir != ".cache" || cfg.ModelDir != "models" {
		t.Errorf("directory defaults = %s / %s / %s", cfg.DataDir, cfg.CacheDir, cfg.ModelDir)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "console" {
		t.Errorf("log defaults = %s / %s", cfg.Log.Level, cfg.Log.Format)
	}
	if cfg.Server.Addr != "localhost:7860" {
		t.Errorf("server default addr = %s", cfg.Server.Addr)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sentiment.yaml")
	content := `data_dir: /srv/data
log:
  level: debug
server:
  addr: ":8080"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("fixture write failed: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.DataDir != "/srv/data" {
		t.Errorf("data_dir = %s, want /srv/data", cfg.DataDir)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %s, want debug", cfg.Log.Level)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("server addr = %s, want :8080", cfg.Server.Addr)
	}
	// Untouched keys keep their defaults.
	if cfg.ModelDir != "models" {
		t.Errorf("model_dir = %s, want models", cfg.ModelDir)
	}
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("SENTIMENT_MODEL_DIR", "/srv/models")
	t.Setenv("SENTIMENT_LOG_FORMAT", "json")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.ModelDir != "/srv/models" {
		t.Errorf("model_dir = %s, want /srv/models", cfg.ModelDir)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log format = %s, want json", cfg.Log.Format)
	}
}

func TestLoadConfigLegacyEnv(t *testing.T) {
	t.Setenv("DATA_DIR", "/legacy/data")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.DataDir != "/legacy/data" {
		t.Errorf("data_dir = %s, want /legacy/data", cfg.DataDir)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sentiment.yaml")
	if err := os.WriteFile(path, []byte("cache_dir: /from/file\n"), 0o644); err != nil {
		t.Fatalf("fixture write failed: %v", err)
	}
	t.Setenv("SENTIMENT_CACHE_DIR", "/from/env")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.CacheDir != "/from/env" {
		t.Errorf("cache_dir = %s, environment should win over the file", cfg.CacheDir)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		mutate func(*Config)
		desc   string
	}{
		{func(c *Config) { c.DataDir = "" }, "empty data dir"},
		{func(c *Config) { c.Log.Level = "verbose" }, "unknown log level"},
		{func(c *Config) { c.Log.Format = "xml" }, "unknown log format"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}

	if err := defaultConfig().Validate(); err != nil {
		t.Errorf("defaults failed validation: %v", err)
	}
}

func TestEnsureDirs(t *testing.T) {
	root := t.TempDir()
	cfg := &Config{
		DataDir:  filepath.Join(root, "data"),
		CacheDir: filepath.Join(root, "cache"),
		ModelDir: filepath.Join(root, "models"),
	}
	if err := cfg.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}

	for _, dir := range []string{cfg.DataDir, cfg.CacheDir, cfg.ModelDir, cfg.TokenCacheDir()} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("%s was not created as a directory: %v", dir, err)
		}
	}
}
