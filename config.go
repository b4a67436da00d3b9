package sentiment

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config holds the tool-wide settings: where datasets, caches and
// models live, plus logging and GUI server options.
type Config struct {
	DataDir  string `koanf:"data_dir"`
	CacheDir string `koanf:"cache_dir"`
	ModelDir string `koanf:"model_dir"`

	Log    LogConfig    `koanf:"log"`
	Server ServerConfig `koanf:"server"`
}

type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // console or json
}

type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// DefaultConfigPaths lists where a config file is searched, in order.
var DefaultConfigPaths = []string{
	"sentiment.yaml",
	"sentiment.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "SENTIMENT_CONFIG"

// envVarPaths maps environment variables onto config paths. The bare
// names are kept for compatibility with the original tool.
var envVarPaths = map[string]string{
	"SENTIMENT_DATA_DIR":    "data_dir",
	"SENTIMENT_CACHE_DIR":   "cache_dir",
	"SENTIMENT_MODEL_DIR":   "model_dir",
	"SENTIMENT_LOG_LEVEL":   "log.level",
	"SENTIMENT_LOG_FORMAT":  "log.format",
	"SENTIMENT_SERVER_ADDR": "server.addr",

	"DATA_DIR":  "data_dir",
	"CACHE_DIR": "cache_dir",
	"MODEL_DIR": "model_dir",
}

func defaultConfig() *Config {
	return &Config{
		DataDir:  "data",
		CacheDir: ".cache",
		ModelDir: "models",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			// Same default port as the GUI the original tool served.
			Addr: "localhost:7860",
		},
	}
}

// LoadConfig layers defaults, an optional YAML file and environment
// variables (highest priority). An empty path triggers the default
// config file search.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("", ".", func(name string) string {
		return envVarPaths[name]
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load config environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Validate checks settings that would otherwise fail far from their
// cause.
func (c *Config) Validate() error {
	if c.DataDir == "" || c.CacheDir == "" || c.ModelDir == "" {
		return fmt.Errorf("config: data, cache and model directories must not be empty")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}

// EnsureDirs creates the working directories if they do not exist.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.DataDir, c.CacheDir, c.ModelDir, c.TokenCacheDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// TokenCacheDir is where the tokenized-data cache lives.
func (c *Config) TokenCacheDir() string {
	return filepath.Join(c.CacheDir, "tokens")
}
