package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/cuemby/cybershield/pkg/kv"
	"github.com/cuemby/cybershield/pkg/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultQuotaBytes matches the local storage budget of a typical browser
const DefaultQuotaBytes = 5 << 20

// DefaultEnvFile is the dotenv file read from the working directory
const DefaultEnvFile = ".env"

// Config holds shieldctl settings. Values come from the defaults, then the
// YAML file, then the environment (a .env file included).
type Config struct {
	Backend     string `yaml:"backend" env:"CYBERSHIELD_BACKEND"`
	DataDir     string `yaml:"data_dir" env:"CYBERSHIELD_DATA_DIR"`
	RedisURL    string `yaml:"redis_url" env:"CYBERSHIELD_REDIS_URL"`
	QuotaBytes  int64  `yaml:"quota_bytes" env:"CYBERSHIELD_QUOTA_BYTES"`
	LogLevel    string `yaml:"log_level" env:"CYBERSHIELD_LOG_LEVEL"`
	LogJSON     bool   `yaml:"log_json" env:"CYBERSHIELD_LOG_JSON"`
	MetricsAddr string `yaml:"metrics_addr" env:"CYBERSHIELD_METRICS_ADDR"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Backend:     string(kv.KindBolt),
		DataDir:     "./cybershield-data",
		QuotaBytes:  DefaultQuotaBytes,
		LogLevel:    string(log.InfoLevel),
		MetricsAddr: "127.0.0.1:9090",
	}
}

// Load reads the YAML file at path (skipped when path is empty), then
// .env from the working directory, then the process environment.
func Load(path string) (*Config, error) {
	return LoadFiles(path, DefaultEnvFile)
}

// LoadFiles is Load with an explicit dotenv file. A missing dotenv file is
// not an error; a missing config file is.
func LoadFiles(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration can open a backend
func (c *Config) Validate() error {
	switch kv.Kind(c.Backend) {
	case kv.KindMemory, kv.KindBolt, kv.KindSQLite:
	case kv.KindRedis:
		if c.RedisURL == "" {
			return errors.New("redis backend requires redis_url")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.QuotaBytes < 0 {
		return fmt.Errorf("quota_bytes must not be negative, got %d", c.QuotaBytes)
	}
	switch log.Level(c.LogLevel) {
	case log.DebugLevel, log.InfoLevel, log.WarnLevel, log.ErrorLevel:
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// KVOptions returns the backend options for kv.Open
func (c *Config) KVOptions() kv.Options {
	return kv.Options{
		Kind:       kv.Kind(c.Backend),
		DataDir:    c.DataDir,
		RedisURL:   c.RedisURL,
		QuotaBytes: c.QuotaBytes,
	}
}

// LogConfig returns the logger settings
func (c *Config) LogConfig() log.Config {
	return log.Config{
		Level:      log.Level(c.LogLevel),
		JSONOutput: c.LogJSON,
	}
}
