package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cuemby/cybershield/pkg/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadFiles("", "")
	require.NoError(t, err)

	assert.Equal(t, "bolt", cfg.Backend)
	assert.Equal(t, int64(DefaultQuotaBytes), cfg.QuotaBytes)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogJSON)
}

func TestLoadLayers(t *testing.T) {
	path := writeFile(t, "cybershield.yaml", `
backend: sqlite
data_dir: /var/lib/cybershield
quota_bytes: 1024
log_level: debug
`)
	envFile := writeFile(t, ".env", "CYBERSHIELD_LOG_JSON=true\n")
	t.Cleanup(func() { _ = os.Unsetenv("CYBERSHIELD_LOG_JSON") })
	t.Setenv("CYBERSHIELD_QUOTA_BYTES", "2048")

	cfg, err := LoadFiles(path, envFile)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Backend)
	assert.Equal(t, "/var/lib/cybershield", cfg.DataDir)
	assert.Equal(t, int64(2048), cfg.QuotaBytes, "environment overrides the file")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogJSON, "dotenv values are applied")

	opts := cfg.KVOptions()
	assert.Equal(t, kv.KindSQLite, opts.Kind)
	assert.Equal(t, int64(2048), opts.QuotaBytes)
}

func TestMissingEnvFileIsIgnored(t *testing.T) {
	_, err := LoadFiles("", filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := LoadFiles(filepath.Join(t.TempDir(), "absent.yaml"), "")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "memory", mutate: func(c *Config) { c.Backend = "memory" }},
		{name: "redis without url", mutate: func(c *Config) { c.Backend = "redis" }, wantErr: true},
		{name: "redis with url", mutate: func(c *Config) {
			c.Backend = "redis"
			c.RedisURL = "redis://localhost:6379/0"
		}},
		{name: "unknown backend", mutate: func(c *Config) { c.Backend = "etcd" }, wantErr: true},
		{name: "negative quota", mutate: func(c *Config) { c.QuotaBytes = -1 }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
