package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Auth.RegistrationEnabled)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Database.Path, cfg.Database.Path)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aquascope.yaml")
	data := []byte(`
server:
  addr: ":9090"
  cors_origins: ["https://reef.example.com"]
database:
  path: /data/reef.db
auth:
  token_ttl: 2h
logging:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "/data/reef.db", cfg.Database.Path)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, []string{"https://reef.example.com"}, cfg.Server.CORSOrigins)
	// Untouched sections keep defaults.
	assert.Equal(t, int64(10<<20), cfg.Uploads.MaxUploadBytes)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aquascope.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  path: from-file.db\n"), 0o644))

	t.Setenv("AQUASCOPE_DB", "from-env.db")
	t.Setenv("AQUASCOPE_LOG_LEVEL", "warn")
	t.Setenv("AQUASCOPE_CORS_ORIGINS", "http://localhost:5173, http://localhost:3000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.Database.Path)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.Server.CORSOrigins)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"EmptyAddr", func(c *Config) { c.Server.Addr = "" }},
		{"EmptyDBPath", func(c *Config) { c.Database.Path = "" }},
		{"ZeroTokenTTL", func(c *Config) { c.Auth.TokenTTL = 0 }},
		{"BadLogLevel", func(c *Config) { c.Logging.Level = "loud" }},
		{"ZeroUploadCap", func(c *Config) { c.Uploads.MaxUploadBytes = 0 }},
		{"ZeroRatioWindow", func(c *Config) { c.Chemistry.RatioPairWindow = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestAllowedExtension(t *testing.T) {
	u := DefaultConfig().Uploads
	assert.True(t, u.AllowedExtension("jpg"))
	assert.True(t, u.AllowedExtension(".JPG"))
	assert.True(t, u.AllowedExtension("png"))
	assert.False(t, u.AllowedExtension("exe"))
	assert.False(t, u.AllowedExtension(""))
}
