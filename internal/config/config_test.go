package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: development
server:
  port: 9001
pdf:
  timeout: 5s
store:
  driver: redis
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.PDF.Timeout)
	assert.Equal(t, "redis", cfg.Store.Driver)
	assert.Equal(t, 30*time.Minute, cfg.JWT.Expiry)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "pdfapi:", cfg.Redis.KeyPrefix)
	assert.Equal(t, developmentJWTSecret, cfg.JWT.Secret)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "environment: production\n")
	t.Setenv("PDFAPI_JWT_SECRET", "s3cret")
	t.Setenv("PDFAPI_PORT", "8081")
	t.Setenv("PDFAPI_DATABASE_PASSWORD", "pw")
	t.Setenv("PDFAPI_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "pw", cfg.Database.Password)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadConfig_ProductionRequiresSecret(t *testing.T) {
	path := writeConfig(t, "environment: production\n")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt secret")
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Environment: "production",
			Server:      ServerConfig{Port: 8000, RequestTimeout: time.Second},
			Store:       StoreConfig{Driver: "memory"},
			JWT:         JWTConfig{Secret: "x", Expiry: time.Minute},
			PDF:         PDFConfig{Timeout: time.Second},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad driver", mutate: func(c *Config) { c.Store.Driver = "mongo" }, errMsg: "unknown store driver"},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, errMsg: "invalid server port"},
		{name: "zero pdf timeout", mutate: func(c *Config) { c.PDF.Timeout = 0 }, errMsg: "timeouts must be positive"},
		{name: "zero expiry", mutate: func(c *Config) { c.JWT.Expiry = 0 }, errMsg: "jwt expiry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", d.DSN())
}
