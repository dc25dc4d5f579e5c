package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"HTTP_PORT", "GRPC_PORT", "DATABASE_PATH", "JWT_SECRET",
	"TOKEN_TTL", "PAGE_SIZE", "CACHE_MAX_COST", "CORS_ORIGINS",
}

// clearEnv убирает переменные на время теста и после него
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		old, ok := os.LookupEnv(key)
		os.Unsetenv(key)
		t.Cleanup(func() {
			if ok {
				os.Setenv(key, old)
			} else {
				os.Unsetenv(key)
			}
		})
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "8081", cfg.GRPCPort)
	assert.Equal(t, "taskboard.db", cfg.DatabasePath)
	assert.Equal(t, 60*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoadYAMLOverride(t *testing.T) {
	clearEnv(t)

	path := writeFile(t, "taskboard.yaml", `
http_port: "9090"
token_ttl: 30m
page_size: 25
cors_origins:
  - http://example.com
`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, []string{"http://example.com"}, cfg.CORSOrigins)
	// Остальное по умолчанию
	assert.Equal(t, "8081", cfg.GRPCPort)
}

func TestEnvOverridesYAMLAndDotenv(t *testing.T) {
	clearEnv(t)

	yamlPath := writeFile(t, "taskboard.yaml", "http_port: \"9090\"\npage_size: 25\n")
	envPath := writeFile(t, ".env", "PAGE_SIZE=30\nJWT_SECRET=from-dotenv\nGRPC_PORT=7000\n")

	t.Setenv("GRPC_PORT", "7777")
	t.Setenv("TOKEN_TTL", "15")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := LoadFrom(yamlPath, envPath)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, 30, cfg.PageSize)
	assert.Equal(t, "from-dotenv", cfg.JWTSecret)
	assert.Equal(t, "7777", cfg.GRPCPort)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "пустой порт", mutate: func(c *Config) { c.HTTPPort = "" }},
		{name: "нулевой TTL", mutate: func(c *Config) { c.TokenTTL = 0 }},
		{name: "размер страницы 0", mutate: func(c *Config) { c.PageSize = 0 }},
		{name: "размер страницы больше 500", mutate: func(c *Config) { c.PageSize = 501 }},
		{name: "пустой путь к базе", mutate: func(c *Config) { c.DatabasePath = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			assert.Error(t, validate(&cfg))
		})
	}

	cfg := Defaults()
	assert.NoError(t, validate(&cfg))
}

func TestLoadYAMLInvalid(t *testing.T) {
	clearEnv(t)

	path := writeFile(t, "bad.yaml", "page_size: [oops")
	_, err := LoadFrom(path)
	assert.Error(t, err)
}
