package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout.Std())
	assert.True(t, cfg.Server.Compress)

	assert.Equal(t, RuntimeScript, cfg.Page.Runtime)
	assert.Equal(t, "Student Records", cfg.Page.Title)

	assert.Equal(t, 4, cfg.Sandbox.PoolSize)
	assert.Equal(t, 5*time.Second, cfg.Sandbox.Timeout.Std())
	assert.Equal(t, 100, cfg.Sandbox.MaxActivations)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":               "9000",
		"HOST":               "127.0.0.1",
		"SHUTDOWN_TIMEOUT":   "3s",
		"COMPRESS":           "false",
		"PAGE_RUNTIME":       "wasm",
		"WASM_DIR":           "/srv/wasm",
		"PAGE_TITLE":         "Roster",
		"SANDBOX_POOL_SIZE":  "2",
		"SANDBOX_TIMEOUT":    "250ms",
		"MAX_ACTIVATIONS":    "7",
		"LOG_LEVEL":          "debug",
		"LOG_DEV":            "true",
		"RATE_LIMIT_RPS":     "500",
		"RATE_LIMIT_BURST":   "1000",
		"RATE_LIMIT_ENABLED": "false",
		"RATE_LIMIT_GLOBAL":  "true",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout.Std())
	assert.False(t, cfg.Server.Compress)
	assert.Equal(t, PageConfig{Runtime: RuntimeWasm, WasmDir: "/srv/wasm", Title: "Roster"}, cfg.Page)
	assert.Equal(t, SandboxConfig{PoolSize: 2, Timeout: Duration(250 * time.Millisecond), MaxActivations: 7}, cfg.Sandbox)
	assert.Equal(t, LogConfig{Level: "debug", Development: true}, cfg.Logging)
	assert.Equal(t, RateLimitConfig{RequestsPerSecond: 500, Burst: 1000, Enabled: false, Global: true}, cfg.RateLimit)
}

func TestLoadInvalidEnvironment(t *testing.T) {
	t.Setenv("SANDBOX_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)

	cfg := LoadOrDefault()
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileYAML(t *testing.T) {
	path := writeFile(t, "pagehook.yaml", `
server:
  port: "9100"
  shutdown_timeout: 2s
page:
  title: Enrolment
sandbox:
  timeout: 1s
rate_limit:
  enabled: false
`)

	cfg := Default()
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host, "missing keys keep their values")
	assert.Equal(t, 2*time.Second, cfg.Server.ShutdownTimeout.Std())
	assert.Equal(t, "Enrolment", cfg.Page.Title)
	assert.Equal(t, RuntimeScript, cfg.Page.Runtime)
	assert.Equal(t, time.Second, cfg.Sandbox.Timeout.Std())
	assert.Equal(t, 4, cfg.Sandbox.PoolSize)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, path, cfg.File)
}

func TestLoadFileTOML(t *testing.T) {
	path := writeFile(t, "pagehook.toml", `
[page]
runtime = "wasm"
wasm_dir = "./web"

[sandbox]
pool_size = 8
max_activations = 20

[logging]
level = "warn"
`)

	cfg := Default()
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, RuntimeWasm, cfg.Page.Runtime)
	assert.Equal(t, "./web", cfg.Page.WasmDir)
	assert.Equal(t, 8, cfg.Sandbox.PoolSize)
	assert.Equal(t, 20, cfg.Sandbox.MaxActivations)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileFromEnvironment(t *testing.T) {
	path := writeFile(t, "pagehook.yml", "page:\n  title: From File\n")
	t.Setenv("PAGE_TITLE", "From Env")
	t.Setenv("PAGEHOOK_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "From File", cfg.Page.Title, "file wins over environment")
}

func TestLoadFileErrors(t *testing.T) {
	cfg := Default()

	err := cfg.LoadFile(writeFile(t, "pagehook.json", "{}"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	err = cfg.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	err = cfg.LoadFile(writeFile(t, "bad.toml", "[page\nruntime ="))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{name: "default", mutate: func(*Config) {}},
		{
			name: "wasm with dir",
			mutate: func(c *Config) {
				c.Page.Runtime = RuntimeWasm
				c.Page.WasmDir = "web"
			},
		},
		{name: "wasm without dir", mutate: func(c *Config) { c.Page.Runtime = RuntimeWasm }, want: ErrMissingWasmDir},
		{name: "unknown runtime", mutate: func(c *Config) { c.Page.Runtime = "flash" }, want: ErrUnknownRuntime},
		{name: "empty pool", mutate: func(c *Config) { c.Sandbox.PoolSize = 0 }, want: ErrInvalidPool},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
