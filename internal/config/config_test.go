package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, DefaultBaseURL, cfg.Console.BaseURL)
	assert.Equal(t, 24, cfg.Console.MetricsHours)
	assert.Equal(t, 60*time.Second, cfg.Console.PollEvery())
	assert.Equal(t, time.Duration(0), cfg.Console.RequestTimeout())
	assert.False(t, cfg.Console.StaleGuard)
	assert.Equal(t, 18790, cfg.Server.Port)
	assert.Equal(t, "loopback", cfg.Server.Bind)
	assert.True(t, cfg.Server.SeedEnabled())
	assert.Equal(t, "none", cfg.LLM.Provider)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.Console.BaseURL)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
console:
  baseUrl: https://admin.example.com
  token: ${TEST_AGENTDECK_TOKEN}
  pollInterval: 30s
  metricsHours: 48
  timeout: 15s
  staleGuard: true
server:
  port: 9999
  bind: lan
  seed: false
llm:
  provider: openai
  apiKey: sk-test
  model: gpt-4o
logging:
  level: debug
  consoleStyle: json
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("TEST_AGENTDECK_TOKEN", "secret-token")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://admin.example.com", cfg.Console.BaseURL)
	assert.Equal(t, "secret-token", cfg.Console.Token)
	assert.Equal(t, 30*time.Second, cfg.Console.PollEvery())
	assert.Equal(t, 15*time.Second, cfg.Console.RequestTimeout())
	assert.Equal(t, 48, cfg.Console.MetricsHours)
	assert.True(t, cfg.Console.StaleGuard)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "lan", cfg.Server.Bind)
	assert.False(t, cfg.Server.SeedEnabled())
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 0.0006, cfg.LLM.CostPer1kTokens)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.ConsoleStyle)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{invalid yaml"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	var ce *ConfigError
	assert.ErrorAs(t, err, &ce)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("AGENTDECK_BASE_URL", "http://10.0.0.5:8080")
	t.Setenv("AGENTDECK_SERVER_PORT", "12345")
	t.Setenv("AGENTDECK_LOG_LEVEL", "TRACE")

	cfg, err := Load("/nonexistent/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:8080", cfg.Console.BaseURL)
	assert.Equal(t, 12345, cfg.Server.Port)
	assert.Equal(t, "trace", cfg.Logging.Level)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("AGENTDECK_TEST_DOTENV=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("AGENTDECK_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(envPath))
	assert.Equal(t, "from-file", os.Getenv("AGENTDECK_TEST_DOTENV"))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestLoadDotEnvKeepsExisting(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("AGENTDECK_TEST_KEEP=from-file\n"), 0o600))
	t.Setenv("AGENTDECK_TEST_KEEP", "from-shell")

	require.NoError(t, LoadDotEnv(envPath))
	assert.Equal(t, "from-shell", os.Getenv("AGENTDECK_TEST_KEEP"))
}

func TestPollEveryInvalidFallsBack(t *testing.T) {
	c := ConsoleConfig{PollInterval: "soon"}
	assert.Equal(t, DefaultPollInterval, c.PollEvery())
	c.PollInterval = "-5s"
	assert.Equal(t, DefaultPollInterval, c.PollEvery())
}

func TestLoadRawAndSaveRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	raw := map[string]any{
		"console": map[string]any{"baseUrl": "http://localhost:3000"},
	}
	require.NoError(t, SaveRaw(path, raw))

	loaded, err := LoadRaw(path)
	require.NoError(t, err)

	val, ok := GetValueAtPath(loaded, []string{"console", "baseUrl"})
	assert.True(t, ok)
	assert.Equal(t, "http://localhost:3000", val)
}

func TestLoadRawMissing(t *testing.T) {
	raw, err := LoadRaw(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Empty(t, raw)
}
