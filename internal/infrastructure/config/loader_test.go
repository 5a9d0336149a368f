package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-sse-broadcast/internal/infrastructure/logger"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 30*time.Second, cfg.Hub.HeartbeatInterval)
	assert.Equal(t, 5*time.Second, cfg.Hub.GeneratorInterval)
	assert.Equal(t, "AAPL", cfg.Hub.Symbol)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "stdout", cfg.Log.Output)
}

func TestLoadFrom_MissingFileIsIgnored(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.Server.Addr)
}

func TestLoadFrom_YAMLOverridesDefaults(t *testing.T) {
	path := writeYAML(t, `
server:
  addr: ":8080"
hub:
  heartbeat_interval: 10s
  generator_interval: 0s
  symbol: MSFT
log:
  level: debug
  format: json
`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Hub.HeartbeatInterval)
	assert.Zero(t, cfg.Hub.GeneratorInterval)
	assert.Equal(t, "MSFT", cfg.Hub.Symbol)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	// Untouched keys keep their defaults
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoadFrom_EnvOverridesYAML(t *testing.T) {
	path := writeYAML(t, `
server:
  addr: ":8080"
hub:
  heartbeat_interval: 10s
`)
	t.Setenv("SSE_SERVER_ADDR", ":9090")
	t.Setenv("SSE_HUB_HEARTBEAT_INTERVAL", "2s")
	t.Setenv("SSE_LOG_OUTPUT", "discard")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Hub.HeartbeatInterval)
	assert.Equal(t, "discard", cfg.Log.Output)
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	path := writeYAML(t, "server: [unterminated")

	_, err := LoadFrom(path)
	assert.ErrorContains(t, err, "config yaml")
}

func TestLoadFrom_InvalidEnv(t *testing.T) {
	t.Setenv("SSE_HUB_HEARTBEAT_INTERVAL", "soon")

	_, err := LoadFrom("")
	assert.ErrorContains(t, err, "config env")
}

func TestConfig_Validate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	cfg.Server.Addr = ""
	cfg.Hub.HeartbeatInterval = 0
	cfg.Hub.GeneratorInterval = -time.Second
	cfg.Log.Level = "verbose"
	cfg.Log.Output = "file"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"server.addr",
		"hub.heartbeat_interval",
		"hub.generator_interval",
		"log.level",
		"log.file_path",
	} {
		assert.ErrorContains(t, err, want)
	}
}

func TestLogConfig_LoggerConfig(t *testing.T) {
	cfg := Defaults().Log
	cfg.Level = "warn"
	cfg.Format = "json"

	lCfg, err := cfg.LoggerConfig()
	require.NoError(t, err)
	assert.Equal(t, logger.LevelWarn, lCfg.Level)
	assert.Equal(t, "json", lCfg.Format)
	assert.Equal(t, logger.ServiceName, lCfg.Fields["service"])

	cfg.Level = "loud"
	_, err = cfg.LoggerConfig()
	assert.Error(t, err)
}

func writeYAML(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
