package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armature-dev/armature/framework/config"
)

// clearEnv blanks every variable Load consults, so a value set in the
// developer's shell cannot bleed into assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_NAME", "APP_ENV", "APP_DEBUG",
		"SERVER_HOST", "SERVER_PORT", "SERVER_SHUTDOWN_TIMEOUT",
		"LOG_LEVEL", "LOG_FORMAT",
		"CONTAINER_DEFERRED_RESOLUTION", "CONTAINER_RETRY_DELAY", "CONTAINER_SWEEP_INTERVAL",
		"CONFIG_FILE",
	} {
		t.Setenv(key, "")
	}
}

// unsetEnv removes key for the duration of the test. t.Setenv registers
// the restore; the explicit Unsetenv makes the key truly absent, which
// matters for godotenv (it only fills in variables that do not exist).
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "armature", cfg.App.Name)
	assert.Equal(t, "local", cfg.App.Env)
	assert.True(t, cfg.App.Debug)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, ":8000", cfg.Server.Addr())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.True(t, cfg.Container.DeferredResolution)
	assert.Equal(t, 100*time.Millisecond, cfg.Container.RetryDelay)
	assert.Equal(t, 30*time.Second, cfg.Container.SweepInterval)
}

func TestLoadAppliesConfigFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "armature.yaml", `
app:
  name: widgets
  env: production
  debug: false
server:
  host: 10.0.0.5
  port: "9000"
  shutdown_timeout: 5s
log:
  level: debug
  format: json
container:
  deferred_resolution: false
  retry_delay: 250ms
  sweep_interval: 1m
`)
	t.Setenv("CONFIG_FILE", path)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "widgets", cfg.App.Name)
	assert.Equal(t, "production", cfg.App.Env)
	assert.False(t, cfg.App.Debug)
	assert.Equal(t, "10.0.0.5:9000", cfg.Server.Addr())
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Container.DeferredResolution)
	assert.Equal(t, 250*time.Millisecond, cfg.Container.RetryDelay)
	assert.Equal(t, time.Minute, cfg.Container.SweepInterval)
}

func TestLoadEnvironmentWinsOverFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "armature.yaml", `
app:
  name: widgets
server:
  port: "9000"
`)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("APP_NAME", "gadgets")
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("SERVER_SHUTDOWN_TIMEOUT", "2s")
	t.Setenv("CONTAINER_DEFERRED_RESOLUTION", "false")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "gadgets", cfg.App.Name)
	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Server.ShutdownTimeout)
	assert.False(t, cfg.Container.DeferredResolution)
}

func TestLoadReadsDotenvFile(t *testing.T) {
	clearEnv(t)
	unsetEnv(t, "APP_NAME")
	unsetEnv(t, "LOG_FORMAT")
	path := writeFile(t, ".env", "APP_NAME=dotenv-app\nLOG_FORMAT=json\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dotenv-app", cfg.App.Name)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadRejectsBadDurationInFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "armature.yaml", "server:\n  shutdown_timeout: banana\n")
	t.Setenv("CONFIG_FILE", path)

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.shutdown_timeout")
}

func TestLoadRejectsMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: reading")
}

func TestLoadIgnoresGarbageDurationInEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_SHUTDOWN_TIMEOUT", "soon")

	cfg, err := config.Load()
	require.NoError(t, err)

	// env helpers are forgiving: unparseable values fall back
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
}

func TestHelpers(t *testing.T) {
	t.Setenv("ARM_TEST_STR", "value")
	t.Setenv("ARM_TEST_INT", "42")
	t.Setenv("ARM_TEST_BAD_INT", "many")
	t.Setenv("ARM_TEST_BOOL", "true")

	assert.Equal(t, "value", config.Get("ARM_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", config.Get("ARM_TEST_MISSING", "fallback"))
	assert.Equal(t, 42, config.GetInt("ARM_TEST_INT", 7))
	assert.Equal(t, 7, config.GetInt("ARM_TEST_BAD_INT", 7))
	assert.True(t, config.GetBool("ARM_TEST_BOOL", false))
	assert.False(t, config.GetBool("ARM_TEST_MISSING", false))
}
