package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := NewAppConfig()

	assert.Equal(t, ":14550", c.TelemetryAddr())
	assert.Equal(t, ":9001", c.CommandAddr())
	assert.Equal(t, 1024, c.TelemetryBufferSize())
	assert.Equal(t, 1024, c.CommandBufferSize())
	assert.Equal(t, 0, c.CommandMaxConns())
	assert.Equal(t, "new-backend-event", c.EventName())
	assert.Equal(t, slog.LevelInfo, c.LogLevel())
	assert.Empty(t, c.LogFile())
}

func TestLoad(t *testing.T) {
	f, err := os.CreateTemp("", "mchub_test*.yml")
	require.NoError(t, err)

	defer os.Remove(f.Name())

	fmt.Fprint(f, "---\ncommand:\n    addr: \":9100\"\n    max_conns: 5\nlog:\n    level: debug\n")
	f.Close()

	c := NewAppConfig()
	ok, err := c.Load(f.Name())
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, ":9100", c.CommandAddr())
	assert.Equal(t, 5, c.CommandMaxConns())
	assert.Equal(t, ":14550", c.TelemetryAddr())
	assert.Equal(t, slog.LevelDebug, c.LogLevel())
}

func TestLoadMissing(t *testing.T) {
	c := NewAppConfig()

	ok, err := c.Load(filepath.Join(t.TempDir(), "none.yml"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.Load("")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadBroken(t *testing.T) {
	name := filepath.Join(t.TempDir(), "broken.yml")
	require.NoError(t, os.WriteFile(name, []byte("command: [\n"), 0o600))

	_, err := NewAppConfig().Load(name)
	require.Error(t, err)
}

func TestEnv(t *testing.T) {
	t.Setenv("MCHUB_TELEMETRY_ADDR", "127.0.0.1:15000")
	t.Setenv("MCHUB_LOG_LEVEL", "warn")

	c := NewAppConfig()

	assert.Equal(t, "127.0.0.1:15000", c.TelemetryAddr())
	assert.Equal(t, slog.LevelWarn, c.LogLevel())
}

func TestBadLevel(t *testing.T) {
	c := NewAppConfig()
	c.Set("log.level", "loud")

	assert.Equal(t, slog.LevelInfo, c.LogLevel())
}
