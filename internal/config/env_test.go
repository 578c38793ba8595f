package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/wbsgantt/internal/wbs"
)

func TestLoadEnv_Defaults(t *testing.T) {
	t.Setenv("WBS_API_KEY", "secret")

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "local", env.Env)
	assert.Equal(t, "3200", env.HTTPPort)
	assert.Equal(t, "local", env.StorageEnv.Type)
	assert.False(t, env.StrictDependencies)
	assert.Equal(t, time.Hour, env.OverdueSweepInterval)

	w, err := env.Window()
	require.NoError(t, err)
	assert.Equal(t, wbs.DefaultWindow, w)
	assert.Equal(t, wbs.DefaultEdgeLayout, env.EdgeLayout())
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("WBS_API_KEY", "secret")
	t.Setenv("WBS_WINDOW_START", "2025-04-01")
	t.Setenv("WBS_WINDOW_SPAN_DAYS", "30")
	t.Setenv("WBS_STRICT_DEPENDENCIES", "true")
	t.Setenv("WBS_STORAGE_TYPE", "s3")
	t.Setenv("WBS_OVERDUE_SWEEP_INTERVAL", "15m")

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.True(t, TimelineEnvFromEnv(env).StrictDependencies)
	assert.Equal(t, "s3", StorageEnvFromEnv(env).Type)
	assert.Equal(t, 15*time.Minute, env.OverdueSweepInterval)

	w, err := env.Window()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, 30, w.SpanDays)
}

func TestLoadEnv_Invalid(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		t.Setenv("WBS_API_KEY", "")
		require.NoError(t, os.Unsetenv("WBS_API_KEY"))
		_, err := LoadEnv()
		assert.Error(t, err)
	})
	t.Run("bad window start", func(t *testing.T) {
		t.Setenv("WBS_API_KEY", "secret")
		t.Setenv("WBS_WINDOW_START", "01/01/2025")
		_, err := LoadEnv()
		assert.ErrorContains(t, err, "WBS_WINDOW_START")
	})
	t.Run("zero span", func(t *testing.T) {
		t.Setenv("WBS_API_KEY", "secret")
		t.Setenv("WBS_WINDOW_SPAN_DAYS", "0")
		_, err := LoadEnv()
		assert.ErrorContains(t, err, "WBS_WINDOW_SPAN_DAYS")
	})
	t.Run("zero sweep interval", func(t *testing.T) {
		t.Setenv("WBS_API_KEY", "secret")
		t.Setenv("WBS_OVERDUE_SWEEP_INTERVAL", "0s")
		_, err := LoadEnv()
		assert.ErrorContains(t, err, "WBS_OVERDUE_SWEEP_INTERVAL")
	})
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, (&BaseEnv{LogLevel: "warn"}).SlogLevel())
	assert.Equal(t, slog.LevelDebug, (&BaseEnv{LogLevel: "loud"}).SlogLevel())
	var nilEnv *BaseEnv
	assert.Equal(t, slog.LevelDebug, nilEnv.SlogLevel())
}
