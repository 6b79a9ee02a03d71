package app

import (
	"os"
	"path/filepath"
	"testing"

	"cryptorewards-backend/internal/collector"
	"cryptorewards-backend/internal/components/telemetry"
	"cryptorewards-backend/internal/config"
	"cryptorewards-backend/internal/sources"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.LogsDir = filepath.Join(dir, "logs")
	return cfg
}

func TestBuild(t *testing.T) {
	cfg := testConfig(t)

	app, err := Build(cfg, telemetry.NewRecorder(), false)
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, sources.IDs(), app.Collector.IDs())
	assert.Len(t, app.Sources, len(sources.IDs()))
	assert.Equal(t, collector.StateIdle, app.Scheduler.Status().State)
	require.NotNil(t, app.History)

	info, err := os.Stat(cfg.DataDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	for _, id := range sources.IDs() {
		_, err := os.Stat(filepath.Join(cfg.LogsDir, id+".log"))
		assert.NoError(t, err, id)
	}
	assert.NoError(t, app.Close())
	assert.NoError(t, app.Close())
}

func TestBuildInvalidDailyRefresh(t *testing.T) {
	cfg := testConfig(t)
	cfg.DailyRefreshAt = "25:99"

	_, err := Build(cfg, telemetry.NewRecorder(), false)
	assert.Error(t, err)
}

func TestBuildHistoryOff(t *testing.T) {
	cfg := testConfig(t)
	cfg.HistoryFile = config.Off

	app, err := Build(cfg, telemetry.NewRecorder(), false)
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.History)
	_, err = os.Stat(filepath.Join(cfg.DataDir, "history.db"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
