package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, cfg Config) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	Replace(zap.New(core), cfg)
	t.Cleanup(func() { Replace(nil, Config{}) })
	return logs
}

func TestGetIsNoopBeforeInitialize(t *testing.T) {
	Replace(nil, Config{})
	// Must not panic and must not write anywhere.
	Scan("scanning %s", "/run/current-system")
	ScanDebug("debug")
}

func TestCategoriesAreNamed(t *testing.T) {
	logs := observe(t, Config{})

	Scan("kernel %s", "6.1.0")
	ModinfoDebug("ran %s", "modinfo")
	WatchError("boom")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "scan", entries[0].LoggerName)
	assert.Equal(t, "kernel 6.1.0", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "modinfo", entries[1].LoggerName)
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.Equal(t, "watch", entries[2].LoggerName)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

func TestCategoryFilter(t *testing.T) {
	logs := observe(t, Config{Categories: map[string]bool{"scan": false, "status": true}})

	assert.False(t, IsCategoryEnabled(CategoryScan))
	assert.True(t, IsCategoryEnabled(CategoryStatus))
	assert.True(t, IsCategoryEnabled(CategoryWatch), "unlisted categories stay enabled")

	Scan("dropped")
	Status("kept")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Message)
}

func TestInitializeRejectsBadConfig(t *testing.T) {
	t.Cleanup(func() { Replace(nil, Config{}) })

	assert.Error(t, Initialize(Config{Level: "loud"}))
	assert.Error(t, Initialize(Config{Format: "xml"}))
	assert.NoError(t, Initialize(Config{Level: "debug", Format: "json"}))
	assert.NoError(t, Initialize(Config{Level: "WARN"}))
}
