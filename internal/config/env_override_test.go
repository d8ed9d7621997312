package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverrides(t *testing.T) {
	t.Run("system roots", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NIX_UPDATE_WIDGET_BOOTED_SYSTEM", "/b")
		t.Setenv("NIX_UPDATE_WIDGET_CURRENT_SYSTEM", "/c")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "/b", cfg.Systems.Booted)
		assert.Equal(t, "/c", cfg.Systems.Current)
	})

	t.Run("modinfo and log level", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NIX_UPDATE_WIDGET_MODINFO", "/usr/bin/modinfo")
		t.Setenv("NIX_UPDATE_WIDGET_LOG_LEVEL", "debug")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "/usr/bin/modinfo", cfg.Modinfo.Binary)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("modified date", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NIX_UPDATE_WIDGET_MODIFIED_DATE", " 1700000000 ")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, int64(1700000000), cfg.Age.ModifiedDate)
	})

	t.Run("unparsable modified date is ignored", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NIX_UPDATE_WIDGET_MODIFIED_DATE", "yesterday")

		cfg := DefaultConfig()
		cfg.Age.ModifiedDate = 7
		cfg.applyEnvOverrides()

		assert.Equal(t, int64(7), cfg.Age.ModifiedDate)
	})

	t.Run("env wins over file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NIX_UPDATE_WIDGET_CURRENT_SYSTEM", "/from-env")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "/from-env", cfg.Systems.Current)
	})
}

func TestBuildDefaults(t *testing.T) {
	old := BuildModifiedDate
	t.Cleanup(func() { BuildModifiedDate = old })

	BuildModifiedDate = "1234"
	assert.Equal(t, int64(1234), DefaultAgeConfig().ModifiedDate)

	BuildModifiedDate = ""
	assert.Equal(t, int64(0), DefaultAgeConfig().ModifiedDate)
}
