package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "catalog.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://api.tcgplayer.com", cfg.TCGPlayer.BaseURL)
	assert.Equal(t, "https://api.cardtrader.com/api/v2", cfg.CardTrader.BaseURL)
	assert.InDelta(t, 0.30, cfg.Match.StagingThreshold, 1e-9)
	assert.Equal(t, 20, cfg.Map.BatchSize)
	assert.InDelta(t, 1.5, cfg.Map.DelaySecs, 1e-9)
	assert.False(t, cfg.Map.AutoVerify)
	assert.Equal(t, 50, cfg.Map.MaxBatches)
	assert.Equal(t, 15, cfg.Search.TimeoutSecs)
	assert.Equal(t, 1, cfg.Search.Retries)
	assert.Empty(t, cfg.UPCFeed.URL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CATALOG_STORE_DRIVER", "memory")
	t.Setenv("CATALOG_MAP_AUTO_VERIFY", "true")
	t.Setenv("CATALOG_MATCH_STAGING_THRESHOLD", "0.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.True(t, cfg.Map.AutoVerify)
	assert.InDelta(t, 0.5, cfg.Match.StagingThreshold, 1e-9)
}

func TestInitLogger(t *testing.T) {
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "json"}))
	assert.NoError(t, InitLogger(LogConfig{Level: "info", Format: "console"}))
	assert.Error(t, InitLogger(LogConfig{Level: "verbose", Format: "json"}))
}
