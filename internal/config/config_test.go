package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Run from a temp dir so a developer config.yaml cannot leak in.
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "https://www.waterqualitydata.us", cfg.WQP.BaseURL)
	assert.Equal(t, "Chloride", cfg.DataSources.Characteristic)
	assert.Equal(t, "US:40", cfg.DataSources.StateCode)
	assert.InDelta(t, 100.0, cfg.Matching.MaxDistanceMeters, 0)
	assert.InDelta(t, 48.0, cfg.Matching.MaxTimeHours, 0)
	assert.InDelta(t, 25.0, cfg.Matching.MinConcentrationMgL, 0)
	assert.Equal(t, "all", cfg.Matching.MatchStrategy)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TRIANGULATE_MATCHING_PARAMETERS_MAX_DISTANCE_METERS", "250")
	t.Setenv("TRIANGULATE_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 250.0, cfg.Matching.MaxDistanceMeters, 0)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestMatchingValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		m       MatchingConfig
		wantErr bool
	}{
		{"valid", MatchingConfig{MaxDistanceMeters: 100, MaxTimeHours: 48, MinConcentrationMgL: 25}, false},
		{"zero min concentration ok", MatchingConfig{MaxDistanceMeters: 100, MaxTimeHours: 48}, false},
		{"zero distance", MatchingConfig{MaxTimeHours: 48}, true},
		{"negative time", MatchingConfig{MaxDistanceMeters: 100, MaxTimeHours: -1}, true},
		{"negative concentration", MatchingConfig{MaxDistanceMeters: 100, MaxTimeHours: 48, MinConcentrationMgL: -5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInitLoggerBadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "shout", Format: "json"})
	assert.Error(t, err)
}
