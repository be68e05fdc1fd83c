package config

import (
	"testing"
	"time"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{"DB_DSN": "postgres://localhost/dispatch"}))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "Europe/Paris", cfg.Timezone)
	assert.Equal(t, time.Minute, cfg.ReloadInterval)
	assert.Empty(t, cfg.AdminIDs)
	assert.Equal(t, model.DefaultSettings(), cfg.Planning)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"DB_DSN":             "postgres://localhost/dispatch",
		"ENV":                "production",
		"ADMIN_TELEGRAM_IDS": "12, 34,,56",
		"RELOAD_INTERVAL":    "30s",
		"OPENING_HOUR":       "6",
		"CLOSING_HOUR":       "22",
		"SLOT_CAPACITY":      "2",
		"PICK_POLICY":        "PICKER",
	}))
	require.NoError(t, err)

	assert.Equal(t, []int64{12, 34, 56}, cfg.AdminIDs)
	assert.Equal(t, 30*time.Second, cfg.ReloadInterval)
	assert.Equal(t, 6, cfg.Planning.OpeningHour)
	assert.Equal(t, 22, cfg.Planning.ClosingHour)
	assert.Equal(t, 2, cfg.Planning.SlotCapacity)
	assert.Equal(t, model.PickPicker, cfg.Planning.PickPolicy)
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing dsn", env: map[string]string{}},
		{name: "bad admin id", env: map[string]string{"DB_DSN": "x", "ADMIN_TELEGRAM_IDS": "12,abc"}},
		{name: "bad interval", env: map[string]string{"DB_DSN": "x", "RELOAD_INTERVAL": "-5s"}},
		{name: "bad capacity", env: map[string]string{"DB_DSN": "x", "SLOT_CAPACITY": "three"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(envOf(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestFromEnv_InvalidHoursFallBack(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{"DB_DSN": "x", "OPENING_HOUR": "20", "CLOSING_HOUR": "8"}))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Planning.OpeningHour)
	assert.Equal(t, 23, cfg.Planning.ClosingHour)
}
