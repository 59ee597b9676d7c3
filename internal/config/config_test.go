package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("YEAR", "2025")
	t.Setenv("LEAGUE_ID", "12345")
	t.Setenv("SWID", "{swid}")
	t.Setenv("ESPN_S2", "s2")
	t.Setenv("SEASON_START", "2024-10-22")
}

func TestNew_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Store.Driver)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, time.Minute, cfg.Server.RateLimitWindow)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowOrigins)
	assert.Equal(t, "season", cfg.Projection.Mode)
	assert.Equal(t, 2024, cfg.Season())
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bad cron", "REFRESH_CRON", "every morning"},
		{"bad window", "PROJECTION_MODE", "recent"},
		{"bad date", "SEASON_START", "22/10/2024"},
		{"bad driver", "STORE_DRIVER", "redis"},
		{"postgres without url", "STORE_DRIVER", "postgres"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			_, err := New()
			assert.Error(t, err)
		})
	}
}

func TestNew_MissingRequired(t *testing.T) {
	setRequired(t)
	require.NoError(t, os.Unsetenv("LEAGUE_ID"))

	_, err := New()
	assert.Error(t, err)
}
