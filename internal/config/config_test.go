package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DB_NAME", "PORT", "LOG_LEVEL", "TIMER_TICK", "GCP_PROJECT", "SLACK_BOT_TOKEN", "SLACK_CHANNEL_ID"} {
		t.Setenv(key, "")
	}
	t.Setenv("DB_NAME", "courtside.db")
	t.Setenv("PORT", "8080")
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("TIMER_TICK", "1s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "courtside.db", cfg.DBName)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.Second, cfg.TimerTick)
	assert.False(t, cfg.SlackEnabled())
	assert.Empty(t, cfg.ProjectID)
}

func TestLoadParse(t *testing.T) {
	t.Setenv("DB_NAME", ":memory:")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TIMER_TICK", "250ms")
	t.Setenv("GCP_PROJECT", "club-project")
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("SLACK_CHANNEL_ID", "C123")
	t.Setenv("SLACK_SIGNING_SECRET", "shh")
	t.Setenv("TURSO_PRIMARY_URL", "libsql://club.turso.io")
	t.Setenv("TURSO_AUTH_TOKEN", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.DBName)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 250*time.Millisecond, cfg.TimerTick)
	assert.Equal(t, "club-project", cfg.ProjectID)
	assert.True(t, cfg.SlackEnabled())
	assert.Equal(t, "shh", cfg.Slack.SigningSecret)
	assert.Equal(t, "libsql://club.turso.io", cfg.Turso.PrimaryURL)
	assert.Equal(t, "secret", cfg.Turso.AuthToken)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unparsable tick", "TIMER_TICK", "soon"},
		{"zero tick", "TIMER_TICK", "0s"},
		{"unknown level", "LOG_LEVEL", "chatty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TIMER_TICK", "1s")
			t.Setenv("LOG_LEVEL", "info")
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
