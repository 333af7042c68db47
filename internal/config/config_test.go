package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERVER_PORT", "DB_PATH", "LOG_LEVEL", "EXPORT_DIR", "QUALIFICATION_LIMIT",
		"WEBHOOK_URLS", "WEBHOOK_TIMEOUT", "SUBSCRIBER_BUFFER",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.ServerPort)
	assert.Equal(t, "scoreboard.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "./exports", cfg.ExportDir)
	assert.Equal(t, 8, cfg.QualificationLimit)
	assert.Empty(t, cfg.WebhookURLs)
	assert.Equal(t, 5*time.Second, cfg.WebhookTimeout)
	assert.Equal(t, 32, cfg.SubscriberBuffer)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("QUALIFICATION_LIMIT", "4")
	t.Setenv("WEBHOOK_URLS", "http://a.example/hook, ,http://b.example/hook")
	t.Setenv("WEBHOOK_TIMEOUT", "250ms")
	t.Setenv("SUBSCRIBER_BUFFER", "2")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, 4, cfg.QualificationLimit)
	assert.Equal(t, []string{"http://a.example/hook", "http://b.example/hook"}, cfg.WebhookURLs)
	assert.Equal(t, 250*time.Millisecond, cfg.WebhookTimeout)
	assert.Equal(t, 2, cfg.SubscriberBuffer)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"QUALIFICATION_LIMIT", "eight"},
		{"QUALIFICATION_LIMIT", "-1"},
		{"SUBSCRIBER_BUFFER", "0"},
		{"WEBHOOK_TIMEOUT", "soon"},
		{"WEBHOOK_TIMEOUT", "-1s"},
		{"LOG_LEVEL", "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load(zerolog.Nop())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
