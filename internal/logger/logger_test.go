package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"esports-scoreboard/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_WritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, zerolog.InfoLevel)

	log.Debug().Msg("hidden")
	log.Info().Str("team", "Alpha").Msg("ranked")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ranked", entry["message"])
	assert.Equal(t, "Alpha", entry["team"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry, "caller")
}

func TestSetLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, SetLevel(zerolog.WarnLevel).GetLevel())
}

func TestConfigure(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	require.NoError(t, Configure(&config.Config{LogLevel: "warn"}, zerolog.Nop()))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	assert.Error(t, Configure(&config.Config{LogLevel: "loud"}, zerolog.Nop()))
}
