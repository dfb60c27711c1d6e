package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundtrack-server/services/upload-api/internal/config"
)

func TestNewAppliesConfiguredLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		log := New(&config.Config{ServiceName: "upload-api", LogLevel: tt.raw})
		assert.Equal(t, tt.want, log.GetLevel(), "level %q", tt.raw)
	}
}

func TestComponentTagsSubLogger(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	sub := Component(base, "upload-service")
	sub.Info().Msg("stored")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "upload-service", line["component"])
	assert.Equal(t, "stored", line["message"])
}
