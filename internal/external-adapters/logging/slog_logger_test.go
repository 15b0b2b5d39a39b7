package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/hivemq/sdkpub/internal/domain/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"info":    slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for name, want := range tests {
		got, err := ParseLevel(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestSlogLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, Options{Level: "info"})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("stage finished", interfaces.F("stage", "compile"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "stage finished")
	assert.Contains(t, out, "stage=compile")
}

func TestSlogLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, Options{Level: "debug", JSON: true})
	require.NoError(t, err)

	runLogger := logger.With(interfaces.F("run", "abc"))
	runLogger.Error("upload failed", interfaces.F("error", errors.New("status 401")))

	line := strings.TrimSpace(buf.String())
	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "upload failed", record["msg"])
	assert.Equal(t, "abc", record["run"])
	assert.Equal(t, "status 401", record["error"])
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(&bytes.Buffer{}, Options{Level: "loud"})
	assert.Error(t, err)
}
