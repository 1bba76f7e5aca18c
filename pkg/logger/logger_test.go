package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopsync/pkg/config"
)

func TestNew(t *testing.T) {
	log, err := New(&config.LoggingConfig{Level: "debug"})
	require.NoError(t, err)
	assert.NotNil(t, log)
	assert.NotNil(t, log.GetZerolog())
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(&config.LoggingConfig{Level: "chatty"})
	assert.Error(t, err)
}

func TestNewWithFileOutput(t *testing.T) {
	dir := t.TempDir()
	log, err := New(&config.LoggingConfig{Level: "info", File: dir + "/shopsync.log"})
	require.NoError(t, err)

	log.Info("hello")
	assert.FileExists(t, dir+"/shopsync.log")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"DEBUG", zerolog.DebugLevel},
	}

	for _, tt := range tests {
		level, err := parseLogLevel(tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, level, "input %q", tt.input)
	}

	_, err := parseLogLevel("nope")
	assert.Error(t, err)
}

func TestWithFieldsAccumulate(t *testing.T) {
	log := NewTestLogger()

	log.WithField("brand", "pesoclo").WithField("sku", "PES-M").Info("syncing")

	messages := log.GetMessages()
	require.Len(t, messages, 1)
	assert.Equal(t, "pesoclo", messages[0].Fields["brand"])
	assert.Equal(t, "PES-M", messages[0].Fields["sku"])
}

func TestTestLoggerCaptures(t *testing.T) {
	log := NewTestLogger()

	log.Info("first")
	log.ErrorWithFields("second", map[string]interface{}{"code": 500})

	assert.True(t, log.HasMessage("first"))
	assert.True(t, log.HasError())
	assert.Len(t, log.GetMessagesByLevel("ERROR"), 1)

	log.Clear()
	assert.Empty(t, log.GetMessages())
}
