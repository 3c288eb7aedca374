package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name          string
		level         Level
		logFunc       func(Logger, string)
		expectedInLog bool
	}{
		{
			name:          "debug message when level is debug",
			level:         LevelDebug,
			logFunc:       func(l Logger, msg string) { l.Debug(msg) },
			expectedInLog: true,
		},
		{
			name:          "debug message when level is info",
			level:         LevelInfo,
			logFunc:       func(l Logger, msg string) { l.Debug(msg) },
			expectedInLog: false,
		},
		{
			name:          "warn message when level is error",
			level:         LevelError,
			logFunc:       func(l Logger, msg string) { l.Warn(msg) },
			expectedInLog: false,
		},
		{
			name:          "error message when level is error",
			level:         LevelError,
			logFunc:       func(l Logger, msg string) { l.Error(msg) },
			expectedInLog: true,
		},
		{
			name:          "error message when silent",
			level:         LevelSilent,
			logFunc:       func(l Logger, msg string) { l.Error(msg) },
			expectedInLog: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			log := NewLogger(tt.level, buf)

			tt.logFunc(log, "test message")

			assert.Equal(t, tt.expectedInLog, bytes.Contains(buf.Bytes(), []byte("test message")),
				"output: %s", buf.String())
		})
	}
}

func TestLogger_Fields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(LevelInfo, buf).WithFields(F("session", "abc"))

	log.Info("rebuilt", F("nodes", 42), Err(errors.New("boom")))

	out := buf.String()
	assert.Contains(t, out, "[INFO] rebuilt |")
	assert.Contains(t, out, "session=abc")
	assert.Contains(t, out, "nodes=42")
	assert.Contains(t, out, "error=boom")
}

func TestLogger_DerivedSharesLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	parent := NewLogger(LevelInfo, buf)
	child := parent.WithFields(F("component", "watcher"))

	parent.SetLevel(LevelError)
	child.Info("hidden")

	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"":        LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"off":     LevelSilent,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}
