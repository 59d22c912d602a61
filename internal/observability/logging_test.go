package observability

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/randpick/internal/config"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level, format string
		debug         bool
		wantErr       bool
	}{
		{"debug", "console", true, false},
		{"info", "json", false, false},
		{"warn", "json", false, false},
		{"error", "console", false, false},
		{"trace", "json", false, true},
		{"info", "xml", false, true},
	}
	for _, tc := range tests {
		t.Run(tc.level+"/"+tc.format, func(t *testing.T) {
			logger, err := NewLogger(config.LoggingConfig{Level: tc.level, Format: tc.format})
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.debug, logger.Core().Enabled(zapcore.DebugLevel))
		})
	}
}

func TestNewLogger_JSONCarriesServiceField(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(config.LoggingConfig{Level: "info", Format: "json"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Info("spin resolved", zap.String("tool", "wheel"), zap.String("winner", "Yes"))
	logger.Debug("dropped below level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, ServiceName, entry["service"])
	assert.Equal(t, "wheel", entry["tool"])
	assert.Equal(t, "spin resolved", entry["msg"])
	assert.Contains(t, entry, "ts")
}

func TestSessionLogger_AddsFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	SessionLogger(zap.New(core), "abc", "10.0.0.1:5000").Info("client quit")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "abc", fields["session_id"])
	assert.Equal(t, "10.0.0.1:5000", fields["remote_addr"])
}
