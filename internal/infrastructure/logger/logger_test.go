package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    Level
		wantErr bool
	}{
		{name: "", want: LevelInfo},
		{name: "debug", want: LevelDebug},
		{name: "INFO", want: LevelInfo},
		{name: " warn ", want: LevelWarn},
		{name: "warning", want: LevelWarn},
		{name: "error", want: LevelError},
		{name: "fatal", want: LevelFatal},
		{name: "trace", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func TestLogrusLogger_JSONOutput(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Format = "json"
	cfg.Level = LevelInfo

	var buf bytes.Buffer
	log := NewLogrusLogger(cfg)
	log.SetOutput(&buf)

	log.WithField("component", "hub").WithFields(Fields{"connection_id": "c-1"}).Info("registered")
	log.Debug("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "registered", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "hub", entry["component"])
	assert.Equal(t, "c-1", entry["connection_id"])
	assert.Equal(t, ServiceName, entry["service"])
	assert.Contains(t, entry, "timestamp")
}

func TestLogrusLogger_DerivedLoggerSharesLevel(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Format = "text"
	cfg.Output = "discard"

	var buf bytes.Buffer
	root := NewLogrusLogger(cfg)
	root.SetOutput(&buf)

	child := root.WithField("component", "hub")
	child.SetLevel(LevelError)

	root.Warn("dropped")
	assert.Zero(t, buf.Len())

	root.Error("kept")
	assert.Contains(t, buf.String(), "kept")
}

func mustParse(t *testing.T, name string) Level {
	t.Helper()

	level, err := ParseLevel(name)
	require.NoError(t, err)
	return level
}

func TestGetDefaultFields(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	t.Setenv("KUBERNETES_POD_NAME", "")

	fields := GetDefaultFields()
	assert.Equal(t, ServiceName, fields["service"])
	assert.Equal(t, "staging", fields["environment"])
	assert.NotContains(t, fields, "k8s_pod")

	cfg := NewDefaultConfig()
	assert.Equal(t, "staging", cfg.Fields["environment"])
	assert.NotContains(t, cfg.Fields, "pid", "non-string fields are not static fields")
}
