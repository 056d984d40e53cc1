package logger

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		config      *LoggerConfig
		expectError bool
		wantLevel   zerolog.Level
	}{
		{
			name: "production defaults",
			config: &LoggerConfig{
				Env:    "prod",
				Level:  "info",
				Fields: map[string]any{"key": "value"},
			},
			wantLevel: zerolog.InfoLevel,
		},
		{
			name:        "unknown env",
			config:      &LoggerConfig{Env: "wrong-env", Level: "debug"},
			expectError: true,
		},
		{
			name:        "unknown level",
			config:      &LoggerConfig{Env: "prod", Level: "invalid-level"},
			expectError: true,
		},
		{
			name:        "unknown time format",
			config:      &LoggerConfig{Env: "prod", Level: "info", TimeFormat: "iso"},
			expectError: true,
		},
		{
			name: "staging with stacktrace",
			config: &LoggerConfig{
				Env:        "staging",
				Level:      "warn",
				TimeField:  "time",
				TimeFormat: "unix",
				Stacktrace: true,
			},
			wantLevel: zerolog.WarnLevel,
		},
		{
			name: "test env writing console to stderr",
			config: &LoggerConfig{
				Env:          "test",
				Level:        "error",
				Format:       "console",
				OutputTarget: "stderr",
				WithCaller:   true,
			},
			wantLevel: zerolog.ErrorLevel,
		},
		{
			name:      "dev without debug",
			config:    &LoggerConfig{Env: "dev", Level: "info", TimeFormat: "rfc3339"},
			wantLevel: zerolog.InfoLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.config)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())
			assert.Equal(t, tt.wantLevel, l.GetLevel())
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	cfg := &LoggerConfig{}
	_, err := New(cfg)
	assert.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "stdout", cfg.OutputTarget)
	assert.Equal(t, "soccer-scout-service", cfg.ServiceName)
	assert.Equal(t, "ts", zerolog.TimestampFieldName)
}

func TestNew_DevDebugWritesFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := New(&LoggerConfig{Env: "dev", Level: "debug"})
	assert.NoError(t, err)

	_, statErr := os.Stat(DebugLogPath)
	assert.NoError(t, statErr)
}
