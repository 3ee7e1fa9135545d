// internal/logging/logging_test.go - Unit tests for logger construction
package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"fatal", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
	assert.Same(t, l, OrNop(l))
	assert.NotNil(t, OrNop(nil))
}

func TestNewFileOutput(t *testing.T) {
	fs := afero.NewMemMapFs()

	logger, closer, err := New(fs, Settings{Level: "debug", Format: "json", Output: "file", File: "/var/log/geolayers.log"})
	require.NoError(t, err)
	logger.Debug("layer added", "name", "roads")
	require.NoError(t, closer.Close())

	data, err := afero.ReadFile(fs, "/var/log/geolayers.log")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"layer added"`)
	assert.Contains(t, string(data), `"name":"roads"`)
}

func TestNewErrors(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, _, err := New(fs, Settings{Output: "file"})
	assert.Error(t, err)

	_, _, err = New(fs, Settings{Output: "syslog"})
	assert.Error(t, err)

	_, _, err = New(fs, Settings{Level: "loud"})
	assert.Error(t, err)
}
