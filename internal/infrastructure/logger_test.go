package infrastructure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insightlens/internal/config"
)

func TestNewLogger(t *testing.T) {
	logger := NewLogger(config.LoggingConfig{Level: "debug", Format: "json"})
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(context.Background(), -4))

	logger = NewLogger(config.LoggingConfig{Level: "error", Format: "text"})
	assert.False(t, logger.Enabled(context.Background(), 0))
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"debug", -4},
		{"info", 0},
		{"warn", 4},
		{"warning", 4},
		{"error", 8},
		{"unknown", 0},
		{"", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, int(parseLogLevel(tt.input)), tt.input)
	}
}

func TestTraceIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	ctx = WithTraceID(ctx, "abc-123")
	assert.Equal(t, "abc-123", GetTraceID(ctx))
}
