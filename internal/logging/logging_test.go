package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{level: "debug", want: zapcore.DebugLevel},
		{level: " WARN ", want: zapcore.WarnLevel},
		{level: "", want: zapcore.InfoLevel},
		{level: "verbose", want: zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, err := New(Config{Level: tt.level})
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestNewDevelopment(t *testing.T) {
	logger, err := New(Config{Level: "info", Development: true})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
