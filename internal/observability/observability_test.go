package observability

import (
	"testing"

	"github.com/railzwaylabs/waterworks/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Level(t *testing.T) {
	log, err := NewLogger(config.Config{AppName: "waterworks", LogLevel: "warn"})
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}

func TestNewLogger_UnknownLevelDefaultsToInfo(t *testing.T) {
	log, err := NewLogger(config.Config{AppName: "waterworks", LogLevel: "loud", Mode: config.ModeProduction})
	require.NoError(t, err)

	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNewTracerProvider_DisabledWithoutEndpoint(t *testing.T) {
	lc := fxtest.NewLifecycle(t)

	tp, err := NewTracerProvider(lc, config.Config{AppName: "waterworks"}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, tp)

	lc.RequireStart()
	lc.RequireStop()
}
