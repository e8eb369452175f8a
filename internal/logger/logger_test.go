package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func withObserver(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := log
	log = zap.New(core)
	t.Cleanup(func() { log = prev })
	return logs
}

func TestWithFields(t *testing.T) {
	logs := withObserver(t)

	ctx := WithFields(context.Background(), zap.String("request_id", "req-1"))
	ctx = WithFields(ctx, zap.Int64("owner_id", 42))

	InfoCtx(ctx, "processing upload", zap.String("kind", "image"))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, int64(42), fields["owner_id"])
	assert.Equal(t, "image", fields["kind"])
}

func TestErrorCtx_NilError(t *testing.T) {
	logs := withObserver(t)

	ErrorCtx(context.Background(), nil)
	ErrorCtx(context.Background(), errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "error occurred", entries[0].Message)
	assert.Equal(t, "boom", entries[1].Message)
}

func TestInitialize_Debug(t *testing.T) {
	prev := log
	t.Cleanup(func() { log = prev })

	require.NoError(t, Initialize(Config{Debug: true}))
	assert.True(t, Default().Core().Enabled(zapcore.DebugLevel))
}

func TestNewBase_ProductionLevel(t *testing.T) {
	l, err := newBase(false)
	require.NoError(t, err)

	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}
