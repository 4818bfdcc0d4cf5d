package util

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestConcurrentSpansAndLoggers(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, span := StartSpan(context.Background(), "concurrent")
			span.End()
			assert.NotNil(t, GetLogger())
		}()
	}
	wg.Wait()

	assert.Equal(t, GetTracer(), GetTracer())
	assert.Same(t, GetLogger(), GetLogger())
}

func TestInitLoggerReplacesFallback(t *testing.T) {
	before := GetLogger()
	require.NoError(t, InitLogger("development", "warn"))

	after := GetLogger()
	assert.NotSame(t, before, after)
	assert.False(t, after.Core().Enabled(zapcore.DebugLevel))
}

func TestCtxAddsRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.NotNil(t, Ctx(ctx))
}
