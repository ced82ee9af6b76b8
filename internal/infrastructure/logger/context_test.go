package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newBufferedLogger() (*zap.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(&buf),
		zapcore.DebugLevel,
	)
	return zap.New(core), &buf
}

func noopSpanContext(t *testing.T) (context.Context, trace.Span) {
	t.Helper()
	tracer := noop.NewTracerProvider().Tracer("test")
	return tracer.Start(context.Background(), "span")
}

func TestWithContextRoundTrip(t *testing.T) {
	log, err := NewForEnvironment("development")
	require.NoError(t, err)

	ctx := WithContext(context.Background(), log)
	assert.NotNil(t, FromContext(ctx))
}

func TestFromContextFallbacks(t *testing.T) {
	t.Run("empty context", func(t *testing.T) {
		log := FromContext(context.Background())
		require.NotNil(t, log)
		assert.NotPanics(t, func() { log.Info("noop") })
	})

	t.Run("wrong value type", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), LoggerKey, "not a logger")
		log := FromContext(ctx)
		require.NotNil(t, log)
		assert.NotPanics(t, func() { log.Info("noop") })
	})
}

func TestContextEnrichers(t *testing.T) {
	log, err := NewForEnvironment("development")
	require.NoError(t, err)

	ctx := context.Background()
	ctx, log = WithRequestID(ctx, log, "req-1")
	ctx, log = WithTenantID(ctx, log, "ten-1")
	ctx, log = WithUserID(ctx, log, "usr-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "ten-1", GetTenantID(ctx))
	assert.Equal(t, "usr-1", GetUserID(ctx))
	assert.NotNil(t, log)
}

func TestGettersOnEmptyContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetTenantID(ctx))
	assert.Empty(t, GetUserID(ctx))
}

func TestWithRequestIDOverrides(t *testing.T) {
	log := zap.NewNop()
	ctx, _ := WithRequestID(context.Background(), log, "first")
	ctx, _ = WithRequestID(ctx, log, "second")

	assert.Equal(t, "second", GetRequestID(ctx))
}

func TestContextKeysAreDistinct(t *testing.T) {
	keys := []contextKey{LoggerKey, RequestIDKey, TenantIDKey, UserIDKey}
	seen := map[contextKey]bool{}
	for _, k := range keys {
		assert.False(t, seen[k], "duplicate key %q", k)
		seen[k] = true
	}
}

func TestEnrichedLoggerStoredInContext(t *testing.T) {
	base, err := NewForEnvironment("development")
	require.NoError(t, err)

	ctx, enriched := WithRequestID(context.Background(), base, "req-x")

	assert.NotNil(t, FromContext(ctx))
	assert.NotEqual(t, base, enriched)
}

func TestTraceGettersWithoutSpan(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))
	assert.Empty(t, GetSpanID(ctx))
}

func TestTraceGettersWithNoopSpan(t *testing.T) {
	// Noop spans carry an invalid span context, so the getters stay empty.
	ctx, span := noopSpanContext(t)
	defer span.End()

	assert.False(t, trace.SpanFromContext(ctx).SpanContext().IsValid())
	assert.Empty(t, GetTraceID(ctx))
	assert.Empty(t, GetSpanID(ctx))
}

func TestWithTraceContextWithoutValidSpan(t *testing.T) {
	base := zap.NewNop()

	assert.Equal(t, base, WithTraceContext(context.Background(), base))

	ctx, span := noopSpanContext(t)
	defer span.End()
	assert.Equal(t, base, WithTraceContext(ctx, base))
}

func TestLBuildsContextLogger(t *testing.T) {
	cl := L(context.Background())
	require.NotNil(t, cl)
	assert.NotNil(t, cl.logger)

	log, err := NewForEnvironment("development")
	require.NoError(t, err)
	cl = L(WithContext(context.Background(), log))
	assert.NotNil(t, cl.logger)
}

func TestWithLoggerUsesProvided(t *testing.T) {
	log := zap.NewNop()
	cl := WithLogger(context.Background(), log)

	require.NotNil(t, cl)
	assert.Equal(t, log, cl.logger)
}

func TestContextLoggerWith(t *testing.T) {
	log, _ := newBufferedLogger()
	ctx := context.Background()

	child := WithLogger(ctx, log).With(zap.String("unit_id", "u-1"))

	require.NotNil(t, child)
	assert.Equal(t, ctx, child.ctx)
	assert.NotEqual(t, log, child.logger)
}

func TestContextLoggerLevelsDoNotPanic(t *testing.T) {
	cl := WithLogger(context.Background(), zap.NewNop())

	assert.NotPanics(t, func() {
		cl.Debug("d")
		cl.Info("i")
		cl.Warn("w")
		cl.Error("e")
		cl.With(zap.String("k", "v")).Info("chained")
	})
}

func TestContextLoggerNilLogger(t *testing.T) {
	cl := &ContextLogger{ctx: context.Background()}

	assert.NotPanics(t, func() { cl.Info("nil-safe") })
}

func TestContextLoggerZapAndSugar(t *testing.T) {
	cl := WithLogger(context.Background(), zap.NewNop())

	require.NotNil(t, cl.Zap())
	require.NotNil(t, cl.Sugar())
	assert.NotPanics(t, func() {
		cl.Zap().Info("plain")
		cl.Sugar().Infof("sugared %s", "entry")
	})
}

func TestContextLoggerCorrelationFields(t *testing.T) {
	log, buf := newBufferedLogger()

	ctx := context.Background()
	ctx = context.WithValue(ctx, RequestIDKey, "req-9")
	ctx = context.WithValue(ctx, TenantIDKey, "ten-9")
	ctx = context.WithValue(ctx, UserIDKey, "usr-9")
	ctx = WithContext(ctx, log)

	L(ctx).Info("overdue sweep finished", zap.Int("marked", 4))

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-9"`)
	assert.Contains(t, out, `"tenant_id":"ten-9"`)
	assert.Contains(t, out, `"user_id":"usr-9"`)
	assert.Contains(t, out, `"marked":4`)
	assert.Contains(t, out, `"msg":"overdue sweep finished"`)
}

func TestContextLoggerOmitsEmptyCorrelation(t *testing.T) {
	log, buf := newBufferedLogger()

	WithLogger(context.Background(), log).Info("bare")

	out := buf.String()
	assert.Contains(t, out, `"msg":"bare"`)
	assert.NotContains(t, out, `"request_id":""`)
	assert.NotContains(t, out, `"tenant_id":""`)
	assert.NotContains(t, out, `"user_id":""`)
}
