package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	// LoggerKey carries the request-scoped logger.
	LoggerKey contextKey = "logger"
	// RequestIDKey carries the request ID.
	RequestIDKey contextKey = "request_id"
	// TenantIDKey carries the tenant ID of the record being operated on.
	TenantIDKey contextKey = "tenant_id"
	// UserIDKey carries the authenticated staff user ID.
	UserIDKey contextKey = "user_id"
)

// WithContext attaches the logger to the context.
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext returns the logger from the context, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID stores the request ID and returns a logger tagged with it.
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	tagged := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, tagged), tagged
}

// WithTenantID stores the tenant ID and returns a logger tagged with it.
func WithTenantID(ctx context.Context, logger *zap.Logger, tenantID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, TenantIDKey, tenantID)
	tagged := logger.With(zap.String("tenant_id", tenantID))
	return WithContext(ctx, tagged), tagged
}

// WithUserID stores the staff user ID and returns a logger tagged with it.
func WithUserID(ctx context.Context, logger *zap.Logger, userID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	tagged := logger.With(zap.String("user_id", userID))
	return WithContext(ctx, tagged), tagged
}

// GetRequestID returns the request ID from the context, or "".
func GetRequestID(ctx context.Context) string {
	return stringFromContext(ctx, RequestIDKey)
}

// GetTenantID returns the tenant ID from the context, or "".
func GetTenantID(ctx context.Context) string {
	return stringFromContext(ctx, TenantIDKey)
}

// GetUserID returns the staff user ID from the context, or "".
func GetUserID(ctx context.Context) string {
	return stringFromContext(ctx, UserIDKey)
}

func stringFromContext(ctx context.Context, key contextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// GetTraceID returns the active span's trace ID, or "" when no valid span is
// recording on the context.
func GetTraceID(ctx context.Context) string {
	if sc := validSpanContext(ctx); sc != nil {
		return sc.TraceID().String()
	}
	return ""
}

// GetSpanID returns the active span's span ID, or "".
func GetSpanID(ctx context.Context) string {
	if sc := validSpanContext(ctx); sc != nil {
		return sc.SpanID().String()
	}
	return ""
}

// WithTraceContext tags the logger with trace_id and span_id from the active
// span. Without a valid span the logger is returned unchanged.
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	sc := validSpanContext(ctx)
	if sc == nil {
		return logger
	}
	return logger.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

func validSpanContext(ctx context.Context) *trace.SpanContext {
	span := trace.SpanFromContext(ctx)
	if span == nil {
		return nil
	}
	sc := span.SpanContext()
	if !sc.IsValid() {
		return nil
	}
	return &sc
}

// ContextLogger logs with automatic correlation: every entry picks up
// trace_id, span_id, request_id, tenant_id and user_id from the context.
//
// Usage: logger.L(ctx).Info("payment applied", zap.String("payment_id", id))
type ContextLogger struct {
	ctx    context.Context
	logger *zap.Logger
}

// L builds a ContextLogger around the logger stored in ctx.
func L(ctx context.Context) *ContextLogger {
	return &ContextLogger{ctx: ctx, logger: FromContext(ctx)}
}

// WithLogger builds a ContextLogger around an explicit logger, keeping the
// context only for correlation fields.
func WithLogger(ctx context.Context, logger *zap.Logger) *ContextLogger {
	return &ContextLogger{ctx: ctx, logger: logger}
}

func (cl *ContextLogger) enriched() *zap.Logger {
	l := cl.logger
	if l == nil {
		l = zap.NewNop()
	}
	l = WithTraceContext(cl.ctx, l)
	if id := GetRequestID(cl.ctx); id != "" {
		l = l.With(zap.String("request_id", id))
	}
	if id := GetTenantID(cl.ctx); id != "" {
		l = l.With(zap.String("tenant_id", id))
	}
	if id := GetUserID(cl.ctx); id != "" {
		l = l.With(zap.String("user_id", id))
	}
	return l
}

// With returns a child ContextLogger carrying extra fields.
func (cl *ContextLogger) With(fields ...zap.Field) *ContextLogger {
	return &ContextLogger{ctx: cl.ctx, logger: cl.logger.With(fields...)}
}

func (cl *ContextLogger) Debug(msg string, fields ...zap.Field) {
	cl.enriched().Debug(msg, fields...)
}

func (cl *ContextLogger) Info(msg string, fields ...zap.Field) {
	cl.enriched().Info(msg, fields...)
}

func (cl *ContextLogger) Warn(msg string, fields ...zap.Field) {
	cl.enriched().Warn(msg, fields...)
}

func (cl *ContextLogger) Error(msg string, fields ...zap.Field) {
	cl.enriched().Error(msg, fields...)
}

func (cl *ContextLogger) Fatal(msg string, fields ...zap.Field) {
	cl.enriched().Fatal(msg, fields...)
}

func (cl *ContextLogger) Panic(msg string, fields ...zap.Field) {
	cl.enriched().Panic(msg, fields...)
}

// Zap exposes the enriched *zap.Logger for APIs that require one.
func (cl *ContextLogger) Zap() *zap.Logger {
	return cl.enriched()
}

// Sugar exposes the enriched sugared logger.
func (cl *ContextLogger) Sugar() *zap.SugaredLogger {
	return cl.enriched().Sugar()
}
