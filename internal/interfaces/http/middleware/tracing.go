// Package middleware provides HTTP middleware for the leasing API.
package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Bounds on header-sourced trace attributes. Values past these limits are
// truncated or dropped rather than recorded verbatim.
const (
	MaxRequestIDLength = 128
	MaxTenantIDLength  = 64
)

var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// TracingConfig configures the request-span middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// DefaultTracingConfig enables tracing under the service's default name.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "leasehold-backend",
		Enabled:     true,
	}
}

// Tracing opens a span per request using the default configuration.
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig wraps otelgin to open a span named "METHOD route" per
// request, then tags it with request_id, tenant_id and user_id when those are
// known. Disabled configs return a pass-through handler so the router wiring
// stays the same either way.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	otelMiddleware := otelgin.Middleware(cfg.ServiceName)

	return func(c *gin.Context) {
		otelMiddleware(c)

		// The span lives on the request context once otelgin has run.
		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			tagSpan(c, span)
		}
	}
}

func tagSpan(c *gin.Context, span trace.Span) {
	if requestID := getRequestID(c); requestID != "" {
		span.SetAttributes(attribute.String("request_id", requestID))
	}
	if tenantID := getTenantID(c); tenantID != "" {
		span.SetAttributes(attribute.String("tenant_id", tenantID))
	}
	if userID := getUserID(c); userID != "" {
		span.SetAttributes(attribute.String("user_id", userID))
	}
}

// getRequestID prefers the value placed in the gin context by the RequestID
// middleware, falling back to the raw header truncated to MaxRequestIDLength.
func getRequestID(c *gin.Context) string {
	if v, exists := c.Get("request_id"); exists {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}

	headerID := c.GetHeader("X-Request-ID")
	if len(headerID) > MaxRequestIDLength {
		return headerID[:MaxRequestIDLength]
	}
	return headerID
}

// getTenantID prefers the JWT claim. The X-Tenant-ID header is only honored
// when it parses as a UUID, since header values are caller-controlled and end
// up in trace storage.
func getTenantID(c *gin.Context) string {
	if v, exists := c.Get(JWTTenantIDKey); exists {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}

	if header := c.GetHeader("X-Tenant-ID"); header != "" && isValidTenantID(header) {
		return header
	}
	return ""
}

func isValidTenantID(tenantID string) bool {
	return len(tenantID) <= MaxTenantIDLength && uuidRegex.MatchString(tenantID)
}

// getUserID reads the authenticated user from the JWT claims, if any.
func getUserID(c *gin.Context) string {
	if v, exists := c.Get(JWTUserIDKey); exists {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}
	return ""
}

// statusDescription maps a response code to the span status message used by
// SpanErrorMarker.
func statusDescription(statusCode int) string {
	switch {
	case statusCode >= http.StatusInternalServerError:
		return "Internal Server Error"
	case statusCode == http.StatusUnauthorized:
		return "Unauthorized"
	case statusCode == http.StatusForbidden:
		return "Forbidden"
	case statusCode == http.StatusNotFound:
		return "Not Found"
	default:
		return "Client Error"
	}
}

// SpanErrorMarker flags the request span as errored on 4xx/5xx responses.
// Place it after the tracing middleware in the chain.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		if statusCode := c.Writer.Status(); statusCode >= http.StatusBadRequest {
			span.SetStatus(codes.Error, statusDescription(statusCode))
			span.SetAttributes(attribute.Int("http.status_code", statusCode))
		}
	}
}

// TracingAttributeInjector re-tags the span once the auth middleware has
// populated the JWT claims; the initial tagging in TracingWithConfig runs
// before authentication and so never sees them.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			tagSpan(c, span)
		}
		c.Next()
	}
}
