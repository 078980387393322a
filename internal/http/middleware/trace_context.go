package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/hittalaget/hittalaget-backend/internal/platform/ctxutil"
)

// TraceContext attaches a per-request id and the active otel trace id to
// the request context so log lines can be correlated.
func TraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		td := &ctxutil.TraceData{RequestID: requestID}
		if span := trace.SpanContextFromContext(c.Request.Context()); span.HasTraceID() {
			td.TraceID = span.TraceID().String()
		}
		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
		c.Header("X-Request-Id", requestID)
		c.Next()
	}
}
