package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hittalaget/hittalaget-backend/internal/platform/ctxutil"
	"github.com/hittalaget/hittalaget-backend/internal/platform/logger"
)

// RequestLog emits one structured line per request after it completes.
func RequestLog(log *logger.Logger) gin.HandlerFunc {
	reqLog := log.With("middleware", "RequestLog")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
			fields = append(fields, "request_id", td.RequestID)
			if td.TraceID != "" {
				fields = append(fields, "trace_id", td.TraceID)
			}
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
			reqLog.Warn("request completed", fields...)
			return
		}
		reqLog.Info("request completed", fields...)
	}
}
