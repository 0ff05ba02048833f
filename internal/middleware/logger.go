package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"marketplace/internal/ctxmanage"
	"marketplace/internal/logkey"
)

// Logger tags each request with a trace id, taken from X-Request-ID when the
// caller sent one, and writes an access log line once the request finishes.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(ctxmanage.TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		ctx := ctxmanage.WithTraceID(c.Request.Context(), traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(ctxmanage.TraceIDHeader, traceID)

		start := time.Now()
		c.Next()

		slog.InfoContext(ctx, "request",
			slog.String(logkey.TraceID, traceID),
			slog.String(logkey.Method, c.Request.Method),
			slog.String(logkey.Path, c.Request.URL.Path),
			slog.Int(logkey.Status, c.Writer.Status()),
			slog.Duration(logkey.Latency, time.Since(start)))
	}
}
