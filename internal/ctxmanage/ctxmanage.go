// Package ctxmanage carries the request trace id through contexts.
package ctxmanage

import (
	"context"

	"github.com/gin-gonic/gin"
)

type traceKey struct{}

// TraceIDHeader is read from incoming requests and echoed on responses.
const TraceIDHeader = "X-Request-ID"

func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

// TraceID returns the id stored by WithTraceID, or "" when none is set.
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}

func GetTraceIdOfRequest(c *gin.Context) string {
	return TraceID(c.Request.Context())
}
