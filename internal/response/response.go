// Package response writes the JSON envelope shared by every endpoint:
// {"success": bool, "message"?: string, ...payload}.
package response

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"marketplace/internal/apperr"
	"marketplace/internal/ctxmanage"
	"marketplace/internal/logkey"
)

// OK writes a successful envelope. payload keys are merged next to success.
func OK(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// Error aborts the request with the status of err's kind. Internal details
// are logged, never returned.
func Error(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		slog.ErrorContext(c.Request.Context(), "request failed",
			slog.String(logkey.TraceID, ctxmanage.GetTraceIdOfRequest(c)),
			slog.String(logkey.Method, c.Request.Method),
			slog.String(logkey.Path, c.FullPath()),
			slog.String(logkey.Error, err.Error()))
	}
	c.AbortWithStatusJSON(kind.Status(), gin.H{
		"success": false,
		"message": apperr.PublicMessage(err),
	})
}
