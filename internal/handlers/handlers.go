// Package handlers adapts HTTP requests to the marketplace services.
package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"marketplace/internal/apperr"
	"marketplace/internal/ctxmanage"
	"marketplace/internal/logkey"
	"marketplace/internal/middleware"
	"marketplace/internal/models"
	"marketplace/internal/response"
)

// bind decodes the JSON body into v, answering 400 itself on failure.
func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		slog.InfoContext(c.Request.Context(), "invalid request body",
			slog.String(logkey.TraceID, ctxmanage.GetTraceIdOfRequest(c)),
			slog.String(logkey.Error, err.Error()))
		response.Error(c, apperr.Validation("Invalid request body"))
		return false
	}
	return true
}

// actor returns the user a gate resolved for this request.
func actor(c *gin.Context) (*models.User, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperr.Unauthorized("Not authenticated"))
	}
	return u, ok
}
