// Package middleware holds the gin middleware: request logging,
// authentication and the role gate.
package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"marketplace/internal/apperr"
	"marketplace/internal/auth"
	"marketplace/internal/ctxmanage"
	"marketplace/internal/logkey"
	"marketplace/internal/response"
)

// Authenticate resolves the session token to a user id and stores it as the
// request's authorization context. The user record itself is not loaded here.
func Authenticate(tokens *auth.TokenIssuer, cookie auth.SessionCookie) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cookie.Token(c)
		if token == "" {
			response.Error(c, apperr.Unauthorized("Not authenticated"))
			return
		}

		userID, err := tokens.Parse(token)
		if err != nil {
			slog.WarnContext(c.Request.Context(), "rejected session token",
				slog.String(logkey.TraceID, ctxmanage.GetTraceIdOfRequest(c)),
				slog.String(logkey.Error, err.Error()))
			response.Error(c, err)
			return
		}

		ctx := auth.WithPrincipal(c.Request.Context(), &auth.Principal{UserID: userID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
