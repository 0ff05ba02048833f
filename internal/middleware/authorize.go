package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"marketplace/internal/apperr"
	"marketplace/internal/auth"
	"marketplace/internal/models"
	"marketplace/internal/response"
)

// UserFinder is the only store access the gate needs.
type UserFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// RequireAnyOf admits the request when the authenticated user holds one of
// roles. With no roles any existing active user is admitted; an inactive
// account is refused even while its token is still valid. The user record is
// loaded at most once per request and kept on the authorization context for
// later gates and handlers. The gate never writes.
func RequireAnyOf(users UserFinder, roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolve(c, users)
		if err != nil {
			response.Error(c, err)
			return
		}
		if user.Status == models.UserStatusInactive {
			response.Error(c, apperr.Forbidden("Account is inactive"))
			return
		}
		if len(roles) > 0 && !user.HasRole(roles...) {
			response.Error(c, apperr.Forbidden("Access denied"))
			return
		}
		c.Next()
	}
}

func resolve(c *gin.Context, users UserFinder) (*models.User, error) {
	p, ok := auth.PrincipalFrom(c.Request.Context())
	if !ok {
		return nil, apperr.Unauthorized("Not authenticated")
	}
	if p.User != nil {
		return p.User, nil
	}

	user, err := users.FindByID(c.Request.Context(), p.UserID)
	if err != nil {
		return nil, err
	}
	p.User = user
	return user, nil
}

// CurrentUser returns the user resolved by a gate earlier in the chain.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	return auth.UserFrom(c.Request.Context())
}
