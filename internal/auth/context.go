package auth

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"marketplace/internal/models"
)

type ctxKey int

const principalKey ctxKey = iota

// Principal is the authorization context of one request. Authentication sets
// UserID; the first gate that needs the full record fills in User and later
// gates reuse it.
type Principal struct {
	UserID primitive.ObjectID
	User   *models.User
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}

// UserFrom returns the resolved identity, if a gate has loaded it.
func UserFrom(ctx context.Context) (*models.User, bool) {
	p, ok := PrincipalFrom(ctx)
	if !ok || p.User == nil {
		return nil, false
	}
	return p.User, true
}
