package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"marketplace/internal/apperr"
	"marketplace/internal/models"
)

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("s3cret", time.Hour)
	u := &models.User{ID: primitive.NewObjectID(), Password: "$2a$10$secrethash"}

	token, err := issuer.Issue(u)
	require.NoError(t, err)
	assert.NotContains(t, token, "secrethash")

	id, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)
}

func TestTokenIssuerRejects(t *testing.T) {
	u := &models.User{ID: primitive.NewObjectID()}

	t.Run("expired", func(t *testing.T) {
		issuer := NewTokenIssuer("s3cret", time.Minute)
		issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, err := issuer.Issue(u)
		require.NoError(t, err)

		issuer.now = time.Now
		_, err = issuer.Parse(token)
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewTokenIssuer("one", time.Hour).Issue(u)
		require.NoError(t, err)

		_, err = NewTokenIssuer("two", time.Hour).Parse(token)
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	})

	t.Run("tampered", func(t *testing.T) {
		issuer := NewTokenIssuer("s3cret", time.Hour)
		token, err := issuer.Issue(u)
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		parts[1] = parts[1] + "x"
		_, err = issuer.Parse(strings.Join(parts, "."))
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := NewTokenIssuer("s3cret", time.Hour).Parse("abc")
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	})

	t.Run("no id", func(t *testing.T) {
		_, err := NewTokenIssuer("s3cret", time.Hour).Issue(&models.User{})
		assert.Error(t, err)
	})
}
