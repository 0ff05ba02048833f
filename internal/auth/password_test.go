package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	t.Run("match", func(t *testing.T) {
		ok, err := VerifyPassword("correct horse", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("mismatch", func(t *testing.T) {
		ok, err := VerifyPassword("battery staple", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("malformed hash", func(t *testing.T) {
		ok, err := VerifyPassword("correct horse", "not-a-bcrypt-hash")
		assert.False(t, ok)
		var verr *VerificationError
		assert.ErrorAs(t, err, &verr)
	})
}
