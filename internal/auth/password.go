package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// VerificationError reports a stored hash that cannot be checked at all.
type VerificationError struct {
	Err error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("password verification: %v", e.Err)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether plain matches storedHash. A mismatch is
// false with a nil error; only a malformed hash is an error.
func VerifyPassword(plain, storedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, &VerificationError{Err: err}
	}
}
