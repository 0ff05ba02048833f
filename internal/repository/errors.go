package repository

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"marketplace/internal/apperr"
)

// translate maps a driver error onto the application taxonomy.
func translate(err error, notFound, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.NotFound(notFound)
	default:
		return apperr.Internal("Internal server error", fmt.Errorf("%s: %w", op, err))
	}
}
