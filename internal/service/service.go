// Package service holds the marketplace operations. Every operation that acts
// on behalf of someone takes the acting user explicitly.
package service

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"marketplace/internal/apperr"
	"marketplace/internal/models"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindAll(ctx context.Context, role models.Role) ([]*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, update models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	ExistsDuplicate(ctx context.Context, product *models.Product) (bool, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Product, error)
	FindBySeller(ctx context.Context, sellerID primitive.ObjectID) ([]*models.Product, error)
	Search(ctx context.Context, keyword string, categoryIDs []primitive.ObjectID) ([]*models.Product, error)
	AddReview(ctx context.Context, id primitive.ObjectID, review models.Review) (*models.Product, error)
}

type CategoryStore interface {
	Create(ctx context.Context, name string) (*models.Category, error)
	Rename(ctx context.Context, id primitive.ObjectID, name string) (*models.Category, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	FindAll(ctx context.Context) ([]*models.Category, error)
	SearchByName(ctx context.Context, keyword string) ([]*models.Category, error)
}

type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByProducts(ctx context.Context, productIDs []primitive.ObjectID) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, next models.OrderStatus) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, id primitive.ObjectID, next models.PaymentStatus) (*models.Order, error)
}

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError turns validator output into a single readable message.
func validationError(err error) error {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) || len(vErrs) == 0 {
		return apperr.Validation("Invalid request")
	}

	e := vErrs[0]
	switch e.Tag() {
	case "required":
		return apperr.Validation(e.Field() + " is required")
	case "email":
		return apperr.Validation(e.Field() + " must be a valid email address")
	case "min":
		return apperr.Validation(e.Field() + " must be at least " + e.Param())
	case "max":
		return apperr.Validation(e.Field() + " must be at most " + e.Param())
	case "gt":
		return apperr.Validation(e.Field() + " must be greater than " + e.Param())
	default:
		return apperr.Validation(e.Field() + " is invalid")
	}
}

func hasTag(err error, tag string) bool {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return false
	}
	for _, e := range vErrs {
		if e.Tag() == tag {
			return true
		}
	}
	return false
}

// parseID reads a hex id. A malformed id cannot name any record, so it is
// reported as notFound.
func parseID(hex, notFound string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound(notFound)
	}
	return id, nil
}
