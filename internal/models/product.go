package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxReviewsPerProduct bounds the embedded review list.
const MaxReviewsPerProduct = 500

// Product is a catalog listing. SellerID is the one owning
// attribute: creation, lookup and the dashboard all go through it.
type Product struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SellerID    primitive.ObjectID `json:"sellerId" bson:"sellerId"`
	Name        string             `json:"name" bson:"name"`
	CategoryID  primitive.ObjectID `json:"categoryId" bson:"categoryId"`
	Price       float64            `json:"price" bson:"price"`
	Description string             `json:"description" bson:"description"`
	Quantity    int                `json:"quantity" bson:"quantity"`
	Features    []string           `json:"features" bson:"features"`
	Images      []string           `json:"images" bson:"images"`
	Reviews     []Review           `json:"reviews" bson:"reviews"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}

type Review struct {
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	Username  string             `json:"username" bson:"username"`
	Rating    int                `json:"rating" bson:"rating"`
	Comment   string             `json:"comment" bson:"comment"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// NewProduct is the payload a seller submits to list a product.
type NewProduct struct {
	Name        string   `json:"name" validate:"required"`
	CategoryID  string   `json:"categoryId" validate:"required"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Description string   `json:"description" validate:"required"`
	Quantity    int      `json:"quantity" validate:"required,min=1"`
	Features    []string `json:"features" validate:"required,min=1"`
	Images      []string `json:"images" validate:"required,min=1"`
}

type NewReview struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}
