package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gosimple/slug"
)

type Category struct {
	ID   primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name string             `json:"name" bson:"name"`
	Slug string             `json:"slug" bson:"slug"`
}

// Slugify derives a category slug from its name.
func Slugify(name string) string {
	return slug.Make(name)
}

type CategoryInput struct {
	Name string `json:"name" validate:"required"`
}
