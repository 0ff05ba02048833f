package repository

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"marketplace/internal/apperr"
	"marketplace/internal/models"
)

const categoryNotFound = "Category not found"

type CategoryRepository struct {
	collection *mongo.Collection
}

func NewCategoryRepository(collection *mongo.Collection) *CategoryRepository {
	return &CategoryRepository{
		collection: collection,
	}
}

// Create stores a category, deriving its slug from the name.
func (r *CategoryRepository) Create(ctx context.Context, name string) (*models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	category := &models.Category{
		ID:   primitive.NewObjectID(),
		Name: name,
		Slug: models.Slugify(name),
	}
	if _, err := r.collection.InsertOne(ctx, category); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Validation("Category already exists")
		}
		return nil, translate(err, categoryNotFound, "insert category")
	}
	return category, nil
}

// Rename changes a category's name and recomputes the slug in the same write.
func (r *CategoryRepository) Rename(ctx context.Context, id primitive.ObjectID, name string) (*models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"name": name, "slug": models.Slugify(name)}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var category models.Category
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&category); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Validation("Category already exists")
		}
		return nil, translate(err, categoryNotFound, "rename category")
	}
	return &category, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var category models.Category
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&category); err != nil {
		return nil, translate(err, categoryNotFound, "find category")
	}
	return &category, nil
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]*models.Category, error) {
	return r.find(ctx, bson.M{}, "list categories")
}

// SearchByName matches categories whose name contains keyword, ignoring case.
func (r *CategoryRepository) SearchByName(ctx context.Context, keyword string) ([]*models.Category, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(keyword), Options: "i"}
	return r.find(ctx, bson.M{"name": pattern}, "search categories")
}

func (r *CategoryRepository) find(ctx context.Context, filter bson.M, op string) ([]*models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, translate(err, categoryNotFound, op)
	}
	defer cursor.Close(ctx)

	categories := make([]*models.Category, 0)
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, translate(err, categoryNotFound, op)
	}
	return categories, nil
}
