package repository

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"marketplace/internal/apperr"
	"marketplace/internal/models"
)

const productNotFound = "Product not found"

type ProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(collection *mongo.Collection) *ProductRepository {
	return &ProductRepository{
		collection: collection,
	}
}

// newestFirst keeps listings stable across identical reads.
var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

// Create stores a product with a fresh id and creation time.
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	product.ID = primitive.NewObjectID()
	product.CreatedAt = time.Now().UTC()
	if product.Reviews == nil {
		product.Reviews = []models.Review{}
	}

	_, err := r.collection.InsertOne(ctx, product)
	return translate(err, productNotFound, "insert product")
}

// ExistsDuplicate reports whether the seller already lists an identical
// product. This is a business rule, not an index.
func (r *ProductRepository) ExistsDuplicate(ctx context.Context, p *models.Product) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	filter := bson.M{
		"sellerId":   p.SellerID,
		"name":       p.Name,
		"categoryId": p.CategoryID,
		"price":      p.Price,
		"features":   p.Features,
		"images":     p.Images,
	}
	n, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, translate(err, productNotFound, "count duplicate products")
	}
	return n > 0, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var product models.Product
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return nil, translate(err, productNotFound, "find product")
	}
	return &product, nil
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Product, error) {
	if len(ids) == 0 {
		return []*models.Product{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, "find products by ids")
}

// FindBySeller lists every product owned by sellerID.
func (r *ProductRepository) FindBySeller(ctx context.Context, sellerID primitive.ObjectID) ([]*models.Product, error) {
	return r.find(ctx, bson.M{"sellerId": sellerID}, "find products by seller")
}

// Search matches keyword case-insensitively against name and description, and
// also returns products filed under any of categoryIDs. An empty keyword
// lists everything.
func (r *ProductRepository) Search(ctx context.Context, keyword string, categoryIDs []primitive.ObjectID) ([]*models.Product, error) {
	filter := bson.M{}
	if keyword != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(keyword), Options: "i"}
		or := []bson.M{
			{"name": pattern},
			{"description": pattern},
		}
		if len(categoryIDs) > 0 {
			or = append(or, bson.M{"categoryId": bson.M{"$in": categoryIDs}})
		}
		filter["$or"] = or
	}
	return r.find(ctx, filter, "search products")
}

func (r *ProductRepository) find(ctx context.Context, filter bson.M, op string) ([]*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, translate(err, productNotFound, op)
	}
	defer cursor.Close(ctx)

	products := make([]*models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, translate(err, productNotFound, op)
	}
	return products, nil
}

// AddReview appends a review unless the product already holds
// MaxReviewsPerProduct of them. The cap check and the push are one update.
func (r *ProductRepository) AddReview(ctx context.Context, id primitive.ObjectID, review models.Review) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"_id": id,
		"reviews." + strconv.Itoa(models.MaxReviewsPerProduct-1): bson.M{"$exists": false},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product models.Product
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$push": bson.M{"reviews": review}}, opts).Decode(&product)
	if err == nil {
		return &product, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, translate(err, productNotFound, "add review")
	}

	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, apperr.Validation("Product has reached the review limit")
}
