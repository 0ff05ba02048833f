package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"marketplace/internal/apperr"
	"marketplace/internal/logkey"
	"marketplace/internal/models"
)

type SearchResult struct {
	Products   []*models.Product  `json:"products"`
	Categories []*models.Category `json:"categories"`
}

type CatalogService struct {
	products   ProductStore
	categories CategoryStore
	validate   *validator.Validate
}

func NewCatalogService(products ProductStore, categories CategoryStore) *CatalogService {
	return &CatalogService{
		products:   products,
		categories: categories,
		validate:   NewValidator(),
	}
}

// Search matches keyword against product name and description and against
// category names; products in a matching category are included.
func (s *CatalogService) Search(ctx context.Context, keyword string) (*SearchResult, error) {
	keyword = strings.TrimSpace(keyword)

	categories := []*models.Category{}
	var categoryIDs []primitive.ObjectID
	if keyword != "" {
		found, err := s.categories.SearchByName(ctx, keyword)
		if err != nil {
			return nil, err
		}
		categories = found
		for _, c := range categories {
			categoryIDs = append(categoryIDs, c.ID)
		}
	}

	products, err := s.products.Search(ctx, keyword, categoryIDs)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Products: products, Categories: categories}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	objID, err := parseID(id, "Product not found")
	if err != nil {
		return nil, err
	}
	return s.products.FindByID(ctx, objID)
}

// CreateProduct lists a product for the acting seller, refusing an exact
// duplicate of one they already list.
func (s *CatalogService) CreateProduct(ctx context.Context, seller *models.User, in models.NewProduct) (*models.Product, error) {
	if !seller.HasRole(models.RoleSeller) {
		return nil, apperr.Forbidden("User is not a seller")
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	categoryID, err := primitive.ObjectIDFromHex(in.CategoryID)
	if err != nil {
		return nil, apperr.Validation("categoryId is invalid")
	}
	if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Validation("Category does not exist")
		}
		return nil, err
	}

	product := &models.Product{
		SellerID:    seller.ID,
		Name:        strings.TrimSpace(in.Name),
		CategoryID:  categoryID,
		Price:       in.Price,
		Description: in.Description,
		Quantity:    in.Quantity,
		Features:    in.Features,
		Images:      in.Images,
		Reviews:     []models.Review{},
	}

	dup, err := s.products.ExistsDuplicate(ctx, product)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, apperr.Validation("Product already exists")
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID.Hex()), slog.String(logkey.UserID, seller.ID.Hex()))
	return product, nil
}

func (s *CatalogService) AddReview(ctx context.Context, actor *models.User, productID string, in models.NewReview) (*models.Product, error) {
	objID, err := parseID(productID, "Product not found")
	if err != nil {
		return nil, err
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	review := models.Review{
		UserID:    actor.ID,
		Username:  actor.Username,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
		CreatedAt: time.Now().UTC(),
	}
	return s.products.AddReview(ctx, objID, review)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.categories.FindAll(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	return s.categories.Create(ctx, in.Name)
}

// RenameCategory changes the name; the store recomputes the slug.
func (s *CatalogService) RenameCategory(ctx context.Context, id string, in models.CategoryInput) (*models.Category, error) {
	objID, err := parseID(id, "Category not found")
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	return s.categories.Rename(ctx, objID, in.Name)
}
