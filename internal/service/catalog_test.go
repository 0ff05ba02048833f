package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"marketplace/internal/apperr"
	"marketplace/internal/models"
	"marketplace/internal/storetest"
)

func TestCreateProduct(t *testing.T) {
	categories := storetest.NewCategories("Kitchen")
	kitchen := categories.ByName("Kitchen")
	products := storetest.NewProducts()
	svc := NewCatalogService(products, categories)
	seller := &models.User{ID: primitive.NewObjectID(), Role: models.RoleSeller}

	in := models.NewProduct{
		Name:        "Mug",
		CategoryID:  kitchen.ID.Hex(),
		Price:       4.5,
		Description: "Stoneware",
		Quantity:    10,
		Features:    []string{"dishwasher safe"},
		Images:      []string{"mug.jpg"},
	}

	p, err := svc.CreateProduct(context.Background(), seller, in)
	require.NoError(t, err)
	assert.Equal(t, seller.ID, p.SellerID)
	assert.NotNil(t, p.Reviews)

	t.Run("duplicate", func(t *testing.T) {
		_, err := svc.CreateProduct(context.Background(), seller, in)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("same listing by another seller", func(t *testing.T) {
		other := &models.User{ID: primitive.NewObjectID(), Role: models.RoleSeller}
		_, err := svc.CreateProduct(context.Background(), other, in)
		assert.NoError(t, err)
	})

	t.Run("unknown category", func(t *testing.T) {
		bad := in
		bad.Name = "Bowl"
		bad.CategoryID = primitive.NewObjectID().Hex()
		_, err := svc.CreateProduct(context.Background(), seller, bad)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("missing images", func(t *testing.T) {
		bad := in
		bad.Images = nil
		_, err := svc.CreateProduct(context.Background(), seller, bad)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("buyer", func(t *testing.T) {
		buyer := &models.User{ID: primitive.NewObjectID(), Role: models.RoleBuyer}
		_, err := svc.CreateProduct(context.Background(), buyer, in)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})
}

func TestSearch(t *testing.T) {
	categories := storetest.NewCategories("Garden", "Kitchen")
	garden := categories.ByName("Garden")
	products := storetest.NewProducts(
		&models.Product{Name: "Hose", Description: "25m", CategoryID: garden.ID},
		&models.Product{Name: "Teapot", Description: "Cast iron kettle"},
		&models.Product{Name: "Mug", Description: "Stoneware"},
	)
	svc := NewCatalogService(products, categories)

	t.Run("all", func(t *testing.T) {
		res, err := svc.Search(context.Background(), "")
		require.NoError(t, err)
		assert.Len(t, res.Products, 3)
		assert.NotNil(t, res.Categories)
	})

	t.Run("description", func(t *testing.T) {
		res, err := svc.Search(context.Background(), "KETTLE")
		require.NoError(t, err)
		require.Len(t, res.Products, 1)
		assert.Equal(t, "Teapot", res.Products[0].Name)
	})

	t.Run("category name", func(t *testing.T) {
		res, err := svc.Search(context.Background(), "gard")
		require.NoError(t, err)
		require.Len(t, res.Products, 1)
		assert.Equal(t, "Hose", res.Products[0].Name)
		require.Len(t, res.Categories, 1)
		assert.Equal(t, "garden", res.Categories[0].Slug)
	})

	t.Run("regex metacharacters are literal", func(t *testing.T) {
		res, err := svc.Search(context.Background(), ".*")
		require.NoError(t, err)
		assert.Empty(t, res.Products)
	})
}

func TestAddReview(t *testing.T) {
	p := &models.Product{Name: "Mug"}
	products := storetest.NewProducts(p)
	svc := NewCatalogService(products, storetest.NewCategories())
	buyer := &models.User{ID: primitive.NewObjectID(), Username: "ana"}

	got, err := svc.AddReview(context.Background(), buyer, p.ID.Hex(), models.NewReview{Rating: 5, Comment: " great "})
	require.NoError(t, err)
	require.Len(t, got.Reviews, 1)
	assert.Equal(t, "great", got.Reviews[0].Comment)
	assert.Equal(t, buyer.ID, got.Reviews[0].UserID)

	_, err = svc.AddReview(context.Background(), buyer, p.ID.Hex(), models.NewReview{Rating: 9})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.AddReview(context.Background(), buyer, primitive.NewObjectID().Hex(), models.NewReview{Rating: 3})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCategories(t *testing.T) {
	categories := storetest.NewCategories()
	svc := NewCatalogService(storetest.NewProducts(), categories)

	c, err := svc.CreateCategory(context.Background(), models.CategoryInput{Name: "Home Decor"})
	require.NoError(t, err)
	assert.Equal(t, "home-decor", c.Slug)

	_, err = svc.CreateCategory(context.Background(), models.CategoryInput{Name: "Home Decor"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	renamed, err := svc.RenameCategory(context.Background(), c.ID.Hex(), models.CategoryInput{Name: "Outdoor Living"})
	require.NoError(t, err)
	assert.Equal(t, "outdoor-living", renamed.Slug)

	_, err = svc.CreateCategory(context.Background(), models.CategoryInput{Name: "  "})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	all, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
