package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace/internal/cache"
	"marketplace/internal/models"
	"marketplace/internal/response"
	"marketplace/internal/service"
)

type CategoryHandler struct {
	catalog *service.CatalogService
	cache   *cache.Cache
}

func NewCategoryHandler(catalog *service.CatalogService, c *cache.Cache) *CategoryHandler {
	return &CategoryHandler{
		catalog: catalog,
		cache:   c,
	}
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{
		"count":      len(categories),
		"categories": categories,
	})
}

// CreateCategory adds a category. Searches match on category names, so
// cached search results are dropped on every category write.
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var in models.CategoryInput
	if !bind(c, &in) {
		return
	}

	category, err := h.catalog.CreateCategory(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.cache.DeleteByPrefix(searchPrefix)
	response.OK(c, http.StatusCreated, gin.H{
		"message":  "Category created",
		"category": category,
	})
}

// UpdateCategory renames a category.
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var in models.CategoryInput
	if !bind(c, &in) {
		return
	}

	category, err := h.catalog.RenameCategory(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.cache.DeleteByPrefix(searchPrefix)
	response.OK(c, http.StatusOK, gin.H{
		"message":  "Category updated",
		"category": category,
	})
}
