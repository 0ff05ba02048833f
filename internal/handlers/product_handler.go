package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace/internal/cache"
	"marketplace/internal/models"
	"marketplace/internal/response"
	"marketplace/internal/service"
)

const (
	searchPrefix = "products:list:"
	productKey   = "product:"

	searchTTL  = 2 * time.Minute
	productTTL = 5 * time.Minute
)

type ProductHandler struct {
	catalog *service.CatalogService
	cache   *cache.Cache
}

func NewProductHandler(catalog *service.CatalogService, c *cache.Cache) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		cache:   c,
	}
}

// SearchProducts lists products matching ?keyword= (all products when empty).
// Responses are cached per keyword until a catalog write.
func (h *ProductHandler) SearchProducts(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("keyword"))
	cacheKey := searchPrefix + strings.ToLower(keyword)

	if cached, found := h.cache.GetValue(cacheKey); found {
		response.OK(c, http.StatusOK, cached.(gin.H))
		return
	}

	res, err := h.catalog.Search(c.Request.Context(), keyword)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := gin.H{
		"count":      len(res.Products),
		"products":   res.Products,
		"categories": res.Categories,
	}
	h.cache.Set(cacheKey, payload, searchTTL)
	response.OK(c, http.StatusOK, payload)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id := c.Param("id")
	cacheKey := productKey + id

	if cached, found := h.cache.GetValue(cacheKey); found {
		response.OK(c, http.StatusOK, gin.H{"product": cached})
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.cache.Set(cacheKey, product, productTTL)
	response.OK(c, http.StatusOK, gin.H{"product": product})
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	seller, ok := actor(c)
	if !ok {
		return
	}
	var in models.NewProduct
	if !bind(c, &in) {
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), seller, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.cache.DeleteByPrefix(searchPrefix)
	response.OK(c, http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"product": product,
	})
}

func (h *ProductHandler) AddReview(c *gin.Context) {
	reviewer, ok := actor(c)
	if !ok {
		return
	}
	var in models.NewReview
	if !bind(c, &in) {
		return
	}

	product, err := h.catalog.AddReview(c.Request.Context(), reviewer, c.Param("id"), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.cache.Delete(productKey + product.ID.Hex())
	h.cache.DeleteByPrefix(searchPrefix)
	response.OK(c, http.StatusCreated, gin.H{
		"message": "Review added",
		"product": product,
	})
}
