package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace/internal/response"
	"marketplace/internal/service"
)

type DashboardHandler struct {
	dashboards *service.DashboardService
}

func NewDashboardHandler(dashboards *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

// GetDashboard answers {success, orderCount, productCount, products, orders}.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	seller, ok := actor(c)
	if !ok {
		return
	}

	d, err := h.dashboards.ViewDashboard(c.Request.Context(), seller, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{
		"orderCount":   d.OrderCount,
		"productCount": d.ProductCount,
		"products":     d.Products,
		"orders":       d.Orders,
	})
}
