package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace/internal/models"
	"marketplace/internal/response"
	"marketplace/internal/service"
)

type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	buyer, ok := actor(c)
	if !ok {
		return
	}
	var in models.NewOrder
	if !bind(c, &in) {
		return
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), buyer, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, gin.H{
		"message": "Order placed",
		"order":   order,
	})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), me, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"order": order})
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	var req statusRequest
	if !bind(c, &req) {
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), me, c.Param("id"), models.OrderStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{
		"message": "Order status updated",
		"order":   order,
	})
}

func (h *OrderHandler) UpdatePaymentStatus(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	var req statusRequest
	if !bind(c, &req) {
		return
	}

	order, err := h.orders.UpdatePaymentStatus(c.Request.Context(), me, c.Param("id"), models.PaymentStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{
		"message": "Payment status updated",
		"order":   order,
	})
}
