package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"marketplace/internal/apperr"
	"marketplace/internal/logkey"
	"marketplace/internal/models"
)

const orderNotFound = "Order not found"

type OrderService struct {
	orders   OrderStore
	products ProductStore
	validate *validator.Validate
}

func NewOrderService(orders OrderStore, products ProductStore) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		validate: NewValidator(),
	}
}

// PlaceOrder records an order for buyer. Item names and prices are copied
// from the products as they are now and never change afterwards. All items
// must come from the same seller.
func (s *OrderService) PlaceOrder(ctx context.Context, buyer *models.User, in models.NewOrder) (*models.Order, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if !in.PaymentMethod.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("Invalid payment method %q", in.PaymentMethod))
	}

	ids := make([]primitive.ObjectID, 0, len(in.Items))
	for _, it := range in.Items {
		id, err := parseID(it.ProductID, "Product not found")
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	var sellerID primitive.ObjectID
	items := make([]models.OrderItem, 0, len(in.Items))
	var total float64
	for i, it := range in.Items {
		p, ok := byID[ids[i]]
		if !ok {
			return nil, apperr.NotFound("Product not found")
		}
		if sellerID.IsZero() {
			sellerID = p.SellerID
		} else if p.SellerID != sellerID {
			return nil, apperr.Validation("All items in an order must come from the same seller")
		}
		items = append(items, models.OrderItem{
			Product:  p.ID,
			Name:     p.Name,
			Quantity: it.Quantity,
			Price:    p.Price,
		})
		total += p.Price * float64(it.Quantity)
	}

	order := &models.Order{
		SellerID:        sellerID,
		User:            buyer.ID,
		Items:           items,
		TotalPrice:      math.Round(total*100) / 100,
		Status:          models.StatusPending,
		ShippingAddress: in.ShippingAddress,
		PaymentID:       in.PaymentID,
		PaymentStatus:   models.PaymentPending,
		PaymentMethod:   in.PaymentMethod,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID.Hex()), slog.String(logkey.UserID, buyer.ID.Hex()))
	return order, nil
}

// Get returns an order to its buyer, its seller, or an admin. Anyone else is
// told it does not exist.
func (s *OrderService) Get(ctx context.Context, actor *models.User, id string) (*models.Order, error) {
	objID, err := parseID(id, orderNotFound)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.FindByID(ctx, objID)
	if err != nil {
		return nil, err
	}
	if !actor.HasRole(models.RoleAdmin) && !order.Involves(actor.ID) {
		return nil, apperr.NotFound(orderNotFound)
	}
	return order, nil
}

// UpdateStatus advances the fulfillment state. Only the order's seller or an
// admin may do so, and only along the lifecycle graph.
func (s *OrderService) UpdateStatus(ctx context.Context, actor *models.User, id string, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("Invalid order status %q", next))
	}
	objID, err := s.authorizeFulfillment(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.UpdateStatus(ctx, objID, next)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "order status changed",
		slog.String("order_id", order.ID.Hex()), slog.String("status", string(order.Status)),
		slog.String(logkey.UserID, actor.ID.Hex()))
	return order, nil
}

func (s *OrderService) UpdatePaymentStatus(ctx context.Context, actor *models.User, id string, next models.PaymentStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("Invalid payment status %q", next))
	}
	objID, err := s.authorizeFulfillment(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.UpdatePaymentStatus(ctx, objID, next)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "order payment status changed",
		slog.String("order_id", order.ID.Hex()), slog.String("payment_status", string(order.PaymentStatus)),
		slog.String(logkey.UserID, actor.ID.Hex()))
	return order, nil
}

func (s *OrderService) authorizeFulfillment(ctx context.Context, actor *models.User, id string) (primitive.ObjectID, error) {
	objID, err := parseID(id, orderNotFound)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if actor.HasRole(models.RoleAdmin) {
		return objID, nil
	}

	order, err := s.orders.FindByID(ctx, objID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if order.SellerID != actor.ID {
		return primitive.NilObjectID, apperr.NotFound(orderNotFound)
	}
	return objID, nil
}
