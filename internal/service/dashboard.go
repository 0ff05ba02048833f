package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"marketplace/internal/apperr"
	"marketplace/internal/models"
)

// Dashboard joins a seller's products with the orders that reference them.
type Dashboard struct {
	OrderCount   int               `json:"orderCount"`
	ProductCount int               `json:"productCount"`
	Products     []*models.Product `json:"products"`
	Orders       []*models.Order   `json:"orders"`
}

type SellerProductLister interface {
	FindBySeller(ctx context.Context, sellerID primitive.ObjectID) ([]*models.Product, error)
}

type ProductOrderFinder interface {
	FindByProducts(ctx context.Context, productIDs []primitive.ObjectID) ([]*models.Order, error)
}

type DashboardService struct {
	products SellerProductLister
	orders   ProductOrderFinder
}

func NewDashboardService(products SellerProductLister, orders ProductOrderFinder) *DashboardService {
	return &DashboardService{
		products: products,
		orders:   orders,
	}
}

// BuildDashboard is read-only. A seller with no products, or no orders,
// gets zero counts and empty collections rather than an error. The product
// read and the order read are separate, so an order placed in between may or
// may not be included.
func (s *DashboardService) BuildDashboard(ctx context.Context, sellerID primitive.ObjectID) (*Dashboard, error) {
	products, err := s.products.FindBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []*models.Product{}
	}

	orders := []*models.Order{}
	if len(products) > 0 {
		ids := make([]primitive.ObjectID, 0, len(products))
		for _, p := range products {
			ids = append(ids, p.ID)
		}
		found, err := s.orders.FindByProducts(ctx, ids)
		if err != nil {
			return nil, err
		}
		if found != nil {
			orders = found
		}
	}

	return &Dashboard{
		OrderCount:   len(orders),
		ProductCount: len(products),
		Products:     products,
		Orders:       orders,
	}, nil
}

// ViewDashboard builds the dashboard for sellerID on behalf of actor, who may
// only look at their own.
func (s *DashboardService) ViewDashboard(ctx context.Context, actor *models.User, sellerID string) (*Dashboard, error) {
	id, err := parseID(sellerID, "Seller not found")
	if err != nil {
		return nil, err
	}
	if actor.ID != id {
		return nil, apperr.Forbidden("You can only view your own dashboard")
	}
	return s.BuildDashboard(ctx, id)
}
