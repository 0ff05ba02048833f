package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"marketplace/internal/apperr"
	"marketplace/internal/models"
)

const orderNotFound = "Order not found"

type OrderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(collection *mongo.Collection) *OrderRepository {
	return &OrderRepository{
		collection: collection,
	}
}

// Create stores a new order in its initial state. Every enumerated field is
// checked before the write.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.Status == "" {
		order.Status = models.StatusPending
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = models.PaymentPending
	}
	if !order.Status.Valid() {
		return apperr.Validation(fmt.Sprintf("Invalid order status %q", order.Status))
	}
	if !order.PaymentStatus.Valid() {
		return apperr.Validation(fmt.Sprintf("Invalid payment status %q", order.PaymentStatus))
	}
	if !order.PaymentMethod.Valid() {
		return apperr.Validation(fmt.Sprintf("Invalid payment method %q", order.PaymentMethod))
	}
	if order.Items == nil {
		order.Items = []models.OrderItem{}
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	order.ID = primitive.NewObjectID()
	order.CreatedAt = time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, order)
	return translate(err, orderNotFound, "insert order")
}

func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var order models.Order
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return nil, translate(err, orderNotFound, "find order")
	}
	return &order, nil
}

// FindByProducts returns every order with at least one line item whose
// product is in productIDs. Each matching order appears once however many of
// its items match. An empty set matches nothing and issues no query.
func (r *OrderRepository) FindByProducts(ctx context.Context, productIDs []primitive.ObjectID) ([]*models.Order, error) {
	if len(productIDs) == 0 {
		return []*models.Order{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"items.product": bson.M{"$in": productIDs}}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, translate(err, orderNotFound, "find orders by products")
	}
	defer cursor.Close(ctx)

	orders := make([]*models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, translate(err, orderNotFound, "decode orders")
	}
	return orders, nil
}

// UpdateStatus moves an order to next. Values outside the enumeration are
// rejected before touching storage; an order whose current status may not
// lead to next is left as it is and reported as a validation failure.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("Invalid order status %q", next))
	}

	from := make([]string, 0, len(next.AllowedFrom()))
	for _, s := range next.AllowedFrom() {
		from = append(from, string(s))
	}
	return r.transition(ctx, id, "status", string(next), from, func(o *models.Order) error {
		return apperr.Validation(fmt.Sprintf("Cannot change order status from %s to %s", o.Status, next))
	})
}

// UpdatePaymentStatus is UpdateStatus for the payment lifecycle, where paid
// and failed are terminal.
func (r *OrderRepository) UpdatePaymentStatus(ctx context.Context, id primitive.ObjectID, next models.PaymentStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("Invalid payment status %q", next))
	}

	from := make([]string, 0, len(next.AllowedFrom()))
	for _, s := range next.AllowedFrom() {
		from = append(from, string(s))
	}
	return r.transition(ctx, id, "paymentStatus", string(next), from, func(o *models.Order) error {
		return apperr.Validation(fmt.Sprintf("Cannot change payment status from %s to %s", o.PaymentStatus, next))
	})
}

// transition sets field to next only while the stored value is one of from,
// so a concurrent change can never be overwritten with an illegal move.
func (r *OrderRepository) transition(ctx context.Context, id primitive.ObjectID, field, next string, from []string, rejected func(*models.Order) error) (*models.Order, error) {
	if len(from) > 0 {
		updateCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		filter := bson.M{"_id": id, field: bson.M{"$in": from}}
		update := bson.M{"$set": bson.M{field: next}}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

		var order models.Order
		err := r.collection.FindOneAndUpdate(updateCtx, filter, update, opts).Decode(&order)
		if err == nil {
			return &order, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, translate(err, orderNotFound, "update order "+field)
		}
	}

	current, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return nil, rejected(current)
}
