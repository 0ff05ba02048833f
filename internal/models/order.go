package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusCancel     OrderStatus = "Cancel"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
)

// statusPredecessors lists, for every status, the states it may be entered from.
var statusPredecessors = map[OrderStatus][]OrderStatus{
	StatusPending:    nil,
	StatusProcessing: {StatusPending},
	StatusShipped:    {StatusProcessing},
	StatusDelivered:  {StatusShipped},
	StatusCancel:     {StatusPending, StatusProcessing},
}

func (s OrderStatus) Valid() bool {
	_, ok := statusPredecessors[s]
	return ok
}

// AllowedFrom returns the states an order must be in to move to s.
func (s OrderStatus) AllowedFrom() []OrderStatus {
	return statusPredecessors[s]
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, from := range statusPredecessors[next] {
		if from == s {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return true
	}
	return false
}

// AllowedFrom returns the payment states p may be entered from. Paid and
// failed are terminal, so only Pending ever moves.
func (p PaymentStatus) AllowedFrom() []PaymentStatus {
	switch p {
	case PaymentPaid, PaymentFailed:
		return []PaymentStatus{PaymentPending}
	}
	return nil
}

func (p PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, from := range next.AllowedFrom() {
		if from == p {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "Credit Card"
	PaymentPayPal         PaymentMethod = "PayPal"
	PaymentCashOnDelivery PaymentMethod = "Cash on Delivery"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentPayPal, PaymentCashOnDelivery:
		return true
	}
	return false
}

// OrderItem is a snapshot taken when the order is placed. Name and Price are
// never refreshed from the live product.
type OrderItem struct {
	Product  primitive.ObjectID `json:"product" bson:"product"`
	Name     string             `json:"name" bson:"name"`
	Quantity int                `json:"quantity" bson:"quantity"`
	Price    float64            `json:"price" bson:"price"`
}

// ShippingAddress is copied into the order, not referenced.
type ShippingAddress struct {
	FullName     string `json:"fullName" bson:"fullName" validate:"required"`
	MobileNumber string `json:"mobileNumber" bson:"mobileNumber"`
	Address      string `json:"address" bson:"address" validate:"required"`
	Apartment    string `json:"apartment,omitempty" bson:"apartment,omitempty"`
	City         string `json:"city" bson:"city" validate:"required"`
	LandMark     string `json:"landMark,omitempty" bson:"landMark,omitempty"`
	State        string `json:"state" bson:"state"`
	ZipCode      string `json:"zipCode" bson:"zipCode" validate:"required"`
}

type Order struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SellerID        primitive.ObjectID `json:"sellerId" bson:"sellerId"`
	User            primitive.ObjectID `json:"user" bson:"user"`
	Items           []OrderItem        `json:"items" bson:"items"`
	TotalPrice      float64            `json:"totalPrice" bson:"totalPrice"`
	Status          OrderStatus        `json:"status" bson:"status"`
	ShippingAddress ShippingAddress    `json:"shippingAddress" bson:"shippingAddress"`
	PaymentID       string             `json:"paymentId,omitempty" bson:"paymentId,omitempty"`
	PaymentStatus   PaymentStatus      `json:"paymentStatus" bson:"paymentStatus"`
	PaymentMethod   PaymentMethod      `json:"paymentMethod" bson:"paymentMethod"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
}

// Involves reports whether id is the buyer or the seller of the order.
func (o *Order) Involves(id primitive.ObjectID) bool {
	return o.User == id || o.SellerID == id
}

type NewOrderItem struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type NewOrder struct {
	Items           []NewOrderItem  `json:"items" validate:"required,min=1,dive"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" validate:"required"`
	PaymentID       string          `json:"paymentId"`
}
