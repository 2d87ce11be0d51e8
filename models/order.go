package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type OrderStatus string
type OrderType string

const (
	// Order statuses (kitchen flow)
	OrderStatusPending   OrderStatus = "pending"   // Order placed, awaiting payment/confirmation
	OrderStatusPaid      OrderStatus = "paid"      // Payment captured by the webhook
	OrderStatusConfirmed OrderStatus = "confirmed" // Accepted by the restaurant
	OrderStatusPreparing OrderStatus = "preparing" // On the kitchen board
	OrderStatusReady     OrderStatus = "ready"     // Ready for pickup / out for delivery
	OrderStatusCompleted OrderStatus = "completed" // Handed over to the customer
	OrderStatusCancelled OrderStatus = "cancelled" // Cancelled before completion

	OrderTypePickup   OrderType = "pickup"
	OrderTypeDelivery OrderType = "delivery"
)

// orderTransitions is the server-enforced legality map. The happy path is
// pending → preparing → ready → completed; cancelled is reachable from any
// non-terminal state.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusPaid, OrderStatusConfirmed, OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPaid:      {OrderStatusConfirmed, OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing: {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:     {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseOrderStatus maps a request string to a known status.
func ParseOrderStatus(status string) (OrderStatus, error) {
	s := OrderStatus(strings.ToLower(status))
	if _, ok := orderTransitions[s]; !ok {
		return "", errors.New("invalid order status")
	}
	return s, nil
}

func ParseOrderType(orderType string) (OrderType, error) {
	switch t := OrderType(strings.ToLower(orderType)); t {
	case OrderTypePickup, OrderTypeDelivery:
		return t, nil
	default:
		return "", errors.New("invalid order type")
	}
}

type Order struct {
	ID            string          `gorm:"primaryKey" json:"id"`
	OrderNumber   string          `gorm:"uniqueIndex;not null" json:"order_number"`
	CustomerName  string          `gorm:"not null" json:"customer_name"`
	CustomerPhone string          `gorm:"not null" json:"customer_phone"`
	CustomerEmail string          `json:"customer_email,omitempty"`
	OrderType     OrderType       `gorm:"type:VARCHAR(10);default:'pickup'" json:"order_type"`
	Status        OrderStatus     `gorm:"type:VARCHAR(20);default:'pending';index" json:"status"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(10,2)" json:"subtotal"`
	Tax           decimal.Decimal `gorm:"type:numeric(10,2)" json:"tax"`
	DeliveryFee   decimal.Decimal `gorm:"type:numeric(10,2)" json:"delivery_fee"`
	Total         decimal.Decimal `gorm:"type:numeric(10,2)" json:"total"`
	// Structured address, delivery orders only.
	DeliveryAddress datatypes.JSON `json:"delivery_address,omitempty"`
	Notes           string         `json:"notes,omitempty"`
	UserID          *string        `gorm:"index" json:"user_id,omitempty"`
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type OrderItem struct {
	ID       uint            `gorm:"primaryKey" json:"id"`
	OrderID  string          `gorm:"index" json:"order_id"`
	ItemID   string          `json:"item_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `gorm:"type:numeric(10,2)" json:"price"`
	Quantity int             `json:"quantity"`
	Prepared bool            `gorm:"default:false" json:"prepared"`
}

// NewOrderNumber generates a human-readable unique reference,
// e.g. ORD-20250908-3F2A.
func NewOrderNumber() string {
	frag := strings.ToUpper(uuid.NewString()[:4])
	return "ORD-" + time.Now().Format("20060102") + "-" + frag
}

// RecomputeTotals derives subtotal from the items and re-establishes
// total = subtotal + tax + delivery fee (delivery orders only).
func (o *Order) RecomputeTotals(taxRate, deliveryFee decimal.Decimal) {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	o.Subtotal = subtotal.Round(2)
	o.Tax = subtotal.Mul(taxRate).Round(2)
	o.DeliveryFee = decimal.Zero
	if o.OrderType == OrderTypeDelivery {
		o.DeliveryFee = deliveryFee.Round(2)
	}
	o.Total = o.Subtotal.Add(o.Tax).Add(o.DeliveryFee)
}
