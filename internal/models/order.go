package models

import (
	"time"

	"github.com/gocql/gocql"
)

type OrderItem struct {
	OrderItemID string  `json:"order_item_id"`
	ProductID   string  `json:"product_id"`
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	WeightKg    float64 `json:"weight_kg,omitempty"` // 0 = onbekend
}

type Order struct {
	ID                    gocql.UUID  `json:"id" db:"order_id"`
	OrderNumber           string      `json:"order_number" db:"order_number"`
	Email                 string      `json:"email" db:"email"`
	StripePaymentIntentID string      `json:"stripe_payment_intent_id" db:"stripe_payment_intent_id"`
	TotalPrice            float64     `json:"total_price" db:"total_price"`
	Status                string      `json:"status" db:"status"`
	ShippingAddress       Address     `json:"shipping_address" db:"shipping_address"`
	Items                 []OrderItem `json:"items" db:"items"`
	CreatedAt             time.Time   `json:"created_at" db:"created_at"`
}
