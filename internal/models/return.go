package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Statussen van het retourproces, in volgorde van de levenscyclus.
const (
	ReturnStatusLabelPaymentPending   = "return_label_payment_pending"
	ReturnStatusLabelPaymentCompleted = "return_label_payment_completed"
	ReturnStatusLabelGenerated        = "return_label_generated"
	ReturnStatusInTransit             = "return_in_transit"
	ReturnStatusReceived              = "return_received"
	ReturnStatusApproved              = "return_approved"
	ReturnStatusRefundProcessing      = "refund_processing"
	ReturnStatusRefunded              = "refunded"
)

// Sub-status van de betaling voor het retourlabel.
const (
	LabelPaymentPending   = "pending"
	LabelPaymentCompleted = "completed"
)

type ReturnItem struct {
	OrderItemID     string  `json:"order_item_id"`
	Quantity        int     `json:"quantity"`
	ProductName     string  `json:"product_name"`
	PriceAtPurchase float64 `json:"price_at_purchase"`
	WeightKg        float64 `json:"weight_kg,omitempty"` // per stuk; 0 = onbekend
	Reason          string  `json:"reason"`
}

type Return struct {
	ID      gocql.UUID `json:"id" db:"return_id"`
	OrderID gocql.UUID `json:"order_id" db:"order_id"`
	Email   string     `json:"email" db:"email"`

	Status      string       `json:"status" db:"status"`
	ReturnItems []ReturnItem `json:"return_items" db:"return_items"`

	// Labelkosten + Stripe PaymentIntent voor die kosten.
	ReturnLabelCostInclVAT     float64 `json:"return_label_cost_incl_vat" db:"return_label_cost_incl_vat"`
	ReturnLabelPaymentIntentID string  `json:"return_label_payment_intent_id,omitempty" db:"return_label_payment_intent_id"`
	ReturnLabelPaymentStatus   string  `json:"return_label_payment_status" db:"return_label_payment_status"`

	ReturnLabelURL     string `json:"return_label_url,omitempty" db:"return_label_url"`
	ReturnTrackingCode string `json:"return_tracking_code,omitempty" db:"return_tracking_code"`
	ReturnTrackingURL  string `json:"return_tracking_url,omitempty" db:"return_tracking_url"`

	// Terugbetaling van de artikelen (labelkosten worden nooit terugbetaald).
	RefundAmount       float64 `json:"refund_amount" db:"refund_amount"`
	StripeRefundID     string  `json:"stripe_refund_id,omitempty" db:"stripe_refund_id"`
	StripeRefundStatus string  `json:"stripe_refund_status,omitempty" db:"stripe_refund_status"`

	LabelPaymentPendingAt *time.Time `json:"label_payment_pending_at,omitempty" db:"label_payment_pending_at"`
	LabelGeneratedAt      *time.Time `json:"label_generated_at,omitempty" db:"label_generated_at"`
	ApprovedAt            *time.Time `json:"approved_at,omitempty" db:"approved_at"`
	RefundedAt            *time.Time `json:"refunded_at,omitempty" db:"refunded_at"`

	AdminNotes string    `json:"admin_notes,omitempty" db:"admin_notes"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// GoodsValue berekent de waarde van de geretourneerde artikelen:
// prijs bij aankoop × aantal, exclusief de labelkosten.
func (r *Return) GoodsValue() float64 {
	var total float64
	for _, item := range r.ReturnItems {
		total += item.PriceAtPurchase * float64(item.Quantity)
	}
	return total
}

func (r *Return) HasLabel() bool {
	return r.ReturnLabelURL != ""
}

func (r *Return) HasRefund() bool {
	return r.StripeRefundID != ""
}
