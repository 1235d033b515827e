package payments

import "context"

// Intent is de voor ons relevante doorsnede van een Stripe PaymentIntent.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string // bv. "requires_payment_method", "processing", "succeeded"
	AmountCents  int64
	Metadata     map[string]string
}

// Refund is de voor ons relevante doorsnede van een Stripe Refund.
type Refund struct {
	ID     string
	Status string // "pending", "succeeded", "failed", ...
}

const (
	IntentStatusSucceeded = "succeeded"
	RefundStatusSucceeded = "succeeded"

	// MetadataPurposeReturnLabel markeert het PaymentIntent van de labelkosten,
	// zodat de Stripe-webhook het van gewone bestellingen kan onderscheiden.
	MetadataPurposeReturnLabel = "return_label"
)

// Gateway abstraheert de betaalprovider, zodat de orkestrator
// in tests tegen een fake kan draaien.
type Gateway interface {
	// CreateReturnLabelIntent maakt een PaymentIntent voor de vaste labelkosten.
	CreateReturnLabelIntent(ctx context.Context, returnID, orderID, email string, amountEUR float64) (*Intent, error)

	// GetPaymentIntent haalt een bestaand PaymentIntent op.
	GetPaymentIntent(ctx context.Context, intentID string) (*Intent, error)

	// CreateRefund maakt een terugbetaling aan op het opgegeven PaymentIntent
	// (bij een retour: het oorspronkelijke order-intent, nooit het label-intent).
	CreateRefund(ctx context.Context, paymentIntentID string, amountEUR float64, reason string) (*Refund, error)
}
