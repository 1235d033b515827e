package payments

import (
	"context"
	"log"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/refund"
)

// StripeGateway is de productie-implementatie van Gateway op stripe-go.
// De API-key wordt in main gezet (stripe.Key).
type StripeGateway struct{}

func NewStripeGateway() *StripeGateway {
	return &StripeGateway{}
}

func (g *StripeGateway) CreateReturnLabelIntent(ctx context.Context, returnID, orderID, email string, amountEUR float64) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(EuroToCents(amountEUR)),
		Currency: stripe.String("eur"),
		// Beperkt tot de methodes die we in de retour-checkout tonen.
		PaymentMethodTypes: stripe.StringSlice([]string{"ideal", "bancontact", "card"}),
		Metadata: map[string]string{
			"purpose":   MetadataPurposeReturnLabel,
			"return_id": returnID,
			"order_id":  orderID,
			"email":     email,
		},
	}
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		log.Printf("❌ Stripe: PaymentIntent voor retourlabel mislukt: %v", err)
		return nil, err
	}

	log.Printf("💳 PaymentIntent voor retourlabel aangemaakt: %s (€%.2f) voor retour %s", intent.ID, amountEUR, returnID)
	return intentFromStripe(intent), nil
}

func (g *StripeGateway) GetPaymentIntent(ctx context.Context, intentID string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := paymentintent.Get(intentID, params)
	if err != nil {
		return nil, err
	}
	return intentFromStripe(intent), nil
}

func (g *StripeGateway) CreateRefund(ctx context.Context, paymentIntentID string, amountEUR float64, reason string) (*Refund, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
		Amount:        stripe.Int64(EuroToCents(amountEUR)),
		Reason:        stripe.String(reason),
	}
	params.Context = ctx

	ref, err := refund.New(params)
	if err != nil {
		log.Printf("❌ Stripe: refund op %s mislukt: %v", paymentIntentID, err)
		return nil, err
	}

	log.Printf("💰 Stripe-refund aangemaakt: %s (€%.2f, status %s)", ref.ID, amountEUR, ref.Status)
	return &Refund{ID: ref.ID, Status: string(ref.Status)}, nil
}

func intentFromStripe(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		AmountCents:  pi.Amount,
		Metadata:     pi.Metadata,
	}
}
