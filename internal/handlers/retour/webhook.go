package retour

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"

	"github.com/mosewear/mose-webshop-sub004/internal/payments"
	"github.com/mosewear/mose-webshop-sub004/internal/shipping"
)

// StripeWebhook verwerkt payment_intent.succeeded voor labelkosten.
// Stripe levert at-least-once: het event-id wordt in Redis gemarkeerd en
// de statusovergang zelf is een CAS, dus herlevering is onschadelijk.
func (h *Handler) StripeWebhook(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := c.GetRawData()
	if err != nil {
		log.Println("❌ Webhook-payload lezen mislukt:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Body onleesbaar"})
		return
	}

	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	var event stripe.Event

	if secret == "" {
		log.Println("⚠️ Geen STRIPE_WEBHOOK_SECRET — testmodus, handtekening niet gecontroleerd")
		if err := json.Unmarshal(payload, &event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Ongeldige JSON"})
			return
		}
	} else {
		event, err = webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), secret)
		if err != nil {
			log.Println("❌ Ongeldige Stripe-handtekening:", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Ongeldige handtekening"})
			return
		}
	}

	log.Printf("📥 Stripe-event ontvangen: %s (%s)", event.Type, event.ID)

	if event.Type != "payment_intent.succeeded" {
		c.Status(http.StatusOK)
		return
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		log.Println("❌ PaymentIntent decoderen mislukt:", err)
		c.Status(http.StatusOK) // niet opnieuw laten leveren, payload blijft kapot
		return
	}

	if pi.Metadata["purpose"] != payments.MetadataPurposeReturnLabel {
		// Gewone bestelling; die flow leeft in de order-webhookverwerking.
		c.Status(http.StatusOK)
		return
	}

	returnID := pi.Metadata["return_id"]
	if returnID == "" {
		log.Println("⚠️ payment_intent.succeeded zonder return_id in metadata")
		c.Status(http.StatusOK)
		return
	}

	// Herlevering van exact hetzelfde event overslaan.
	eventKey := ""
	if event.ID != "" {
		eventKey = "stripe:event:" + event.ID
		if !h.Dedup.ClaimOnce(c.Request.Context(), eventKey, 24*time.Hour) {
			log.Printf("🔁 Stripe-event %s al verwerkt — genegeerd", event.ID)
			c.Status(http.StatusOK)
			return
		}
	}

	if _, err := h.Orch.ConfirmLabelPayment(c.Request.Context(), returnID); err != nil {
		log.Printf("❌ Betaling bevestigen voor retour %s mislukt: %v", returnID, err)
		// Claim vrijgeven, anders strandt de herlevering van Stripe
		// op de dedupe terwijl de bevestiging nooit is gelukt.
		if eventKey != "" {
			h.Dedup.Release(c.Request.Context(), eventKey)
		}
		c.Status(http.StatusInternalServerError) // Stripe levert opnieuw
		return
	}

	// Labelaankoop via een server-naar-server-aanroep van het eigen
	// labelendpoint, geauthenticeerd met het interne token. Het endpoint
	// is idempotent, dus een herlevering koopt nooit een tweede label.
	go h.triggerLabelGeneration(returnID)

	c.Status(http.StatusOK)
}

// triggerLabelGeneration roept het labelendpoint aan met het interne token.
func (h *Handler) triggerLabelGeneration(returnID string) {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/api/returns/%s/label", baseURL, returnID), nil)
	if err != nil {
		log.Printf("❌ Labelaanroep opbouwen mislukt: %v", err)
		return
	}
	req.Header.Set("Authorization", "Bearer "+os.Getenv("INTERNAL_API_TOKEN"))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Printf("❌ Interne labelaanroep voor retour %s mislukt: %v", returnID, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("⚠️ Interne labelaanroep voor retour %s gaf %d", returnID, resp.StatusCode)
	}
}

// SendcloudWebhook verwerkt parcel_status_changed van de verzendprovider.
// Het order_number-veld is overladen: met het retourvoorvoegsel is het een
// retourlabel, anders een gewone verzending. We parsen dat meteen aan de
// rand naar een getagde referentie.
func (h *Handler) SendcloudWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Body onleesbaar"})
		return
	}

	if secret := os.Getenv("SENDCLOUD_WEBHOOK_SECRET"); secret != "" {
		signature := c.GetHeader("Sendcloud-Signature")
		if !shipping.VerifyWebhookSignature(payload, signature, secret) {
			log.Println("❌ Ongeldige Sendcloud-handtekening")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Ongeldige handtekening"})
			return
		}
	} else {
		log.Println("⚠️ Geen SENDCLOUD_WEBHOOK_SECRET — handtekening niet gecontroleerd")
	}

	var event shipping.ParcelStatusEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ongeldige JSON"})
		return
	}

	if event.Action != "parcel_status_changed" {
		c.Status(http.StatusOK)
		return
	}

	ref := shipping.ParseOrderNumber(event.Parcel.OrderNumber)
	log.Printf("📥 Trackingevent: %s %s, code %d (%s)",
		ref.Kind, ref.ID, event.Parcel.Status.ID, event.Parcel.Status.Message)

	if ref.Kind != shipping.KindReturn {
		// Uitgaande verzending: valt buiten de retourflow.
		c.Status(http.StatusOK)
		return
	}

	if err := h.Orch.HandleCarrierStatus(c.Request.Context(), event.Parcel.TrackingNum, event.Parcel.Status.ID); err != nil {
		log.Printf("❌ Trackingupdate verwerken mislukt: %v", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Status(http.StatusOK)
}
