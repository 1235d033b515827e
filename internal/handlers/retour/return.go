package retour

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mosewear/mose-webshop-sub004/internal/returns"
)

// CreateReturn registreert een retourverzoek voor een bestelling van de klant.
func (h *Handler) CreateReturn(c *gin.Context) {
	var req struct {
		OrderID string                      `json:"order_id" binding:"required"`
		Items   []returns.ReturnItemRequest `json:"items" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ongeldige gegevens", "details": err.Error()})
		return
	}

	ret, err := h.Orch.CreateReturn(c.Request.Context(), req.OrderID, req.Items)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Retour aangemaakt",
		"return":  ret,
	})
}

// GetReturn geeft de retour terug aan de klant die erbij hoort (of een beheerder).
func (h *Handler) GetReturn(c *gin.Context) {
	ret, err := h.Orch.GetReturn(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if c.GetString("role") != "admin" && ret.Email != c.GetString("email") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Deze retour hoort niet bij jouw account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"return": ret})
}

// CreateLabelPaymentIntent maakt (of hergebruikt) het PaymentIntent
// voor de labelkosten en geeft het client secret terug.
func (h *Handler) CreateLabelPaymentIntent(c *gin.Context) {
	intent, err := h.Orch.CreateLabelPaymentIntent(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"client_secret": intent.ClientSecret,
		"payment_id":    intent.ID,
		"amount_cents":  intent.AmountCents,
		"currency":      "eur",
	})
}

// PaymentStatus is de fallback-poll voor als de Stripe-webhook (nog) niet
// is binnengekomen: we vragen het intent rechtstreeks op en bevestigen de
// betaling langs hetzelfde pad als de webhook.
func (h *Handler) PaymentStatus(c *gin.Context) {
	returnID := c.Param("id")

	ret, err := h.Orch.GetReturn(c.Request.Context(), returnID)
	if err != nil {
		respondError(c, err)
		return
	}

	if ret.ReturnLabelPaymentIntentID == "" {
		c.JSON(http.StatusOK, gin.H{"payment_status": ret.ReturnLabelPaymentStatus, "status": ret.Status})
		return
	}

	confirmed, err := h.Orch.ConfirmPaymentFromGateway(c.Request.Context(), returnID, ret.ReturnLabelPaymentIntentID)
	if err != nil {
		respondError(c, err)
		return
	}
	if confirmed {
		go h.triggerLabelGeneration(returnID)
	}

	ret, err = h.Orch.GetReturn(c.Request.Context(), returnID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment_status": ret.ReturnLabelPaymentStatus, "status": ret.Status})
}
