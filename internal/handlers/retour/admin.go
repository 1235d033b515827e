package retour

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mosewear/mose-webshop-sub004/internal/services"
)

// ListReturns geeft alle retouren, optioneel gefilterd op status.
func (h *Handler) ListReturns(c *gin.Context) {
	rets, err := h.Orch.ListReturns(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"returns": rets, "count": len(rets)})
}

// AdminGetReturn geeft één retour, inclusief een tijdelijke downloadlink
// naar het gearchiveerde label als dat er is.
func (h *Handler) AdminGetReturn(c *gin.Context) {
	ret, err := h.Orch.GetReturn(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"return": ret}
	if ret.HasLabel() {
		if url, err := services.PresignedLabelURL(c.Request.Context(), ret.ID.String()); err == nil {
			resp["archived_label_url"] = url
		}
	}

	c.JSON(http.StatusOK, resp)
}

// MarkReceived bevestigt fysieke ontvangst van het retourpakket.
func (h *Handler) MarkReceived(c *gin.Context) {
	ret, err := h.Orch.MarkReceived(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Retour gemarkeerd als ontvangen", "return": ret})
}

// Approve keurt een ontvangen retour goed.
func (h *Handler) Approve(c *gin.Context) {
	ret, err := h.Orch.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Retour goedgekeurd", "return": ret})
}

// Refund betaalt de artikelwaarde terug via het oorspronkelijke
// PaymentIntent van de bestelling.
func (h *Handler) Refund(c *gin.Context) {
	ret, err := h.Orch.ProcessRefund(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":              "Terugbetaling verwerkt",
		"stripe_refund_id":     ret.StripeRefundID,
		"stripe_refund_status": ret.StripeRefundStatus,
		"amount":               ret.RefundAmount,
		"status":               ret.Status,
	})
}

// UpdateNotes zet de interne notities bij een retour.
func (h *Handler) UpdateNotes(c *gin.Context) {
	var req struct {
		Notes string `json:"notes" binding:"max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ongeldige gegevens"})
		return
	}

	if err := h.Orch.UpdateAdminNotes(c.Request.Context(), c.Param("id"), req.Notes); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notities opgeslagen"})
}

// Events is de live websocket-feed van retour-events voor de back-office.
func (h *Handler) Events(c *gin.Context) {
	h.Hub.Serve(c.Writer, c.Request)
}

// ScanAbandoned stuurt herinneringen voor retouren die te lang op betaling
// van het label wachten. Externe trigger (cronjob), geen eigen scheduler.
func (h *Handler) ScanAbandoned(c *gin.Context) {
	sent, err := h.Orch.ScanAbandonedLabelPayments(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reminders_sent": sent})
}

// ScanPendingLabels koopt alsnog labels voor betaalde retouren waar de
// aankoop is blijven liggen. Externe trigger, net als ScanAbandoned.
func (h *Handler) ScanPendingLabels(c *gin.Context) {
	bought, err := h.Orch.ScanPendingLabels(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"labels_bought": bought})
}
