// Package retour bevat de HTTP-handlers voor de retourflow: de
// klantendpoints, de webhooks van Stripe en de verzendprovider, en de
// back-office-acties.
package retour

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mosewear/mose-webshop-sub004/internal/returns"
	"github.com/mosewear/mose-webshop-sub004/internal/ws"
)

type Handler struct {
	Orch *returns.Orchestrator
	Hub  *ws.Hub

	// Dedup begrenst herlevering van hetzelfde Stripe-event
	// (Redis SETNX in productie).
	Dedup returns.Dedup
}

func NewHandler(orch *returns.Orchestrator, hub *ws.Hub, dedup returns.Dedup) *Handler {
	return &Handler{Orch: orch, Hub: hub, Dedup: dedup}
}

// respondError vertaalt orkestratorfouten naar een statuscode en een
// leesbare reden. Validatiefouten zijn 4xx; alleen echte storingen 5xx.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, returns.ErrReturnNotFound), errors.Is(err, returns.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, returns.ErrAlreadyPaid),
		errors.Is(err, returns.ErrWrongStatus),
		errors.Is(err, returns.ErrRefundExists),
		errors.Is(err, returns.ErrNoPaymentIntent),
		errors.Is(err, returns.ErrZeroRefundAmount),
		errors.Is(err, returns.ErrReturnWindowExpired),
		errors.Is(err, returns.ErrPaymentNotCompleted):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, returns.ErrStatusConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Er ging iets mis, probeer het later opnieuw"})
	}
}
