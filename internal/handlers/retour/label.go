package retour

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GenerateLabel koopt het retourlabel. Twee soorten aanroepers:
//   - het interne webhookpad (Bearer-token): eist dat de labelkosten
//     betaald zijn;
//   - een beheerder (sessie + rol): mag handmatig overrulen, bv. als
//     de klant contant gecrediteerd is.
//
// Bestaat er al een label, dan komt dat idempotent terug zonder tweede
// aankoop bij de provider.
func (h *Handler) GenerateLabel(c *gin.Context) {
	adminOverride := !c.GetBool("internal_caller")

	ret, err := h.Orch.GenerateLabel(c.Request.Context(), c.Param("id"), adminOverride)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"return_label_url":     ret.ReturnLabelURL,
		"return_tracking_code": ret.ReturnTrackingCode,
		"return_tracking_url":  ret.ReturnTrackingURL,
		"status":               ret.Status,
	})
}
