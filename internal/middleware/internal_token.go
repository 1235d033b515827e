package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// ValidInternalToken controleert het gedeelde geheim van server-naar-server
// aanroepen (bv. de Stripe-webhook die het labelendpoint aanroept).
// Vergelijking in constante tijd, zodat het token niet via timing lekt.
func ValidInternalToken(authHeader string) bool {
	secret := os.Getenv("INTERNAL_API_TOKEN")
	if secret == "" {
		return false
	}

	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}

// InternalOnly laat alleen aanroepen met het interne token door.
func InternalOnly(c *gin.Context) {
	if !ValidInternalToken(c.GetHeader("Authorization")) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Ongeldig intern token"})
		c.Abort()
		return
	}
	c.Next()
}

// InternalOrAdmin accepteert beide aanroepers van het labelendpoint:
// het interne webhookpad (Bearer-token) of een ingelogde beheerder.
// De handler leest "internal_caller" om de striktere webhook-precondities
// toe te passen.
func InternalOrAdmin(c *gin.Context) {
	if ValidInternalToken(c.GetHeader("Authorization")) {
		c.Set("internal_caller", true)
		c.Next()
		return
	}

	// Geen intern token: dan moet het een beheerder met sessie zijn.
	AuthRequired()(c)
	if c.IsAborted() {
		return
	}
	RequireAdmin(c)
}
