package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin controleert dat de ingelogde gebruiker de rol "admin" heeft.
func RequireAdmin(c *gin.Context) {
	role, exists := c.Get("role")
	if !exists || role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Alleen toegankelijk voor beheerders"})
		c.Abort()
		return
	}
	c.Next()
}
