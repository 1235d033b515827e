package user

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mosewear/mose-webshop-sub004/internal/database"
)

// SubscribeNewsletter schrijft een e-mailadres in voor de nieuwsbrief.
// Redis-set als snelle dubbelcheck, ScyllaDB als bron van waarheid.
func SubscribeNewsletter(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ongeldig e-mailadres"})
		return
	}

	ctx := context.Background()

	added, err := database.Redis.SAdd(ctx, "newsletter:subscribers", req.Email).Result()
	if err == nil && added == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "Je bent al ingeschreven"})
		return
	}

	session, err := database.GetShopSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Databaseverbinding mislukt"})
		return
	}

	if err := session.Query(`INSERT INTO newsletter_subscribers (email, subscribed_at) VALUES (?, ?)`,
		req.Email, time.Now()).Exec(); err != nil {
		log.Printf("❌ Nieuwsbriefinschrijving opslaan mislukt: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Inschrijven mislukt"})
		return
	}

	log.Printf("📰 Nieuwsbriefinschrijving: %s", req.Email)

	c.JSON(http.StatusCreated, gin.H{"message": "Ingeschreven voor de nieuwsbrief"})
}
