package user

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/mosewear/mose-webshop-sub004/internal/database"
	"github.com/mosewear/mose-webshop-sub004/internal/models"
	"github.com/mosewear/mose-webshop-sub004/internal/utils"
)

// Register maakt een klantaccount aan.
func Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Name     string `json:"name" binding:"required,min=2,max=100"`
		Password string `json:"password" binding:"required,min=8,max=128"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ongeldige gegevens", "details": err.Error()})
		return
	}

	session, err := database.GetShopSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Databaseverbinding mislukt"})
		return
	}

	// Bestaat het e-mailadres al?
	var existingID gocql.UUID
	if err := session.Query(`SELECT user_id FROM users_by_email WHERE email = ?`, req.Email).Scan(&existingID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Dit e-mailadres is al geregistreerd"})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Account aanmaken mislukt"})
		return
	}

	userID := gocql.TimeUUID()
	now := time.Now()

	if err := session.Query(`INSERT INTO users (user_id, email, password, name, role, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		userID, req.Email, hash, req.Name, "customer", now).Exec(); err != nil {
		log.Printf("❌ Gebruiker aanmaken mislukt: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Account aanmaken mislukt"})
		return
	}
	if err := session.Query(`INSERT INTO users_by_email (email, user_id) VALUES (?, ?)`, req.Email, userID).Exec(); err != nil {
		log.Printf("❌ users_by_email bijwerken mislukt: %v", err)
	}

	log.Printf("👤 Nieuw account: %s", req.Email)

	c.JSON(http.StatusCreated, gin.H{"message": "Account aangemaakt"})
}

// Login controleert de inloggegevens en geeft een JWT uit.
func Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ongeldige gegevens"})
		return
	}

	session, err := database.GetShopSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Databaseverbinding mislukt"})
		return
	}

	var userID gocql.UUID
	if err := session.Query(`SELECT user_id FROM users_by_email WHERE email = ?`, req.Email).Scan(&userID); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Onjuiste inloggegevens"})
		return
	}

	var hash, name, role string
	if err := session.Query(`SELECT password, name, role FROM users WHERE user_id = ?`, userID).Scan(&hash, &name, &role); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Onjuiste inloggegevens"})
		return
	}

	ok, err := utils.VerifyPassword(req.Password, hash)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Onjuiste inloggegevens"})
		return
	}

	token, err := utils.GenerateJWT(models.User{
		ID:    userID.String(),
		Email: req.Email,
		Name:  name,
		Role:  role,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Inloggen mislukt"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  gin.H{"id": userID.String(), "email": req.Email, "name": name, "role": role},
	})
}
