package product

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/mosewear/mose-webshop-sub004/internal/database"
	"github.com/mosewear/mose-webshop-sub004/internal/models"
	"github.com/mosewear/mose-webshop-sub004/internal/services"
)

// GetProducts geeft de catalogus terug.
func GetProducts(c *gin.Context) {
	session, err := database.GetShopSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Databaseverbinding mislukt"})
		return
	}

	iter := session.Query(`SELECT product_id, name, description, price, stock, category, weight_kg, created_at, updated_at FROM products`).Iter()

	var products []models.Product
	var p models.Product
	for iter.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Category, &p.WeightKg, &p.CreatedAt, &p.UpdatedAt) {
		products = append(products, p)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Producten lezen mislukt"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

// GetProduct geeft één product.
func GetProduct(c *gin.Context) {
	productUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ongeldig product-id"})
		return
	}

	session, err := database.GetShopSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Databaseverbinding mislukt"})
		return
	}

	p := models.Product{ID: gocql.UUID(productUUID)}
	err = session.Query(`SELECT name, description, price, stock, category, weight_kg, created_at, updated_at
		FROM products WHERE product_id = ?`, gocql.UUID(productUUID)).
		Scan(&p.Name, &p.Description, &p.Price, &p.Stock, &p.Category, &p.WeightKg, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product niet gevonden"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": p})
}

// CreateProduct voegt een product toe (beheerder) en indexeert het
// in Elasticsearch.
func CreateProduct(c *gin.Context) {
	var req struct {
		Name        string  `json:"name" binding:"required,min=2,max=200"`
		Description string  `json:"description" binding:"max=5000"`
		Price       float64 `json:"price" binding:"required,gt=0"`
		Stock       int     `json:"stock" binding:"min=0"`
		Category    string  `json:"category" binding:"max=100"`
		WeightKg    float64 `json:"weight_kg" binding:"min=0"`
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

	now := time.Now()
	p := models.Product{
		ID:          gocql.TimeUUID(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		WeightKg:    req.WeightKg,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = session.Query(`INSERT INTO products (product_id, name, description, price, stock, category, weight_kg, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.Category, p.WeightKg, p.CreatedAt, p.UpdatedAt).Exec()
	if err != nil {
		log.Printf("❌ Product aanmaken mislukt: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Product aanmaken mislukt"})
		return
	}

	services.IndexProduct(p)

	c.JSON(http.StatusCreated, gin.H{"message": "Product aangemaakt", "product": p})
}

// UpdateProduct werkt een product bij (beheerder) en herindexeert het.
func UpdateProduct(c *gin.Context) {
	productUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ongeldig product-id"})
		return
	}

	var req struct {
		Name        string  `json:"name" binding:"required,min=2,max=200"`
		Description string  `json:"description" binding:"max=5000"`
		Price       float64 `json:"price" binding:"required,gt=0"`
		Stock       int     `json:"stock" binding:"min=0"`
		Category    string  `json:"category" binding:"max=100"`
		WeightKg    float64 `json:"weight_kg" binding:"min=0"`
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

	p := models.Product{ID: gocql.UUID(productUUID)}
	if err := session.Query(`SELECT created_at FROM products WHERE product_id = ?`, p.ID).Scan(&p.CreatedAt); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product niet gevonden"})
		return
	}

	p.Name = req.Name
	p.Description = req.Description
	p.Price = req.Price
	p.Stock = req.Stock
	p.Category = req.Category
	p.WeightKg = req.WeightKg
	p.UpdatedAt = time.Now()

	err = session.Query(`UPDATE products SET name = ?, description = ?, price = ?, stock = ?, category = ?, weight_kg = ?, updated_at = ?
		WHERE product_id = ?`,
		p.Name, p.Description, p.Price, p.Stock, p.Category, p.WeightKg, p.UpdatedAt, p.ID).Exec()
	if err != nil {
		log.Printf("❌ Product bijwerken mislukt: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Product bijwerken mislukt"})
		return
	}

	services.IndexProduct(p)

	c.JSON(http.StatusOK, gin.H{"message": "Product bijgewerkt", "product": p})
}

// DeleteProduct verwijdert een product (beheerder) en haalt het uit de index.
func DeleteProduct(c *gin.Context) {
	productUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ongeldig product-id"})
		return
	}

	session, err := database.GetShopSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Databaseverbinding mislukt"})
		return
	}

	if err := session.Query(`DELETE FROM products WHERE product_id = ?`, gocql.UUID(productUUID)).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Product verwijderen mislukt"})
		return
	}

	services.DeleteProductFromIndex(productUUID.String())

	c.JSON(http.StatusOK, gin.H{"message": "Product verwijderd"})
}

// SearchProducts zoekt in de catalogus via Elasticsearch.
func SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Zoekterm (q) is verplicht"})
		return
	}

	products, err := services.SearchProducts(c.Request.Context(), query, 20)
	if err != nil {
		log.Printf("❌ Zoeken mislukt: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Zoeken mislukt"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}
