package routes

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mosewear/mose-webshop-sub004/internal/handlers/product"
	"github.com/mosewear/mose-webshop-sub004/internal/handlers/retour"
	"github.com/mosewear/mose-webshop-sub004/internal/handlers/user"
	"github.com/mosewear/mose-webshop-sub004/internal/middleware"
)

// RegisterRoutes koppelt alle endpoints aan de Gin-engine.
func RegisterRoutes(r *gin.Engine, h *retour.Handler) {
	corsConfig := cors.DefaultConfig()
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		corsConfig.AllowOrigins = strings.Split(origins, ",")
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	api := r.Group("/api")

	// --- Auth & nieuwsbrief ---
	api.POST("/auth/register", user.Register)
	api.POST("/auth/login", middleware.LoginRateLimit(), user.Login)
	api.POST("/newsletter", user.SubscribeNewsletter)

	// --- Catalogus ---
	api.GET("/products", product.GetProducts)
	api.GET("/products/search", product.SearchProducts)
	api.GET("/products/:id", product.GetProduct)

	// --- Webhooks (geen sessie; eigen authenticatie) ---
	api.POST("/webhooks/stripe", h.StripeWebhook)
	api.POST("/webhooks/sendcloud", h.SendcloudWebhook)

	// --- Retouren: klant ---
	authed := api.Group("", middleware.AuthRequired())
	authed.POST("/returns", h.CreateReturn)
	authed.GET("/returns/:id", h.GetReturn)
	authed.POST("/returns/:id/payment-intent", h.CreateLabelPaymentIntent)
	authed.GET("/returns/:id/payment-status", h.PaymentStatus)

	// --- Labelaankoop: intern token óf beheerder ---
	api.POST("/returns/:id/label", middleware.InternalOrAdmin, h.GenerateLabel)

	// --- Interne automatisering ---
	api.POST("/internal/scan-abandoned", middleware.InternalOnly, h.ScanAbandoned)
	api.POST("/internal/scan-pending-labels", middleware.InternalOnly, h.ScanPendingLabels)

	// --- Back-office ---
	admin := api.Group("/admin", middleware.AuthRequired(), middleware.RequireAdmin)
	admin.GET("/returns", h.ListReturns)
	admin.GET("/returns/events", h.Events)
	admin.GET("/returns/:id", h.AdminGetReturn)
	admin.PUT("/returns/:id/received", h.MarkReceived)
	admin.PUT("/returns/:id/approve", h.Approve)
	admin.POST("/returns/:id/refund", h.Refund)
	admin.PUT("/returns/:id/notes", h.UpdateNotes)
	admin.POST("/products", product.CreateProduct)
	admin.PUT("/products/:id", product.UpdateProduct)
	admin.DELETE("/products/:id", product.DeleteProduct)
}
