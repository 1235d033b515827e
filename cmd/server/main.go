package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"

	"github.com/mosewear/mose-webshop-sub004/internal/config"
	"github.com/mosewear/mose-webshop-sub004/internal/database"
	"github.com/mosewear/mose-webshop-sub004/internal/handlers/retour"
	"github.com/mosewear/mose-webshop-sub004/internal/payments"
	"github.com/mosewear/mose-webshop-sub004/internal/returns"
	"github.com/mosewear/mose-webshop-sub004/internal/routes"
	"github.com/mosewear/mose-webshop-sub004/internal/services"
	"github.com/mosewear/mose-webshop-sub004/internal/shipping"
	"github.com/mosewear/mose-webshop-sub004/internal/utils"
	"github.com/mosewear/mose-webshop-sub004/internal/ws"
)

func main() {
	config.Load()

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	if stripe.Key == "" {
		log.Fatal("❌ Stripe kan niet starten: STRIPE_SECRET_KEY ontbreekt")
	}
	log.Println("✅ Stripe geïnitialiseerd")

	if os.Getenv("INTERNAL_API_TOKEN") == "" {
		log.Fatal("❌ INTERNAL_API_TOKEN ontbreekt — vereist voor de interne labelaanroep")
	}

	database.ConnectDatabases()
	database.InitPreparedStatements()

	// Winkelbrede instellingen, vijf minuten gecachet.
	settings := config.NewSettingsStore(database.ScyllaSettingsLoader{}, 5*time.Minute)

	store := returns.NewScyllaStore()
	labelClient := shipping.NewClient()
	hub := ws.NewHub()
	dedup := returns.NewRedisDedup()

	notifier := &utils.ReturnNotifier{
		LogEmail:     store.LogEmail,
		FetchLabel:   labelClient.DownloadLabel,
		ArchiveLabel: services.ArchiveReturnLabel,
	}

	orch := returns.NewOrchestrator(
		store,
		payments.NewStripeGateway(),
		labelClient,
		notifier,
		hub,
		dedup,
		settings,
		config.MerchantAddress(),
	)

	r := gin.Default()
	routes.RegisterRoutes(r, retour.NewHandler(orch, hub, dedup))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 MOSE-backend gestart op poort", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("❌ Server gestopt:", err)
	}
}
