package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/mosewear/mose-webshop-sub004/internal/models"
)

func Load() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Geen .env bestand gevonden — we gaan verder met de omgevingsvariabelen van het systeem")
	} else {
		log.Println("✅ .env bestand geladen")
	}
}

// MerchantAddress is het retouradres van het magazijn. Bij een retourlabel
// is dit de ontvanger (de klant is de afzender).
func MerchantAddress() models.Address {
	return models.Address{
		Name:        getEnv("MERCHANT_NAME", "MOSE Wear B.V."),
		CompanyName: getEnv("MERCHANT_NAME", "MOSE Wear B.V."),
		Street:      getEnv("MERCHANT_STREET", "Industrieweg"),
		HouseNumber: getEnv("MERCHANT_HOUSE_NUMBER", "14"),
		PostalCode:  getEnv("MERCHANT_POSTAL_CODE", "1043 AH"),
		City:        getEnv("MERCHANT_CITY", "Amsterdam"),
		Country:     getEnv("MERCHANT_COUNTRY", "NL"),
		Phone:       os.Getenv("MERCHANT_PHONE"),
		Email:       getEnv("MERCHANT_EMAIL", "retouren@mosewear.nl"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
