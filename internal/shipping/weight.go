package shipping

import (
	"math"
	"strings"

	"github.com/mosewear/mose-webshop-sub004/internal/models"
)

// Gewichtsschatting per kledingtype, in kg. Dit is een heuristiek op basis
// van de productnaam, geen fysieke meting; hij dient als fallback voor oude
// artikelen zonder expliciet gewichtsveld.
var garmentWeights = []struct {
	keyword string
	kg      float64
}{
	{"hoodie", 0.65},
	{"sweater", 0.55},
	{"trui", 0.55},
	{"vest", 0.60},
	{"jacket", 0.80},
	{"jas", 0.80},
	{"longsleeve", 0.30},
	{"t-shirt", 0.25},
	{"tee", 0.25},
	{"shirt", 0.25},
	{"cap", 0.15},
	{"pet", 0.15},
	{"beanie", 0.12},
	{"muts", 0.12},
	{"sokken", 0.10},
	{"socks", 0.10},
}

const (
	defaultItemWeightKg = 0.40
	minParcelWeightKg   = 0.5
)

// EstimateItemWeight schat het gewicht van één artikel op basis van de
// productnaam. Onbekende artikelen krijgen het standaardgewicht.
func EstimateItemWeight(productName string) float64 {
	name := strings.ToLower(productName)
	for _, gw := range garmentWeights {
		if strings.Contains(name, gw.keyword) {
			return gw.kg
		}
	}
	return defaultItemWeightKg
}

// ItemWeight geeft het gewicht van één artikel: het expliciete gewicht per
// variant als dat bekend is, anders de schatting op de productnaam.
func ItemWeight(item models.ReturnItem) float64 {
	if item.WeightKg > 0 {
		return item.WeightKg
	}
	return EstimateItemWeight(item.ProductName)
}

// EstimateParcelWeight telt de gewichten per artikel op (× aantal),
// met een minimum van 0,5 kg, naar boven afgerond op één decimaal.
func EstimateParcelWeight(items []models.ReturnItem) float64 {
	var total float64
	for _, item := range items {
		total += ItemWeight(item) * float64(item.Quantity)
	}

	if total < minParcelWeightKg {
		total = minParcelWeightKg
	}

	// Kleine epsilon vóór het afronden: 0,65 + 0,55 is binair
	// 1,2000000000000002 en zou anders op 1,3 uitkomen.
	return math.Ceil(total*10-1e-9) / 10
}
