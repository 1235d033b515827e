package payments

import "math"

// EuroToCents zet een bedrag in euro's om naar centen voor Stripe.
// Afronding: half-up op de dichtstbijzijnde cent. Een simpele cast
// (int64(x * 100)) kapt af en geeft bij 29.95 → 2994 door float-ruis.
func EuroToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CentsToEuro is de omgekeerde conversie, voor bedragen uit Stripe.
func CentsToEuro(cents int64) float64 {
	return float64(cents) / 100
}
