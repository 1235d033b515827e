package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEuroToCents(t *testing.T) {
	cases := []struct {
		name   string
		amount float64
		want   int64
	}{
		{"labelkosten", 4.95, 495},
		{"float-ruis bij 29.95", 29.95, 2995},
		{"rond bedrag", 50.00, 5000},
		{"half-up omhoog", 0.005, 1},
		{"nul", 0, 0},
		{"groot bedrag", 1234.56, 123456},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EuroToCents(tc.amount))
		})
	}
}

func TestCentsToEuro(t *testing.T) {
	assert.Equal(t, 29.95, CentsToEuro(2995))
	assert.Equal(t, 4.95, CentsToEuro(495))
	assert.Equal(t, 0.0, CentsToEuro(0))
}

// Een naïeve cast kapt 29.95*100 af naar 2994; de afronding moet dat voorkomen.
func TestEuroToCentsRondtNietAf(t *testing.T) {
	assert.Equal(t, int64(2995), EuroToCents(29.95))
	assert.Equal(t, int64(1095), EuroToCents(10.95))
	assert.Equal(t, int64(8935), EuroToCents(89.35))
}
