package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Product struct {
	ID          gocql.UUID `json:"id" db:"product_id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Price       float64    `json:"price" db:"price"`
	Stock       int        `json:"stock" db:"stock"`
	Category    string     `json:"category,omitempty" db:"category"`

	// Expliciet gewicht per variant in kg. 0 betekent onbekend;
	// dan valt de verzendmodule terug op de schatting per kledingtype.
	WeightKg float64 `json:"weight_kg,omitempty" db:"weight_kg"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
