package models

import "time"

type User struct {
	ID        string    `json:"id" db:"user_id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	Role      string    `json:"role" db:"role"` // "customer" of "admin"
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
