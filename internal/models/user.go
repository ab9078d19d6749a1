package models

import "time"

// DefaultCurrency is assigned to users registering without a preference
const DefaultCurrency = "USD"

// User represents a user in the system
type User struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"` // Not serialized
	Role              string    `json:"role"`
	PreferredCurrency string    `json:"preferred_currency"`
	CreatedAt         time.Time `json:"created_at"`
}

// UserPatch updates a user profile; empty fields are ignored
type UserPatch struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Password          string `json:"password"`
	PreferredCurrency string `json:"preferred_currency"`
}
