package entity

import "time"

// Account represents a row in the `accounts` table. SecretHash is written
// once at registration and never leaves the service.
type Account struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	Email      string    `db:"email"`
	SecretHash *string   `db:"secret_hash"`
	CreatedAt  time.Time `db:"created_at"`
}

// Projection is the outward view of an account.
type Projection struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Project returns the outward view; the secret is not part of it.
func (a Account) Project() Projection {
	return Projection{ID: a.ID, Name: a.Name, Email: a.Email, CreatedAt: a.CreatedAt}
}
