package models

import (
	"time"
)

// Customer is the owner of one or more accounts. Identity verification is
// handled by an external KYC provider; only the reference lives here.
type Customer struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
}
