package models

import (
	"time"
)

// AccountTier classifies an account for interest rate purposes.
type AccountTier string

const (
	TierStandard AccountTier = "standard"
	TierPlus     AccountTier = "plus"
	TierPremium  AccountTier = "premium"
)

// Valid reports whether the tier is one of the known account tiers.
func (t AccountTier) Valid() bool {
	switch t {
	case TierStandard, TierPlus, TierPremium:
		return true
	}
	return false
}

// Account represents a customer deposit account. Balance is held in integer
// minor units (cents); it is never stored or computed as a float.
type Account struct {
	ID                   int64       `db:"id"`
	CustomerID           int64       `db:"customer_id"`
	Tier                 AccountTier `db:"tier"`
	Balance              int64       `db:"balance"`
	LastInterestCredited *time.Time  `db:"last_interest_credited"`
	CreatedAt            time.Time   `db:"created_at"`
	UpdatedAt            time.Time   `db:"updated_at"`
}
