package models

import (
	"time"
)

// RateEntry is one published row of the interest rate schedule. Entries are
// append-only: new rates supersede old ones by effective date, existing rows
// are never edited in place.
type RateEntry struct {
	ID            int64       `db:"id"`
	Tier          AccountTier `db:"tier"`
	RateBps       int64       `db:"rate_bps"` // annual rate in basis points (1% = 100 bps)
	EffectiveFrom time.Time   `db:"effective_from"`
	CreatedAt     time.Time   `db:"created_at"`
}
