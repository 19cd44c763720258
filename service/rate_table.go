package service

import (
	"fmt"
	"sort"
	"time"

	"corebank/models"
)

// RateNotFoundError indicates the schedule has no entry for a tier at a date.
// This is a configuration error: it aborts a whole run rather than silently
// defaulting to zero, because a zero rate is indistinguishable from "no
// interest owed" and would mask missing configuration.
type RateNotFoundError struct {
	Tier models.AccountTier
	AsOf time.Time
}

func (e *RateNotFoundError) Error() string {
	return fmt.Sprintf("no interest rate configured for tier %q as of %s",
		e.Tier, e.AsOf.Format("2006-01-02"))
}

// RateTable maps account tiers to annual interest rates by date. It is built
// once per run from the published schedule and performs pure lookups.
type RateTable struct {
	entries map[models.AccountTier][]*models.RateEntry // newest first
}

// NewRateTable builds a lookup table from schedule entries. Input order does
// not matter; entries are grouped by tier and sorted newest first.
func NewRateTable(entries []*models.RateEntry) *RateTable {
	byTier := make(map[models.AccountTier][]*models.RateEntry)
	for _, e := range entries {
		byTier[e.Tier] = append(byTier[e.Tier], e)
	}
	for tier := range byTier {
		sort.Slice(byTier[tier], func(i, j int) bool {
			return byTier[tier][i].EffectiveFrom.After(byTier[tier][j].EffectiveFrom)
		})
	}
	return &RateTable{entries: byTier}
}

// RateFor returns the annual rate in basis points for a tier as of a date:
// the entry with the latest effective date at or before asOf.
func (t *RateTable) RateFor(tier models.AccountTier, asOf time.Time) (int64, error) {
	for _, e := range t.entries[tier] {
		if !e.EffectiveFrom.After(asOf) {
			return e.RateBps, nil
		}
	}
	return 0, &RateNotFoundError{Tier: tier, AsOf: asOf}
}
