package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// InterestTransaction is an immutable ledger entry recording one interest
// credit. Corrections are new offsetting entries; rows are never updated or
// deleted.
type InterestTransaction struct {
	ID             int64     `db:"id"`
	AccountID      int64     `db:"account_id"`
	Amount         int64     `db:"amount"` // minor units, always >= 0
	PeriodStart    time.Time `db:"period_start"`
	PeriodEnd      time.Time `db:"period_end"`
	RateBps        int64     `db:"rate_bps"`
	IdempotencyKey string    `db:"idempotency_key"`
	CreatedAt      time.Time `db:"created_at"`
}

// IdempotencyKey derives the deterministic key that makes posting exactly-once
// per account and period. The same (account, period) always hashes to the same
// key, and the database enforces uniqueness on it.
func IdempotencyKey(accountID int64, period AccrualPeriod) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%s:%s",
		accountID,
		period.Start.Format("2006-01-02"),
		period.End.Format("2006-01-02"),
	)))
	return hex.EncodeToString(sum[:])
}
