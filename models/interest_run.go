package models

import (
	"time"
)

// InterestRun is the persisted record of one orchestrated accrual run.
// Re-triggered runs for the same period produce additional rows (full of
// skips); per-account idempotency lives in interest_transactions, not here.
type InterestRun struct {
	ID            int64          `db:"id"`
	PeriodStart   time.Time      `db:"period_start"`
	PeriodEnd     time.Time      `db:"period_end"`
	Credited      int            `db:"credited"`
	Skipped       int            `db:"skipped"`
	Failed        int            `db:"failed"`
	TotalCredited int64          `db:"total_credited"`
	Summary       map[string]any `db:"summary"`
	CreatedAt     time.Time      `db:"created_at"`
}

// AccountFailure records why one account could not be credited during a run.
type AccountFailure struct {
	AccountID int64  `json:"account_id"`
	Reason    string `json:"reason"`
}

// RunSummary is the ephemeral result returned to whoever triggered a run.
type RunSummary struct {
	PeriodStart   time.Time        `json:"period_start"`
	PeriodEnd     time.Time        `json:"period_end"`
	Credited      int              `json:"credited"`
	Skipped       int              `json:"skipped"`
	Failed        int              `json:"failed"`
	TotalCredited int64            `json:"total_credited"`
	Failures      []AccountFailure `json:"failures,omitempty"`
	StartedAt     time.Time        `json:"started_at"`
	FinishedAt    time.Time        `json:"finished_at"`
}

// Period reconstructs the accrual period this summary covers.
func (s *RunSummary) Period() AccrualPeriod {
	return AccrualPeriod{Start: s.PeriodStart, End: s.PeriodEnd}
}

// PostingStatus is the outcome of posting interest to a single account.
type PostingStatus string

const (
	PostingStatusPosted  PostingStatus = "posted"
	PostingStatusSkipped PostingStatus = "skipped"
	PostingStatusFailed  PostingStatus = "failed"
)

// PostingResult describes what happened when interest was posted to one
// account.
type PostingResult struct {
	AccountID  int64
	Status     PostingStatus
	Amount     int64
	NewBalance int64
	Reason     string
}
