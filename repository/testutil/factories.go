package testutil

import (
	"time"

	"corebank/models"
)

// TestPeriod returns a fixed 30-day accrual period used across repository
// tests: [2025-06-01, 2025-07-01).
func TestPeriod() models.AccrualPeriod {
	return models.MonthPeriod(2025, time.June)
}

// CreateTestRateEntry creates a rate entry with default values
func CreateTestRateEntry(tier models.AccountTier, rateBps int64) *models.RateEntry {
	return &models.RateEntry{
		Tier:          tier,
		RateBps:       rateBps,
		EffectiveFrom: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

// CreateTestRateEntryEffective creates a rate entry with a specific effective date
func CreateTestRateEntryEffective(tier models.AccountTier, rateBps int64, effectiveFrom time.Time) *models.RateEntry {
	entry := CreateTestRateEntry(tier, rateBps)
	entry.EffectiveFrom = effectiveFrom
	return entry
}

// CreateTestInterestTransaction creates an interest transaction for an account
// over the default test period
func CreateTestInterestTransaction(accountID int64, amount int64) *models.InterestTransaction {
	period := TestPeriod()
	return &models.InterestTransaction{
		AccountID:      accountID,
		Amount:         amount,
		PeriodStart:    period.Start,
		PeriodEnd:      period.End,
		RateBps:        150,
		IdempotencyKey: models.IdempotencyKey(accountID, period),
	}
}

// CreateTestInterestRun creates an interest run record over the default test
// period
func CreateTestInterestRun(credited, skipped, failed int, totalCredited int64) *models.InterestRun {
	period := TestPeriod()
	return &models.InterestRun{
		PeriodStart:   period.Start,
		PeriodEnd:     period.End,
		Credited:      credited,
		Skipped:       skipped,
		Failed:        failed,
		TotalCredited: totalCredited,
		Summary: map[string]any{
			"day_count": "30/360",
		},
	}
}

// CreateTestBalanceHistory creates a balance history entry with default values
func CreateTestBalanceHistory(accountID int64, transactionType models.TransactionType) *models.BalanceHistory {
	return &models.BalanceHistory{
		AccountID:       accountID,
		BalanceBefore:   100000,
		BalanceAfter:    101000,
		ChangeAmount:    1000,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
	}
}

// CreateTestBalanceHistoryWithAmounts creates a balance history entry with
// specific amounts
func CreateTestBalanceHistoryWithAmounts(accountID int64, before, after, change int64, transactionType models.TransactionType) *models.BalanceHistory {
	history := CreateTestBalanceHistory(accountID, transactionType)
	history.BalanceBefore = before
	history.BalanceAfter = after
	history.ChangeAmount = change
	return history
}
