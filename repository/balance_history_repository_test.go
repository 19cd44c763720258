package repository

import (
	"context"
	"testing"

	"corebank/models"
	"corebank/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceHistoryRepository_RecordAndGetByAccount(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBalanceHistoryRepository(testDB.DB)
	ctx := context.Background()

	account := createTestAccount(t, testDB, models.TierStandard, 100000)

	t.Run("no history yet", func(t *testing.T) {
		entries, err := repo.GetByAccount(ctx, account.ID, 10)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("record and fetch", func(t *testing.T) {
		history := testutil.CreateTestBalanceHistoryWithAmounts(
			account.ID, 100000, 101000, 1000, models.TransactionTypeInterestCredit)
		history.TransactionMetadata = map[string]any{
			"period_start": "2025-06-01",
			"rate_bps":     float64(150),
		}

		err := repo.Record(ctx, history)
		require.NoError(t, err)
		assert.NotZero(t, history.ID)

		entries, err := repo.GetByAccount(ctx, account.ID, 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)

		entry := entries[0]
		assert.Equal(t, account.ID, entry.AccountID)
		assert.Equal(t, int64(100000), entry.BalanceBefore)
		assert.Equal(t, int64(101000), entry.BalanceAfter)
		assert.Equal(t, int64(1000), entry.ChangeAmount)
		assert.Equal(t, models.TransactionTypeInterestCredit, entry.TransactionType)
		assert.Equal(t, "2025-06-01", entry.TransactionMetadata["period_start"])
		assert.Equal(t, float64(150), entry.TransactionMetadata["rate_bps"])
	})

	t.Run("limit applies newest first", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			history := testutil.CreateTestBalanceHistory(account.ID, models.TransactionTypeTransferIn)
			require.NoError(t, repo.Record(ctx, history))
		}

		entries, err := repo.GetByAccount(ctx, account.ID, 3)
		require.NoError(t, err)
		assert.Len(t, entries, 3)
	})
}
