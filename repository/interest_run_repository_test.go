package repository

import (
	"context"
	"testing"
	"time"

	"corebank/models"
	"corebank/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterestRunRepository_CreateAndGetLatest(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewInterestRunRepository(testDB.DB)
	ctx := context.Background()

	t.Run("no runs yet", func(t *testing.T) {
		run, err := repo.GetLatest(ctx)
		require.NoError(t, err)
		assert.Nil(t, run)
	})

	t.Run("create and fetch", func(t *testing.T) {
		run := testutil.CreateTestInterestRun(10, 2, 1, 12345)
		err := repo.Create(ctx, run)
		require.NoError(t, err)
		assert.NotZero(t, run.ID)

		latest, err := repo.GetLatest(ctx)
		require.NoError(t, err)
		require.NotNil(t, latest)

		assert.Equal(t, run.ID, latest.ID)
		assert.Equal(t, 10, latest.Credited)
		assert.Equal(t, 2, latest.Skipped)
		assert.Equal(t, 1, latest.Failed)
		assert.Equal(t, int64(12345), latest.TotalCredited)
		assert.Equal(t, "30/360", latest.Summary["day_count"])
	})
}

func TestInterestRunRepository_GetByPeriod(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewInterestRunRepository(testDB.DB)
	ctx := context.Background()

	june := models.MonthPeriod(2025, time.June)
	may := models.MonthPeriod(2025, time.May)

	run := testutil.CreateTestInterestRun(5, 0, 0, 5000)
	require.NoError(t, repo.Create(ctx, run))

	t.Run("period with a run", func(t *testing.T) {
		found, err := repo.GetByPeriod(ctx, june)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, run.ID, found.ID)
		assert.True(t, found.PeriodStart.Equal(june.Start))
	})

	t.Run("period without a run", func(t *testing.T) {
		found, err := repo.GetByPeriod(ctx, may)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("re-triggered period returns newest row", func(t *testing.T) {
		retrigger := testutil.CreateTestInterestRun(0, 5, 0, 0)
		require.NoError(t, repo.Create(ctx, retrigger))

		found, err := repo.GetByPeriod(ctx, june)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, retrigger.ID, found.ID)
		assert.Equal(t, 5, found.Skipped)
	})
}
