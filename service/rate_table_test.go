package service

import (
	"errors"
	"testing"
	"time"

	"corebank/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateEntry(tier models.AccountTier, rateBps int64, effectiveFrom time.Time) *models.RateEntry {
	return &models.RateEntry{Tier: tier, RateBps: rateBps, EffectiveFrom: effectiveFrom}
}

func TestRateTable_PicksLatestEffectiveEntry(t *testing.T) {
	jan := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	apr := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	oct := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)

	// Deliberately unsorted input
	table := NewRateTable([]*models.RateEntry{
		rateEntry(models.TierStandard, 200, apr),
		rateEntry(models.TierStandard, 150, jan),
		rateEntry(models.TierStandard, 250, oct),
		rateEntry(models.TierPremium, 400, jan),
	})

	rate, err := table.RateFor(models.TierStandard, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(200), rate)

	// Exactly on the effective date uses the new entry
	rate, err = table.RateFor(models.TierStandard, apr)
	require.NoError(t, err)
	assert.Equal(t, int64(200), rate)

	rate, err = table.RateFor(models.TierStandard, time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(250), rate)

	rate, err = table.RateFor(models.TierPremium, apr)
	require.NoError(t, err)
	assert.Equal(t, int64(400), rate)
}

func TestRateTable_NoEntryForTier(t *testing.T) {
	jan := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	table := NewRateTable([]*models.RateEntry{
		rateEntry(models.TierStandard, 150, jan),
	})

	_, err := table.RateFor(models.TierPlus, jan)
	require.Error(t, err)

	var rateErr *RateNotFoundError
	require.True(t, errors.As(err, &rateErr))
	assert.Equal(t, models.TierPlus, rateErr.Tier)
	assert.Equal(t, jan, rateErr.AsOf)
}

func TestRateTable_NoEntryBeforeEffectiveDate(t *testing.T) {
	apr := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	table := NewRateTable([]*models.RateEntry{
		rateEntry(models.TierStandard, 150, apr),
	})

	_, err := table.RateFor(models.TierStandard, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC))
	var rateErr *RateNotFoundError
	require.True(t, errors.As(err, &rateErr))
}
