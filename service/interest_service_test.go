package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"corebank/events"
	"corebank/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newInterestMocks() (*MockUnitOfWork, *MockUnitOfWorkFactory, *MockAccountRepository, *MockRateScheduleRepository, *MockInterestRunRepository, *MockPostingEngine) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockRateRepo := new(MockRateScheduleRepository)
	mockRunRepo := new(MockInterestRunRepository)
	mockEngine := new(MockPostingEngine)

	mockUoW.SetRepositories(mockAccountRepo, nil, mockRateRepo, nil, mockRunRepo, nil)
	mockFactory.On("Create").Return(mockUoW)

	return mockUoW, mockFactory, mockAccountRepo, mockRateRepo, mockRunRepo, mockEngine
}

func standardSchedule() []*models.RateEntry {
	return []*models.RateEntry{
		{Tier: models.TierStandard, RateBps: 1200, EffectiveFrom: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{Tier: models.TierPremium, RateBps: 2400, EffectiveFrom: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestInterestService_Run_CreditsAllAccounts(t *testing.T) {
	ctx := context.Background()
	period := june2025()
	clock := fixedClock{now: time.Date(2025, time.July, 2, 8, 0, 0, 0, time.UTC)}

	mockUoW, mockFactory, mockAccountRepo, mockRateRepo, mockRunRepo, mockEngine := newInterestMocks()

	accounts := []*models.Account{
		{ID: 1, Tier: models.TierStandard, Balance: 100000},
		{ID: 2, Tier: models.TierStandard, Balance: 200000},
		{ID: 3, Tier: models.TierPremium, Balance: 100000},
	}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockAccountRepo.On("ListEligible", ctx, (*AccountFilter)(nil)).Return(accounts, nil)
	mockRateRepo.On("ListEntries", ctx).Return(standardSchedule(), nil)

	// 30/360: balance * rateBps * 30 / (10000 * 360)
	mockEngine.On("Post", ctx, int64(1), period, int64(1000), int64(1200)).
		Return(&models.PostingResult{AccountID: 1, Status: models.PostingStatusPosted, Amount: 1000}, nil)
	mockEngine.On("Post", ctx, int64(2), period, int64(2000), int64(1200)).
		Return(&models.PostingResult{AccountID: 2, Status: models.PostingStatusPosted, Amount: 2000}, nil)
	mockEngine.On("Post", ctx, int64(3), period, int64(2000), int64(2400)).
		Return(&models.PostingResult{AccountID: 3, Status: models.PostingStatusPosted, Amount: 2000}, nil)

	mockRunRepo.On("Create", ctx, mock.MatchedBy(func(run *models.InterestRun) bool {
		return run.Credited == 3 && run.Failed == 0 && run.TotalCredited == 5000
	})).Return(nil)

	mockAudit := new(MockAuditSink)
	mockAudit.On("PublishRunSummary", ctx, mock.Anything).Return(nil)

	svc := NewInterestService(mockFactory, mockEngine, clock, models.DayCountThirty360, mockAudit, nil)
	summary, err := svc.Run(ctx, period, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, summary.Credited)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, int64(5000), summary.TotalCredited)
	assert.Empty(t, summary.Failures)
	assert.Equal(t, clock.now, summary.StartedAt)

	mockEngine.AssertExpectations(t)
	mockRunRepo.AssertExpectations(t)
	mockAudit.AssertExpectations(t)
}

func TestInterestService_Run_IsolatesPerAccountFailures(t *testing.T) {
	ctx := context.Background()
	period := june2025()
	clock := fixedClock{now: time.Date(2025, time.July, 2, 8, 0, 0, 0, time.UTC)}

	mockUoW, mockFactory, mockAccountRepo, mockRateRepo, mockRunRepo, mockEngine := newInterestMocks()

	accounts := []*models.Account{
		{ID: 1, Tier: models.TierStandard, Balance: 100000},
		{ID: 2, Tier: models.TierStandard, Balance: 100000},
		{ID: 3, Tier: models.TierStandard, Balance: 100000},
	}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockAccountRepo.On("ListEligible", ctx, (*AccountFilter)(nil)).Return(accounts, nil)
	mockRateRepo.On("ListEntries", ctx).Return(standardSchedule(), nil)

	mockEngine.On("Post", ctx, int64(1), period, int64(1000), int64(1200)).
		Return(&models.PostingResult{AccountID: 1, Status: models.PostingStatusPosted, Amount: 1000}, nil)
	mockEngine.On("Post", ctx, int64(2), period, int64(1000), int64(1200)).
		Return(nil, fmt.Errorf("failed to credit account 2: connection reset"))
	mockEngine.On("Post", ctx, int64(3), period, int64(1000), int64(1200)).
		Return(&models.PostingResult{AccountID: 3, Status: models.PostingStatusPosted, Amount: 1000}, nil)

	mockRunRepo.On("Create", ctx, mock.Anything).Return(nil)

	svc := NewInterestService(mockFactory, mockEngine, clock, models.DayCountThirty360, nil, nil)
	summary, err := svc.Run(ctx, period, nil)

	// One bad account does not abort the run; the accounts after it are still
	// processed
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Credited)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, int64(2), summary.Failures[0].AccountID)
	assert.Contains(t, summary.Failures[0].Reason, "connection reset")

	mockEngine.AssertExpectations(t)
}

func TestInterestService_Run_AbortsOnMissingRate(t *testing.T) {
	ctx := context.Background()
	period := june2025()
	clock := fixedClock{now: time.Date(2025, time.July, 2, 8, 0, 0, 0, time.UTC)}

	mockUoW, mockFactory, mockAccountRepo, mockRateRepo, _, mockEngine := newInterestMocks()

	accounts := []*models.Account{
		{ID: 1, Tier: models.TierStandard, Balance: 100000},
		{ID: 2, Tier: models.TierPlus, Balance: 100000},
	}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockAccountRepo.On("ListEligible", ctx, (*AccountFilter)(nil)).Return(accounts, nil)
	// Schedule has no entry for the plus tier
	mockRateRepo.On("ListEntries", ctx).Return(standardSchedule(), nil)

	svc := NewInterestService(mockFactory, mockEngine, clock, models.DayCountThirty360, nil, nil)
	summary, err := svc.Run(ctx, period, nil)

	require.Error(t, err)
	var rateErr *RateNotFoundError
	require.True(t, errors.As(err, &rateErr))
	assert.Equal(t, models.TierPlus, rateErr.Tier)
	assert.Nil(t, summary)

	// Nothing was posted: the hole in the schedule aborted the run up front
	mockEngine.AssertNotCalled(t, "Post", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInterestService_Run_StopsWhenCancelled(t *testing.T) {
	period := june2025()
	clock := fixedClock{now: time.Date(2025, time.July, 2, 8, 0, 0, 0, time.UTC)}

	mockUoW, mockFactory, mockAccountRepo, mockRateRepo, _, mockEngine := newInterestMocks()

	ctx, cancel := context.WithCancel(context.Background())

	accounts := []*models.Account{
		{ID: 1, Tier: models.TierStandard, Balance: 100000},
		{ID: 2, Tier: models.TierStandard, Balance: 100000},
	}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockAccountRepo.On("ListEligible", ctx, (*AccountFilter)(nil)).Return(accounts, nil)
	mockRateRepo.On("ListEntries", ctx).Return(standardSchedule(), nil)

	// Cancel before the account loop starts
	cancel()

	svc := NewInterestService(mockFactory, mockEngine, clock, models.DayCountThirty360, nil, nil)
	summary, err := svc.Run(ctx, period, nil)

	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
	assert.Equal(t, 0, summary.Credited)
	mockEngine.AssertNotCalled(t, "Post", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInterestService_Run_CountsSkips(t *testing.T) {
	ctx := context.Background()
	period := june2025()
	clock := fixedClock{now: time.Date(2025, time.July, 2, 8, 0, 0, 0, time.UTC)}

	mockUoW, mockFactory, mockAccountRepo, mockRateRepo, mockRunRepo, mockEngine := newInterestMocks()

	accounts := []*models.Account{
		{ID: 1, Tier: models.TierStandard, Balance: 100000},
	}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockAccountRepo.On("ListEligible", ctx, (*AccountFilter)(nil)).Return(accounts, nil)
	mockRateRepo.On("ListEntries", ctx).Return(standardSchedule(), nil)

	mockEngine.On("Post", ctx, int64(1), period, int64(1000), int64(1200)).
		Return(&models.PostingResult{AccountID: 1, Status: models.PostingStatusSkipped, Reason: "already credited for this period"}, nil)

	mockRunRepo.On("Create", ctx, mock.MatchedBy(func(run *models.InterestRun) bool {
		return run.Credited == 0 && run.Skipped == 1 && run.TotalCredited == 0
	})).Return(nil)

	svc := NewInterestService(mockFactory, mockEngine, clock, models.DayCountThirty360, nil, nil)
	summary, err := svc.Run(ctx, period, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, int64(0), summary.TotalCredited)
}

func TestInterestService_Run_PublishesRunCompletedEvent(t *testing.T) {
	ctx := context.Background()
	period := june2025()
	clock := fixedClock{now: time.Date(2025, time.July, 2, 8, 0, 0, 0, time.UTC)}

	mockUoW, mockFactory, mockAccountRepo, mockRateRepo, mockRunRepo, mockEngine := newInterestMocks()

	accounts := []*models.Account{
		{ID: 1, Tier: models.TierStandard, Balance: 100000},
	}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockAccountRepo.On("ListEligible", ctx, (*AccountFilter)(nil)).Return(accounts, nil)
	mockRateRepo.On("ListEntries", ctx).Return(standardSchedule(), nil)
	mockEngine.On("Post", ctx, int64(1), period, int64(1000), int64(1200)).
		Return(&models.PostingResult{AccountID: 1, Status: models.PostingStatusPosted, Amount: 1000}, nil)
	mockRunRepo.On("Create", ctx, mock.Anything).Return(nil)

	svc := NewInterestService(mockFactory, mockEngine, clock, models.DayCountThirty360, nil, nil)
	_, err := svc.Run(ctx, period, nil)
	require.NoError(t, err)

	published := mockUoW.PublishedEvents()
	require.Len(t, published, 1)
	completed, ok := published[0].(events.InterestRunCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, "2025-06-01", completed.PeriodStart)
	assert.Equal(t, "2025-07-01", completed.PeriodEnd)
	assert.Equal(t, 1, completed.Credited)
	assert.Equal(t, int64(1000), completed.TotalCredited)
}

func TestInterestService_Run_RejectsInvalidPeriod(t *testing.T) {
	clock := fixedClock{now: time.Now().UTC()}
	_, mockFactory, _, _, _, mockEngine := newInterestMocks()

	svc := NewInterestService(mockFactory, mockEngine, clock, models.DayCountThirty360, nil, nil)

	bad := models.AccrualPeriod{
		Start: time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
	}
	_, err := svc.Run(context.Background(), bad, nil)
	require.Error(t, err)
}

func TestInterestService_CurrentPeriod(t *testing.T) {
	clock := fixedClock{now: time.Date(2025, time.August, 15, 10, 0, 0, 0, time.UTC)}
	_, mockFactory, _, _, _, mockEngine := newInterestMocks()

	svc := NewInterestService(mockFactory, mockEngine, clock, models.DayCountThirty360, nil, nil)
	period := svc.CurrentPeriod()

	assert.Equal(t, time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC), period.Start)
	assert.Equal(t, time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC), period.End)
}

func TestInterestService_HasRunFor(t *testing.T) {
	ctx := context.Background()
	period := june2025()
	clock := fixedClock{now: time.Now().UTC()}

	mockUoW, mockFactory, _, _, mockRunRepo, mockEngine := newInterestMocks()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockRunRepo.On("GetByPeriod", ctx, period).Return(&models.InterestRun{ID: 7}, nil).Once()
	mockRunRepo.On("GetByPeriod", ctx, period).Return(nil, nil).Once()

	svc := NewInterestService(mockFactory, mockEngine, clock, models.DayCountThirty360, nil, nil)

	done, err := svc.HasRunFor(ctx, period)
	require.NoError(t, err)
	assert.True(t, done)

	done, err = svc.HasRunFor(ctx, period)
	require.NoError(t, err)
	assert.False(t, done)
}
