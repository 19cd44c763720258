package service

import (
	"context"
	"time"

	"corebank/events"
	"corebank/models"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, customerID int64, tier models.AccountTier, openingBalance int64) (*models.Account, error) {
	args := m.Called(ctx, customerID, tier, openingBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) AddBalance(ctx context.Context, id int64, amount int64) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) DeductBalance(ctx context.Context, id int64, amount int64) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) SetLastInterestCredited(ctx context.Context, id int64, creditedThrough time.Time) error {
	args := m.Called(ctx, id, creditedThrough)
	return args.Error(0)
}

func (m *MockAccountRepository) ListEligible(ctx context.Context, filter *AccountFilter) ([]*models.Account, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

// MockCustomerRepository is a mock implementation of CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, name, email string) (*models.Customer, error) {
	args := m.Called(ctx, name, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

// MockRateScheduleRepository is a mock implementation of RateScheduleRepository
type MockRateScheduleRepository struct {
	mock.Mock
}

func (m *MockRateScheduleRepository) ListEntries(ctx context.Context) ([]*models.RateEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RateEntry), args.Error(1)
}

func (m *MockRateScheduleRepository) Insert(ctx context.Context, entry *models.RateEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockInterestTransactionRepository is a mock implementation of InterestTransactionRepository
type MockInterestTransactionRepository struct {
	mock.Mock
}

func (m *MockInterestTransactionRepository) GetByKey(ctx context.Context, key string) (*models.InterestTransaction, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InterestTransaction), args.Error(1)
}

func (m *MockInterestTransactionRepository) Insert(ctx context.Context, txn *models.InterestTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockInterestTransactionRepository) ListByAccount(ctx context.Context, accountID int64, limit int) ([]*models.InterestTransaction, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InterestTransaction), args.Error(1)
}

// MockInterestRunRepository is a mock implementation of InterestRunRepository
type MockInterestRunRepository struct {
	mock.Mock
}

func (m *MockInterestRunRepository) Create(ctx context.Context, run *models.InterestRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockInterestRunRepository) GetLatest(ctx context.Context) (*models.InterestRun, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InterestRun), args.Error(1)
}

func (m *MockInterestRunRepository) GetByPeriod(ctx context.Context, period models.AccrualPeriod) (*models.InterestRun, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InterestRun), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByAccount(ctx context.Context, accountID int64, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

// capturingEventPublisher records published events without asserting on them
type capturingEventPublisher struct {
	published []events.Event
}

func (p *capturingEventPublisher) Publish(event events.Event) {
	p.published = append(p.published, event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are
// plain fields set via SetRepositories; Begin, Commit and Rollback go through
// the mock so tests can assert the transaction lifecycle.
type MockUnitOfWork struct {
	mock.Mock

	accountRepo     AccountRepository
	customerRepo    CustomerRepository
	rateRepo        RateScheduleRepository
	interestTxnRepo InterestTransactionRepository
	interestRunRepo InterestRunRepository
	historyRepo     BalanceHistoryRepository
	eventBus        *capturingEventPublisher
}

// SetRepositories wires the mock repositories this unit of work hands out
func (m *MockUnitOfWork) SetRepositories(
	accountRepo AccountRepository,
	customerRepo CustomerRepository,
	rateRepo RateScheduleRepository,
	interestTxnRepo InterestTransactionRepository,
	interestRunRepo InterestRunRepository,
	historyRepo BalanceHistoryRepository,
) {
	m.accountRepo = accountRepo
	m.customerRepo = customerRepo
	m.rateRepo = rateRepo
	m.interestTxnRepo = interestTxnRepo
	m.interestRunRepo = interestRunRepo
	m.historyRepo = historyRepo
	m.eventBus = &capturingEventPublisher{}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) CustomerRepository() CustomerRepository {
	return m.customerRepo
}

func (m *MockUnitOfWork) RateScheduleRepository() RateScheduleRepository {
	return m.rateRepo
}

func (m *MockUnitOfWork) InterestTransactionRepository() InterestTransactionRepository {
	return m.interestTxnRepo
}

func (m *MockUnitOfWork) InterestRunRepository() InterestRunRepository {
	return m.interestRunRepo
}

func (m *MockUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository {
	return m.historyRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		m.eventBus = &capturingEventPublisher{}
	}
	return m.eventBus
}

// PublishedEvents returns the events published through this unit of work
func (m *MockUnitOfWork) PublishedEvents() []events.Event {
	if m.eventBus == nil {
		return nil
	}
	return m.eventBus.published
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockPostingEngine is a mock implementation of PostingEngine
type MockPostingEngine struct {
	mock.Mock
}

func (m *MockPostingEngine) Post(ctx context.Context, accountID int64, period models.AccrualPeriod, amount int64, rateBps int64) (*models.PostingResult, error) {
	args := m.Called(ctx, accountID, period, amount, rateBps)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PostingResult), args.Error(1)
}

// fixedClock returns a fixed instant, for deterministic period derivation
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

// MockAuditSink is a mock implementation of AuditSink
type MockAuditSink struct {
	mock.Mock
}

func (m *MockAuditSink) PublishRunSummary(ctx context.Context, summary *models.RunSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}
