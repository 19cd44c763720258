package service

import (
	"context"
	"errors"
	"time"

	"corebank/events"
	"corebank/models"
)

var (
	// ErrAccountNotFound is returned when an account id resolves to nothing.
	ErrAccountNotFound = errors.New("account not found")

	// ErrCustomerNotFound is returned when a customer id resolves to nothing.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrInsufficientFunds is returned when a debit would overdraw an account.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrDuplicateInterestPosting is returned by the interest transaction
	// repository when an insert hits the unique idempotency key constraint.
	// The posting engine maps it to a Skipped outcome: a concurrent run won
	// the race and the credit already happened.
	ErrDuplicateInterestPosting = errors.New("interest already posted for this account and period")
)

// AccountFilter narrows which accounts an accrual run iterates over.
// A nil filter means all accounts.
type AccountFilter struct {
	Tier       *models.AccountTier
	AccountIDs []int64
}

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// GetByID retrieves an account by id, nil when not found
	GetByID(ctx context.Context, id int64) (*models.Account, error)

	// GetByIDForUpdate retrieves an account and takes a row lock on it.
	// Only meaningful inside a unit of work; concurrent posting for the
	// same account serializes on this lock.
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Account, error)

	// Create creates a new account with an opening balance
	Create(ctx context.Context, customerID int64, tier models.AccountTier, openingBalance int64) (*models.Account, error)

	// AddBalance adds to an account's balance atomically
	AddBalance(ctx context.Context, id int64, amount int64) error

	// DeductBalance deducts from an account's balance atomically, failing if
	// the balance would go negative
	DeductBalance(ctx context.Context, id int64, amount int64) error

	// SetLastInterestCredited advances the account's interest watermark
	SetLastInterestCredited(ctx context.Context, id int64, creditedThrough time.Time) error

	// ListEligible returns accounts matching the filter, all accounts when
	// the filter is nil
	ListEligible(ctx context.Context, filter *AccountFilter) ([]*models.Account, error)
}

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	Create(ctx context.Context, name, email string) (*models.Customer, error)
	GetByID(ctx context.Context, id int64) (*models.Customer, error)
}

// RateScheduleRepository defines the interface for the published rate schedule
type RateScheduleRepository interface {
	// ListEntries returns the full schedule, newest entries first per tier
	ListEntries(ctx context.Context) ([]*models.RateEntry, error)

	// Insert publishes a new schedule entry; entries are append-only
	Insert(ctx context.Context, entry *models.RateEntry) error
}

// InterestTransactionRepository defines the interface for the interest ledger
type InterestTransactionRepository interface {
	// GetByKey retrieves an interest transaction by idempotency key, nil when
	// not found
	GetByKey(ctx context.Context, key string) (*models.InterestTransaction, error)

	// Insert appends a ledger entry; returns ErrDuplicateInterestPosting when
	// the idempotency key already exists
	Insert(ctx context.Context, txn *models.InterestTransaction) error

	// ListByAccount returns recent interest transactions for an account
	ListByAccount(ctx context.Context, accountID int64, limit int) ([]*models.InterestTransaction, error)
}

// InterestRunRepository defines the interface for persisted run records
type InterestRunRepository interface {
	Create(ctx context.Context, run *models.InterestRun) error
	GetLatest(ctx context.Context) (*models.InterestRun, error)
	GetByPeriod(ctx context.Context, period models.AccrualPeriod) (*models.InterestRun, error)
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByAccount returns balance history for a specific account
	GetByAccount(ctx context.Context, accountID int64, limit int) ([]*models.BalanceHistory, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	CustomerRepository() CustomerRepository
	RateScheduleRepository() RateScheduleRepository
	InterestTransactionRepository() InterestTransactionRepository
	InterestRunRepository() InterestRunRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// Clock supplies "now"; injectable so accrual periods are derivable in tests.
type Clock interface {
	Now() time.Time
}

// PostingEngine applies one interest credit to one account, exactly once per
// period no matter how many times it is called.
type PostingEngine interface {
	Post(ctx context.Context, accountID int64, period models.AccrualPeriod, amount int64, rateBps int64) (*models.PostingResult, error)
}

// InterestService orchestrates accrual runs across all eligible accounts.
type InterestService interface {
	// Run computes and posts interest for every eligible account in the
	// period. Per-account failures are collected in the summary; a missing
	// rate schedule entry aborts the whole run.
	Run(ctx context.Context, period models.AccrualPeriod, filter *AccountFilter) (*models.RunSummary, error)

	// CurrentPeriod derives the accrual period a run triggered now would cover
	CurrentPeriod() models.AccrualPeriod

	// HasRunFor reports whether a run has already been recorded for the period
	HasRunFor(ctx context.Context, period models.AccrualPeriod) (bool, error)

	// GetRateSchedule returns the published rate schedule
	GetRateSchedule(ctx context.Context) ([]*models.RateEntry, error)
}

// AccountService defines the interface for customer and account operations
type AccountService interface {
	CreateCustomer(ctx context.Context, name, email string) (*models.Customer, error)
	OpenAccount(ctx context.Context, customerID int64, tier models.AccountTier, openingDeposit int64) (*models.Account, error)
	GetAccount(ctx context.Context, id int64) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]*models.Account, error)
}

// TransferService defines the interface for transfers between accounts
type TransferService interface {
	Transfer(ctx context.Context, fromAccountID, toAccountID, amount int64) (*models.TransferResult, error)
}

// AuditSink receives the summary of every accrual run. Observability only,
// not required for correctness.
type AuditSink interface {
	PublishRunSummary(ctx context.Context, summary *models.RunSummary) error
}

// RunMetrics records accrual run outcomes for monitoring.
type RunMetrics interface {
	ObserveRun(summary *models.RunSummary)
}
