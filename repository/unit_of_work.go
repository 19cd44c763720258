package repository

import (
	"context"
	"errors"
	"fmt"

	"corebank/database"
	"corebank/events"
	"corebank/service"
	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the service.UnitOfWork interface. All repositories it
// exposes are bound to the same pgx transaction; events published through its
// bus are held back until that transaction commits.
type unitOfWork struct {
	db       *database.DB
	tx       pgx.Tx
	eventBus *events.TransactionalBus

	accountRepo     *AccountRepository
	customerRepo    *CustomerRepository
	rateRepo        *RateScheduleRepository
	interestTxnRepo *InterestTransactionRepository
	interestRunRepo *InterestRunRepository
	historyRepo     *BalanceHistoryRepository
}

// unitOfWorkFactory implements the service.UnitOfWorkFactory interface
type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

// NewUnitOfWorkFactory creates a factory for units of work backed by the given
// connection pool and event bus
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

// Create returns a new unit of work. Begin must be called before any
// repository is used.
func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:       f.db,
		eventBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction and binds all repositories to it
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.accountRepo = newAccountRepositoryWithTx(tx)
	u.customerRepo = newCustomerRepositoryWithTx(tx)
	u.rateRepo = newRateScheduleRepositoryWithTx(tx)
	u.interestTxnRepo = newInterestTransactionRepositoryWithTx(tx)
	u.interestRunRepo = newInterestRunRepositoryWithTx(tx)
	u.historyRepo = newBalanceHistoryRepositoryWithTx(tx)
	return nil
}

// Commit commits the transaction and flushes any events published during it
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	ctx := context.Background()
	if err := u.tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	u.tx = nil

	if err := u.eventBus.Flush(ctx); err != nil {
		return fmt.Errorf("failed to flush events: %w", err)
	}
	return nil
}

// Rollback rolls back the transaction and discards pending events. Safe to
// call after Commit, which makes it usable in a defer.
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(context.Background())
	u.tx = nil
	u.eventBus.Discard()

	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

func (u *unitOfWork) AccountRepository() service.AccountRepository {
	if u.accountRepo == nil {
		panic("unit of work not started, call Begin first")
	}
	return u.accountRepo
}

func (u *unitOfWork) CustomerRepository() service.CustomerRepository {
	if u.customerRepo == nil {
		panic("unit of work not started, call Begin first")
	}
	return u.customerRepo
}

func (u *unitOfWork) RateScheduleRepository() service.RateScheduleRepository {
	if u.rateRepo == nil {
		panic("unit of work not started, call Begin first")
	}
	return u.rateRepo
}

func (u *unitOfWork) InterestTransactionRepository() service.InterestTransactionRepository {
	if u.interestTxnRepo == nil {
		panic("unit of work not started, call Begin first")
	}
	return u.interestTxnRepo
}

func (u *unitOfWork) InterestRunRepository() service.InterestRunRepository {
	if u.interestRunRepo == nil {
		panic("unit of work not started, call Begin first")
	}
	return u.interestRunRepo
}

func (u *unitOfWork) BalanceHistoryRepository() service.BalanceHistoryRepository {
	if u.historyRepo == nil {
		panic("unit of work not started, call Begin first")
	}
	return u.historyRepo
}

func (u *unitOfWork) EventBus() service.EventPublisher {
	return u.eventBus
}
