package service

import (
	"context"
	"fmt"

	"corebank/events"
	"corebank/models"
)

type accountService struct {
	uowFactory UnitOfWorkFactory
}

// NewAccountService creates a new account service
func NewAccountService(uowFactory UnitOfWorkFactory) AccountService {
	return &accountService{uowFactory: uowFactory}
}

// CreateCustomer registers a new customer. Identity verification is the KYC
// provider's job; this only records the reference.
func (s *accountService) CreateCustomer(ctx context.Context, name, email string) (*models.Customer, error) {
	if name == "" || email == "" {
		return nil, fmt.Errorf("customer name and email are required")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	customer, err := uow.CustomerRepository().Create(ctx, name, email)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return customer, nil
}

// OpenAccount opens a new account for a customer, optionally funding it with
// an opening deposit.
func (s *accountService) OpenAccount(ctx context.Context, customerID int64, tier models.AccountTier, openingDeposit int64) (*models.Account, error) {
	if !tier.Valid() {
		return nil, fmt.Errorf("unknown account tier %q", tier)
	}
	if openingDeposit < 0 {
		return nil, fmt.Errorf("opening deposit must not be negative")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	customer, err := uow.CustomerRepository().GetByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}
	if customer == nil {
		return nil, fmt.Errorf("customer %d: %w", customerID, ErrCustomerNotFound)
	}

	account, err := uow.AccountRepository().Create(ctx, customerID, tier, openingDeposit)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if openingDeposit > 0 {
		history := &models.BalanceHistory{
			AccountID:       account.ID,
			BalanceBefore:   0,
			BalanceAfter:    openingDeposit,
			ChangeAmount:    openingDeposit,
			TransactionType: models.TransactionTypeOpeningDeposit,
			TransactionMetadata: map[string]any{
				"customer_id": customerID,
			},
		}
		if err := RecordBalanceChange(ctx, uow, history); err != nil {
			return nil, fmt.Errorf("failed to record opening deposit: %w", err)
		}
	}

	uow.EventBus().Publish(events.AccountOpenedEvent{
		AccountID:      account.ID,
		CustomerID:     customerID,
		Tier:           tier,
		OpeningDeposit: openingDeposit,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account, nil
}

// GetAccount retrieves an account by id.
func (s *accountService) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %d: %w", id, ErrAccountNotFound)
	}
	return account, nil
}

// ListAccounts returns all accounts.
func (s *accountService) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	accounts, err := uow.AccountRepository().ListEligible(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}
