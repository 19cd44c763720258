package service

import (
	"context"
	"fmt"

	"corebank/models"
)

type transferService struct {
	uowFactory UnitOfWorkFactory
}

// NewTransferService creates a new transfer service
func NewTransferService(uowFactory UnitOfWorkFactory) TransferService {
	return &transferService{
		uowFactory: uowFactory,
	}
}

func (s *transferService) Transfer(ctx context.Context, fromAccountID, toAccountID int64, amount int64) (*models.TransferResult, error) {
	// Validate inputs
	if amount <= 0 {
		return nil, fmt.Errorf("transfer amount must be positive")
	}
	if fromAccountID == toAccountID {
		return nil, fmt.Errorf("cannot transfer to the same account")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	// Lock both rows, lowest id first so two opposing transfers cannot
	// deadlock. The balances read under the lock are the ones recorded in
	// balance_history, so concurrent transfers cannot make them stale.
	lockIDs := []int64{fromAccountID, toAccountID}
	if toAccountID < fromAccountID {
		lockIDs[0], lockIDs[1] = toAccountID, fromAccountID
	}
	locked := make(map[int64]*models.Account, 2)
	for _, id := range lockIDs {
		account, err := uow.AccountRepository().GetByIDForUpdate(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to lock account %d: %w", id, err)
		}
		if account == nil {
			if id == fromAccountID {
				return nil, fmt.Errorf("sender account %d: %w", id, ErrAccountNotFound)
			}
			return nil, fmt.Errorf("recipient account %d: %w", id, ErrAccountNotFound)
		}
		locked[id] = account
	}
	fromAccount := locked[fromAccountID]
	toAccount := locked[toAccountID]

	if fromAccount.Balance < amount {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, fromAccount.Balance, amount)
	}

	newFromBalance := fromAccount.Balance - amount
	newToBalance := toAccount.Balance + amount

	// DeductBalance re-checks funds atomically inside the UPDATE, so a
	// concurrent debit cannot overdraw the account.
	if err := uow.AccountRepository().DeductBalance(ctx, fromAccountID, amount); err != nil {
		return nil, fmt.Errorf("failed to deduct transfer amount: %w", err)
	}

	if err := uow.AccountRepository().AddBalance(ctx, toAccountID, amount); err != nil {
		return nil, fmt.Errorf("failed to add transfer amount: %w", err)
	}

	fromHistory := &models.BalanceHistory{
		AccountID:       fromAccountID,
		BalanceBefore:   fromAccount.Balance,
		BalanceAfter:    newFromBalance,
		ChangeAmount:    -amount,
		TransactionType: models.TransactionTypeTransferOut,
		TransactionMetadata: map[string]any{
			"to_account_id":   toAccountID,
			"transfer_amount": amount,
		},
	}
	if err := RecordBalanceChange(ctx, uow, fromHistory); err != nil {
		return nil, fmt.Errorf("failed to record sender balance change: %w", err)
	}

	toHistory := &models.BalanceHistory{
		AccountID:       toAccountID,
		BalanceBefore:   toAccount.Balance,
		BalanceAfter:    newToBalance,
		ChangeAmount:    amount,
		TransactionType: models.TransactionTypeTransferIn,
		TransactionMetadata: map[string]any{
			"from_account_id": fromAccountID,
			"transfer_amount": amount,
		},
	}
	if err := RecordBalanceChange(ctx, uow, toHistory); err != nil {
		return nil, fmt.Errorf("failed to record recipient balance change: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.TransferResult{
		Amount:      amount,
		ToAccountID: toAccountID,
		NewBalance:  newFromBalance,
	}, nil
}
