package service

import (
	"context"
	"errors"
	"fmt"

	"corebank/events"
	"corebank/models"
	log "github.com/sirupsen/logrus"
)

type postingEngine struct {
	uowFactory UnitOfWorkFactory
}

// NewPostingEngine creates the idempotent posting engine.
func NewPostingEngine(uowFactory UnitOfWorkFactory) PostingEngine {
	return &postingEngine{uowFactory: uowFactory}
}

// Post credits amount to the account for the period, exactly once. The
// idempotency check, the balance increment, the ledger insert and the
// watermark update all happen inside one transaction holding a row lock on
// the account, so a retried or concurrently re-triggered run can never credit
// twice: either it observes the existing credit and skips, or it loses the
// insert race and the unique key constraint turns it into a skip.
func (e *postingEngine) Post(ctx context.Context, accountID int64, period models.AccrualPeriod, amount int64, rateBps int64) (*models.PostingResult, error) {
	if err := period.Validate(); err != nil {
		return nil, fmt.Errorf("invalid accrual period: %w", err)
	}
	if amount < 0 {
		return nil, fmt.Errorf("interest amount must not be negative, got %d", amount)
	}

	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, err := uow.AccountRepository().GetByIDForUpdate(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %d: %w", accountID, err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %d: %w", accountID, ErrAccountNotFound)
	}

	if period.CoveredBy(account.LastInterestCredited) {
		return &models.PostingResult{
			AccountID:  accountID,
			Status:     models.PostingStatusSkipped,
			NewBalance: account.Balance,
			Reason:     "already credited for this period",
		}, nil
	}

	key := models.IdempotencyKey(accountID, period)
	existing, err := uow.InterestTransactionRepository().GetByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check idempotency key: %w", err)
	}
	if existing != nil {
		return &models.PostingResult{
			AccountID:  accountID,
			Status:     models.PostingStatusSkipped,
			NewBalance: account.Balance,
			Reason:     "interest transaction already recorded",
		}, nil
	}

	// Rate existed but nothing is owed; a skip, not a failure.
	if amount == 0 {
		return &models.PostingResult{
			AccountID:  accountID,
			Status:     models.PostingStatusSkipped,
			NewBalance: account.Balance,
			Reason:     "no interest due",
		}, nil
	}

	if err := uow.AccountRepository().AddBalance(ctx, accountID, amount); err != nil {
		return nil, fmt.Errorf("failed to credit account %d: %w", accountID, err)
	}

	txn := &models.InterestTransaction{
		AccountID:      accountID,
		Amount:         amount,
		PeriodStart:    period.Start,
		PeriodEnd:      period.End,
		RateBps:        rateBps,
		IdempotencyKey: key,
	}
	if err := uow.InterestTransactionRepository().Insert(ctx, txn); err != nil {
		if errors.Is(err, ErrDuplicateInterestPosting) {
			// Defense in depth: a concurrent run slipped past the row lock
			// (e.g. separate pools); the unique constraint keeps us honest.
			log.WithFields(log.Fields{
				"accountID": accountID,
				"period":    period.String(),
			}).Warn("Concurrent interest posting detected, skipping")
			return &models.PostingResult{
				AccountID:  accountID,
				Status:     models.PostingStatusSkipped,
				NewBalance: account.Balance,
				Reason:     "concurrent run already credited this period",
			}, nil
		}
		return nil, fmt.Errorf("failed to insert interest transaction: %w", err)
	}

	if err := uow.AccountRepository().SetLastInterestCredited(ctx, accountID, period.End); err != nil {
		return nil, fmt.Errorf("failed to update interest watermark: %w", err)
	}

	newBalance := account.Balance + amount
	history := &models.BalanceHistory{
		AccountID:       accountID,
		BalanceBefore:   account.Balance,
		BalanceAfter:    newBalance,
		ChangeAmount:    amount,
		TransactionType: models.TransactionTypeInterestCredit,
		TransactionMetadata: map[string]any{
			"period_start": period.Start.Format("2006-01-02"),
			"period_end":   period.End.Format("2006-01-02"),
			"rate_bps":     rateBps,
		},
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, fmt.Errorf("failed to record balance change: %w", err)
	}

	uow.EventBus().Publish(events.InterestPostedEvent{
		AccountID:   accountID,
		Amount:      amount,
		RateBps:     rateBps,
		PeriodStart: period.Start.Format("2006-01-02"),
		PeriodEnd:   period.End.Format("2006-01-02"),
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.PostingResult{
		AccountID:  accountID,
		Status:     models.PostingStatusPosted,
		Amount:     amount,
		NewBalance: newBalance,
	}, nil
}
