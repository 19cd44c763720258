package repository

import (
	"context"
	"errors"
	"fmt"

	"corebank/database"
	"corebank/models"
	"corebank/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches.
const uniqueViolation = "23505"

// InterestTransactionRepository implements the InterestTransactionRepository interface
type InterestTransactionRepository struct {
	q queryable
}

// NewInterestTransactionRepository creates a new interest transaction repository
func NewInterestTransactionRepository(db *database.DB) *InterestTransactionRepository {
	return &InterestTransactionRepository{q: db.Pool}
}

// newInterestTransactionRepositoryWithTx creates a new interest transaction repository with a transaction
func newInterestTransactionRepositoryWithTx(tx queryable) *InterestTransactionRepository {
	return &InterestTransactionRepository{q: tx}
}

// GetByKey retrieves an interest transaction by its idempotency key, nil when
// not found
func (r *InterestTransactionRepository) GetByKey(ctx context.Context, key string) (*models.InterestTransaction, error) {
	query := `
		SELECT id, account_id, amount, period_start, period_end, rate_bps, idempotency_key, created_at
		FROM interest_transactions
		WHERE idempotency_key = $1
	`

	var txn models.InterestTransaction
	err := r.q.QueryRow(ctx, query, key).Scan(
		&txn.ID,
		&txn.AccountID,
		&txn.Amount,
		&txn.PeriodStart,
		&txn.PeriodEnd,
		&txn.RateBps,
		&txn.IdempotencyKey,
		&txn.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get interest transaction by key: %w", err)
	}
	return &txn, nil
}

// Insert appends an immutable ledger entry. A unique constraint on the
// idempotency key is the storage-level guarantee against double crediting;
// violations surface as ErrDuplicateInterestPosting.
func (r *InterestTransactionRepository) Insert(ctx context.Context, txn *models.InterestTransaction) error {
	query := `
		INSERT INTO interest_transactions
		(account_id, amount, period_start, period_end, rate_bps, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		txn.AccountID,
		txn.Amount,
		txn.PeriodStart,
		txn.PeriodEnd,
		txn.RateBps,
		txn.IdempotencyKey,
	).Scan(&txn.ID, &txn.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("account %d period [%s, %s): %w",
				txn.AccountID,
				txn.PeriodStart.Format("2006-01-02"),
				txn.PeriodEnd.Format("2006-01-02"),
				service.ErrDuplicateInterestPosting)
		}
		return fmt.Errorf("failed to insert interest transaction for account %d: %w", txn.AccountID, err)
	}
	return nil
}

// ListByAccount returns recent interest transactions for an account
func (r *InterestTransactionRepository) ListByAccount(ctx context.Context, accountID int64, limit int) ([]*models.InterestTransaction, error) {
	query := `
		SELECT id, account_id, amount, period_start, period_end, rate_bps, idempotency_key, created_at
		FROM interest_transactions
		WHERE account_id = $1
		ORDER BY period_start DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list interest transactions for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var txns []*models.InterestTransaction
	for rows.Next() {
		var txn models.InterestTransaction
		err := rows.Scan(
			&txn.ID,
			&txn.AccountID,
			&txn.Amount,
			&txn.PeriodStart,
			&txn.PeriodEnd,
			&txn.RateBps,
			&txn.IdempotencyKey,
			&txn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interest transaction: %w", err)
		}
		txns = append(txns, &txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interest transactions: %w", err)
	}
	return txns, nil
}
