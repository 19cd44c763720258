package repository

import (
	"context"
	"fmt"
	"time"

	"corebank/database"
	"corebank/models"
	"corebank/service"
	"github.com/jackc/pgx/v5"
)

const accountColumns = `id, customer_id, tier, balance, last_interest_credited, created_at, updated_at`

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID,
		&account.CustomerID,
		&account.Tier,
		&account.Balance,
		&account.LastInterestCredited,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByID retrieves an account by its id
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE id = $1`, accountColumns)

	account, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", id, err)
	}
	return account, nil
}

// GetByIDForUpdate retrieves an account and takes a row lock on it. Concurrent
// interest postings for the same account serialize here.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE id = $1 FOR UPDATE`, accountColumns)

	account, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %d: %w", id, err)
	}
	return account, nil
}

// Create creates a new account with an opening balance
func (r *AccountRepository) Create(ctx context.Context, customerID int64, tier models.AccountTier, openingBalance int64) (*models.Account, error) {
	query := fmt.Sprintf(`
		INSERT INTO accounts (customer_id, tier, balance)
		VALUES ($1, $2, $3)
		RETURNING %s
	`, accountColumns)

	account, err := scanAccount(r.q.QueryRow(ctx, query, customerID, tier, openingBalance))
	if err != nil {
		return nil, fmt.Errorf("failed to create account for customer %d: %w", customerID, err)
	}
	return account, nil
}

// AddBalance adds to an account's balance atomically
func (r *AccountRepository) AddBalance(ctx context.Context, id int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, id)
	if err != nil {
		return fmt.Errorf("failed to add balance for account %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %d: %w", id, service.ErrAccountNotFound)
	}
	return nil
}

// DeductBalance deducts from an account's balance atomically, failing if the
// balance would go negative
func (r *AccountRepository) DeductBalance(ctx context.Context, id int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	// The balance check lives inside the UPDATE so concurrent debits cannot
	// both succeed past the available funds.
	query := `
		UPDATE accounts
		SET balance = balance - $1, updated_at = NOW()
		WHERE id = $2 AND balance >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, id)
	if err != nil {
		return fmt.Errorf("failed to deduct balance for account %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		account, err := r.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to check account %d: %w", id, err)
		}
		if account == nil {
			return fmt.Errorf("account %d: %w", id, service.ErrAccountNotFound)
		}
		return fmt.Errorf("%w: have %d, need %d", service.ErrInsufficientFunds, account.Balance, amount)
	}
	return nil
}

// SetLastInterestCredited advances the account's interest watermark
func (r *AccountRepository) SetLastInterestCredited(ctx context.Context, id int64, creditedThrough time.Time) error {
	query := `
		UPDATE accounts
		SET last_interest_credited = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, creditedThrough, id)
	if err != nil {
		return fmt.Errorf("failed to update interest watermark for account %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %d: %w", id, service.ErrAccountNotFound)
	}
	return nil
}

// ListEligible returns accounts matching the filter, ordered by id. A nil
// filter returns all accounts.
func (r *AccountRepository) ListEligible(ctx context.Context, filter *service.AccountFilter) ([]*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts`, accountColumns)
	var args []any

	if filter != nil {
		conditions := ""
		if filter.Tier != nil {
			args = append(args, *filter.Tier)
			conditions = fmt.Sprintf("tier = $%d", len(args))
		}
		if len(filter.AccountIDs) > 0 {
			args = append(args, filter.AccountIDs)
			if conditions != "" {
				conditions += " AND "
			}
			conditions += fmt.Sprintf("id = ANY($%d)", len(args))
		}
		if conditions != "" {
			query += " WHERE " + conditions
		}
	}
	query += " ORDER BY id"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}
