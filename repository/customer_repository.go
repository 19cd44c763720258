package repository

import (
	"context"
	"fmt"

	"corebank/database"
	"corebank/models"
	"github.com/jackc/pgx/v5"
)

// CustomerRepository implements the CustomerRepository interface
type CustomerRepository struct {
	q queryable
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *database.DB) *CustomerRepository {
	return &CustomerRepository{q: db.Pool}
}

// newCustomerRepositoryWithTx creates a new customer repository with a transaction
func newCustomerRepositoryWithTx(tx queryable) *CustomerRepository {
	return &CustomerRepository{q: tx}
}

// Create creates a new customer
func (r *CustomerRepository) Create(ctx context.Context, name, email string) (*models.Customer, error) {
	query := `
		INSERT INTO customers (name, email)
		VALUES ($1, $2)
		RETURNING id, name, email, created_at
	`

	var customer models.Customer
	err := r.q.QueryRow(ctx, query, name, email).Scan(
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&customer.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer %q: %w", email, err)
	}
	return &customer, nil
}

// GetByID retrieves a customer by id, nil when not found
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	query := `SELECT id, name, email, created_at FROM customers WHERE id = $1`

	var customer models.Customer
	err := r.q.QueryRow(ctx, query, id).Scan(
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&customer.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer %d: %w", id, err)
	}
	return &customer, nil
}
