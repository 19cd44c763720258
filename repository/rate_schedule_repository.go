package repository

import (
	"context"
	"fmt"

	"corebank/database"
	"corebank/models"
)

// RateScheduleRepository implements the RateScheduleRepository interface
type RateScheduleRepository struct {
	q queryable
}

// NewRateScheduleRepository creates a new rate schedule repository
func NewRateScheduleRepository(db *database.DB) *RateScheduleRepository {
	return &RateScheduleRepository{q: db.Pool}
}

// newRateScheduleRepositoryWithTx creates a new rate schedule repository with a transaction
func newRateScheduleRepositoryWithTx(tx queryable) *RateScheduleRepository {
	return &RateScheduleRepository{q: tx}
}

// ListEntries returns the full published schedule, newest entries first per
// tier
func (r *RateScheduleRepository) ListEntries(ctx context.Context) ([]*models.RateEntry, error) {
	query := `
		SELECT id, tier, rate_bps, effective_from, created_at
		FROM interest_rate_schedule
		ORDER BY tier, effective_from DESC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list rate schedule entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.RateEntry
	for rows.Next() {
		var entry models.RateEntry
		err := rows.Scan(
			&entry.ID,
			&entry.Tier,
			&entry.RateBps,
			&entry.EffectiveFrom,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rate entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rate entries: %w", err)
	}
	return entries, nil
}

// Insert publishes a new schedule entry. Entries are append-only: superseding
// a rate means inserting a newer effective date, never editing in place.
func (r *RateScheduleRepository) Insert(ctx context.Context, entry *models.RateEntry) error {
	query := `
		INSERT INTO interest_rate_schedule (tier, rate_bps, effective_from)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, entry.Tier, entry.RateBps, entry.EffectiveFrom).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert rate entry for tier %q: %w", entry.Tier, err)
	}
	return nil
}
