package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"corebank/database"
	"corebank/models"
	"github.com/jackc/pgx/v5"
)

// InterestRunRepository implements the InterestRunRepository interface
type InterestRunRepository struct {
	q queryable
}

// NewInterestRunRepository creates a new interest run repository
func NewInterestRunRepository(db *database.DB) *InterestRunRepository {
	return &InterestRunRepository{q: db.Pool}
}

// newInterestRunRepositoryWithTx creates a new interest run repository with a transaction
func newInterestRunRepositoryWithTx(tx queryable) *InterestRunRepository {
	return &InterestRunRepository{q: tx}
}

const interestRunColumns = `id, period_start, period_end, credited, skipped, failed, total_credited, summary, created_at`

func scanInterestRun(row pgx.Row) (*models.InterestRun, error) {
	var run models.InterestRun
	var summaryJSON []byte

	err := row.Scan(
		&run.ID,
		&run.PeriodStart,
		&run.PeriodEnd,
		&run.Credited,
		&run.Skipped,
		&run.Failed,
		&run.TotalCredited,
		&summaryJSON,
		&run.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if len(summaryJSON) > 0 {
		if err := json.Unmarshal(summaryJSON, &run.Summary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run summary: %w", err)
		}
	}
	return &run, nil
}

// Create creates a new interest run record
func (r *InterestRunRepository) Create(ctx context.Context, run *models.InterestRun) error {
	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	query := `
		INSERT INTO interest_runs
		(period_start, period_end, credited, skipped, failed, total_credited, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		run.PeriodStart,
		run.PeriodEnd,
		run.Credited,
		run.Skipped,
		run.Failed,
		run.TotalCredited,
		summaryJSON,
	).Scan(&run.ID, &run.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create interest run for period %s: %w",
			run.PeriodStart.Format("2006-01-02"), err)
	}
	return nil
}

// GetLatest returns the most recent interest run
func (r *InterestRunRepository) GetLatest(ctx context.Context) (*models.InterestRun, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM interest_runs
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, interestRunColumns)

	run, err := scanInterestRun(r.q.QueryRow(ctx, query))
	if err != nil {
		return nil, fmt.Errorf("failed to get latest interest run: %w", err)
	}
	return run, nil
}

// GetByPeriod returns the most recent run recorded for a period, nil when the
// period has never been run
func (r *InterestRunRepository) GetByPeriod(ctx context.Context, period models.AccrualPeriod) (*models.InterestRun, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM interest_runs
		WHERE period_start = $1 AND period_end = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, interestRunColumns)

	run, err := scanInterestRun(r.q.QueryRow(ctx, query, period.Start, period.End))
	if err != nil {
		return nil, fmt.Errorf("failed to get interest run for period %s: %w", period, err)
	}
	return run, nil
}
