package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealboard/dealboard/internal/model"
	"github.com/dealboard/dealboard/internal/service"
	"github.com/dealboard/dealboard/pkg/database"
)

// SubmissionPoolInterface defines the database operations needed by SubmissionRepository.
type SubmissionPoolInterface interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SubmissionRepository provides data access for submissions using pgx.
type SubmissionRepository struct {
	pool SubmissionPoolInterface
}

// NewSubmissionRepository creates a new SubmissionRepository with the given pool.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// NewSubmissionRepositoryWithPool creates a new SubmissionRepository with a custom
// pool interface. This is primarily used for testing.
func NewSubmissionRepositoryWithPool(pool SubmissionPoolInterface) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// Insert inserts a new submission record within a transaction.
// Returns service.ErrSubmissionExists if the invite already has a submission
// bound to it (unique constraint on invite_id), and service.ErrInviteNotFound
// if the referenced invite row does not exist.
func (r *SubmissionRepository) Insert(ctx context.Context, tx database.TxQuerier, sub *model.Submission) error {
	query := `INSERT INTO submissions
		(id, brand_name, amount, currency, platform, category, follower_count, description, invite_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10)`

	_, err := tx.Exec(ctx, query,
		sub.ID, sub.BrandName, sub.Amount, sub.Currency, sub.Platform,
		sub.Category, sub.FollowerCount, sub.Description, sub.InviteID, sub.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return service.ErrSubmissionExists
			case "23503":
				return service.ErrInviteNotFound
			}
		}
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// ListAll retrieves every submission, newest first.
// On success, returns an empty slice (not nil) when no submissions exist.
func (r *SubmissionRepository) ListAll(ctx context.Context) ([]model.Submission, error) {
	query := `SELECT id, brand_name, amount, currency, platform, category,
		follower_count, COALESCE(description, ''), invite_id, created_at
		FROM submissions ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(
			&s.ID, &s.BrandName, &s.Amount, &s.Currency, &s.Platform,
			&s.Category, &s.FollowerCount, &s.Description, &s.InviteID, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submission rows: %w", err)
	}

	// Return empty slice, not nil
	if subs == nil {
		subs = []model.Submission{}
	}

	return subs, nil
}

// Stats computes the public listing aggregates in a single round trip.
// All averages are zero when no submissions exist.
func (r *SubmissionRepository) Stats(ctx context.Context) (*model.SubmissionStats, error) {
	query := `SELECT
		COUNT(*),
		COALESCE(SUM(amount), 0),
		COALESCE(AVG(amount), 0),
		COALESCE(AVG(follower_count), 0),
		COUNT(DISTINCT platform),
		COUNT(DISTINCT category),
		COALESCE((SELECT AVG(amount) FROM (
			SELECT amount FROM submissions ORDER BY created_at DESC LIMIT 10
		) recent), 0)
	FROM submissions`

	var stats model.SubmissionStats
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalDeals,
		&stats.TotalValue,
		&stats.AverageAmount,
		&stats.AverageFollowers,
		&stats.Platforms,
		&stats.Categories,
		&stats.RecentTrend,
	)
	if err != nil {
		return nil, fmt.Errorf("submission stats: %w", err)
	}
	return &stats, nil
}
