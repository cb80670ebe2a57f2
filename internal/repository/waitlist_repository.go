package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealboard/dealboard/internal/model"
)

// WaitlistPoolInterface defines the database operations needed by WaitlistRepository.
type WaitlistPoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// WaitlistRepository stores invite requests. Rows are write-only from the
// service's point of view; review happens out of band.
type WaitlistRepository struct {
	pool WaitlistPoolInterface
}

// NewWaitlistRepository creates a new WaitlistRepository with the given pool.
func NewWaitlistRepository(pool *pgxpool.Pool) *WaitlistRepository {
	return &WaitlistRepository{pool: pool}
}

// NewWaitlistRepositoryWithPool creates a new WaitlistRepository with a custom
// pool interface. This is primarily used for testing.
func NewWaitlistRepositoryWithPool(pool WaitlistPoolInterface) *WaitlistRepository {
	return &WaitlistRepository{pool: pool}
}

// Insert inserts a new invite request.
func (r *WaitlistRepository) Insert(ctx context.Context, req *model.InviteRequest) error {
	query := `INSERT INTO invite_requests (id, email, platform, category, follower_count, status)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		req.ID, req.Email, req.Platform, req.Category, req.FollowerCount, req.Status)
	if err != nil {
		return fmt.Errorf("insert invite request: %w", err)
	}
	return nil
}
