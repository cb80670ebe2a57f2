package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealboard/dealboard/internal/model"
	"github.com/dealboard/dealboard/internal/service"
	"github.com/dealboard/dealboard/pkg/database"
)

// PoolInterface defines the database operations needed by repositories.
// This allows for easier testing with mocks.
type PoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// InviteRepository provides data access for invite codes using pgx.
type InviteRepository struct {
	pool PoolInterface
}

// NewInviteRepository creates a new InviteRepository with the given pool.
func NewInviteRepository(pool *pgxpool.Pool) *InviteRepository {
	return &InviteRepository{pool: pool}
}

// NewInviteRepositoryWithPool creates a new InviteRepository with a custom pool interface.
// This is primarily used for testing.
func NewInviteRepositoryWithPool(pool PoolInterface) *InviteRepository {
	return &InviteRepository{pool: pool}
}

// Insert inserts a new unused invite code into the database.
// Returns service.ErrInviteExists if the code collides with an existing one.
func (r *InviteRepository) Insert(ctx context.Context, invite *model.InviteCode) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO invite_codes (id, code) VALUES ($1, $2)`,
		invite.ID, invite.Code)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return service.ErrInviteExists
		}
		return fmt.Errorf("insert invite: %w", err)
	}
	return nil
}

// GetByCode retrieves an invite by its code.
// Returns nil, nil if the invite is not found (service layer handles this).
func (r *InviteRepository) GetByCode(ctx context.Context, code string) (*model.InviteCode, error) {
	query := `SELECT id, code, used, used_at, created_at FROM invite_codes WHERE code = $1`

	var invite model.InviteCode
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&invite.ID,
		&invite.Code,
		&invite.Used,
		&invite.UsedAt,
		&invite.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get invite by code %s: %w", code, err)
	}
	return &invite, nil
}

// GetByCodeForUpdate retrieves an invite by code with a row lock (SELECT FOR UPDATE).
// The row stays locked until the transaction completes, which serializes
// concurrent submissions racing for the same invite.
// Returns service.ErrInviteNotFound if the invite doesn't exist.
func (r *InviteRepository) GetByCodeForUpdate(ctx context.Context, tx database.TxQuerier, code string) (*model.InviteCode, error) {
	query := `SELECT id, code, used, used_at, created_at FROM invite_codes WHERE code = $1 FOR UPDATE`

	var invite model.InviteCode
	err := tx.QueryRow(ctx, query, code).Scan(
		&invite.ID,
		&invite.Code,
		&invite.Used,
		&invite.UsedAt,
		&invite.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrInviteNotFound
		}
		return nil, fmt.Errorf("get invite for update %s: %w", code, err)
	}
	return &invite, nil
}

// GetByIDForUpdate retrieves an invite by id with a row lock (SELECT FOR UPDATE).
// Returns service.ErrInviteNotFound if the invite doesn't exist.
func (r *InviteRepository) GetByIDForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.InviteCode, error) {
	query := `SELECT id, code, used, used_at, created_at FROM invite_codes WHERE id = $1 FOR UPDATE`

	var invite model.InviteCode
	err := tx.QueryRow(ctx, query, id).Scan(
		&invite.ID,
		&invite.Code,
		&invite.Used,
		&invite.UsedAt,
		&invite.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrInviteNotFound
		}
		return nil, fmt.Errorf("get invite for update by id %s: %w", id, err)
	}
	return &invite, nil
}

// MarkUsed flips the invite to used and records the consumption time.
// The update is conditional on used = FALSE, so only one caller can ever
// win; a second call reports service.ErrInviteUsed instead of rewriting used_at.
func (r *InviteRepository) MarkUsed(ctx context.Context, tx database.TxQuerier, id string, usedAt time.Time) error {
	query := `UPDATE invite_codes SET used = TRUE, used_at = $2 WHERE id = $1 AND used = FALSE`

	tag, err := tx.Exec(ctx, query, id, usedAt)
	if err != nil {
		return fmt.Errorf("mark invite used %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrInviteUsed
	}
	return nil
}
