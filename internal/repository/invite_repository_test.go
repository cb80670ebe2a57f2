package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealboard/dealboard/internal/model"
	"github.com/dealboard/dealboard/internal/service"
)

func newTestInvite(id, code string) *model.InviteCode {
	return &model.InviteCode{ID: id, Code: code}
}

// mockRow implements pgx.Row for testing.
type mockRow struct {
	scanFn func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.scanFn != nil {
		return m.scanFn(dest...)
	}
	return nil
}

// mockPool implements PoolInterface for testing.
type mockPool struct {
	execFn     func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	queryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
}

func (m *mockPool) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	if m.execFn != nil {
		return m.execFn(ctx, sql, arguments...)
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (m *mockPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.queryRowFn != nil {
		return m.queryRowFn(ctx, sql, args...)
	}
	return &mockRow{}
}

// mockTxQuerier implements database.TxQuerier for testing transactional methods.
type mockTxQuerier struct {
	execFn     func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	queryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
	queryFn    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (m *mockTxQuerier) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	if m.execFn != nil {
		return m.execFn(ctx, sql, arguments...)
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (m *mockTxQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.queryRowFn != nil {
		return m.queryRowFn(ctx, sql, args...)
	}
	return &mockRow{}
}

func (m *mockTxQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, sql, args...)
	}
	return nil, nil
}

// scanInvite fills Scan destinations in (id, code, used, used_at, created_at) order.
func scanInvite(dest []any, id, code string, used bool, usedAt *time.Time, createdAt time.Time) {
	*(dest[0].(*string)) = id
	*(dest[1].(*string)) = code
	*(dest[2].(*bool)) = used
	*(dest[3].(**time.Time)) = usedAt
	*(dest[4].(*time.Time)) = createdAt
}

func TestInviteRepository_Insert_Success(t *testing.T) {
	var capturedSQL string
	var capturedArgs []any

	mock := &mockPool{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			capturedSQL = sql
			capturedArgs = arguments
			return pgconn.NewCommandTag("INSERT 0 1"), nil
		},
	}

	repo := NewInviteRepositoryWithPool(mock)
	err := repo.Insert(context.Background(), newTestInvite("invite-1", "A1B2C3D4"))

	require.NoError(t, err)
	assert.Contains(t, capturedSQL, "INSERT INTO invite_codes")
	assert.Equal(t, []any{"invite-1", "A1B2C3D4"}, capturedArgs)
}

func TestInviteRepository_Insert_CodeCollision(t *testing.T) {
	mock := &mockPool{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, &pgconn.PgError{Code: "23505"}
		},
	}

	repo := NewInviteRepositoryWithPool(mock)
	err := repo.Insert(context.Background(), newTestInvite("invite-1", "A1B2C3D4"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInviteExists), "error should be ErrInviteExists")
}

func TestInviteRepository_Insert_OtherError(t *testing.T) {
	dbErr := errors.New("connection reset")
	mock := &mockPool{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, dbErr
		},
	}

	repo := NewInviteRepositoryWithPool(mock)
	err := repo.Insert(context.Background(), newTestInvite("invite-1", "A1B2C3D4"))

	require.Error(t, err)
	assert.False(t, errors.Is(err, service.ErrInviteExists), "error should not be ErrInviteExists")
	assert.True(t, errors.Is(err, dbErr), "error should wrap the db error")
}

func TestInviteRepository_GetByCode_Found(t *testing.T) {
	createdAt := time.Now()
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &mockRow{
				scanFn: func(dest ...any) error {
					scanInvite(dest, "invite-1", "A1B2C3D4", false, nil, createdAt)
					return nil
				},
			}
		},
	}

	repo := NewInviteRepositoryWithPool(mock)
	invite, err := repo.GetByCode(context.Background(), "A1B2C3D4")

	require.NoError(t, err)
	require.NotNil(t, invite)
	assert.Equal(t, "invite-1", invite.ID)
	assert.Equal(t, "A1B2C3D4", invite.Code)
	assert.False(t, invite.Used)
	assert.Nil(t, invite.UsedAt)
	assert.Equal(t, createdAt, invite.CreatedAt)
}

func TestInviteRepository_GetByCode_Consumed(t *testing.T) {
	usedAt := time.Now()
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &mockRow{
				scanFn: func(dest ...any) error {
					scanInvite(dest, "invite-1", "A1B2C3D4", true, &usedAt, time.Now())
					return nil
				},
			}
		},
	}

	repo := NewInviteRepositoryWithPool(mock)
	invite, err := repo.GetByCode(context.Background(), "A1B2C3D4")

	require.NoError(t, err)
	require.NotNil(t, invite)
	assert.True(t, invite.Used)
	require.NotNil(t, invite.UsedAt, "used_at must be set when used is true")
	assert.Equal(t, usedAt, *invite.UsedAt)
}

func TestInviteRepository_GetByCode_NotFound(t *testing.T) {
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &mockRow{
				scanFn: func(dest ...any) error {
					return pgx.ErrNoRows
				},
			}
		},
	}

	repo := NewInviteRepositoryWithPool(mock)
	invite, err := repo.GetByCode(context.Background(), "NOPE")

	require.NoError(t, err, "not found is not an error at the repository layer")
	assert.Nil(t, invite)
}

func TestInviteRepository_GetByCodeForUpdate_LocksRow(t *testing.T) {
	var capturedSQL string
	tx := &mockTxQuerier{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			capturedSQL = sql
			return &mockRow{
				scanFn: func(dest ...any) error {
					scanInvite(dest, "invite-1", "A1B2C3D4", false, nil, time.Now())
					return nil
				},
			}
		},
	}

	repo := NewInviteRepositoryWithPool(&mockPool{})
	invite, err := repo.GetByCodeForUpdate(context.Background(), tx, "A1B2C3D4")

	require.NoError(t, err)
	require.NotNil(t, invite)
	assert.Contains(t, capturedSQL, "FOR UPDATE", "lookup must lock the invite row")
}

func TestInviteRepository_GetByCodeForUpdate_NotFound(t *testing.T) {
	tx := &mockTxQuerier{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &mockRow{
				scanFn: func(dest ...any) error {
					return pgx.ErrNoRows
				},
			}
		},
	}

	repo := NewInviteRepositoryWithPool(&mockPool{})
	invite, err := repo.GetByCodeForUpdate(context.Background(), tx, "NOPE")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInviteNotFound), "error should be ErrInviteNotFound")
	assert.Nil(t, invite)
}

func TestInviteRepository_GetByIDForUpdate_NotFound(t *testing.T) {
	tx := &mockTxQuerier{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &mockRow{
				scanFn: func(dest ...any) error {
					return pgx.ErrNoRows
				},
			}
		},
	}

	repo := NewInviteRepositoryWithPool(&mockPool{})
	invite, err := repo.GetByIDForUpdate(context.Background(), tx, "missing-id")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInviteNotFound), "error should be ErrInviteNotFound")
	assert.Nil(t, invite)
}

func TestInviteRepository_MarkUsed_Success(t *testing.T) {
	var capturedSQL string
	var capturedArgs []any
	tx := &mockTxQuerier{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			capturedSQL = sql
			capturedArgs = arguments
			return pgconn.NewCommandTag("UPDATE 1"), nil
		},
	}

	usedAt := time.Now()
	repo := NewInviteRepositoryWithPool(&mockPool{})
	err := repo.MarkUsed(context.Background(), tx, "invite-1", usedAt)

	require.NoError(t, err)
	assert.Contains(t, capturedSQL, "used = FALSE", "update must be conditional on unused state")
	assert.Equal(t, []any{"invite-1", usedAt}, capturedArgs)
}

func TestInviteRepository_MarkUsed_AlreadyUsed(t *testing.T) {
	tx := &mockTxQuerier{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("UPDATE 0"), nil // Condition matched no rows
		},
	}

	repo := NewInviteRepositoryWithPool(&mockPool{})
	err := repo.MarkUsed(context.Background(), tx, "invite-1", time.Now())

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInviteUsed), "error should be ErrInviteUsed")
}

func TestInviteRepository_MarkUsed_ExecError(t *testing.T) {
	dbErr := errors.New("connection reset")
	tx := &mockTxQuerier{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, dbErr
		},
	}

	repo := NewInviteRepositoryWithPool(&mockPool{})
	err := repo.MarkUsed(context.Background(), tx, "invite-1", time.Now())

	require.Error(t, err)
	assert.False(t, errors.Is(err, service.ErrInviteUsed))
	assert.True(t, errors.Is(err, dbErr))
}
