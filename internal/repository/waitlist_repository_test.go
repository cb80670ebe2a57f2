package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealboard/dealboard/internal/model"
)

// mockWaitlistPool implements WaitlistPoolInterface for testing.
type mockWaitlistPool struct {
	execFn func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func (m *mockWaitlistPool) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	if m.execFn != nil {
		return m.execFn(ctx, sql, arguments...)
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestWaitlistRepository_Insert_Success(t *testing.T) {
	var capturedSQL string
	var capturedArgs []any

	mock := &mockWaitlistPool{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			capturedSQL = sql
			capturedArgs = arguments
			return pgconn.NewCommandTag("INSERT 0 1"), nil
		},
	}

	repo := NewWaitlistRepositoryWithPool(mock)
	err := repo.Insert(context.Background(), &model.InviteRequest{
		ID:            "req-1",
		Email:         "creator@example.com",
		Platform:      "YouTube",
		Category:      "Tech",
		FollowerCount: 150000,
		Status:        model.InviteRequestStatusPending,
	})

	require.NoError(t, err)
	assert.Contains(t, capturedSQL, "INSERT INTO invite_requests")
	assert.Equal(t, []any{"req-1", "creator@example.com", "YouTube", "Tech", int64(150000), "pending"}, capturedArgs)
}

func TestWaitlistRepository_Insert_Error(t *testing.T) {
	dbErr := errors.New("database connection failed")
	mock := &mockWaitlistPool{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, dbErr
		},
	}

	repo := NewWaitlistRepositoryWithPool(mock)
	err := repo.Insert(context.Background(), &model.InviteRequest{ID: "req-1"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, dbErr))
}
