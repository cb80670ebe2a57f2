package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealboard/dealboard/internal/model"
	"github.com/dealboard/dealboard/pkg/database"
)

// InviteRepositoryInterface defines the interface for invite data access.
type InviteRepositoryInterface interface {
	Insert(ctx context.Context, invite *model.InviteCode) error
	GetByCode(ctx context.Context, code string) (*model.InviteCode, error)
	GetByCodeForUpdate(ctx context.Context, tx database.TxQuerier, code string) (*model.InviteCode, error)
	GetByIDForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.InviteCode, error)
	MarkUsed(ctx context.Context, tx database.TxQuerier, id string, usedAt time.Time) error
}

// WaitlistRepositoryInterface defines the interface for invite-request storage.
type WaitlistRepositoryInterface interface {
	Insert(ctx context.Context, req *model.InviteRequest) error
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// InviteService provides business logic for the invite-code lifecycle:
// generation, verification, consumption, and the waitlist intake.
type InviteService struct {
	pool         TxBeginner
	inviteRepo   InviteRepositoryInterface
	waitlistRepo WaitlistRepositoryInterface
	codeBytes    int
	maxAttempts  int
}

// NewInviteService creates a new InviteService. codeBytes is the number of
// random bytes per generated code and maxAttempts bounds the collision retry loop.
func NewInviteService(pool *pgxpool.Pool, inviteRepo InviteRepositoryInterface, waitlistRepo WaitlistRepositoryInterface, codeBytes, maxAttempts int) *InviteService {
	return newInviteService(pool, inviteRepo, waitlistRepo, codeBytes, maxAttempts)
}

// NewInviteServiceWithTxBeginner creates an InviteService with a custom TxBeginner.
// Primarily used for testing.
func NewInviteServiceWithTxBeginner(pool TxBeginner, inviteRepo InviteRepositoryInterface, waitlistRepo WaitlistRepositoryInterface, codeBytes, maxAttempts int) *InviteService {
	return newInviteService(pool, inviteRepo, waitlistRepo, codeBytes, maxAttempts)
}

func newInviteService(pool TxBeginner, inviteRepo InviteRepositoryInterface, waitlistRepo WaitlistRepositoryInterface, codeBytes, maxAttempts int) *InviteService {
	if codeBytes < 1 {
		codeBytes = 4
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &InviteService{
		pool:         pool,
		inviteRepo:   inviteRepo,
		waitlistRepo: waitlistRepo,
		codeBytes:    codeBytes,
		maxAttempts:  maxAttempts,
	}
}

// NormalizeCode canonicalizes user-supplied invite codes. Codes are stored
// uppercased, so lookups uppercase the input as well.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// randomCode derives a short opaque code from crypto/rand bytes.
// The code is a capability token, so a CSPRNG is mandatory here.
func randomCode(size int) (string, error) {
	b := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// Generate creates and persists a fresh unused invite code.
// On a unique-constraint collision it regenerates the code, up to the
// configured attempt bound, before surfacing the failure.
func (s *InviteService) Generate(ctx context.Context) (*model.InviteCode, error) {
	var lastErr error
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		code, err := randomCode(s.codeBytes)
		if err != nil {
			return nil, err
		}

		invite := &model.InviteCode{
			ID:   uuid.NewString(),
			Code: code,
		}

		err = s.inviteRepo.Insert(ctx, invite)
		if err == nil {
			return invite, nil
		}
		if !errors.Is(err, ErrInviteExists) {
			return nil, fmt.Errorf("insert invite: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("generate invite: exhausted %d attempts: %w", s.maxAttempts, lastErr)
}

// Verify reports whether the code denotes an existing, unconsumed invite.
// Returns:
//   - ErrInviteNotFound if no invite matches the code
//   - ErrInviteUsed if the invite has already been consumed
func (s *InviteService) Verify(ctx context.Context, code string) (*model.InviteCode, error) {
	invite, err := s.inviteRepo.GetByCode(ctx, NormalizeCode(code))
	if err != nil {
		return nil, fmt.Errorf("get invite: %w", err)
	}
	if invite == nil {
		return nil, ErrInviteNotFound
	}
	if invite.Used {
		return nil, ErrInviteUsed
	}
	return invite, nil
}

// Consume atomically marks the invite as used and stamps used_at.
// The row is locked for the duration of the transaction, so of two
// concurrent callers exactly one succeeds and the other gets ErrInviteUsed.
// Returns ErrInviteNotFound for unknown codes.
func (s *InviteService) Consume(ctx context.Context, code string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	invite, err := s.inviteRepo.GetByCodeForUpdate(ctx, tx, NormalizeCode(code))
	if err != nil {
		if errors.Is(err, ErrInviteNotFound) {
			return ErrInviteNotFound
		}
		return fmt.Errorf("get invite for update: %w", err)
	}

	if invite.Used {
		return ErrInviteUsed
	}

	if err := s.inviteRepo.MarkUsed(ctx, tx, invite.ID, time.Now().UTC()); err != nil {
		if errors.Is(err, ErrInviteUsed) {
			return ErrInviteUsed
		}
		return fmt.Errorf("mark invite used: %w", err)
	}

	return tx.Commit(ctx)
}

// RequestInvite records a waitlist entry. Entries start out pending and are
// reviewed manually; no further processing happens in this service.
func (s *InviteService) RequestInvite(ctx context.Context, req *model.CreateInviteRequestRequest) error {
	// Defense-in-depth: check for nil pointer even though handler validates
	if req == nil || req.FollowerCount == nil {
		return ErrInvalidRequest
	}

	entry := &model.InviteRequest{
		ID:            uuid.NewString(),
		Email:         strings.TrimSpace(req.Email),
		Platform:      strings.TrimSpace(req.Platform),
		Category:      strings.TrimSpace(req.Category),
		FollowerCount: *req.FollowerCount,
		Status:        model.InviteRequestStatusPending,
	}
	return s.waitlistRepo.Insert(ctx, entry)
}
