package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealboard/dealboard/internal/model"
	"github.com/dealboard/dealboard/pkg/database"
)

// SubmissionRepositoryInterface defines the interface for submission data access.
type SubmissionRepositoryInterface interface {
	Insert(ctx context.Context, tx database.TxQuerier, sub *model.Submission) error
	ListAll(ctx context.Context) ([]model.Submission, error)
	Stats(ctx context.Context) (*model.SubmissionStats, error)
}

// SubmissionService provides business logic for deal submissions and the
// public listing.
type SubmissionService struct {
	pool           TxBeginner
	inviteRepo     InviteRepositoryInterface
	submissionRepo SubmissionRepositoryInterface
}

// NewSubmissionService creates a new SubmissionService with the given pool and repositories.
func NewSubmissionService(pool *pgxpool.Pool, inviteRepo InviteRepositoryInterface, submissionRepo SubmissionRepositoryInterface) *SubmissionService {
	return &SubmissionService{
		pool:           pool,
		inviteRepo:     inviteRepo,
		submissionRepo: submissionRepo,
	}
}

// NewSubmissionServiceWithTxBeginner creates a SubmissionService with a custom TxBeginner.
// Primarily used for testing.
func NewSubmissionServiceWithTxBeginner(pool TxBeginner, inviteRepo InviteRepositoryInterface, submissionRepo SubmissionRepositoryInterface) *SubmissionService {
	return &SubmissionService{
		pool:           pool,
		inviteRepo:     inviteRepo,
		submissionRepo: submissionRepo,
	}
}

// Create atomically records a submission and consumes its invite.
// The invite row is locked with SELECT FOR UPDATE for the duration of the
// transaction, so "verify invite is unused, create submission, mark invite
// used" happens as one unit: of two concurrent submissions on the same
// invite, exactly one commits and the other fails with ErrInviteUsed.
// Returns:
//   - ErrMissingInvite if neither invite_code nor invite_id was provided
//   - ErrInviteNotFound if the invite doesn't exist
//   - ErrInviteUsed if the invite has already been consumed
//   - ErrSubmissionExists if a submission is already bound to the invite
func (s *SubmissionService) Create(ctx context.Context, req *model.CreateSubmissionRequest) (*model.Submission, error) {
	// Defense-in-depth: check for nil pointers even though handler validates
	if req == nil || req.Amount == nil || req.FollowerCount == nil {
		return nil, ErrInvalidRequest
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	// 1. Resolve and lock the invite row
	var invite *model.InviteCode
	switch {
	case strings.TrimSpace(req.InviteID) != "":
		invite, err = s.inviteRepo.GetByIDForUpdate(ctx, tx, strings.TrimSpace(req.InviteID))
	case strings.TrimSpace(req.InviteCode) != "":
		invite, err = s.inviteRepo.GetByCodeForUpdate(ctx, tx, NormalizeCode(req.InviteCode))
	default:
		return nil, ErrMissingInvite
	}
	if err != nil {
		if errors.Is(err, ErrInviteNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("get invite for update: %w", err)
	}

	// 2. Reject consumed invites
	if invite.Used {
		return nil, ErrInviteUsed
	}

	now := time.Now().UTC()
	sub := &model.Submission{
		ID:            uuid.NewString(),
		BrandName:     strings.TrimSpace(req.BrandName),
		Amount:        *req.Amount,
		Currency:      strings.ToUpper(strings.TrimSpace(req.Currency)),
		Platform:      strings.TrimSpace(req.Platform),
		Category:      strings.TrimSpace(req.Category),
		FollowerCount: *req.FollowerCount,
		Description:   strings.TrimSpace(req.Description),
		InviteID:      invite.ID,
		CreatedAt:     now,
	}

	// 3. Insert submission (UNIQUE constraint on invite_id catches duplicates)
	if err := s.submissionRepo.Insert(ctx, tx, sub); err != nil {
		if errors.Is(err, ErrSubmissionExists) {
			return nil, ErrSubmissionExists
		}
		if errors.Is(err, ErrInviteNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("insert submission: %w", err)
	}

	// 4. Consume the invite in the same transaction
	if err := s.inviteRepo.MarkUsed(ctx, tx, invite.ID, now); err != nil {
		if errors.Is(err, ErrInviteUsed) {
			return nil, ErrInviteUsed
		}
		return nil, fmt.Errorf("mark invite used: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return sub, nil
}

// List retrieves every submission, newest first.
func (s *SubmissionService) List(ctx context.Context) ([]model.Submission, error) {
	subs, err := s.submissionRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return subs, nil
}

// Stats computes the public listing aggregates.
func (s *SubmissionService) Stats(ctx context.Context) (*model.SubmissionStats, error) {
	stats, err := s.submissionRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("submission stats: %w", err)
	}
	return stats, nil
}
