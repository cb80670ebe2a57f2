package model

import "time"

// Invite request statuses. Requests are stored for manual review;
// nothing in the service transitions them automatically.
const (
	InviteRequestStatusPending = "pending"
)

// InviteRequest is a waitlist entry from a creator asking for an invite.
type InviteRequest struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Platform      string    `json:"platform"`
	Category      string    `json:"category"`
	FollowerCount int64     `json:"follower_count"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateInviteRequestRequest is the DTO for the waitlist intake.
type CreateInviteRequestRequest struct {
	Email         string `json:"email" validate:"required,notblank,email,max=255"`
	Platform      string `json:"platform" validate:"required,notblank,max=255"`
	Category      string `json:"category" validate:"required,notblank,max=255"`
	FollowerCount *int64 `json:"follower_count" validate:"required,gte=0"`
}
