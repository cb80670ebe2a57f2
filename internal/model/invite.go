package model

import "time"

// InviteCode is a single-use capability token gating deal submissions.
type InviteCode struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"-"` // Not exposed in API
}

// GenerateInviteResponse is the API response DTO for POST /api/invites
type GenerateInviteResponse struct {
	Code string `json:"code"`
}

// VerifyInviteResponse is the API response DTO for GET /api/invites/:code/verify
type VerifyInviteResponse struct {
	Valid    bool   `json:"valid"`
	InviteID string `json:"invite_id"`
}
