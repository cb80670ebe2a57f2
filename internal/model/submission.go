package model

import "time"

// Submission is an anonymous sponsorship-deal record. Immutable once created.
type Submission struct {
	ID            string    `json:"id"`
	BrandName     string    `json:"brand_name"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Platform      string    `json:"platform"`
	Category      string    `json:"category"`
	FollowerCount int64     `json:"follower_count"`
	Description   string    `json:"description,omitempty"`
	InviteID      string    `json:"invite_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateSubmissionRequest is the DTO for creating a submission.
// Exactly one of InviteCode or InviteID must be provided; the service
// enforces that since validator tags cannot express either-or.
type CreateSubmissionRequest struct {
	BrandName     string   `json:"brand_name" validate:"required,notblank,max=255"`
	Amount        *float64 `json:"amount" validate:"required,gte=0"`
	Currency      string   `json:"currency" validate:"required,notblank,max=8"`
	Platform      string   `json:"platform" validate:"required,notblank,max=255"`
	Category      string   `json:"category" validate:"required,notblank,max=255"`
	FollowerCount *int64   `json:"follower_count" validate:"required,gte=0"`
	Description   string   `json:"description" validate:"max=2000"`
	InviteCode    string   `json:"invite_code" validate:"max=64"`
	InviteID      string   `json:"invite_id" validate:"max=64"`
}

// ListSubmissionsResponse is the API response DTO for GET /api/submissions
type ListSubmissionsResponse struct {
	Submissions []Submission `json:"submissions"`
}

// SubmissionStats aggregates the public listing figures.
// RecentTrend is the average amount over the 10 newest deals.
type SubmissionStats struct {
	TotalDeals       int64   `json:"total_deals"`
	TotalValue       float64 `json:"total_value"`
	AverageAmount    float64 `json:"average_amount"`
	AverageFollowers float64 `json:"average_followers"`
	Platforms        int64   `json:"platforms"`
	Categories       int64   `json:"categories"`
	RecentTrend      float64 `json:"recent_trend"`
}
