package service

import "errors"

var (
	// ErrInviteNotFound is returned when no invite matches the given code or id
	ErrInviteNotFound = errors.New("invalid invite code")

	// ErrInviteUsed is returned when the invite has already been consumed
	ErrInviteUsed = errors.New("invite code already used")

	// ErrInviteExists is returned when a freshly generated code collides with
	// an existing one; the generator retries on it
	ErrInviteExists = errors.New("invite code already exists")

	// ErrSubmissionExists is returned when a submission is already bound to the invite
	ErrSubmissionExists = errors.New("submission already exists for invite")

	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")

	// ErrMissingInvite is returned when a submission carries neither an invite
	// code nor an invite id
	ErrMissingInvite = errors.New("invite code is required")
)
