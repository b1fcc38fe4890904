package service

import "errors"

var (
	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotificationNotFound is returned when a promotion does not exist or is inactive
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrPromotionNotStarted is returned when claiming before starts_at
	ErrPromotionNotStarted = errors.New("promotion has not started")

	// ErrPromotionExpired is returned when claiming after ends_at
	ErrPromotionExpired = errors.New("promotion has expired")

	// ErrPromotionExhausted is returned when remaining_claims has reached zero
	ErrPromotionExhausted = errors.New("promotion quota exhausted")

	// ErrAlreadyClaimed is returned when a member already holds a code for the promotion
	ErrAlreadyClaimed = errors.New("promotion already claimed by member")

	// ErrClaimCodeConflict is returned when a generated claim code collides with an existing one
	ErrClaimCodeConflict = errors.New("claim code conflict")
)
