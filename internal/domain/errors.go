package domain

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist for the team.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks input rejected before any write.
	ErrValidation = errors.New("validation failed")
	// ErrStoreUnavailable is returned when the backing store is not configured.
	ErrStoreUnavailable = errors.New("data store unavailable")
	// ErrAIUnavailable is returned when no generative model is configured.
	ErrAIUnavailable = errors.New("command interpreter unavailable")
	// ErrMalformedAIResponse is returned when the model answer cannot be used.
	ErrMalformedAIResponse = errors.New("malformed model response")
	// ErrNoTeam is returned for sessions whose user does not belong to a team.
	ErrNoTeam = errors.New("user does not belong to a team")
	// ErrConfirmationExpired is returned for unknown, foreign or expired confirmation tokens.
	ErrConfirmationExpired = errors.New("confirmation expired or unknown")
)
