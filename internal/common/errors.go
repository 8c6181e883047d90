package common

import "errors"

// Sentinel errors shared by the client and server layers. Match them with
// errors.Is; callers wrap them with context.
var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	// ErrReferenced is returned when a row cannot be removed because other
	// rows still point at it.
	ErrReferenced = errors.New("still referenced")

	// Service-level errors.
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation error")

	// ErrOwnerMismatch is returned when a mutation targets a row owned by
	// another user, or declares an owner other than the session user.
	ErrOwnerMismatch = errors.New("owner mismatch")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
