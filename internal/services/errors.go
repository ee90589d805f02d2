package services

import "errors"

var (
	// ErrUnauthorized means no authenticated user backs the request.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound means the referenced post or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrRedundantVote means the user already voted this direction on the
	// post. Rejected rather than treated as idempotent success, so callers
	// can tell a re-click from an applied vote; points are untouched either way.
	ErrRedundantVote = errors.New("already voted this way")

	// ErrConcurrentVote means another vote on the same (user, post) committed
	// first; nothing was applied and the caller may retry.
	ErrConcurrentVote = errors.New("concurrent vote")

	// ErrUserExists means the username or email is already taken.
	ErrUserExists = errors.New("username or email already exists")

	// ErrInvalidCredentials covers both unknown identifier and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenExpired means the password-reset token is unknown or expired.
	ErrTokenExpired = errors.New("token expired")
)
