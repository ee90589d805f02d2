package repositories

import "errors"

// Store-level error conditions the service layer branches on. GORM
// implementations translate driver errors into these; mocks return them
// directly.
var (
	// ErrNotFound means the referenced row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey means an insert violated a unique constraint.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrStale means a compare-and-swap update matched no row: a concurrent
	// writer changed it first.
	ErrStale = errors.New("stale update")
)
