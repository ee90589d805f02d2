package repositories

import (
	"time"

	"updoot/internal/models"
)

// PostRepository defines the interface for post data access.
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id uint) (*models.Post, error)
	// List returns up to limit posts, newest first. A non-zero cursor
	// restricts the page to posts created strictly before it. hasMore
	// reports whether an older page exists beyond the returned one.
	List(limit int, cursor time.Time) (posts []models.Post, hasMore bool, err error)
	// Delete removes the post and all its updoots in one transaction.
	// Only the author may delete; a mismatched authorID yields ErrNotFound.
	Delete(postID, authorID uint) error
}
