package repositories

import (
	"updoot/internal/models"
)

// UpdootRepository defines the interface for vote data access. The vote
// engine's read-check-mutate sequence runs entirely inside WithinTx, so the
// store transaction is what serializes concurrent votes on one (user, post).
type UpdootRepository interface {
	// WithinTx runs fn inside one store transaction. The repository handed to
	// fn is bound to that transaction; an error from fn rolls everything back.
	WithinTx(fn func(tx UpdootRepository) error) error

	// Get returns the vote for (userID, postID), or ErrNotFound if the user
	// has not voted on the post.
	Get(userID, postID uint) (*models.Updoot, error)

	// GetPost returns the voted-on post, or ErrNotFound.
	GetPost(postID uint) (*models.Post, error)

	// Create inserts a new vote row. A duplicate (userID, postID) pair
	// surfaces as ErrDuplicateKey.
	Create(updoot *models.Updoot) error

	// UpdateValue flips an existing vote from oldValue to newValue. The update
	// is conditional on the row still holding oldValue; if a concurrent vote
	// got there first it returns ErrStale and changes nothing.
	UpdateValue(userID, postID uint, newValue, oldValue int) error

	// AddPostPoints adjusts the post's points aggregate by delta as an atomic
	// SQL expression, never a read-modify-write.
	AddPostPoints(postID uint, delta int) error

	// GetMany fetches the votes for all keys with a single query. Keys with
	// no vote are simply absent from the result.
	GetMany(keys []models.UpdootKey) ([]models.Updoot, error)
}
