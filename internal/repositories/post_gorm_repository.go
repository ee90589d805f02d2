package repositories

import (
	"errors"
	"fmt"
	"time"

	"updoot/internal/models"

	"gorm.io/gorm"
)

// GORMPostRepository is a GORM implementation of PostRepository.
type GORMPostRepository struct {
	db *gorm.DB
}

func NewGORMPostRepository(db *gorm.DB) *GORMPostRepository {
	return &GORMPostRepository{db: db}
}

func (r *GORMPostRepository) Create(post *models.Post) error {
	if err := r.db.Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *GORMPostRepository) GetByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post %d: %w", id, err)
	}
	return &post, nil
}

func (r *GORMPostRepository) List(limit int, cursor time.Time) ([]models.Post, bool, error) {
	// Fetch one extra row past the page to learn whether more remain.
	q := r.db.Order("created_at DESC, id DESC").Limit(limit + 1)
	if !cursor.IsZero() {
		q = q.Where("created_at < ?", cursor)
	}

	var posts []models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, false, fmt.Errorf("failed to list posts: %w", err)
	}

	hasMore := len(posts) > limit
	if hasMore {
		posts = posts[:limit]
	}
	return posts, hasMore, nil
}

func (r *GORMPostRepository) Delete(postID, authorID uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", postID, authorID).Delete(&models.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		// The FK is declared ON DELETE CASCADE, but remove the vote rows
		// explicitly as well so no orphan updoots survive on stores that do
		// not enforce the constraint.
		return tx.Where("post_id = ?", postID).Delete(&models.Updoot{}).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete post %d: %w", postID, err)
	}
	return nil
}
