package repositories

import (
	"errors"
	"fmt"

	"updoot/internal/models"

	"gorm.io/gorm"
)

// GORMUpdootRepository is a GORM implementation of UpdootRepository.
type GORMUpdootRepository struct {
	db *gorm.DB
}

func NewGORMUpdootRepository(db *gorm.DB) *GORMUpdootRepository {
	return &GORMUpdootRepository{db: db}
}

func (r *GORMUpdootRepository) WithinTx(fn func(tx UpdootRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GORMUpdootRepository{db: tx})
	})
}

func (r *GORMUpdootRepository) Get(userID, postID uint) (*models.Updoot, error) {
	var updoot models.Updoot
	err := r.db.Where("user_id = ? AND post_id = ?", userID, postID).First(&updoot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get updoot: %w", err)
	}
	return &updoot, nil
}

func (r *GORMUpdootRepository) GetPost(postID uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post %d: %w", postID, err)
	}
	return &post, nil
}

func (r *GORMUpdootRepository) Create(updoot *models.Updoot) error {
	if err := r.db.Create(updoot).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create updoot: %w", err)
	}
	return nil
}

func (r *GORMUpdootRepository) UpdateValue(userID, postID uint, newValue, oldValue int) error {
	res := r.db.Model(&models.Updoot{}).
		Where("user_id = ? AND post_id = ? AND value = ?", userID, postID, oldValue).
		UpdateColumn("value", newValue)
	if res.Error != nil {
		return fmt.Errorf("failed to update updoot: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

func (r *GORMUpdootRepository) AddPostPoints(postID uint, delta int) error {
	res := r.db.Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("points", gorm.Expr("points + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("failed to update post points: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GORMUpdootRepository) GetMany(keys []models.UpdootKey) ([]models.Updoot, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	pairs := make([][]interface{}, len(keys))
	for i, k := range keys {
		pairs[i] = []interface{}{k.PostID, k.UserID}
	}
	var updoots []models.Updoot
	if err := r.db.Where("(post_id, user_id) IN ?", pairs).Find(&updoots).Error; err != nil {
		return nil, fmt.Errorf("failed to get updoots: %w", err)
	}
	return updoots, nil
}
