package repositories

import (
	"updoot/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	// GetMany fetches all users whose ID is in ids with a single query.
	// Missing IDs are simply absent from the result.
	GetMany(ids []uint) ([]models.User, error)
	UpdatePassword(id uint, hash string) error
}
