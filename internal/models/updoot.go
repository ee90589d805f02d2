package models

import (
	"time"
)

// Updoot records one user's vote on one post. The (user_id, post_id) pair is
// the primary key, so a user can hold at most one vote per post; no row means
// the user has not voted. Value is always +1 or -1.
type Updoot struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Post      Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Value     int       `gorm:"not null" json:"value"` // +1 or -1
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdootKey identifies a single (post, user) vote slot, the unit the batched
// vote lookup works in.
type UpdootKey struct {
	PostID uint
	UserID uint
}
