package models

import (
	"time"
)

type Post struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Title  string `gorm:"not null" json:"title"`
	Text   string `gorm:"type:text" json:"text"`
	// Points is a stored aggregate: it always equals the sum of Updoot.Value
	// across the post's updoots. Only the vote engine writes it.
	Points    int       `gorm:"not null;default:0" json:"points"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snippet returns a shortened preview of the post body for list views.
func (p Post) Snippet() string {
	const max = 50
	runes := []rune(p.Text)
	if len(runes) <= max {
		return p.Text
	}
	return string(runes[:max]) + "..."
}
