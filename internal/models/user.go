package models

import (
	"time"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;not null" json:"-"` // only serialized to its owner, see Private
	Password  string    `gorm:"not null" json:"-"`             // bcrypt hash
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PrivateUser is the owner-facing shape of a user record. Everyone else gets
// the plain User serialization, which omits the email.
type PrivateUser struct {
	User
	Email string `json:"email"`
}

func (u User) Private() PrivateUser {
	return PrivateUser{User: u, Email: u.Email}
}
