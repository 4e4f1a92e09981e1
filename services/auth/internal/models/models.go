package models

import "time"

type User struct {
	ID           uint       `gorm:"primaryKey;autoIncrement"   json:"id"`
	Username     string     `gorm:"uniqueIndex;not null"       json:"username"`
	Email        string     `gorm:"index;not null;default:''"  json:"email"`
	FirstName    string     `gorm:"not null;default:''"        json:"first_name"`
	LastName     string     `gorm:"not null;default:''"        json:"last_name"`
	PasswordHash string     `gorm:"not null"                   json:"-"`
	Role         string     `gorm:"not null;default:'user'"    json:"role"`
	LastLoginAt  *time.Time `                                  json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `                                  json:"created_at"`
	UpdatedAt    time.Time  `                                  json:"-"`
}

func (u *User) IsAdmin() bool { return u.Role == "admin" }

// RefreshToken stores the sha256 of an opaque token. A user has at most one active row.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"                     json:"id"`
	UserID    uint      `gorm:"index;not null"                 json:"user_id"`
	TokenHash string    `gorm:"uniqueIndex;not null;size:64"   json:"-"`
	CreatedAt time.Time `                                      json:"created_at"`
	ExpiresAt time.Time `gorm:"not null"                       json:"expires_at"`
	IsActive  bool      `gorm:"not null;default:true;index"    json:"is_active"`
}
