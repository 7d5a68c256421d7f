package model

import (
	"strings"
	"time"
)

// Account keeps the username as registered for display. Uniqueness and
// lookups go through UsernameNormalized so every driver compares names the
// same way whatever the column collation.
type Account struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Username           string    `gorm:"size:50;not null" json:"userName"`
	UsernameNormalized string    `gorm:"size:50;not null;uniqueIndex" json:"-"`
	Email              string    `gorm:"size:256;not null" json:"email"`
	PasswordHash       string    `gorm:"size:255;not null" json:"-"`
	Name               *string   `gorm:"size:100" json:"name"`
	AvatarURL          *string   `gorm:"size:512" json:"avatarUrl"`
	TimeZone           *string   `gorm:"size:64" json:"timeZone"`
	Preferences        *string   `gorm:"type:text" json:"-"` // raw JSON document
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// NormalizeUsername is the lookup key for a username: trimmed and lower-cased.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
