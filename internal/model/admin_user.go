package model

import "time"

// AdminUser holds the dashboard credential. The password is stored as a
// bcrypt hash, never in plain text.
type AdminUser struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"not null;uniqueIndex;size:255" json:"email"`
	PasswordHash string    `gorm:"not null;size:255" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}
