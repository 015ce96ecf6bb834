package model

import "time"

// Verification records that a user attested a report is genuine. At most one
// row exists per (report, user) pair; rows are never updated or deleted.
type Verification struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID  string    `gorm:"type:uuid;not null;index" json:"report_id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Verification) TableName() string {
	return "verifications"
}
