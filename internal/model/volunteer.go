package model

import "time"

// Volunteer resolves claimed issues. UserID optionally links the volunteer to
// a citizen account so resolve rewards land on that user's point ledger.
type Volunteer struct {
	ID                 string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name               string    `gorm:"size:255" json:"name"`
	UserID             *string   `gorm:"type:uuid;index" json:"user_id,omitempty"`
	ClaimedIssuesCount int       `gorm:"not null;default:0" json:"claimed_issues_count"`
	ResolvedCount      int       `gorm:"not null;default:0" json:"resolved_count"`
	JoinedAt           time.Time `json:"joined_at"`
}

func (Volunteer) TableName() string {
	return "volunteers"
}
