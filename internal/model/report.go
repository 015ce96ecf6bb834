package model

import "time"

// Category labels produced by the classifier oracle.
const (
	CategoryPothole        = "pothole"
	CategoryWaterLeakage   = "water_leakage"
	CategoryGarbage        = "overflowing_garbage"
	CategoryStreetlight    = "streetlight_not_working"
	CategoryIllegalDumping = "illegal_dumping"
	CategoryOther          = "other"
)

// Severity levels, ordered Low < Medium < High < Critical.
const (
	SeverityLow      = "Low"
	SeverityMedium   = "Medium"
	SeverityHigh     = "High"
	SeverityCritical = "Critical"
)

// Report statuses.
const (
	StatusOpen       = "Open"
	StatusInProgress = "In-progress"
	StatusResolved   = "Resolved"
)

// Categories lists every label the classifier may return.
var Categories = []string{
	CategoryPothole,
	CategoryGarbage,
	CategoryWaterLeakage,
	CategoryStreetlight,
	CategoryIllegalDumping,
	CategoryOther,
}

func ValidCategory(label string) bool {
	for _, c := range Categories {
		if c == label {
			return true
		}
	}
	return false
}

func ValidStatus(status string) bool {
	switch status {
	case StatusOpen, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// SeverityRank orders severity levels for comparisons; unknown levels rank lowest.
func SeverityRank(severity string) int {
	switch severity {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// Report is the central aggregate: a geotagged citizen report of an
// infrastructure issue. Label, confidence and is_sos are immutable after
// creation; severity and department are recomputed as verifications arrive.
type Report struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	PhotoURL      string    `gorm:"size:500" json:"photo_url"`
	Description   string    `gorm:"type:text" json:"description"`
	Lat           float64   `gorm:"not null" json:"lat"`
	Lon           float64   `gorm:"not null" json:"lon"`
	Label         string    `gorm:"not null;size:50;index" json:"label"`
	Confidence    float64   `gorm:"not null" json:"confidence"`
	Severity      string    `gorm:"not null;size:20;index" json:"severity"`
	Department    string    `gorm:"not null;size:100;index" json:"department"`
	VerifiedCount int       `gorm:"not null;default:0" json:"verified_count"`
	Status        string    `gorm:"not null;size:20;default:'Open';index" json:"status"`
	IsSOS         bool      `gorm:"not null;default:false" json:"is_sos"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Report) TableName() string {
	return "reports"
}
