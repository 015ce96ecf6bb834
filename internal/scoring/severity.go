package scoring

import "github.com/rishee01/smartfix/internal/model"

// Base numeric score per category tier. Unknown labels score as the low tier.
var categoryBaseScore = map[string]float64{
	model.CategoryPothole:        10,
	model.CategoryWaterLeakage:   10,
	model.CategoryGarbage:        6,
	model.CategoryStreetlight:    6,
	model.CategoryIllegalDumping: 6,
	model.CategoryOther:          3,
}

// CalculateSeverity maps a report's classification and community signals to a
// severity level. It is a full recomputation: callers re-invoke it whenever
// verifiedCount changes instead of patching the stored level.
func CalculateSeverity(label string, confidence float64, verifiedCount int, isSOS bool) string {
	score, ok := categoryBaseScore[label]
	if !ok {
		score = 3
	}

	switch {
	case confidence > 0.9:
		score *= 1.5
	case confidence > 0.8:
		score *= 1.3
	case confidence > 0.7:
		score *= 1.1
	}

	score += float64(verifiedCount) * 0.5

	if isSOS {
		score *= 2.5
	}

	switch {
	case score >= 15:
		return model.SeverityCritical
	case score >= 10:
		return model.SeverityHigh
	case score >= 6:
		return model.SeverityMedium
	}
	return model.SeverityLow
}

// Actionability is a 0-100 display metric combining verification count,
// severity and SOS status. Not persisted; recomputed on every fetch.
func Actionability(verifiedCount int, severity string, isSOS bool) int {
	score := verifiedCount * 15

	switch severity {
	case model.SeverityCritical:
		score += 40
	case model.SeverityHigh:
		score += 25
	default:
		score += 10
	}

	if isSOS {
		score += 25
	}

	if score > 100 {
		return 100
	}
	return score
}
