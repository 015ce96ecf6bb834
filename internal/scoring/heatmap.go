package scoring

import (
	"math"
	"time"

	"github.com/rishee01/smartfix/internal/model"
)

var severityWeights = map[string]float64{
	model.SeverityCritical: 5,
	model.SeverityHigh:     3,
	model.SeverityMedium:   2,
	model.SeverityLow:      1,
}

// HeatmapWeight prioritizes unresolved reports on the map. Resolved reports
// are filtered out upstream, not zero-weighted here. The caller supplies now
// so the recency bonus stays deterministic.
func HeatmapWeight(severity string, verifiedCount int, status string, isSOS bool, createdAt, now time.Time) float64 {
	weight, ok := severityWeights[severity]
	if !ok {
		weight = 1
	}

	weight += float64(verifiedCount) * 0.8

	switch status {
	case model.StatusOpen:
		weight += 3
	case model.StatusInProgress:
		weight += 1.5
	}

	if isSOS {
		weight += 5
	}

	// Recency bonus decays to zero after 20 days, never negative.
	daysSince := now.Sub(createdAt).Hours() / 24
	weight += math.Max(0, 2-daysSince*0.1)

	return weight
}
