package scoring

import (
	"fmt"
	"math"

	"github.com/rishee01/smartfix/internal/model"
)

// ResolutionEstimate is a predicted time to resolution in hours plus a
// human-readable rendering.
type ResolutionEstimate struct {
	Hours float64 `json:"hours"`
	Text  string  `json:"text"`
}

// Baseline hours keyed by "label|severity". Pairs absent from the table fall
// back to severity-only defaults.
var resolutionBaseHours = map[string]float64{
	"pothole|High":                   24,
	"water_leakage|High":             18,
	"streetlight_not_working|Medium": 48,
	"overflowing_garbage|Medium":     12,
	"illegal_dumping|Medium":         36,
	"other|Low":                      72,
}

// EstimateResolution predicts how long a report will take to resolve. High
// verification counts shorten the estimate: visibility speeds up crews.
func EstimateResolution(label, severity string, verifiedCount int) ResolutionEstimate {
	hours, ok := resolutionBaseHours[label+"|"+severity]
	if !ok {
		switch severity {
		case model.SeverityHigh:
			hours = 36
		case model.SeverityMedium:
			hours = 72
		default:
			hours = 168
		}
	}

	if verifiedCount >= 5 {
		hours *= 0.7
	} else if verifiedCount >= 3 {
		hours *= 0.85
	}

	if hours < 24 {
		return ResolutionEstimate{Hours: hours, Text: fmt.Sprintf("~%d hours", int(math.Round(hours)))}
	}

	days := int(math.Ceil(hours / 24))
	if days == 1 {
		return ResolutionEstimate{Hours: hours, Text: "1 day"}
	}
	return ResolutionEstimate{Hours: hours, Text: fmt.Sprintf("%d days", days)}
}
