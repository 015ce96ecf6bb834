package scoring

import "github.com/rishee01/smartfix/internal/model"

// Action identifies a rewarded community action.
type Action string

const (
	ActionReportIssue      Action = "report_issue"
	ActionReportSOS        Action = "report_sos"
	ActionVerifyIssue      Action = "verify_issue"
	ActionVerifyCritical   Action = "verify_critical"
	ActionVolunteerClaim   Action = "volunteer_claim"
	ActionVolunteerResolve Action = "volunteer_resolve"
	ActionProofUpload      Action = "volunteer_proof_upload"
	ActionMediaFeatured    Action = "media_featured"
)

var actionPoints = map[Action]int{
	ActionReportIssue:      10,
	ActionReportSOS:        25,
	ActionVerifyIssue:      2,
	ActionVerifyCritical:   5,
	ActionVolunteerClaim:   5,
	ActionVolunteerResolve: 20,
	ActionProofUpload:      10,
	ActionMediaFeatured:    50,
}

// PointContext carries the report attributes that can escalate an action to a
// higher reward rate.
type PointContext struct {
	IsSOS    bool
	Severity string
}

// PointsFor returns the gamification reward for an action. Reporting an SOS
// escalates to the SOS rate; verifying a Critical report escalates to the
// critical rate. Unknown actions award 0 rather than erroring.
func PointsFor(action Action, ctx PointContext) int {
	if action == ActionReportIssue && ctx.IsSOS {
		return actionPoints[ActionReportSOS]
	}
	if action == ActionVerifyIssue && ctx.Severity == model.SeverityCritical {
		return actionPoints[ActionVerifyCritical]
	}
	return actionPoints[action]
}
