package scoring

import "github.com/rishee01/smartfix/internal/model"

// Departments outside the category routing table.
const (
	DeptEmergencyResponse = "Emergency Response"
	DeptGeneralAdmin      = "General Admin"
)

var departmentByCategory = map[string]string{
	model.CategoryPothole:        "R&B",
	model.CategoryGarbage:        "Sanitation",
	model.CategoryWaterLeakage:   "Municipal Water",
	model.CategoryStreetlight:    "Electrical Dept",
	model.CategoryIllegalDumping: "Sanitation",
	model.CategoryOther:          DeptGeneralAdmin,
}

// DepartmentFor routes a category label to its primary department.
func DepartmentFor(label string) string {
	if dept, ok := departmentByCategory[label]; ok {
		return dept
	}
	return DeptGeneralAdmin
}

// Escalation chains per primary department. Entry 0 is the department itself;
// later entries are the higher authorities consulted as a report escalates.
var escalationChains = map[string][]string{
	"R&B":             {"R&B", "City Engineer", "PWD Chief"},
	"Sanitation":      {"Sanitation", "Cleanliness Officer", "Municipal Commissioner"},
	"Municipal Water": {"Municipal Water", "Water Department Head", "Municipal Commissioner"},
	"Electrical Dept": {"Electrical Dept", "Chief Electrical Officer", "Municipal Commissioner"},
	DeptGeneralAdmin:  {DeptGeneralAdmin, "Administrator", "Municipal Commissioner"},
}

var defaultChain = []string{"Administrator"}

// ResolveEscalation returns the department a report should route to. A
// Critical report with at least 5 verifications moves one step up its primary
// department's chain; anything else stays with the primary department.
func ResolveEscalation(primaryDept, severity string, verifiedCount int) string {
	chain, ok := escalationChains[primaryDept]
	if !ok || len(chain) == 0 {
		chain = defaultChain
	}

	if severity == model.SeverityCritical && verifiedCount >= 5 {
		if len(chain) > 1 {
			return chain[1]
		}
		return chain[0]
	}
	return chain[0]
}
