package store

import (
	"context"
	"errors"

	"github.com/rishee01/smartfix/internal/model"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

// ReportFilter narrows report queries. Zero values mean no constraint.
type ReportFilter struct {
	Severity      string
	Status        string
	Department    string
	ExcludeStatus string
	MinVerified   int
	SOSOnly       bool
}

// CategoryCount is one row of the per-category rollup.
type CategoryCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// DepartmentMetric is one row of the per-department rollup.
type DepartmentMetric struct {
	Department         string  `json:"department"`
	Count              int64   `json:"count"`
	AvgResolutionHours float64 `json:"avg_resolution_hours"`
}

// Store is the persistence port the lifecycle controller and the
// query/aggregation layer depend on. Implementations: Gorm (Postgres) and
// Memory (tests, local development). It is injected, never a process-wide
// singleton.
type Store interface {
	// Transact runs fn against a store view whose writes commit or roll back
	// together. Mutations touching a report row go through Transact combined
	// with GetReportForUpdate so concurrent verifies cannot lose updates.
	Transact(ctx context.Context, fn func(Store) error) error

	CreateReport(ctx context.Context, r *model.Report) error
	GetReport(ctx context.Context, id string) (*model.Report, error)
	// GetReportForUpdate locks the report row for the duration of the
	// surrounding transaction.
	GetReportForUpdate(ctx context.Context, id string) (*model.Report, error)
	UpdateReport(ctx context.Context, id string, fields map[string]any) error
	ListReports(ctx context.Context, f ReportFilter) ([]model.Report, error)
	CountReports(ctx context.Context, f ReportFilter) (int64, error)
	AvgResolutionHours(ctx context.Context) (float64, error)
	AvgVerifications(ctx context.Context) (float64, error)
	CategoryBreakdown(ctx context.Context) ([]CategoryCount, error)
	DepartmentMetrics(ctx context.Context) ([]DepartmentMetric, error)

	CreateVerification(ctx context.Context, v *model.Verification) error
	HasVerification(ctx context.Context, reportID, userID string) (bool, error)

	CreateUser(ctx context.Context, u *model.User) error
	AddUserPoints(ctx context.Context, userID string, points int) error
	TopUsers(ctx context.Context, limit int) ([]model.User, error)
	CountUsers(ctx context.Context) (int64, error)
	AvgUserPoints(ctx context.Context) (float64, error)

	CreateVolunteer(ctx context.Context, v *model.Volunteer) error
	GetVolunteer(ctx context.Context, id string) (*model.Volunteer, error)
	IncrementVolunteerClaims(ctx context.Context, id string) error
	IncrementVolunteerResolved(ctx context.Context, id string) error
	TopVolunteers(ctx context.Context, limit int) ([]model.Volunteer, error)

	CreateAdminUser(ctx context.Context, a *model.AdminUser) error
	GetAdminUserByEmail(ctx context.Context, email string) (*model.AdminUser, error)
}
