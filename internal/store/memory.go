package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rishee01/smartfix/internal/model"
)

func toTime(v any) time.Time {
	t, _ := v.(time.Time)
	return t
}

// Memory implements Store with in-process maps. It backs tests and local
// development without a database. A single transaction mutex serializes
// Transact blocks, which is what the row lock provides in the Postgres
// implementation.
type Memory struct {
	txMu sync.Mutex
	mu   sync.Mutex

	reports       map[string]model.Report
	users         map[string]model.User
	volunteers    map[string]model.Volunteer
	verifications map[string]model.Verification
	admins        map[string]model.AdminUser
}

func NewMemory() *Memory {
	return &Memory{
		reports:       make(map[string]model.Report),
		users:         make(map[string]model.User),
		volunteers:    make(map[string]model.Volunteer),
		verifications: make(map[string]model.Verification),
		admins:        make(map[string]model.AdminUser),
	}
}

func (m *Memory) Transact(ctx context.Context, fn func(Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(m)
}

func (m *Memory) CreateReport(ctx context.Context, r *model.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[r.ID] = *r
	return nil
}

func (m *Memory) GetReport(ctx context.Context, id string) (*model.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *Memory) GetReportForUpdate(ctx context.Context, id string) (*model.Report, error) {
	return m.GetReport(ctx, id)
}

func (m *Memory) UpdateReport(ctx context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok {
		return nil
	}
	for key, value := range fields {
		switch key {
		case "status":
			r.Status = value.(string)
		case "severity":
			r.Severity = value.(string)
		case "department":
			r.Department = value.(string)
		case "verified_count":
			r.VerifiedCount = value.(int)
		case "updated_at":
			r.UpdatedAt = toTime(value)
		}
	}
	m.reports[id] = r
	return nil
}

func matchFilter(r model.Report, f ReportFilter) bool {
	if f.Severity != "" && r.Severity != f.Severity {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Department != "" && r.Department != f.Department {
		return false
	}
	if f.ExcludeStatus != "" && r.Status == f.ExcludeStatus {
		return false
	}
	if f.MinVerified > 0 && r.VerifiedCount < f.MinVerified {
		return false
	}
	if f.SOSOnly && !r.IsSOS {
		return false
	}
	return true
}

func (m *Memory) ListReports(ctx context.Context, f ReportFilter) ([]model.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var reports []model.Report
	for _, r := range m.reports {
		if matchFilter(r, f) {
			reports = append(reports, r)
		}
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	return reports, nil
}

func (m *Memory) CountReports(ctx context.Context, f ReportFilter) (int64, error) {
	reports, _ := m.ListReports(ctx, f)
	return int64(len(reports)), nil
}

func (m *Memory) AvgResolutionHours(ctx context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total float64
	var count int
	for _, r := range m.reports {
		if r.Status == model.StatusResolved {
			total += r.UpdatedAt.Sub(r.CreatedAt).Hours()
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	return total / float64(count), nil
}

func (m *Memory) AvgVerifications(ctx context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.reports) == 0 {
		return 0, nil
	}
	var total float64
	for _, r := range m.reports {
		total += float64(r.VerifiedCount)
	}
	return total / float64(len(m.reports)), nil
}

func (m *Memory) CategoryBreakdown(ctx context.Context) ([]CategoryCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int64)
	for _, r := range m.reports {
		counts[r.Label]++
	}
	rows := make([]CategoryCount, 0, len(counts))
	for label, count := range counts {
		rows = append(rows, CategoryCount{Label: label, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Label < rows[j].Label
	})
	return rows, nil
}

func (m *Memory) DepartmentMetrics(ctx context.Context) ([]DepartmentMetric, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	type acc struct {
		count int64
		hours float64
	}
	byDept := make(map[string]*acc)
	for _, r := range m.reports {
		a, ok := byDept[r.Department]
		if !ok {
			a = &acc{}
			byDept[r.Department] = a
		}
		a.count++
		a.hours += r.UpdatedAt.Sub(r.CreatedAt).Hours()
	}
	rows := make([]DepartmentMetric, 0, len(byDept))
	for dept, a := range byDept {
		rows = append(rows, DepartmentMetric{
			Department:         dept,
			Count:              a.count,
			AvgResolutionHours: a.hours / float64(a.count),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Department < rows[j].Department
	})
	return rows, nil
}

func (m *Memory) CreateVerification(ctx context.Context, v *model.Verification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifications[v.ID] = *v
	return nil
}

func (m *Memory) HasVerification(ctx context.Context, reportID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.verifications {
		if v.ReportID == reportID && v.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) CreateUser(ctx context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) AddUserPoints(ctx context.Context, userID string, points int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil
	}
	u.Points += points
	m.users[userID] = u
	return nil
}

func (m *Memory) TopUsers(ctx context.Context, limit int) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Points != users[j].Points {
			return users[i].Points > users[j].Points
		}
		return users[i].ID < users[j].ID
	})
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (m *Memory) CountUsers(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

func (m *Memory) AvgUserPoints(ctx context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.users) == 0 {
		return 0, nil
	}
	var total float64
	for _, u := range m.users {
		total += float64(u.Points)
	}
	return total / float64(len(m.users)), nil
}

func (m *Memory) CreateVolunteer(ctx context.Context, v *model.Volunteer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volunteers[v.ID] = *v
	return nil
}

func (m *Memory) GetVolunteer(ctx context.Context, id string) (*model.Volunteer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.volunteers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &v, nil
}

func (m *Memory) IncrementVolunteerClaims(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.volunteers[id]
	if !ok {
		return nil
	}
	v.ClaimedIssuesCount++
	m.volunteers[id] = v
	return nil
}

func (m *Memory) IncrementVolunteerResolved(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.volunteers[id]
	if !ok {
		return nil
	}
	v.ResolvedCount++
	m.volunteers[id] = v
	return nil
}

func (m *Memory) TopVolunteers(ctx context.Context, limit int) ([]model.Volunteer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vols := make([]model.Volunteer, 0, len(m.volunteers))
	for _, v := range m.volunteers {
		vols = append(vols, v)
	}
	sort.Slice(vols, func(i, j int) bool {
		if vols[i].ResolvedCount != vols[j].ResolvedCount {
			return vols[i].ResolvedCount > vols[j].ResolvedCount
		}
		return vols[i].ID < vols[j].ID
	})
	if len(vols) > limit {
		vols = vols[:limit]
	}
	return vols, nil
}

func (m *Memory) CreateAdminUser(ctx context.Context, a *model.AdminUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.admins[a.Email] = *a
	return nil
}

func (m *Memory) GetAdminUserByEmail(ctx context.Context, email string) (*model.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.admins[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}
