package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rishee01/smartfix/internal/model"
	"github.com/rishee01/smartfix/internal/scoring"
	"github.com/rishee01/smartfix/internal/store"
)

func newAnalyticsFixture() (*AnalyticsService, *store.Memory, *testClock) {
	mem := store.NewMemory()
	clock := &testClock{t: testNow}
	return NewAnalyticsService(mem, clock.Now), mem, clock
}

func TestHeatmapExcludesResolved(t *testing.T) {
	svc, mem, _ := newAnalyticsFixture()
	ctx := context.Background()

	seed := []model.Report{
		{ID: "open", Lat: 17.38, Lon: 78.48, Severity: model.SeverityHigh, Status: model.StatusOpen, VerifiedCount: 2, CreatedAt: testNow.Add(-5 * 24 * time.Hour)},
		{ID: "progress", Lat: 17.39, Lon: 78.49, Severity: model.SeverityMedium, Status: model.StatusInProgress, IsSOS: true, CreatedAt: testNow.Add(-24 * time.Hour)},
		{ID: "done", Lat: 17.40, Lon: 78.50, Severity: model.SeverityCritical, Status: model.StatusResolved, CreatedAt: testNow},
	}
	for i := range seed {
		seed[i].UpdatedAt = seed[i].CreatedAt
		if err := mem.CreateReport(ctx, &seed[i]); err != nil {
			t.Fatalf("CreateReport: %v", err)
		}
	}

	points, err := svc.Heatmap(ctx)
	if err != nil {
		t.Fatalf("Heatmap: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("len = %d, want 2 (resolved excluded)", len(points))
	}
	for _, p := range points {
		if p.ID == "done" {
			t.Fatal("resolved report appeared in heatmap")
		}
		var r model.Report
		for _, s := range seed {
			if s.ID == p.ID {
				r = s
			}
		}
		want := scoring.HeatmapWeight(r.Severity, r.VerifiedCount, r.Status, r.IsSOS, r.CreatedAt, testNow)
		if math.Abs(p.Weight-want) > 1e-9 {
			t.Errorf("weight for %s = %v, want %v", p.ID, p.Weight, want)
		}
		if p.Lat != r.Lat || p.Lon != r.Lon || p.Severity != r.Severity {
			t.Errorf("point %s does not mirror its report: %+v", p.ID, p)
		}
	}
}

func TestLeaderboard(t *testing.T) {
	svc, mem, _ := newAnalyticsFixture()
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		err := mem.CreateUser(ctx, &model.User{
			ID:     fmt.Sprintf("u%02d", i),
			Name:   fmt.Sprintf("user %d", i),
			Points: i * 3,
		})
		if err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
	}

	entries, err := svc.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(entries) != 20 {
		t.Fatalf("len = %d, want 20", len(entries))
	}
	if entries[0].Points != 72 {
		t.Errorf("top points = %d, want 72", entries[0].Points)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Points > entries[i-1].Points {
			t.Fatalf("leaderboard not sorted at %d: %d > %d", i, entries[i].Points, entries[i-1].Points)
		}
	}
}

func TestMetricsEmptyStore(t *testing.T) {
	svc, _, _ := newAnalyticsFixture()

	m, err := svc.Metrics(context.Background())
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if m.TotalReports != 0 || m.TotalUsers != 0 {
		t.Errorf("counts not zero: %+v", m)
	}
	if m.VerificationRate != "0.0%" {
		t.Errorf("verification rate = %q, want 0.0%%", m.VerificationRate)
	}
	if m.AvgVerificationsPerIssue != "0.0" {
		t.Errorf("avg verifications = %q, want 0.0", m.AvgVerificationsPerIssue)
	}
	if m.AvgResolutionHours != 0 || m.AvgUserPointsPerPerson != 0 {
		t.Errorf("averages not zero: %+v", m)
	}
}

func TestMetrics(t *testing.T) {
	svc, mem, _ := newAnalyticsFixture()
	ctx := context.Background()

	reports := []model.Report{
		{ID: "r1", Label: model.CategoryPothole, Severity: model.SeverityCritical, Department: "R&B", Status: model.StatusOpen, VerifiedCount: 5, IsSOS: true, CreatedAt: testNow.Add(-72 * time.Hour), UpdatedAt: testNow.Add(-72 * time.Hour)},
		{ID: "r2", Label: model.CategoryPothole, Severity: model.SeverityHigh, Department: "R&B", Status: model.StatusResolved, VerifiedCount: 3, CreatedAt: testNow.Add(-48 * time.Hour), UpdatedAt: testNow.Add(-24 * time.Hour)},
		{ID: "r3", Label: model.CategoryGarbage, Severity: model.SeverityMedium, Department: "Sanitation", Status: model.StatusResolved, VerifiedCount: 0, CreatedAt: testNow.Add(-60 * time.Hour), UpdatedAt: testNow.Add(-12 * time.Hour)},
		{ID: "r4", Label: model.CategoryOther, Severity: model.SeverityLow, Department: "General Admin", Status: model.StatusOpen, VerifiedCount: 0, CreatedAt: testNow, UpdatedAt: testNow},
	}
	for i := range reports {
		if err := mem.CreateReport(ctx, &reports[i]); err != nil {
			t.Fatalf("CreateReport: %v", err)
		}
	}
	for i, points := range []int{10, 30} {
		if err := mem.CreateUser(ctx, &model.User{ID: fmt.Sprintf("u%d", i), Points: points}); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
	}
	for i, resolved := range []int{4, 1} {
		err := mem.CreateVolunteer(ctx, &model.Volunteer{ID: fmt.Sprintf("vol%d", i), ResolvedCount: resolved})
		if err != nil {
			t.Fatalf("CreateVolunteer: %v", err)
		}
	}

	m, err := svc.Metrics(ctx)
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}

	if m.TotalReports != 4 {
		t.Errorf("total = %d, want 4", m.TotalReports)
	}
	if m.VerifiedReports != 2 {
		t.Errorf("verified = %d, want 2", m.VerifiedReports)
	}
	if m.OpenReports != 2 {
		t.Errorf("open = %d, want 2", m.OpenReports)
	}
	if m.SOSReports != 1 {
		t.Errorf("sos = %d, want 1", m.SOSReports)
	}
	if m.CriticalReports != 1 {
		t.Errorf("critical = %d, want 1", m.CriticalReports)
	}
	// Two resolved reports took 24h and 48h.
	if m.AvgResolutionHours != 36 {
		t.Errorf("avg resolution = %d, want 36", m.AvgResolutionHours)
	}
	// (5+3+0+0)/4
	if m.AvgVerificationsPerIssue != "2.0" {
		t.Errorf("avg verifications = %q, want 2.0", m.AvgVerificationsPerIssue)
	}
	// 2 of 4 reports verified
	if m.VerificationRate != "50.0%" {
		t.Errorf("verification rate = %q, want 50.0%%", m.VerificationRate)
	}
	if m.TotalUsers != 2 {
		t.Errorf("users = %d, want 2", m.TotalUsers)
	}
	if m.AvgUserPointsPerPerson != 20 {
		t.Errorf("avg points = %d, want 20", m.AvgUserPointsPerPerson)
	}

	if len(m.CategoryBreakdown) != 3 || m.CategoryBreakdown[0].Label != model.CategoryPothole || m.CategoryBreakdown[0].Count != 2 {
		t.Errorf("category breakdown = %+v", m.CategoryBreakdown)
	}
	if len(m.DepartmentMetrics) != 3 || m.DepartmentMetrics[0].Department != "R&B" {
		t.Errorf("department metrics = %+v", m.DepartmentMetrics)
	}
	if len(m.TopVolunteers) != 2 || m.TopVolunteers[0].ID != "vol0" {
		t.Errorf("top volunteers = %+v", m.TopVolunteers)
	}
}

func TestExportCSVEmpty(t *testing.T) {
	svc, _, _ := newAnalyticsFixture()

	out, err := svc.ExportCSV(context.Background())
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	want := "ID,Description,Severity,Department,Status,Verified Count,Created At\n"
	if string(out) != want {
		t.Errorf("empty export = %q, want header only", out)
	}
}

func TestExportCSVQuoting(t *testing.T) {
	svc, mem, _ := newAnalyticsFixture()
	ctx := context.Background()

	report := &model.Report{
		ID:            "r1",
		Description:   `pipe burst, "major" flooding`,
		Severity:      model.SeverityHigh,
		Department:    "Municipal Water",
		Status:        model.StatusOpen,
		VerifiedCount: 2,
		CreatedAt:     testNow,
		UpdatedAt:     testNow,
	}
	if err := mem.CreateReport(ctx, report); err != nil {
		t.Fatalf("CreateReport: %v", err)
	}

	out, err := svc.ExportCSV(ctx)
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("line count = %d, want 2", len(lines))
	}
	want := `"r1","pipe burst, ""major"" flooding","High","Municipal Water","Open","2","` + testNow.Format(time.RFC3339) + `"`
	if lines[1] != want {
		t.Errorf("row = %s, want %s", lines[1], want)
	}
}

func TestExportCSVNewestFirst(t *testing.T) {
	svc, mem, _ := newAnalyticsFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		report := &model.Report{
			ID:        fmt.Sprintf("r%d", i),
			Severity:  model.SeverityLow,
			Status:    model.StatusOpen,
			CreatedAt: testNow.Add(time.Duration(i) * time.Hour),
			UpdatedAt: testNow.Add(time.Duration(i) * time.Hour),
		}
		if err := mem.CreateReport(ctx, report); err != nil {
			t.Fatalf("CreateReport: %v", err)
		}
	}

	out, err := svc.ExportCSV(ctx)
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("line count = %d, want 4", len(lines))
	}
	if !strings.HasPrefix(lines[1], `"r2"`) || !strings.HasPrefix(lines[3], `"r0"`) {
		t.Errorf("rows not newest first: %v", lines[1:])
	}
}
