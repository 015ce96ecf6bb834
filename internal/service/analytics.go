package service

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rishee01/smartfix/internal/model"
	"github.com/rishee01/smartfix/internal/scoring"
	"github.com/rishee01/smartfix/internal/store"
)

// AnalyticsService is the read-side projection layer: heatmap feed,
// leaderboard, dashboard rollups and CSV export. It never mutates state.
type AnalyticsService struct {
	store store.Store
	now   Clock
}

func NewAnalyticsService(st store.Store, now Clock) *AnalyticsService {
	if now == nil {
		now = time.Now
	}
	return &AnalyticsService{store: st, now: now}
}

type HeatmapPoint struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Weight   float64 `json:"weight"`
	Severity string  `json:"severity"`
	ID       string  `json:"id"`
}

// Heatmap maps every unresolved report through the heatmap weight function.
func (s *AnalyticsService) Heatmap(ctx context.Context) ([]HeatmapPoint, error) {
	reports, err := s.store.ListReports(ctx, store.ReportFilter{ExcludeStatus: model.StatusResolved})
	if err != nil {
		return nil, err
	}

	now := s.now()
	points := make([]HeatmapPoint, len(reports))
	for i, r := range reports {
		points[i] = HeatmapPoint{
			Lat:      r.Lat,
			Lon:      r.Lon,
			Weight:   scoring.HeatmapWeight(r.Severity, r.VerifiedCount, r.Status, r.IsSOS, r.CreatedAt, now),
			Severity: r.Severity,
			ID:       r.ID,
		}
	}
	return points, nil
}

type LeaderboardEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}

const leaderboardSize = 20

// Leaderboard returns the top users by points.
func (s *AnalyticsService) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	users, err := s.store.TopUsers(ctx, leaderboardSize)
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = LeaderboardEntry{ID: u.ID, Name: u.Name, Points: u.Points}
	}
	return entries, nil
}

// DashboardMetrics is the admin dashboard aggregate. Field names match the
// dashboard client's contract.
type DashboardMetrics struct {
	TotalReports             int64                    `json:"totalReports"`
	VerifiedReports          int64                    `json:"verifiedReports"`
	OpenReports              int64                    `json:"openReports"`
	SOSReports               int64                    `json:"sosReports"`
	CriticalReports          int64                    `json:"criticalReports"`
	AvgResolutionHours       int                      `json:"avgResolutionHours"`
	CategoryBreakdown        []store.CategoryCount    `json:"categoryBreakdown"`
	DepartmentMetrics        []store.DepartmentMetric `json:"departmentMetrics"`
	AvgVerificationsPerIssue string                   `json:"avgVerificationsPerIssue"`
	TopVolunteers            []model.Volunteer        `json:"topVolunteers"`
	TotalUsers               int64                    `json:"totalUsers"`
	AvgUserPointsPerPerson   int                      `json:"avgUserPointsPerPerson"`
	VerificationRate         string                   `json:"verificationRate"`
}

const topVolunteersSize = 5

// Metrics assembles the dashboard rollup.
func (s *AnalyticsService) Metrics(ctx context.Context) (*DashboardMetrics, error) {
	var m DashboardMetrics
	var err error

	if m.TotalReports, err = s.store.CountReports(ctx, store.ReportFilter{}); err != nil {
		return nil, err
	}
	if m.VerifiedReports, err = s.store.CountReports(ctx, store.ReportFilter{MinVerified: 3}); err != nil {
		return nil, err
	}
	if m.OpenReports, err = s.store.CountReports(ctx, store.ReportFilter{Status: model.StatusOpen}); err != nil {
		return nil, err
	}
	if m.SOSReports, err = s.store.CountReports(ctx, store.ReportFilter{SOSOnly: true}); err != nil {
		return nil, err
	}
	if m.CriticalReports, err = s.store.CountReports(ctx, store.ReportFilter{Severity: model.SeverityCritical}); err != nil {
		return nil, err
	}

	avgHours, err := s.store.AvgResolutionHours(ctx)
	if err != nil {
		return nil, err
	}
	m.AvgResolutionHours = int(math.Round(avgHours))

	if m.CategoryBreakdown, err = s.store.CategoryBreakdown(ctx); err != nil {
		return nil, err
	}
	if m.DepartmentMetrics, err = s.store.DepartmentMetrics(ctx); err != nil {
		return nil, err
	}

	avgVerifications, err := s.store.AvgVerifications(ctx)
	if err != nil {
		return nil, err
	}
	m.AvgVerificationsPerIssue = fmt.Sprintf("%.1f", avgVerifications)

	if m.TopVolunteers, err = s.store.TopVolunteers(ctx, topVolunteersSize); err != nil {
		return nil, err
	}
	if m.TotalUsers, err = s.store.CountUsers(ctx); err != nil {
		return nil, err
	}

	avgPoints, err := s.store.AvgUserPoints(ctx)
	if err != nil {
		return nil, err
	}
	m.AvgUserPointsPerPerson = int(math.Round(avgPoints))

	rate := 0.0
	if m.TotalReports > 0 {
		rate = float64(m.VerifiedReports) / float64(m.TotalReports) * 100
	}
	m.VerificationRate = fmt.Sprintf("%.1f%%", rate)

	return &m, nil
}

var csvHeader = []string{"ID", "Description", "Severity", "Department", "Status", "Verified Count", "Created At"}

// ExportCSV renders every report as CSV, newest first: one header row, every
// field double-quoted.
func (s *AnalyticsService) ExportCSV(ctx context.Context) ([]byte, error) {
	reports, err := s.store.ListReports(ctx, store.ReportFilter{})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(strings.Join(csvHeader, ","))
	buf.WriteByte('\n')

	for _, r := range reports {
		writeCSVRow(&buf,
			r.ID,
			r.Description,
			r.Severity,
			r.Department,
			r.Status,
			fmt.Sprintf("%d", r.VerifiedCount),
			r.CreatedAt.Format(time.RFC3339),
		)
	}
	return buf.Bytes(), nil
}

// writeCSVRow emits one row with forced quoting; encoding/csv only quotes
// when necessary, which the export contract does not allow.
func writeCSVRow(buf *bytes.Buffer, fields ...string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(f, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteByte('\n')
}
