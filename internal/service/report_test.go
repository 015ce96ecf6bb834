package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rishee01/smartfix/internal/model"
	"github.com/rishee01/smartfix/internal/scoring"
	"github.com/rishee01/smartfix/internal/store"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// testClock is a settable clock for the services under test.
type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time { return c.t }

func newReportFixture() (*ReportService, *store.Memory, *testClock) {
	mem := store.NewMemory()
	clock := &testClock{t: testNow}
	return NewReportService(mem, clock.Now), mem, clock
}

func mustCreateUser(t *testing.T, mem *store.Memory, id string) {
	t.Helper()
	err := mem.CreateUser(context.Background(), &model.User{
		ID:        id,
		Name:      "user " + id,
		Email:     id + "@example.com",
		CreatedAt: testNow,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
}

func userPoints(t *testing.T, mem *store.Memory, id string) int {
	t.Helper()
	users, err := mem.TopUsers(context.Background(), 100)
	if err != nil {
		t.Fatalf("TopUsers: %v", err)
	}
	for _, u := range users {
		if u.ID == id {
			return u.Points
		}
	}
	t.Fatalf("user %s not found", id)
	return 0
}

func TestCreateReport(t *testing.T) {
	svc, mem, _ := newReportFixture()
	ctx := context.Background()
	mustCreateUser(t, mem, "u1")

	res, err := svc.Create(ctx, CreateReportInput{
		Description: "deep pothole near the bus stop",
		Lat:         17.385,
		Lon:         78.4867,
		Label:       model.CategoryPothole,
		Confidence:  0.85,
		UserID:      "u1",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.Severity != model.SeverityHigh {
		t.Errorf("severity = %q, want %q", res.Severity, model.SeverityHigh)
	}
	if res.Department != "R&B" {
		t.Errorf("department = %q, want R&B", res.Department)
	}

	report, err := mem.GetReport(ctx, res.ID)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if report.Status != model.StatusOpen {
		t.Errorf("status = %q, want %q", report.Status, model.StatusOpen)
	}
	if report.VerifiedCount != 0 {
		t.Errorf("verified count = %d, want 0", report.VerifiedCount)
	}
	if !report.CreatedAt.Equal(testNow) {
		t.Errorf("created at = %v, want %v", report.CreatedAt, testNow)
	}

	if got := userPoints(t, mem, "u1"); got != 10 {
		t.Errorf("reporter points = %d, want 10", got)
	}
}

func TestCreateReportSOS(t *testing.T) {
	svc, mem, _ := newReportFixture()
	ctx := context.Background()
	mustCreateUser(t, mem, "u1")

	res, err := svc.Create(ctx, CreateReportInput{
		Label:      model.CategoryWaterLeakage,
		Confidence: 0.95,
		IsSOS:      true,
		UserID:     "u1",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.Department != scoring.DeptEmergencyResponse {
		t.Errorf("department = %q, want %q", res.Department, scoring.DeptEmergencyResponse)
	}
	if res.Severity != model.SeverityCritical {
		t.Errorf("severity = %q, want Critical", res.Severity)
	}
	if got := userPoints(t, mem, "u1"); got != 25 {
		t.Errorf("SOS reporter points = %d, want 25", got)
	}
}

func TestCreateReportAnonymousEarnsNothing(t *testing.T) {
	svc, mem, _ := newReportFixture()
	ctx := context.Background()
	mustCreateUser(t, mem, "u1")

	_, err := svc.Create(ctx, CreateReportInput{
		Label:       model.CategoryGarbage,
		Confidence:  0.8,
		IsAnonymous: true,
		UserID:      "u1",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := userPoints(t, mem, "u1"); got != 0 {
		t.Errorf("anonymous reporter points = %d, want 0", got)
	}
}

func TestCreateReportValidation(t *testing.T) {
	svc, _, _ := newReportFixture()
	ctx := context.Background()

	cases := []CreateReportInput{
		{Label: "", Confidence: 0.8},
		{Label: model.CategoryPothole, Confidence: 1.2},
		{Label: model.CategoryPothole, Confidence: -0.1},
	}
	for i, in := range cases {
		if _, err := svc.Create(ctx, in); !errors.Is(err, ErrValidation) {
			t.Errorf("case %d: err = %v, want ErrValidation", i, err)
		}
	}
}

func TestVerifyFlow(t *testing.T) {
	svc, mem, _ := newReportFixture()
	ctx := context.Background()

	res, err := svc.Create(ctx, CreateReportInput{
		Label:      model.CategoryPothole,
		Confidence: 0.85,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Base score 13. Each verification adds 0.5; the threshold to Critical
	// (15) falls at the fourth verification, escalation at the fifth.
	wantSeverity := []string{
		model.SeverityHigh,     // 13.5
		model.SeverityHigh,     // 14
		model.SeverityHigh,     // 14.5
		model.SeverityCritical, // 15
		model.SeverityCritical, // 15.5
	}
	// Points are rated against the severity before the recompute, so only
	// the fifth verifier sees a Critical report.
	wantPoints := []int{2, 2, 2, 2, 5}

	for i := 0; i < 5; i++ {
		userID := fmt.Sprintf("v%d", i+1)
		mustCreateUser(t, mem, userID)
		vr, err := svc.Verify(ctx, res.ID, userID)
		if err != nil {
			t.Fatalf("Verify %d: %v", i+1, err)
		}
		if vr.VerifiedCount != i+1 {
			t.Errorf("verify %d: count = %d, want %d", i+1, vr.VerifiedCount, i+1)
		}
		if vr.NewSeverity != wantSeverity[i] {
			t.Errorf("verify %d: severity = %q, want %q", i+1, vr.NewSeverity, wantSeverity[i])
		}
		if vr.PointsEarned != wantPoints[i] {
			t.Errorf("verify %d: points = %d, want %d", i+1, vr.PointsEarned, wantPoints[i])
		}
		if got := userPoints(t, mem, userID); got != wantPoints[i] {
			t.Errorf("verify %d: user points = %d, want %d", i+1, got, wantPoints[i])
		}
	}

	report, err := mem.GetReport(ctx, res.ID)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if report.VerifiedCount != 5 {
		t.Errorf("final count = %d, want 5", report.VerifiedCount)
	}
	if report.Severity != model.SeverityCritical {
		t.Errorf("final severity = %q, want Critical", report.Severity)
	}
	if report.Department != "City Engineer" {
		t.Errorf("department = %q, want City Engineer after escalation", report.Department)
	}
	// Verification must not touch updated_at; resolution metrics depend on it.
	if !report.UpdatedAt.Equal(testNow) {
		t.Errorf("updated at changed to %v on verify", report.UpdatedAt)
	}
}

func TestVerifyDuplicate(t *testing.T) {
	svc, mem, _ := newReportFixture()
	ctx := context.Background()
	mustCreateUser(t, mem, "u1")

	res, err := svc.Create(ctx, CreateReportInput{Label: model.CategoryGarbage, Confidence: 0.8})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Verify(ctx, res.ID, "u1"); err != nil {
		t.Fatalf("first Verify: %v", err)
	}
	if _, err := svc.Verify(ctx, res.ID, "u1"); !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("second Verify err = %v, want ErrAlreadyVerified", err)
	}

	report, _ := mem.GetReport(ctx, res.ID)
	if report.VerifiedCount != 1 {
		t.Errorf("count after duplicate = %d, want 1", report.VerifiedCount)
	}
	if got := userPoints(t, mem, "u1"); got != 2 {
		t.Errorf("points after duplicate = %d, want 2", got)
	}
}

func TestVerifyErrors(t *testing.T) {
	svc, _, _ := newReportFixture()
	ctx := context.Background()

	if _, err := svc.Verify(ctx, "missing", "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing report err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Verify(ctx, "missing", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("empty user err = %v, want ErrValidation", err)
	}
}

func TestClaim(t *testing.T) {
	svc, mem, _ := newReportFixture()
	ctx := context.Background()

	res, err := svc.Create(ctx, CreateReportInput{Label: model.CategoryStreetlight, Confidence: 0.8})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mem.CreateVolunteer(ctx, &model.Volunteer{ID: "vol1", Name: "Asha", JoinedAt: testNow}); err != nil {
		t.Fatalf("CreateVolunteer: %v", err)
	}

	if err := svc.Claim(ctx, res.ID, "vol1"); err != nil {
		t.Fatalf("Claim: %v", err)
	}

	report, _ := mem.GetReport(ctx, res.ID)
	if report.Status != model.StatusInProgress {
		t.Errorf("status = %q, want %q", report.Status, model.StatusInProgress)
	}
	vol, _ := mem.GetVolunteer(ctx, "vol1")
	if vol.ClaimedIssuesCount != 1 {
		t.Errorf("claimed count = %d, want 1", vol.ClaimedIssuesCount)
	}

	// Re-claiming is permitted and counted again.
	if err := svc.Claim(ctx, res.ID, "vol1"); err != nil {
		t.Fatalf("re-Claim: %v", err)
	}
	vol, _ = mem.GetVolunteer(ctx, "vol1")
	if vol.ClaimedIssuesCount != 2 {
		t.Errorf("claimed count after re-claim = %d, want 2", vol.ClaimedIssuesCount)
	}

	if err := svc.Claim(ctx, "missing", "vol1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing report err = %v, want ErrNotFound", err)
	}
	if err := svc.Claim(ctx, res.ID, ""); !errors.Is(err, ErrValidation) {
		t.Errorf("empty volunteer err = %v, want ErrValidation", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	svc, mem, clock := newReportFixture()
	ctx := context.Background()

	res, err := svc.Create(ctx, CreateReportInput{Label: model.CategoryPothole, Confidence: 0.85})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, res.ID, "Deleted", ""); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("invalid status err = %v, want ErrInvalidStatus", err)
	}
	if _, err := svc.UpdateStatus(ctx, "missing", model.StatusResolved, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing report err = %v, want ErrNotFound", err)
	}

	clock.t = testNow.Add(48 * time.Hour)
	points, err := svc.UpdateStatus(ctx, res.ID, model.StatusResolved, "")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if points != 20 {
		t.Errorf("points awarded = %d, want 20", points)
	}

	report, _ := mem.GetReport(ctx, res.ID)
	if report.Status != model.StatusResolved {
		t.Errorf("status = %q, want Resolved", report.Status)
	}
	if !report.UpdatedAt.Equal(clock.t) {
		t.Errorf("updated at = %v, want %v", report.UpdatedAt, clock.t)
	}

	// Reopening a resolved report is allowed and awards nothing.
	points, err = svc.UpdateStatus(ctx, res.ID, model.StatusOpen, "")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if points != 0 {
		t.Errorf("reopen points = %d, want 0", points)
	}
}

func TestUpdateStatusResolveCreditsLinkedUser(t *testing.T) {
	svc, mem, _ := newReportFixture()
	ctx := context.Background()
	mustCreateUser(t, mem, "u1")

	userID := "u1"
	if err := mem.CreateVolunteer(ctx, &model.Volunteer{ID: "vol1", Name: "Asha", UserID: &userID, JoinedAt: testNow}); err != nil {
		t.Fatalf("CreateVolunteer: %v", err)
	}
	res, err := svc.Create(ctx, CreateReportInput{Label: model.CategoryGarbage, Confidence: 0.8})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	points, err := svc.UpdateStatus(ctx, res.ID, model.StatusResolved, "vol1")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if points != 20 {
		t.Errorf("points awarded = %d, want 20", points)
	}

	vol, _ := mem.GetVolunteer(ctx, "vol1")
	if vol.ResolvedCount != 1 {
		t.Errorf("resolved count = %d, want 1", vol.ResolvedCount)
	}
	if got := userPoints(t, mem, "u1"); got != 20 {
		t.Errorf("linked user points = %d, want 20", got)
	}
}

func TestUpdateStatusResolveUnlinkedVolunteer(t *testing.T) {
	svc, mem, _ := newReportFixture()
	ctx := context.Background()

	if err := mem.CreateVolunteer(ctx, &model.Volunteer{ID: "vol1", Name: "Ravi", JoinedAt: testNow}); err != nil {
		t.Fatalf("CreateVolunteer: %v", err)
	}
	res, err := svc.Create(ctx, CreateReportInput{Label: model.CategoryOther, Confidence: 0.5})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	points, err := svc.UpdateStatus(ctx, res.ID, model.StatusResolved, "vol1")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if points != 20 {
		t.Errorf("points awarded = %d, want 20", points)
	}
	vol, _ := mem.GetVolunteer(ctx, "vol1")
	if vol.ResolvedCount != 1 {
		t.Errorf("resolved count = %d, want 1", vol.ResolvedCount)
	}
}

func TestGetDetail(t *testing.T) {
	svc, mem, _ := newReportFixture()
	ctx := context.Background()

	res, err := svc.Create(ctx, CreateReportInput{Label: model.CategoryPothole, Confidence: 0.85})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	detail, err := svc.Get(ctx, res.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if detail.EscalatedDept != "R&B" {
		t.Errorf("escalated dept = %q, want primary R&B below 5 verifications", detail.EscalatedDept)
	}
	if want := scoring.Actionability(0, model.SeverityHigh, false); detail.ActionabilityScore != want {
		t.Errorf("actionability = %d, want %d", detail.ActionabilityScore, want)
	}
	if want := scoring.EstimateResolution(model.CategoryPothole, model.SeverityHigh, 0); detail.TimeToResolve != want {
		t.Errorf("time to resolve = %+v, want %+v", detail.TimeToResolve, want)
	}

	// Fetching is read-only: a second fetch returns the same projection.
	again, err := svc.Get(ctx, res.ID)
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if *again != *detail {
		t.Errorf("second fetch differs: %+v vs %+v", again, detail)
	}

	// A heavily verified critical report shows the escalated department
	// without the stored row changing.
	seeded := &model.Report{
		ID:            "r-critical",
		Label:         model.CategoryWaterLeakage,
		Confidence:    0.95,
		Severity:      model.SeverityCritical,
		Department:    "Municipal Water",
		VerifiedCount: 6,
		Status:        model.StatusOpen,
		CreatedAt:     testNow,
		UpdatedAt:     testNow,
	}
	if err := mem.CreateReport(ctx, seeded); err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	detail, err = svc.Get(ctx, "r-critical")
	if err != nil {
		t.Fatalf("Get seeded: %v", err)
	}
	if detail.EscalatedDept != "Water Department Head" {
		t.Errorf("escalated dept = %q, want Water Department Head", detail.EscalatedDept)
	}
	stored, _ := mem.GetReport(ctx, "r-critical")
	if stored.Department != "Municipal Water" {
		t.Errorf("stored department mutated to %q", stored.Department)
	}

	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing report err = %v, want ErrNotFound", err)
	}
}

func TestListFilters(t *testing.T) {
	svc, mem, _ := newReportFixture()
	ctx := context.Background()

	seed := []model.Report{
		{ID: "a", Label: model.CategoryPothole, Severity: model.SeverityHigh, Department: "R&B", Status: model.StatusOpen, VerifiedCount: 4, CreatedAt: testNow.Add(3 * time.Hour)},
		{ID: "b", Label: model.CategoryGarbage, Severity: model.SeverityMedium, Department: "Sanitation", Status: model.StatusResolved, VerifiedCount: 1, CreatedAt: testNow.Add(2 * time.Hour)},
		{ID: "c", Label: model.CategoryPothole, Severity: model.SeverityHigh, Department: "R&B", Status: model.StatusInProgress, VerifiedCount: 0, CreatedAt: testNow.Add(1 * time.Hour)},
	}
	for i := range seed {
		seed[i].UpdatedAt = seed[i].CreatedAt
		if err := mem.CreateReport(ctx, &seed[i]); err != nil {
			t.Fatalf("CreateReport: %v", err)
		}
	}

	all, err := svc.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	// Newest first.
	if all[0].ID != "a" || all[2].ID != "c" {
		t.Errorf("order = %s,%s,%s; want a,b,c", all[0].ID, all[1].ID, all[2].ID)
	}

	high, _ := svc.List(ctx, ListFilter{Severity: model.SeverityHigh})
	if len(high) != 2 {
		t.Errorf("high severity len = %d, want 2", len(high))
	}

	open, _ := svc.List(ctx, ListFilter{Status: model.StatusOpen})
	if len(open) != 1 || open[0].ID != "a" {
		t.Errorf("open filter returned %v", open)
	}

	verified, _ := svc.List(ctx, ListFilter{VerifiedOnly: true})
	if len(verified) != 1 || verified[0].ID != "a" {
		t.Errorf("verified filter returned %v", verified)
	}

	dept, _ := svc.List(ctx, ListFilter{Department: "Sanitation"})
	if len(dept) != 1 || dept[0].ID != "b" {
		t.Errorf("department filter returned %v", dept)
	}
}
