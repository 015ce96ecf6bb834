package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rishee01/smartfix/internal/model"
	"github.com/rishee01/smartfix/internal/scoring"
	"github.com/rishee01/smartfix/internal/store"
)

// Clock supplies the current time; injected so tests stay deterministic.
type Clock func() time.Time

// ReportService is the report lifecycle controller. It orchestrates state
// transitions over the store and invokes the scoring engine; it owns the
// point-ledger side effects on users and volunteers.
type ReportService struct {
	store store.Store
	now   Clock
}

func NewReportService(st store.Store, now Clock) *ReportService {
	if now == nil {
		now = time.Now
	}
	return &ReportService{store: st, now: now}
}

type CreateReportInput struct {
	Description string
	Lat         float64
	Lon         float64
	Label       string
	Confidence  float64
	IsAnonymous bool
	IsSOS       bool
	UserID      string
	PhotoURL    string
}

type CreateReportResult struct {
	ID         string
	Severity   string
	Department string
}

// Create validates the submission, computes initial severity and department
// routing, persists the report and credits reporting points to the submitting
// user unless the report is anonymous.
func (s *ReportService) Create(ctx context.Context, in CreateReportInput) (*CreateReportResult, error) {
	if in.Label == "" {
		return nil, fmt.Errorf("%w: label is required", ErrValidation)
	}
	if in.Confidence < 0 || in.Confidence > 1 {
		return nil, fmt.Errorf("%w: confidence must be in [0,1]", ErrValidation)
	}

	severity := scoring.CalculateSeverity(in.Label, in.Confidence, 0, in.IsSOS)
	department := scoring.DepartmentFor(in.Label)
	if in.IsSOS {
		department = scoring.DeptEmergencyResponse
	}

	now := s.now()
	report := &model.Report{
		ID:            uuid.NewString(),
		PhotoURL:      in.PhotoURL,
		Description:   in.Description,
		Lat:           in.Lat,
		Lon:           in.Lon,
		Label:         in.Label,
		Confidence:    in.Confidence,
		Severity:      severity,
		Department:    department,
		VerifiedCount: 0,
		Status:        model.StatusOpen,
		IsSOS:         in.IsSOS,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.store.Transact(ctx, func(tx store.Store) error {
		if err := tx.CreateReport(ctx, report); err != nil {
			return err
		}
		if !in.IsAnonymous && in.UserID != "" {
			points := scoring.PointsFor(scoring.ActionReportIssue, scoring.PointContext{IsSOS: in.IsSOS})
			if err := tx.AddUserPoints(ctx, in.UserID, points); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &CreateReportResult{ID: report.ID, Severity: severity, Department: department}, nil
}

type VerifyResult struct {
	VerifiedCount int
	PointsEarned  int
	NewSeverity   string
}

// Verify records a community verification. The report row is locked for the
// duration of the transaction so concurrent verifies cannot lose count
// updates; the severity is fully recomputed with the new count and the
// department escalated once the count reaches 5.
func (s *ReportService) Verify(ctx context.Context, reportID, userID string) (*VerifyResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrValidation)
	}

	var result VerifyResult
	err := s.store.Transact(ctx, func(tx store.Store) error {
		report, err := tx.GetReportForUpdate(ctx, reportID)
		if err != nil {
			return translateStoreErr(err)
		}

		exists, err := tx.HasVerification(ctx, reportID, userID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyVerified
		}

		verification := &model.Verification{
			ID:        uuid.NewString(),
			ReportID:  reportID,
			UserID:    userID,
			CreatedAt: s.now(),
		}
		if err := tx.CreateVerification(ctx, verification); err != nil {
			return err
		}

		// Points are rated against the severity the verifier saw, before the
		// recompute below.
		points := scoring.PointsFor(scoring.ActionVerifyIssue, scoring.PointContext{Severity: report.Severity})
		if err := tx.AddUserPoints(ctx, userID, points); err != nil {
			return err
		}

		newCount := report.VerifiedCount + 1
		fields := map[string]any{"verified_count": newCount}

		newSeverity := scoring.CalculateSeverity(report.Label, report.Confidence, newCount, report.IsSOS)
		if newSeverity != report.Severity {
			fields["severity"] = newSeverity
		}

		if newCount >= 5 {
			escalated := scoring.ResolveEscalation(report.Department, newSeverity, newCount)
			if escalated != report.Department {
				fields["department"] = escalated
			}
		}

		if err := tx.UpdateReport(ctx, reportID, fields); err != nil {
			return err
		}

		result = VerifyResult{VerifiedCount: newCount, PointsEarned: points, NewSeverity: newSeverity}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Claim marks a report in progress and bumps the volunteer's claim counter.
// Re-claiming an in-progress or resolved report is permitted.
func (s *ReportService) Claim(ctx context.Context, reportID, volunteerID string) error {
	if volunteerID == "" {
		return fmt.Errorf("%w: volunteerId is required", ErrValidation)
	}

	return s.store.Transact(ctx, func(tx store.Store) error {
		if _, err := tx.GetReport(ctx, reportID); err != nil {
			return translateStoreErr(err)
		}
		if err := tx.UpdateReport(ctx, reportID, map[string]any{"status": model.StatusInProgress}); err != nil {
			return err
		}
		return tx.IncrementVolunteerClaims(ctx, volunteerID)
	})
}

// UpdateStatus is the admin override over the status machine. Any of the
// three valid statuses may be set, in any order. Resolving with a volunteer
// bumps the volunteer's resolved counter and credits resolve points to the
// volunteer's linked user account when one exists.
func (s *ReportService) UpdateStatus(ctx context.Context, reportID, status, volunteerID string) (int, error) {
	if !model.ValidStatus(status) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	pointsAwarded := 0
	err := s.store.Transact(ctx, func(tx store.Store) error {
		if _, err := tx.GetReportForUpdate(ctx, reportID); err != nil {
			return translateStoreErr(err)
		}

		fields := map[string]any{"status": status, "updated_at": s.now()}
		if err := tx.UpdateReport(ctx, reportID, fields); err != nil {
			return err
		}

		if status != model.StatusResolved {
			return nil
		}
		pointsAwarded = scoring.PointsFor(scoring.ActionVolunteerResolve, scoring.PointContext{})

		if volunteerID == "" {
			return nil
		}
		if err := tx.IncrementVolunteerResolved(ctx, volunteerID); err != nil {
			return err
		}
		volunteer, err := tx.GetVolunteer(ctx, volunteerID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if volunteer.UserID != nil {
			return tx.AddUserPoints(ctx, *volunteer.UserID, pointsAwarded)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return pointsAwarded, nil
}

// ReportDetail is a report plus the derived read fields attached at fetch
// time; the derived fields are never persisted.
type ReportDetail struct {
	model.Report
	TimeToResolve      scoring.ResolutionEstimate `json:"timeToResolve"`
	EscalatedDept      string                     `json:"escalatedDept"`
	ActionabilityScore int                        `json:"actionabilityScore"`
}

// Get fetches a single report with its derived fields.
func (s *ReportService) Get(ctx context.Context, id string) (*ReportDetail, error) {
	report, err := s.store.GetReport(ctx, id)
	if err != nil {
		return nil, translateStoreErr(err)
	}

	detail := &ReportDetail{
		Report:             *report,
		TimeToResolve:      scoring.EstimateResolution(report.Label, report.Severity, report.VerifiedCount),
		EscalatedDept:      report.Department,
		ActionabilityScore: scoring.Actionability(report.VerifiedCount, report.Severity, report.IsSOS),
	}
	if report.VerifiedCount >= 5 {
		detail.EscalatedDept = scoring.ResolveEscalation(report.Department, report.Severity, report.VerifiedCount)
	}
	return detail, nil
}

// ListFilter narrows the report listing; VerifiedOnly applies the
// verified_count >= 3 predicate.
type ListFilter struct {
	Severity     string
	Status       string
	Department   string
	VerifiedOnly bool
}

// List returns reports matching the filter, newest first.
func (s *ReportService) List(ctx context.Context, f ListFilter) ([]model.Report, error) {
	filter := store.ReportFilter{
		Severity:   f.Severity,
		Status:     f.Status,
		Department: f.Department,
	}
	if f.VerifiedOnly {
		filter.MinVerified = 3
	}
	return s.store.ListReports(ctx, filter)
}

func translateStoreErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
