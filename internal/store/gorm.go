package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rishee01/smartfix/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gorm implements Store on top of a Postgres database.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (s *Gorm) Transact(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Gorm{db: tx})
	})
}

func (s *Gorm) CreateReport(ctx context.Context, r *model.Report) error {
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *Gorm) GetReport(ctx context.Context, id string) (*model.Report, error) {
	var report model.Report
	err := s.db.WithContext(ctx).First(&report, "id = ?", id).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &report, nil
}

func (s *Gorm) GetReportForUpdate(ctx context.Context, id string) (*model.Report, error) {
	var report model.Report
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&report, "id = ?", id).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &report, nil
}

func (s *Gorm) UpdateReport(ctx context.Context, id string, fields map[string]any) error {
	return s.db.WithContext(ctx).
		Model(&model.Report{}).
		Where("id = ?", id).
		UpdateColumns(fields).Error
}

func (s *Gorm) reportQuery(ctx context.Context, f ReportFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&model.Report{})
	if f.Severity != "" {
		q = q.Where("severity = ?", f.Severity)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Department != "" {
		q = q.Where("department = ?", f.Department)
	}
	if f.ExcludeStatus != "" {
		q = q.Where("status <> ?", f.ExcludeStatus)
	}
	if f.MinVerified > 0 {
		q = q.Where("verified_count >= ?", f.MinVerified)
	}
	if f.SOSOnly {
		q = q.Where("is_sos = ?", true)
	}
	return q
}

func (s *Gorm) ListReports(ctx context.Context, f ReportFilter) ([]model.Report, error) {
	var reports []model.Report
	err := s.reportQuery(ctx, f).Order("created_at DESC").Find(&reports).Error
	return reports, err
}

func (s *Gorm) CountReports(ctx context.Context, f ReportFilter) (int64, error) {
	var count int64
	err := s.reportQuery(ctx, f).Count(&count).Error
	return count, err
}

func (s *Gorm) AvgResolutionHours(ctx context.Context) (float64, error) {
	var avg sql.NullFloat64
	err := s.db.WithContext(ctx).
		Model(&model.Report{}).
		Where("status = ?", model.StatusResolved).
		Select("AVG(EXTRACT(EPOCH FROM (updated_at - created_at)) / 3600.0)").
		Row().Scan(&avg)
	if err != nil {
		return 0, err
	}
	return avg.Float64, nil
}

func (s *Gorm) AvgVerifications(ctx context.Context) (float64, error) {
	var avg sql.NullFloat64
	err := s.db.WithContext(ctx).
		Model(&model.Report{}).
		Select("AVG(verified_count)").
		Row().Scan(&avg)
	if err != nil {
		return 0, err
	}
	return avg.Float64, nil
}

func (s *Gorm) CategoryBreakdown(ctx context.Context) ([]CategoryCount, error) {
	var rows []CategoryCount
	err := s.db.WithContext(ctx).
		Model(&model.Report{}).
		Select("label, count(*) as count").
		Group("label").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

func (s *Gorm) DepartmentMetrics(ctx context.Context) ([]DepartmentMetric, error) {
	var rows []DepartmentMetric
	err := s.db.WithContext(ctx).
		Model(&model.Report{}).
		Select("department, count(*) as count, AVG(EXTRACT(EPOCH FROM (updated_at - created_at)) / 3600.0) as avg_resolution_hours").
		Group("department").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

func (s *Gorm) CreateVerification(ctx context.Context, v *model.Verification) error {
	return s.db.WithContext(ctx).Create(v).Error
}

func (s *Gorm) HasVerification(ctx context.Context, reportID, userID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Verification{}).
		Where("report_id = ? AND user_id = ?", reportID, userID).
		Count(&count).Error
	return count > 0, err
}

func (s *Gorm) CreateUser(ctx context.Context, u *model.User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *Gorm) AddUserPoints(ctx context.Context, userID string, points int) error {
	return s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		UpdateColumn("points", gorm.Expr("points + ?", points)).Error
}

func (s *Gorm) TopUsers(ctx context.Context, limit int) ([]model.User, error) {
	var users []model.User
	err := s.db.WithContext(ctx).
		Order("points DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (s *Gorm) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error
	return count, err
}

func (s *Gorm) AvgUserPoints(ctx context.Context) (float64, error) {
	var avg sql.NullFloat64
	err := s.db.WithContext(ctx).
		Model(&model.User{}).
		Select("AVG(points)").
		Row().Scan(&avg)
	if err != nil {
		return 0, err
	}
	return avg.Float64, nil
}

func (s *Gorm) CreateVolunteer(ctx context.Context, v *model.Volunteer) error {
	return s.db.WithContext(ctx).Create(v).Error
}

func (s *Gorm) GetVolunteer(ctx context.Context, id string) (*model.Volunteer, error) {
	var vol model.Volunteer
	err := s.db.WithContext(ctx).First(&vol, "id = ?", id).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &vol, nil
}

func (s *Gorm) IncrementVolunteerClaims(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).
		Model(&model.Volunteer{}).
		Where("id = ?", id).
		UpdateColumn("claimed_issues_count", gorm.Expr("claimed_issues_count + 1")).Error
}

func (s *Gorm) IncrementVolunteerResolved(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).
		Model(&model.Volunteer{}).
		Where("id = ?", id).
		UpdateColumn("resolved_count", gorm.Expr("resolved_count + 1")).Error
}

func (s *Gorm) TopVolunteers(ctx context.Context, limit int) ([]model.Volunteer, error) {
	var vols []model.Volunteer
	err := s.db.WithContext(ctx).
		Order("resolved_count DESC").
		Limit(limit).
		Find(&vols).Error
	return vols, err
}

func (s *Gorm) CreateAdminUser(ctx context.Context, a *model.AdminUser) error {
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *Gorm) GetAdminUserByEmail(ctx context.Context, email string) (*model.AdminUser, error) {
	var admin model.AdminUser
	err := s.db.WithContext(ctx).First(&admin, "email = ?", email).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &admin, nil
}

func translateErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
