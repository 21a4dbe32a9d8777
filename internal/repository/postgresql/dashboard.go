package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/attendance"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/company"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/dashboard"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/database"
)

type dashboardRepositoryImpl struct {
	db *database.DB
}

func NewDashboardRepository(db *database.DB) dashboard.DashboardRepository {
	return &dashboardRepositoryImpl{db: db}
}

func (r *dashboardRepositoryImpl) CountCompanies(ctx context.Context) (int64, error) {
	q := GetQuerier(ctx, r.db)
	var count int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM companies`).Scan(&count)
	return count, err
}

func (r *dashboardRepositoryImpl) CountUsers(ctx context.Context) (int64, error) {
	q := GetQuerier(ctx, r.db)
	var count int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func (r *dashboardRepositoryImpl) RecentCompanies(ctx context.Context, limit int) ([]company.Company, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT`+companyColumns+` FROM companies c ORDER BY c.created_at DESC, c.id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent companies: %w", err)
	}
	defer rows.Close()

	companies := make([]company.Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (r *dashboardRepositoryImpl) CountEmployees(ctx context.Context, companyID string) (int64, error) {
	q := GetQuerier(ctx, r.db)
	var count int64
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM users
		WHERE company_id = $1 AND role = 'employee' AND is_suspended = FALSE
	`, companyID).Scan(&count)
	return count, err
}

func (r *dashboardRepositoryImpl) AttendanceForDay(ctx context.Context, companyID string, date time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + attendanceColumns + ` FROM attendances a` + attendanceJoin + `
		WHERE e.company_id = $1 AND a.date = $2
		ORDER BY a.time_in NULLS LAST, e.full_name`

	rows, err := q.Query(ctx, query, companyID, date)
	if err != nil {
		return nil, fmt.Errorf("attendance for day: %w", err)
	}
	defer rows.Close()

	records := make([]attendance.Attendance, 0)
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, a)
	}
	return records, rows.Err()
}
