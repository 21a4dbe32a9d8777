package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/report"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/database"
)

type reportRepositoryImpl struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

func (r *reportRepositoryImpl) AttendanceRows(ctx context.Context, f report.RowFilter) ([]report.AttendanceRow, error) {
	q := GetQuerier(ctx, r.db)

	var w whereBuilder
	w.scope(f.AllCompanies, f.CompanyIDs, "u.company_id")
	if f.UserID != nil {
		w.add("u.id = ?", *f.UserID)
	}
	w.add("a.date BETWEEN ? AND ?", f.From, f.To)
	w.search(f.Search, "u.full_name")

	query := `
		SELECT u.id, u.full_name, co.name, a.date, a.time_in, a.time_out, a.is_manual_entry
		FROM attendances a
		JOIN users u ON u.id = a.employee_id
		LEFT JOIN companies co ON co.id = u.company_id` + w.sql() + `
		ORDER BY a.date, u.full_name`

	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("attendance report: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (report.AttendanceRow, error) {
		var out report.AttendanceRow
		err := row.Scan(&out.EmployeeID, &out.EmployeeName, &out.CompanyName, &out.Date, &out.TimeIn, &out.TimeOut, &out.IsManualEntry)
		return out, err
	})
}

func (r *reportRepositoryImpl) TaskRows(ctx context.Context, f report.RowFilter) ([]report.TaskRow, error) {
	q := GetQuerier(ctx, r.db)

	var w whereBuilder
	w.scope(f.AllCompanies, f.CompanyIDs, "u.company_id")
	if f.UserID != nil {
		w.add("u.id = ?", *f.UserID)
	}
	// tasks whose period overlaps the range
	w.add("t.start_date <= ? AND t.due_date >= ?", f.To, f.From)
	w.search(f.Search, "t.title", "u.full_name")

	query := `
		SELECT t.id, t.title, u.full_name, co.name, t.start_date, t.due_date, t.status
		FROM work_tasks t
		JOIN users u ON u.id = t.assigned_to_id
		LEFT JOIN companies co ON co.id = u.company_id` + w.sql() + `
		ORDER BY t.due_date, t.title`

	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("task report: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (report.TaskRow, error) {
		var out report.TaskRow
		err := row.Scan(&out.TaskID, &out.Title, &out.AssigneeName, &out.CompanyName, &out.StartDate, &out.DueDate, &out.Status)
		return out, err
	})
}

func (r *reportRepositoryImpl) SubscriptionRows(ctx context.Context, f report.RowFilter) ([]report.SubscriptionRow, error) {
	q := GetQuerier(ctx, r.db)

	var w whereBuilder
	w.scope(f.AllCompanies, f.CompanyIDs, "c.id")
	w.search(f.Search, "c.name")

	query := `
		SELECT c.id, c.name, c.parent_company_id, c.subscription_end_date, c.allowed_employees,
			(SELECT COUNT(*) FROM users u WHERE u.company_id = c.id AND u.role = 'employee'),
			c.total_price_per_employee, c.is_suspended
		FROM companies c` + w.sql() + `
		ORDER BY c.subscription_end_date NULLS LAST, c.name`

	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("subscription report: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (report.SubscriptionRow, error) {
		var out report.SubscriptionRow
		err := row.Scan(&out.CompanyID, &out.CompanyName, &out.ParentCompanyID, &out.SubscriptionEndDate,
			&out.AllowedEmployees, &out.EmployeeCount, &out.TotalPricePerEmployee, &out.IsSuspended)
		return out, err
	})
}

func (r *reportRepositoryImpl) EmployeeRows(ctx context.Context, f report.RowFilter) ([]report.EmployeeRow, error) {
	q := GetQuerier(ctx, r.db)

	var w whereBuilder
	w.scope(f.AllCompanies, f.CompanyIDs, "u.company_id")
	w.add("u.role <> 'super_admin'")
	w.search(f.Search, "u.full_name", "u.email")

	query := `
		SELECT u.id, u.full_name, u.email, u.role, co.name, u.job_title, u.status, u.is_suspended, u.created_at
		FROM users u
		LEFT JOIN companies co ON co.id = u.company_id` + w.sql() + `
		ORDER BY co.name, u.full_name`

	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("employee report: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (report.EmployeeRow, error) {
		var out report.EmployeeRow
		err := row.Scan(&out.UserID, &out.FullName, &out.Email, &out.Role, &out.CompanyName,
			&out.JobTitle, &out.Status, &out.IsSuspended, &out.CreatedAt)
		return out, err
	})
}
