package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/attendance"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/database"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

const attendanceColumns = `
	a.id, a.employee_id, a.date, a.day_name, a.time_in, a.time_out, a.is_manual_entry,
	a.notes, a.created_at, a.updated_at, e.full_name, e.company_id`

const attendanceJoin = ` LEFT JOIN users e ON e.id = a.employee_id`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var a attendance.Attendance
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.Date, &a.DayName, &a.TimeIn, &a.TimeOut, &a.IsManualEntry,
		&a.Notes, &a.CreatedAt, &a.UpdatedAt, &a.EmployeeName, &a.CompanyID,
	)
	return a, err
}

func (r *attendanceRepositoryImpl) InsertIfAbsent(ctx context.Context, a attendance.Attendance) (attendance.Attendance, bool, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return attendance.Attendance{}, false, err
	}

	query := `
		WITH a AS (
			INSERT INTO attendances (id, employee_id, date, day_name, time_in, time_out, is_manual_entry, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (employee_id, date) DO NOTHING
			RETURNING *
		)
		SELECT` + attendanceColumns + ` FROM a` + attendanceJoin

	stored, err := scanAttendance(q.QueryRow(ctx, query,
		id, a.EmployeeID, a.Date, a.DayName, a.TimeIn, a.TimeOut, a.IsManualEntry, a.Notes,
	))
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return attendance.Attendance{}, false, fmt.Errorf("insert attendance: %w", err)
	}

	existing, err := r.GetByEmployeeAndDate(ctx, a.EmployeeID, a.Date)
	if err != nil {
		return attendance.Attendance{}, false, fmt.Errorf("load existing attendance: %w", err)
	}
	return existing, false, nil
}

func (r *attendanceRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT` + attendanceColumns + ` FROM attendances a` + attendanceJoin + ` WHERE a.id = $1`
	return scanAttendance(q.QueryRow(ctx, query, id))
}

func (r *attendanceRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT` + attendanceColumns + ` FROM attendances a` + attendanceJoin + ` WHERE a.employee_id = $1 AND a.date = $2`
	return scanAttendance(q.QueryRow(ctx, query, employeeID, date))
}

func (r *attendanceRepositoryImpl) CloseOpenSession(ctx context.Context, employeeID string, date time.Time, at time.Time) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH a AS (
			UPDATE attendances SET time_out = $3, updated_at = NOW()
			WHERE employee_id = $1 AND date = $2 AND time_in IS NOT NULL AND time_out IS NULL
			RETURNING *
		)
		SELECT` + attendanceColumns + ` FROM a` + attendanceJoin

	return scanAttendance(q.QueryRow(ctx, query, employeeID, date, at))
}

func (r *attendanceRepositoryImpl) Upsert(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return attendance.Attendance{}, err
	}

	query := `
		WITH a AS (
			INSERT INTO attendances (id, employee_id, date, day_name, time_in, time_out, is_manual_entry, notes)
			VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7)
			ON CONFLICT (employee_id, date) DO UPDATE SET
				time_in = EXCLUDED.time_in,
				time_out = EXCLUDED.time_out,
				is_manual_entry = TRUE,
				notes = EXCLUDED.notes,
				updated_at = NOW()
			RETURNING *
		)
		SELECT` + attendanceColumns + ` FROM a` + attendanceJoin

	return scanAttendance(q.QueryRow(ctx, query, id, a.EmployeeID, a.Date, a.DayName, a.TimeIn, a.TimeOut, a.Notes))
}

func (r *attendanceRepositoryImpl) Update(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH a AS (
			UPDATE attendances SET
				time_in = $2, time_out = $3, is_manual_entry = $4, notes = $5, updated_at = NOW()
			WHERE id = $1
			RETURNING *
		)
		SELECT` + attendanceColumns + ` FROM a` + attendanceJoin

	return scanAttendance(q.QueryRow(ctx, query, a.ID, a.TimeIn, a.TimeOut, a.IsManualEntry, a.Notes))
}

func (r *attendanceRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, limit int) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + attendanceColumns + ` FROM attendances a` + attendanceJoin + `
		WHERE a.employee_id = $1
		ORDER BY a.date DESC
		LIMIT $2`

	rows, err := q.Query(ctx, query, employeeID, limit)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
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

// Sheet lists every active employee in scope, with that day's record if any.
func (r *attendanceRepositoryImpl) Sheet(ctx context.Context, filter attendance.SheetFilter) ([]attendance.SheetRow, error) {
	q := GetQuerier(ctx, r.db)

	var w whereBuilder
	w.add("u.role = 'employee'")
	w.add("u.is_suspended = FALSE")
	w.scope(filter.AllCompanies, filter.CompanyIDs, "u.company_id")
	w.search(filter.Search, "u.full_name", "u.email")
	where := w.sql()
	w.args = append(w.args, filter.Date)
	datePos := len(w.args)

	query := fmt.Sprintf(`
		SELECT u.id, u.full_name, u.job_title, u.company_id, co.name,
			a.id, a.date, a.day_name, a.time_in, a.time_out, a.is_manual_entry, a.notes,
			a.created_at, a.updated_at
		FROM users u
		JOIN companies co ON co.id = u.company_id
		LEFT JOIN attendances a ON a.employee_id = u.id AND a.date = $%d
		%s
		ORDER BY co.name, u.full_name, u.id`, datePos, where)

	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("attendance sheet: %w", err)
	}
	defer rows.Close()

	sheet := make([]attendance.SheetRow, 0)
	for rows.Next() {
		var row attendance.SheetRow
		var (
			id, dayName        *string
			date               *time.Time
			timeIn, timeOut    *time.Time
			manual             *bool
			notes              *string
			createdAt, updated *time.Time
		)
		if err := rows.Scan(
			&row.EmployeeID, &row.EmployeeName, &row.JobTitle, &row.CompanyID, &row.CompanyName,
			&id, &date, &dayName, &timeIn, &timeOut, &manual, &notes, &createdAt, &updated,
		); err != nil {
			return nil, err
		}
		if id != nil {
			name := row.EmployeeName
			companyID := row.CompanyID
			row.Attendance = &attendance.Attendance{
				ID:            *id,
				EmployeeID:    row.EmployeeID,
				Date:          *date,
				DayName:       *dayName,
				TimeIn:        timeIn,
				TimeOut:       timeOut,
				IsManualEntry: *manual,
				Notes:         notes,
				CreatedAt:     *createdAt,
				UpdatedAt:     *updated,
				EmployeeName:  &name,
				CompanyID:     &companyID,
			}
		}
		sheet = append(sheet, row)
	}
	return sheet, rows.Err()
}
