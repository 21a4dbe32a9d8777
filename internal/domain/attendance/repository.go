package attendance

import (
	"context"
	"time"
)

type SheetFilter struct {
	AllCompanies bool
	CompanyIDs   []string
	Date         time.Time
	Search       string
}

type AttendanceRepository interface {
	// InsertIfAbsent creates the row unless (employee_id, date) already exists.
	// It always returns the stored row; created tells which case happened.
	InsertIfAbsent(ctx context.Context, a Attendance) (stored Attendance, created bool, err error)
	GetByID(ctx context.Context, id string) (Attendance, error)
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (Attendance, error)
	// CloseOpenSession sets time_out on the open row of that day, or returns pgx.ErrNoRows.
	CloseOpenSession(ctx context.Context, employeeID string, date time.Time, at time.Time) (Attendance, error)
	// Upsert writes a manual entry keyed by (employee_id, date).
	Upsert(ctx context.Context, a Attendance) (Attendance, error)
	Update(ctx context.Context, a Attendance) (Attendance, error)
	ListByEmployee(ctx context.Context, employeeID string, limit int) ([]Attendance, error)
	Sheet(ctx context.Context, filter SheetFilter) ([]SheetRow, error)
}
