package report

import (
	"context"
	"time"
)

// RowFilter is a scope-resolved report query.
// UserID restricts rows to a single user (employee self scope).
type RowFilter struct {
	AllCompanies bool
	CompanyIDs   []string
	UserID       *string
	From         time.Time
	To           time.Time
	Search       string
}

// ReportRepository defines the interface for report data access
type ReportRepository interface {
	AttendanceRows(ctx context.Context, f RowFilter) ([]AttendanceRow, error)
	TaskRows(ctx context.Context, f RowFilter) ([]TaskRow, error)
	// SubscriptionRows ignores From/To and returns every company in scope.
	SubscriptionRows(ctx context.Context, f RowFilter) ([]SubscriptionRow, error)
	EmployeeRows(ctx context.Context, f RowFilter) ([]EmployeeRow, error)
}
