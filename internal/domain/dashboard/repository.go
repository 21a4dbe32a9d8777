package dashboard

import (
	"context"
	"time"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/attendance"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/company"
)

// DashboardRepository defines the aggregate reads behind the dashboards
type DashboardRepository interface {
	CountCompanies(ctx context.Context) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
	RecentCompanies(ctx context.Context, limit int) ([]company.Company, error)
	// CountEmployees counts active users with the employee role in a company.
	CountEmployees(ctx context.Context, companyID string) (int64, error)
	// AttendanceForDay returns the records of a company's users on date.
	AttendanceForDay(ctx context.Context, companyID string, date time.Time) ([]attendance.Attendance, error)
}
