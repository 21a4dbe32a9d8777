package dashboard

import (
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/attendance"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/company"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/task"
)

// Response wraps the dashboard of one role. Only the matching field is set.
type Response struct {
	Role       string                 `json:"role"`
	SuperAdmin *SuperAdminDashboard   `json:"super_admin,omitempty"`
	Company    *CompanyAdminDashboard `json:"company,omitempty"`
	Employee   *EmployeeDashboard     `json:"employee,omitempty"`
}

type SuperAdminDashboard struct {
	CompaniesCount  int64                     `json:"companies_count"`
	UsersCount      int64                     `json:"users_count"`
	RecentCompanies []company.CompanyResponse `json:"recent_companies"`
}

const (
	AlertExpiring = "expiring"
	AlertExpired  = "expired"
)

type SubscriptionAlert struct {
	Level    string `json:"level"`
	DaysLeft int    `json:"days_left"`
	EndDate  string `json:"end_date"`
}

type CompanyAdminDashboard struct {
	CompanyID         string                          `json:"company_id"`
	CompanyName       string                          `json:"company_name"`
	EmployeesCount    int64                           `json:"employees_count"`
	PresentToday      int                             `json:"present_today"`
	TodayAttendance   []attendance.AttendanceResponse `json:"today_attendance"`
	PendingTasks      []task.TaskResponse             `json:"pending_tasks"`
	SubscriptionAlert *SubscriptionAlert              `json:"subscription_alert,omitempty"`
}

type EmployeeDashboard struct {
	Today     attendance.TodayStatusResponse `json:"today"`
	OpenTasks []task.TaskResponse            `json:"open_tasks"`
}
