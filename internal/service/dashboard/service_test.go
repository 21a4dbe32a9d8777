package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/attendance"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/company"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/dashboard"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/task"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/repository/memory"
)

var now = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

func date(s string) *time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return &t
}

type env struct {
	svc      *DashboardServiceImpl
	store    *memory.Store
	company  company.Company
	admin    user.Caller
	employee user.Caller
}

func newEnv(t *testing.T, endDate string, notifyDays int) env {
	t.Helper()
	store := memory.NewStore()
	co, err := store.Companies().Create(context.Background(), company.Company{
		Name: "Acme", SubscriptionEndDate: date(endDate), NotificationDaysBeforeExpiry: notifyDays,
	})
	require.NoError(t, err)

	admin, err := store.Users().Create(context.Background(), user.User{FullName: "Admin", Email: "admin@acme.sa", Role: user.RoleCompanyAdmin, CompanyID: &co.ID})
	require.NoError(t, err)
	emp, err := store.Users().Create(context.Background(), user.User{FullName: "Huda", Email: "huda@acme.sa", Role: user.RoleEmployee, CompanyID: &co.ID})
	require.NoError(t, err)
	_, err = store.Users().Create(context.Background(), user.User{FullName: "Omar", Email: "omar@acme.sa", Role: user.RoleEmployee, CompanyID: &co.ID})
	require.NoError(t, err)

	svc := NewDashboardService(store.Dashboard(), store.Companies(), store.Tasks(), store.Attendances(), time.UTC)
	svc.now = func() time.Time { return now }

	return env{
		svc:      svc,
		store:    store,
		company:  co,
		admin:    user.Caller{UserID: admin.ID, Role: user.RoleCompanyAdmin, CompanyID: &co.ID},
		employee: user.Caller{UserID: emp.ID, Role: user.RoleEmployee, CompanyID: &co.ID},
	}
}

func (e env) addTask(t *testing.T, title, due string, status task.Status) {
	t.Helper()
	_, err := e.store.Tasks().Create(context.Background(), task.WorkTask{
		Title: title, AssignedToID: e.employee.UserID, CreatedByID: e.admin.UserID,
		StartDate: *date("2025-06-01"), DueDate: *date(due), Status: status,
	})
	require.NoError(t, err)
}

func TestGet_SuperAdmin(t *testing.T) {
	e := newEnv(t, "2025-12-31", 30)
	_, err := e.store.Companies().Create(context.Background(), company.Company{Name: "Beta"})
	require.NoError(t, err)

	resp, err := e.svc.Get(context.Background(), user.Caller{UserID: "root", Role: user.RoleSuperAdmin})
	require.NoError(t, err)
	require.NotNil(t, resp.SuperAdmin)
	assert.Nil(t, resp.Company)
	assert.EqualValues(t, 2, resp.SuperAdmin.CompaniesCount)
	assert.EqualValues(t, 3, resp.SuperAdmin.UsersCount)
	require.Len(t, resp.SuperAdmin.RecentCompanies, 2)
	assert.Equal(t, "Beta", resp.SuperAdmin.RecentCompanies[0].Name)
}

func TestGet_CompanyAdmin(t *testing.T) {
	e := newEnv(t, "2025-12-31", 30)
	in := now.Add(-time.Hour)
	_, _, err := e.store.Attendances().InsertIfAbsent(context.Background(), attendance.Attendance{
		EmployeeID: e.employee.UserID, Date: attendance.CalendarDay(now, time.UTC), DayName: "Tuesday", TimeIn: &in,
	})
	require.NoError(t, err)

	e.addTask(t, "Later", "2025-06-20", task.StatusPending)
	e.addTask(t, "Sooner", "2025-06-12", task.StatusDelayed)
	e.addTask(t, "Finished", "2025-06-05", task.StatusCompleted)

	resp, err := e.svc.Get(context.Background(), e.admin)
	require.NoError(t, err)
	require.NotNil(t, resp.Company)
	d := resp.Company
	assert.Equal(t, "Acme", d.CompanyName)
	assert.EqualValues(t, 2, d.EmployeesCount)
	assert.Equal(t, 1, d.PresentToday)
	require.Len(t, d.TodayAttendance, 1)
	require.Len(t, d.PendingTasks, 2)
	assert.Equal(t, "Sooner", d.PendingTasks[0].Title)
	assert.Nil(t, d.SubscriptionAlert)
}

func TestGet_SubscriptionAlert(t *testing.T) {
	tests := []struct {
		name    string
		endDate string
		notify  int
		want    string
	}{
		{"outside window", "2025-08-01", 30, ""},
		{"expiring", "2025-06-20", 30, dashboard.AlertExpiring},
		{"expires today", "2025-06-10", 30, dashboard.AlertExpired},
		{"expired", "2025-05-01", 30, dashboard.AlertExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, tt.endDate, tt.notify)
			resp, err := e.svc.Get(context.Background(), e.admin)
			require.NoError(t, err)
			alert := resp.Company.SubscriptionAlert
			if tt.want == "" {
				assert.Nil(t, alert)
				return
			}
			require.NotNil(t, alert)
			assert.Equal(t, tt.want, alert.Level)
			assert.Equal(t, tt.endDate, alert.EndDate)
		})
	}
}

func TestGet_Employee(t *testing.T) {
	e := newEnv(t, "2025-12-31", 30)
	e.addTask(t, "Open", "2025-06-20", task.StatusPending)
	e.addTask(t, "Done", "2025-06-05", task.StatusCompleted)

	resp, err := e.svc.Get(context.Background(), e.employee)
	require.NoError(t, err)
	require.NotNil(t, resp.Employee)
	assert.Equal(t, "2025-06-10", resp.Employee.Today.Date)
	assert.False(t, resp.Employee.Today.CheckedIn)
	require.Len(t, resp.Employee.OpenTasks, 1)
	assert.Equal(t, "Open", resp.Employee.OpenTasks[0].Title)

	in, out := now.Add(-2*time.Hour), now.Add(-time.Hour)
	_, _, err = e.store.Attendances().InsertIfAbsent(context.Background(), attendance.Attendance{
		EmployeeID: e.employee.UserID, Date: attendance.CalendarDay(now, time.UTC), TimeIn: &in, TimeOut: &out,
	})
	require.NoError(t, err)

	resp, err = e.svc.Get(context.Background(), e.employee)
	require.NoError(t, err)
	assert.True(t, resp.Employee.Today.CheckedIn)
	assert.True(t, resp.Employee.Today.CheckedOut)
}

func TestGet_AdminWithoutCompany(t *testing.T) {
	e := newEnv(t, "2025-12-31", 30)
	resp, err := e.svc.Get(context.Background(), user.Caller{UserID: "x", Role: user.RoleSubAdmin})
	require.NoError(t, err)
	assert.Nil(t, resp.Company)
	assert.Equal(t, string(user.RoleSubAdmin), resp.Role)
}
