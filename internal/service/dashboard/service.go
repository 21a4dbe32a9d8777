package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/attendance"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/company"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/dashboard"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/task"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
)

const (
	recentCompaniesLimit = 5
	pendingTasksLimit    = 10
	openTasksLimit       = 20
)

type DashboardServiceImpl struct {
	dashboard.DashboardRepository
	companies   company.CompanyRepository
	tasks       task.TaskRepository
	attendances attendance.AttendanceRepository

	now func() time.Time
	loc *time.Location
}

func NewDashboardService(
	repo dashboard.DashboardRepository,
	companyRepository company.CompanyRepository,
	taskRepository task.TaskRepository,
	attendanceRepository attendance.AttendanceRepository,
	loc *time.Location,
) *DashboardServiceImpl {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardServiceImpl{
		DashboardRepository: repo,
		companies:           companyRepository,
		tasks:               taskRepository,
		attendances:         attendanceRepository,
		now:                 time.Now,
		loc:                 loc,
	}
}

func (s *DashboardServiceImpl) today() time.Time {
	return attendance.CalendarDay(s.now(), s.loc)
}

// Get returns the dashboard matching the caller's role.
func (s *DashboardServiceImpl) Get(ctx context.Context, caller user.Caller) (dashboard.Response, error) {
	resp := dashboard.Response{Role: string(caller.Role)}

	switch {
	case caller.IsSuperAdmin():
		d, err := s.superAdmin(ctx)
		if err != nil {
			return dashboard.Response{}, err
		}
		resp.SuperAdmin = &d
	case caller.Role.IsManager():
		if !caller.HasCompany() {
			return resp, nil
		}
		d, err := s.companyAdmin(ctx, *caller.CompanyID)
		if err != nil {
			return dashboard.Response{}, err
		}
		resp.Company = &d
	default:
		d, err := s.employee(ctx, caller)
		if err != nil {
			return dashboard.Response{}, err
		}
		resp.Employee = &d
	}
	return resp, nil
}

func (s *DashboardServiceImpl) superAdmin(ctx context.Context) (dashboard.SuperAdminDashboard, error) {
	var d dashboard.SuperAdminDashboard

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.CountCompanies(gCtx)
		if err != nil {
			return fmt.Errorf("failed to count companies: %w", err)
		}
		d.CompaniesCount = n
		return nil
	})

	g.Go(func() error {
		n, err := s.CountUsers(gCtx)
		if err != nil {
			return fmt.Errorf("failed to count users: %w", err)
		}
		d.UsersCount = n
		return nil
	})

	g.Go(func() error {
		companies, err := s.RecentCompanies(gCtx, recentCompaniesLimit)
		if err != nil {
			return fmt.Errorf("failed to list recent companies: %w", err)
		}
		d.RecentCompanies = make([]company.CompanyResponse, 0, len(companies))
		for _, c := range companies {
			d.RecentCompanies = append(d.RecentCompanies, c.ToResponse())
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return dashboard.SuperAdminDashboard{}, err
	}
	return d, nil
}

func (s *DashboardServiceImpl) companyAdmin(ctx context.Context, companyID string) (dashboard.CompanyAdminDashboard, error) {
	today := s.today()
	d := dashboard.CompanyAdminDashboard{CompanyID: companyID}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c, err := s.companies.GetByID(gCtx, companyID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return company.ErrCompanyNotFound
			}
			return fmt.Errorf("failed to get company: %w", err)
		}
		d.CompanyName = c.Name
		d.SubscriptionAlert = subscriptionAlert(c, today)
		return nil
	})

	g.Go(func() error {
		n, err := s.CountEmployees(gCtx, companyID)
		if err != nil {
			return fmt.Errorf("failed to count employees: %w", err)
		}
		d.EmployeesCount = n
		return nil
	})

	g.Go(func() error {
		records, err := s.AttendanceForDay(gCtx, companyID, today)
		if err != nil {
			return fmt.Errorf("failed to get today's attendance: %w", err)
		}
		d.TodayAttendance = make([]attendance.AttendanceResponse, 0, len(records))
		for _, a := range records {
			if a.TimeIn != nil {
				d.PresentToday++
			}
			d.TodayAttendance = append(d.TodayAttendance, a.ToResponse())
		}
		return nil
	})

	g.Go(func() error {
		tasks, _, err := s.tasks.List(gCtx, task.ListFilter{
			CompanyIDs: []string{companyID},
			OpenOnly:   true,
			Page:       1,
			Limit:      pendingTasksLimit,
		})
		if err != nil {
			return fmt.Errorf("failed to list pending tasks: %w", err)
		}
		d.PendingTasks = taskResponses(tasks, today)
		return nil
	})

	if err := g.Wait(); err != nil {
		return dashboard.CompanyAdminDashboard{}, err
	}
	return d, nil
}

func (s *DashboardServiceImpl) employee(ctx context.Context, caller user.Caller) (dashboard.EmployeeDashboard, error) {
	today := s.today()
	d := dashboard.EmployeeDashboard{Today: attendance.TodayStatusResponse{Date: today.Format("2006-01-02")}}

	a, err := s.attendances.GetByEmployeeAndDate(ctx, caller.UserID, today)
	switch {
	case err == nil:
		r := a.ToResponse()
		d.Today.CheckedIn = a.TimeIn != nil
		d.Today.CheckedOut = a.TimeOut != nil
		d.Today.TimeIn, d.Today.TimeOut = r.TimeIn, r.TimeOut
	case !errors.Is(err, pgx.ErrNoRows):
		return dashboard.EmployeeDashboard{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}

	tasks, _, err := s.tasks.List(ctx, task.ListFilter{
		AllCompanies: true,
		AssigneeID:   &caller.UserID,
		OpenOnly:     true,
		Page:         1,
		Limit:        openTasksLimit,
	})
	if err != nil {
		return dashboard.EmployeeDashboard{}, fmt.Errorf("failed to list open tasks: %w", err)
	}
	d.OpenTasks = taskResponses(tasks, today)
	return d, nil
}

// subscriptionAlert is nil while the subscription is outside its notice window.
func subscriptionAlert(c company.Company, today time.Time) *dashboard.SubscriptionAlert {
	days, ok := c.DaysUntilExpiry(today)
	if !ok {
		return nil
	}

	alert := &dashboard.SubscriptionAlert{DaysLeft: days, EndDate: c.SubscriptionEndDate.Format("2006-01-02")}
	switch {
	case days <= 0:
		alert.Level = dashboard.AlertExpired
	case days < c.NotificationDaysBeforeExpiry:
		alert.Level = dashboard.AlertExpiring
	default:
		return nil
	}
	return alert
}

func taskResponses(tasks []task.WorkTask, today time.Time) []task.TaskResponse {
	out := make([]task.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ToResponse(today))
	}
	return out
}
