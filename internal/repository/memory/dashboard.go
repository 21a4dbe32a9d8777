package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/attendance"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/company"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
)

type DashboardRepository struct {
	s *Store
}

func (s *Store) Dashboard() *DashboardRepository {
	return &DashboardRepository{s: s}
}

func (r *DashboardRepository) CountCompanies(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.companies)), nil
}

func (r *DashboardRepository) CountUsers(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.users)), nil
}

func (r *DashboardRepository) RecentCompanies(ctx context.Context, limit int) ([]company.Company, error) {
	companies, _, err := r.s.Companies().List(ctx, company.ListFilter{AllCompanies: true, Page: 1, Limit: limit})
	return companies, err
}

func (r *DashboardRepository) CountEmployees(_ context.Context, companyID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, u := range r.s.users {
		if u.InCompany(companyID) && u.Role == user.RoleEmployee && !u.IsSuspended {
			n++
		}
	}
	return n, nil
}

func (r *DashboardRepository) AttendanceForDay(_ context.Context, companyID string, date time.Time) ([]attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	records := make([]attendance.Attendance, 0)
	for _, a := range r.s.attendances {
		a = r.s.withEmployee(a)
		if a.CompanyID == nil || *a.CompanyID != companyID || !a.Date.Equal(date) {
			continue
		}
		records = append(records, a)
	}
	slices.SortFunc(records, func(a, b attendance.Attendance) int {
		switch {
		case a.TimeIn == nil && b.TimeIn != nil:
			return 1
		case a.TimeIn != nil && b.TimeIn == nil:
			return -1
		case a.TimeIn != nil && b.TimeIn != nil:
			if c := a.TimeIn.Compare(*b.TimeIn); c != 0 {
				return c
			}
		}
		return strings.Compare(*a.EmployeeName, *b.EmployeeName)
	})
	return records, nil
}
