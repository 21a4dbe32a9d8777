package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/report"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
)

type ReportRepository struct {
	s *Store
}

func (s *Store) Reports() *ReportRepository {
	return &ReportRepository{s: s}
}

func (s *Store) companyNameLocked(id *string) *string {
	if id == nil {
		return nil
	}
	if c, ok := s.companies[*id]; ok {
		name := c.Name
		return &name
	}
	return nil
}

func (r *ReportRepository) AttendanceRows(_ context.Context, f report.RowFilter) ([]report.AttendanceRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rows := make([]report.AttendanceRow, 0)
	for _, a := range r.s.attendances {
		u, ok := r.s.users[a.EmployeeID]
		if !ok || !inScope(f.AllCompanies, f.CompanyIDs, u.CompanyID) {
			continue
		}
		if f.UserID != nil && u.ID != *f.UserID {
			continue
		}
		if a.Date.Before(f.From) || a.Date.After(f.To) || !containsFold(f.Search, &u.FullName) {
			continue
		}
		rows = append(rows, report.AttendanceRow{
			EmployeeID:    u.ID,
			EmployeeName:  u.FullName,
			CompanyName:   r.s.companyNameLocked(u.CompanyID),
			Date:          a.Date,
			TimeIn:        a.TimeIn,
			TimeOut:       a.TimeOut,
			IsManualEntry: a.IsManualEntry,
		})
	}
	slices.SortFunc(rows, func(a, b report.AttendanceRow) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return strings.Compare(a.EmployeeName, b.EmployeeName)
	})
	return rows, nil
}

func (r *ReportRepository) TaskRows(_ context.Context, f report.RowFilter) ([]report.TaskRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rows := make([]report.TaskRow, 0)
	for _, t := range r.s.tasks {
		u, ok := r.s.users[t.AssignedToID]
		if !ok || !inScope(f.AllCompanies, f.CompanyIDs, u.CompanyID) {
			continue
		}
		if f.UserID != nil && u.ID != *f.UserID {
			continue
		}
		if t.StartDate.After(f.To) || t.DueDate.Before(f.From) || !containsFold(f.Search, &t.Title, &u.FullName) {
			continue
		}
		rows = append(rows, report.TaskRow{
			TaskID:       t.ID,
			Title:        t.Title,
			AssigneeName: u.FullName,
			CompanyName:  r.s.companyNameLocked(u.CompanyID),
			StartDate:    t.StartDate,
			DueDate:      t.DueDate,
			Status:       t.Status,
		})
	}
	slices.SortFunc(rows, func(a, b report.TaskRow) int {
		if c := a.DueDate.Compare(b.DueDate); c != 0 {
			return c
		}
		return strings.Compare(a.Title, b.Title)
	})
	return rows, nil
}

func (r *ReportRepository) SubscriptionRows(_ context.Context, f report.RowFilter) ([]report.SubscriptionRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rows := make([]report.SubscriptionRow, 0)
	for _, c := range r.s.companies {
		id := c.ID
		if !inScope(f.AllCompanies, f.CompanyIDs, &id) || !containsFold(f.Search, &c.Name) {
			continue
		}
		var employees int64
		for _, u := range r.s.users {
			if u.InCompany(c.ID) && u.Role == user.RoleEmployee {
				employees++
			}
		}
		rows = append(rows, report.SubscriptionRow{
			CompanyID:             c.ID,
			CompanyName:           c.Name,
			ParentCompanyID:       c.ParentCompanyID,
			SubscriptionEndDate:   c.SubscriptionEndDate,
			AllowedEmployees:      c.AllowedEmployees,
			EmployeeCount:         employees,
			TotalPricePerEmployee: c.TotalPricePerEmployee,
			IsSuspended:           c.IsSuspended,
		})
	}
	slices.SortFunc(rows, func(a, b report.SubscriptionRow) int {
		switch {
		case a.SubscriptionEndDate == nil && b.SubscriptionEndDate != nil:
			return 1
		case a.SubscriptionEndDate != nil && b.SubscriptionEndDate == nil:
			return -1
		case a.SubscriptionEndDate != nil && b.SubscriptionEndDate != nil:
			if c := a.SubscriptionEndDate.Compare(*b.SubscriptionEndDate); c != 0 {
				return c
			}
		}
		return strings.Compare(a.CompanyName, b.CompanyName)
	})
	return rows, nil
}

func (r *ReportRepository) EmployeeRows(_ context.Context, f report.RowFilter) ([]report.EmployeeRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rows := make([]report.EmployeeRow, 0)
	for _, u := range r.s.users {
		if u.Role == user.RoleSuperAdmin || !inScope(f.AllCompanies, f.CompanyIDs, u.CompanyID) {
			continue
		}
		if !containsFold(f.Search, &u.FullName, &u.Email) {
			continue
		}
		rows = append(rows, report.EmployeeRow{
			UserID:      u.ID,
			FullName:    u.FullName,
			Email:       u.Email,
			Role:        u.Role,
			CompanyName: r.s.companyNameLocked(u.CompanyID),
			JobTitle:    u.JobTitle,
			Status:      u.Status,
			IsSuspended: u.IsSuspended,
			CreatedAt:   u.CreatedAt,
		})
	}
	slices.SortFunc(rows, func(a, b report.EmployeeRow) int {
		an, bn := "", ""
		if a.CompanyName != nil {
			an = *a.CompanyName
		}
		if b.CompanyName != nil {
			bn = *b.CompanyName
		}
		if c := strings.Compare(an, bn); c != 0 {
			return c
		}
		return strings.Compare(a.FullName, b.FullName)
	})
	return rows, nil
}
