package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/attendance"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
)

type AttendanceRepository struct {
	s *Store
}

func (s *Store) Attendances() *AttendanceRepository {
	return &AttendanceRepository{s: s}
}

// withEmployee fills the joined employee columns. Callers hold mu.
func (s *Store) withEmployee(a attendance.Attendance) attendance.Attendance {
	a.EmployeeName, a.CompanyID = nil, nil
	if u, ok := s.users[a.EmployeeID]; ok {
		name := u.FullName
		a.EmployeeName = &name
		a.CompanyID = u.CompanyID
	}
	return a
}

// findAttendanceLocked returns the id of the (employee, date) row. Callers hold mu.
func (s *Store) findAttendanceLocked(employeeID string, date time.Time) (string, bool) {
	for id, a := range s.attendances {
		if a.EmployeeID == employeeID && a.Date.Equal(date) {
			return id, true
		}
	}
	return "", false
}

func (r *AttendanceRepository) InsertIfAbsent(_ context.Context, a attendance.Attendance) (attendance.Attendance, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if id, ok := r.s.findAttendanceLocked(a.EmployeeID, a.Date); ok {
		return r.s.withEmployee(r.s.attendances[id]), false, nil
	}
	if _, ok := r.s.users[a.EmployeeID]; !ok {
		return attendance.Attendance{}, false, pgx.ErrNoRows
	}
	a.ID = newID()
	now := r.s.tick()
	a.CreatedAt, a.UpdatedAt = now, now
	r.s.attendances[a.ID] = a
	return r.s.withEmployee(a), true, nil
}

func (r *AttendanceRepository) GetByID(_ context.Context, id string) (attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.attendances[id]
	if !ok {
		return attendance.Attendance{}, pgx.ErrNoRows
	}
	return r.s.withEmployee(a), nil
}

func (r *AttendanceRepository) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, ok := r.s.findAttendanceLocked(employeeID, date)
	if !ok {
		return attendance.Attendance{}, pgx.ErrNoRows
	}
	return r.s.withEmployee(r.s.attendances[id]), nil
}

func (r *AttendanceRepository) CloseOpenSession(_ context.Context, employeeID string, date time.Time, at time.Time) (attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, ok := r.s.findAttendanceLocked(employeeID, date)
	if !ok {
		return attendance.Attendance{}, pgx.ErrNoRows
	}
	a := r.s.attendances[id]
	if !a.IsOpen() {
		return attendance.Attendance{}, pgx.ErrNoRows
	}
	a.TimeOut = &at
	a.UpdatedAt = r.s.tick()
	r.s.attendances[id] = a
	return r.s.withEmployee(a), nil
}

func (r *AttendanceRepository) Upsert(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.tick()
	if id, ok := r.s.findAttendanceLocked(a.EmployeeID, a.Date); ok {
		stored := r.s.attendances[id]
		stored.TimeIn = a.TimeIn
		stored.TimeOut = a.TimeOut
		stored.Notes = a.Notes
		stored.IsManualEntry = true
		stored.UpdatedAt = now
		r.s.attendances[id] = stored
		return r.s.withEmployee(stored), nil
	}
	if _, ok := r.s.users[a.EmployeeID]; !ok {
		return attendance.Attendance{}, pgx.ErrNoRows
	}
	a.ID = newID()
	a.IsManualEntry = true
	a.CreatedAt, a.UpdatedAt = now, now
	r.s.attendances[a.ID] = a
	return r.s.withEmployee(a), nil
}

func (r *AttendanceRepository) Update(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.attendances[a.ID]
	if !ok {
		return attendance.Attendance{}, pgx.ErrNoRows
	}
	stored.TimeIn = a.TimeIn
	stored.TimeOut = a.TimeOut
	stored.IsManualEntry = a.IsManualEntry
	stored.Notes = a.Notes
	stored.UpdatedAt = r.s.tick()
	r.s.attendances[a.ID] = stored
	return r.s.withEmployee(stored), nil
}

func (r *AttendanceRepository) ListByEmployee(_ context.Context, employeeID string, limit int) ([]attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	records := make([]attendance.Attendance, 0)
	for _, a := range r.s.attendances {
		if a.EmployeeID == employeeID {
			records = append(records, r.s.withEmployee(a))
		}
	}
	slices.SortFunc(records, func(a, b attendance.Attendance) int { return b.Date.Compare(a.Date) })
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (r *AttendanceRepository) Sheet(_ context.Context, filter attendance.SheetFilter) ([]attendance.SheetRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sheet := make([]attendance.SheetRow, 0)
	for _, u := range r.s.users {
		if u.Role != user.RoleEmployee || u.IsSuspended || u.CompanyID == nil {
			continue
		}
		if !inScope(filter.AllCompanies, filter.CompanyIDs, u.CompanyID) {
			continue
		}
		if !containsFold(filter.Search, &u.FullName, &u.Email) {
			continue
		}
		co, ok := r.s.companies[*u.CompanyID]
		if !ok {
			continue
		}
		row := attendance.SheetRow{
			EmployeeID:   u.ID,
			EmployeeName: u.FullName,
			JobTitle:     u.JobTitle,
			CompanyID:    co.ID,
			CompanyName:  co.Name,
		}
		if id, ok := r.s.findAttendanceLocked(u.ID, filter.Date); ok {
			a := r.s.withEmployee(r.s.attendances[id])
			row.Attendance = &a
		}
		sheet = append(sheet, row)
	}
	slices.SortFunc(sheet, func(a, b attendance.SheetRow) int {
		if c := strings.Compare(a.CompanyName, b.CompanyName); c != 0 {
			return c
		}
		if c := strings.Compare(a.EmployeeName, b.EmployeeName); c != 0 {
			return c
		}
		return strings.Compare(a.EmployeeID, b.EmployeeID)
	})
	return sheet, nil
}
