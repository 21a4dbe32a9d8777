package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/access"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/attendance"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/employee"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/metrics"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/validator"
)

const (
	defaultHistoryLimit = 30
	maxHistoryLimit     = 366
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	user.UserRepository
	resolver access.Resolver
	metrics  *metrics.Metrics

	now func() time.Time
	loc *time.Location
}

func NewAttendanceService(
	attendanceRepository attendance.AttendanceRepository,
	userRepository user.UserRepository,
	resolver access.Resolver,
	m *metrics.Metrics,
	loc *time.Location,
) *AttendanceServiceImpl {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepository,
		UserRepository:       userRepository,
		resolver:             resolver,
		metrics:              m,
		now:                  time.Now,
		loc:                  loc,
	}
}

func (s *AttendanceServiceImpl) today() time.Time {
	return attendance.CalendarDay(s.now(), s.loc)
}

// attendee loads the caller as the subject of a self-service attendance call.
func (s *AttendanceServiceImpl) attendee(ctx context.Context, caller user.Caller) (user.User, error) {
	if caller.IsSuperAdmin() || !caller.HasCompany() {
		return user.User{}, attendance.ErrEmployeeNotEligible
	}
	u, err := s.UserRepository.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, employee.ErrEmployeeNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	if u.IsSuspended {
		return user.User{}, attendance.ErrEmployeeNotEligible
	}
	return u, nil
}

// CheckIn is idempotent: a second call on the same day returns the stored record.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, caller user.Caller) (attendance.AttendanceResponse, error) {
	u, err := s.attendee(ctx, caller)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now()
	day := attendance.CalendarDay(now, s.loc)
	stored, created, err := s.AttendanceRepository.InsertIfAbsent(ctx, attendance.Attendance{
		EmployeeID: u.ID,
		Date:       day,
		DayName:    day.Weekday().String(),
		TimeIn:     &now,
	})
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to record check-in: %w", err)
	}

	if created {
		s.metrics.AttendanceEvent("check_in")
	} else {
		s.metrics.AttendanceEvent("check_in_repeat")
		slog.Debug("check-in already recorded", "user_id", u.ID, "date", day.Format("2006-01-02"))
	}
	return stored.ToResponse(), nil
}

func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, caller user.Caller) (attendance.AttendanceResponse, error) {
	u, err := s.attendee(ctx, caller)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now()
	closed, err := s.AttendanceRepository.CloseOpenSession(ctx, u.ID, attendance.CalendarDay(now, s.loc), now)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.AttendanceResponse{}, attendance.ErrNoOpenSession
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to record check-out: %w", err)
	}

	s.metrics.AttendanceEvent("check_out")
	return closed.ToResponse(), nil
}

func (s *AttendanceServiceImpl) managerScope(ctx context.Context, caller user.Caller, companyID *string) (access.Scope, error) {
	if !caller.Role.IsManager() {
		return access.Scope{}, access.ErrPermissionDenied
	}
	return s.resolver.ResolveScope(ctx, caller, companyID)
}

// combine resolves an HH:MM value on day. Nil keeps fallback, "" clears.
func (s *AttendanceServiceImpl) combine(day time.Time, value *string, fallback *time.Time) *time.Time {
	if value == nil {
		return fallback
	}
	if *value == "" {
		return nil
	}
	hour, minute, _ := validator.ParseTimeOfDay(*value)
	t := attendance.AtTimeOfDay(day, hour, minute, s.loc)
	return &t
}

func checkOrder(timeIn, timeOut *time.Time) error {
	if timeIn != nil && timeOut != nil && timeOut.Before(*timeIn) {
		return attendance.ErrTimeOutBeforeTimeIn
	}
	return nil
}

// RecordManual writes an admin entry for (employee, date). Omitted times keep
// the values of an existing record.
func (s *AttendanceServiceImpl) RecordManual(ctx context.Context, caller user.Caller, req attendance.ManualAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	scope, err := s.managerScope(ctx, caller, nil)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	target, err := s.UserRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.AttendanceResponse{}, employee.ErrEmployeeNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if err := scope.RequireUser(target); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if target.CompanyID == nil {
		return attendance.AttendanceResponse{}, attendance.ErrEmployeeNotEligible
	}

	day, _ := validator.IsValidDate(req.Date)
	var existingIn, existingOut *time.Time
	var existingNotes *string
	existing, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, target.ID, day)
	switch {
	case err == nil:
		existingIn, existingOut, existingNotes = existing.TimeIn, existing.TimeOut, existing.Notes
	case errors.Is(err, pgx.ErrNoRows):
		if isBlank(req.TimeIn) && isBlank(req.TimeOut) {
			return attendance.AttendanceResponse{}, attendance.ErrEmptyManualEntry
		}
	default:
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	timeIn := s.combine(day, req.TimeIn, existingIn)
	timeOut := s.combine(day, req.TimeOut, existingOut)
	if err := checkOrder(timeIn, timeOut); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	notes := req.Notes
	if notes == nil {
		notes = existingNotes
	}

	saved, err := s.AttendanceRepository.Upsert(ctx, attendance.Attendance{
		EmployeeID: target.ID,
		Date:       day,
		DayName:    day.Weekday().String(),
		TimeIn:     timeIn,
		TimeOut:    timeOut,
		Notes:      notes,
	})
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to save manual attendance: %w", err)
	}

	s.metrics.AttendanceEvent("manual")
	slog.Info("manual attendance recorded", "employee_id", target.ID, "date", req.Date, "by", caller.UserID)
	return saved.ToResponse(), nil
}

func isBlank(s *string) bool {
	return s == nil || *s == ""
}

func (s *AttendanceServiceImpl) Edit(ctx context.Context, caller user.Caller, req attendance.EditAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	scope, err := s.managerScope(ctx, caller, nil)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	a, err := s.AttendanceRepository.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	if err := scope.RequireCompany(a.CompanyID); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	a.TimeIn = s.combine(a.Date, req.TimeIn, a.TimeIn)
	a.TimeOut = s.combine(a.Date, req.TimeOut, a.TimeOut)
	if err := checkOrder(a.TimeIn, a.TimeOut); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if req.Notes != nil {
		a.Notes = req.Notes
	}
	a.IsManualEntry = true

	updated, err := s.AttendanceRepository.Update(ctx, a)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance: %w", err)
	}
	return updated.ToResponse(), nil
}

func (s *AttendanceServiceImpl) MyHistory(ctx context.Context, caller user.Caller, limit int) ([]attendance.AttendanceResponse, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)

	records, err := s.AttendanceRepository.ListByEmployee(ctx, caller.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}

	resp := make([]attendance.AttendanceResponse, 0, len(records))
	for _, a := range records {
		resp = append(resp, a.ToResponse())
	}
	return resp, nil
}

func (s *AttendanceServiceImpl) Sheet(ctx context.Context, caller user.Caller, filter attendance.SheetRequest) (attendance.SheetResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.SheetResponse{}, err
	}
	scope, err := s.managerScope(ctx, caller, filter.CompanyID)
	if err != nil {
		return attendance.SheetResponse{}, err
	}

	day := s.today()
	if filter.Date != nil && *filter.Date != "" {
		day, _ = validator.IsValidDate(*filter.Date)
	}

	resp := attendance.SheetResponse{
		Date:    day.Format("2006-01-02"),
		DayName: day.Weekday().String(),
		Rows:    []attendance.SheetRowResponse{},
	}
	if scope.IsEmpty() {
		return resp, nil
	}

	rows, err := s.AttendanceRepository.Sheet(ctx, attendance.SheetFilter{
		AllCompanies: scope.All,
		CompanyIDs:   scope.CompanyIDs,
		Date:         day,
		Search:       filter.Search,
	})
	if err != nil {
		return attendance.SheetResponse{}, fmt.Errorf("failed to build attendance sheet: %w", err)
	}

	for _, row := range rows {
		r := row.ToResponse()
		if r.IsPresent {
			resp.PresentCount++
		} else {
			resp.AbsentCount++
		}
		resp.Rows = append(resp.Rows, r)
	}
	return resp, nil
}

func (s *AttendanceServiceImpl) TodayStatus(ctx context.Context, caller user.Caller) (attendance.TodayStatusResponse, error) {
	day := s.today()
	resp := attendance.TodayStatusResponse{Date: day.Format("2006-01-02")}

	a, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, caller.UserID, day)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return resp, nil
		}
		return attendance.TodayStatusResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}

	resp.CheckedIn = a.TimeIn != nil
	resp.CheckedOut = a.TimeOut != nil
	r := a.ToResponse()
	resp.TimeIn, resp.TimeOut = r.TimeIn, r.TimeOut
	return resp, nil
}
