package attendance

import (
	"time"
)

type Attendance struct {
	ID            string
	EmployeeID    string
	Date          time.Time // calendar day, midnight UTC
	DayName       string
	TimeIn        *time.Time
	TimeOut       *time.Time
	IsManualEntry bool
	Notes         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Join
	EmployeeName *string
	CompanyID    *string
}

// IsOpen reports whether the employee checked in and has not checked out.
func (a *Attendance) IsOpen() bool {
	return a.TimeIn != nil && a.TimeOut == nil
}

// WorkedMinutes is zero until both times are known.
func (a *Attendance) WorkedMinutes() int {
	if a.TimeIn == nil || a.TimeOut == nil {
		return 0
	}
	return int(a.TimeOut.Sub(*a.TimeIn).Minutes())
}

// SheetRow is one employee on the daily sheet, with that day's record if any.
type SheetRow struct {
	EmployeeID   string
	EmployeeName string
	JobTitle     *string
	CompanyID    string
	CompanyName  string
	Attendance   *Attendance
}

// CalendarDay returns the date of t in loc as midnight UTC, which is how
// attendance dates are stored.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AtTimeOfDay combines a calendar day with hour and minute in loc.
func AtTimeOfDay(day time.Time, hour, minute int, loc *time.Location) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, loc)
}
