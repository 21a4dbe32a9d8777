package attendance

import (
	"time"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/validator"
)

type AttendanceResponse struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	EmployeeName  *string `json:"employee_name,omitempty"`
	Date          string  `json:"date"`
	DayName       string  `json:"day_name"`
	TimeIn        *string `json:"time_in,omitempty"`
	TimeOut       *string `json:"time_out,omitempty"`
	WorkedMinutes int     `json:"worked_minutes"`
	IsManualEntry bool    `json:"is_manual_entry"`
	Notes         *string `json:"notes,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func formatTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func (a Attendance) ToResponse() AttendanceResponse {
	return AttendanceResponse{
		ID:            a.ID,
		EmployeeID:    a.EmployeeID,
		EmployeeName:  a.EmployeeName,
		Date:          a.Date.Format("2006-01-02"),
		DayName:       a.DayName,
		TimeIn:        formatTimestamp(a.TimeIn),
		TimeOut:       formatTimestamp(a.TimeOut),
		WorkedMinutes: a.WorkedMinutes(),
		IsManualEntry: a.IsManualEntry,
		Notes:         a.Notes,
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     a.UpdatedAt.Format(time.RFC3339),
	}
}

// ManualAttendanceRequest lets an admin record a day for an employee.
// Times are HH:MM in the application time zone.
type ManualAttendanceRequest struct {
	EmployeeID string  `json:"employee_id"`
	Date       string  `json:"date"` // YYYY-MM-DD
	TimeIn     *string `json:"time_in,omitempty"`
	TimeOut    *string `json:"time_out,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

func validateTimes(errs validator.ValidationErrors, timeIn, timeOut *string) validator.ValidationErrors {
	if timeIn != nil && *timeIn != "" {
		if _, _, ok := validator.ParseTimeOfDay(*timeIn); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "time_in",
				Message: "time_in must be in HH:MM format",
			})
		}
	}
	if timeOut != nil && *timeOut != "" {
		if _, _, ok := validator.ParseTimeOfDay(*timeOut); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "time_out",
				Message: "time_out must be in HH:MM format",
			})
		}
	}
	return errs
}

func (r *ManualAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	} else if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}
	errs = validateTimes(errs, r.TimeIn, r.TimeOut)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// EditAttendanceRequest changes an existing record. Nil fields keep their value,
// an empty string clears the time.
type EditAttendanceRequest struct {
	ID      string  `json:"-"`
	TimeIn  *string `json:"time_in,omitempty"`
	TimeOut *string `json:"time_out,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

func (r *EditAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	errs = validateTimes(errs, r.TimeIn, r.TimeOut)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SheetRequest struct {
	Date      *string `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
	CompanyID *string `json:"company_id,omitempty"`
	Search    string  `json:"search,omitempty"`
}

func (r *SheetRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Date != nil && *r.Date != "" {
		if _, ok := validator.IsValidDate(*r.Date); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SheetRowResponse struct {
	EmployeeID    string  `json:"employee_id"`
	EmployeeName  string  `json:"employee_name"`
	JobTitle      *string `json:"job_title,omitempty"`
	CompanyID     string  `json:"company_id"`
	CompanyName   string  `json:"company_name"`
	AttendanceID  *string `json:"attendance_id,omitempty"`
	TimeIn        *string `json:"time_in,omitempty"`
	TimeOut       *string `json:"time_out,omitempty"`
	IsPresent     bool    `json:"is_present"`
	IsManualEntry bool    `json:"is_manual_entry"`
	Notes         *string `json:"notes,omitempty"`
}

func (r SheetRow) ToResponse() SheetRowResponse {
	resp := SheetRowResponse{
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		JobTitle:     r.JobTitle,
		CompanyID:    r.CompanyID,
		CompanyName:  r.CompanyName,
	}
	if a := r.Attendance; a != nil {
		id := a.ID
		resp.AttendanceID = &id
		resp.TimeIn = formatTimestamp(a.TimeIn)
		resp.TimeOut = formatTimestamp(a.TimeOut)
		resp.IsPresent = a.TimeIn != nil
		resp.IsManualEntry = a.IsManualEntry
		resp.Notes = a.Notes
	}
	return resp
}

type SheetResponse struct {
	Date         string             `json:"date"`
	DayName      string             `json:"day_name"`
	PresentCount int                `json:"present_count"`
	AbsentCount  int                `json:"absent_count"`
	Rows         []SheetRowResponse `json:"rows"`
}

type TodayStatusResponse struct {
	Date       string  `json:"date"`
	CheckedIn  bool    `json:"checked_in"`
	CheckedOut bool    `json:"checked_out"`
	TimeIn     *string `json:"time_in,omitempty"`
	TimeOut    *string `json:"time_out,omitempty"`
}
