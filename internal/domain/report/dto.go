package report

import (
	"time"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/task"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/validator"
)

type Type string

const (
	TypeAttendance    Type = "attendance"
	TypeTasks         Type = "tasks"
	TypeSubscriptions Type = "subscriptions"
	TypeEmployees     Type = "employees"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeAttendance, TypeTasks, TypeSubscriptions, TypeEmployees:
		return true
	}
	return false
}

// AdminOnly reports are refused to employees.
func (t Type) AdminOnly() bool {
	return t == TypeSubscriptions || t == TypeEmployees
}

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

type ReportRequest struct {
	Type      Type
	Format    string
	From      *string // YYYY-MM-DD
	To        *string // YYYY-MM-DD
	CompanyID *string
	Search    string
}

func (r *ReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.Type.IsValid() {
		errs = append(errs, validator.ValidationError{Field: "type", Message: ErrInvalidReportType.Error()})
	}

	if r.Format == "" {
		r.Format = FormatJSON
	}
	if !validator.IsInSlice(r.Format, []string{FormatJSON, FormatCSV, FormatPDF}) {
		errs = append(errs, validator.ValidationError{Field: "format", Message: ErrInvalidFormat.Error()})
	}

	var from, to time.Time
	var okFrom, okTo bool
	if r.From != nil {
		if from, okFrom = validator.IsValidDate(*r.From); !okFrom {
			errs = append(errs, validator.ValidationError{Field: "from", Message: "from must be in YYYY-MM-DD format"})
		}
	}
	if r.To != nil {
		if to, okTo = validator.IsValidDate(*r.To); !okTo {
			errs = append(errs, validator.ValidationError{Field: "to", Message: "to must be in YYYY-MM-DD format"})
		}
	}
	if okFrom && okTo && to.Before(from) {
		errs = append(errs, validator.ValidationError{Field: "to", Message: ErrInvalidDateRange.Error()})
	}

	if r.CompanyID != nil && !validator.IsValidUUID(*r.CompanyID) {
		errs = append(errs, validator.ValidationError{Field: "company_id", Message: "company_id must be a valid UUID"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Range resolves the requested period. Missing bounds default to the first
// day of today's month and today. Call after Validate.
func (r *ReportRequest) Range(today time.Time) (from, to time.Time) {
	to = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	from = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	if r.From != nil {
		from, _ = validator.IsValidDate(*r.From)
	}
	if r.To != nil {
		to, _ = validator.IsValidDate(*r.To)
	}
	return from, to
}

// Report is a rendered table plus summary figures. Rows are keyed by header.
type Report struct {
	Type        Type                `json:"type"`
	Title       string              `json:"title"`
	From        string              `json:"from"`
	To          string              `json:"to"`
	GeneratedAt string              `json:"generated_at"`
	Headers     []string            `json:"headers"`
	Rows        []map[string]string `json:"rows"`
	Summary     map[string]string   `json:"summary"`
}

type AttendanceRow struct {
	EmployeeID    string
	EmployeeName  string
	CompanyName   *string
	Date          time.Time
	TimeIn        *time.Time
	TimeOut       *time.Time
	IsManualEntry bool
}

type TaskRow struct {
	TaskID       string
	Title        string
	AssigneeName string
	CompanyName  *string
	StartDate    time.Time
	DueDate      time.Time
	Status       task.Status
}

type SubscriptionRow struct {
	CompanyID             string
	CompanyName           string
	ParentCompanyID       *string
	SubscriptionEndDate   *time.Time
	AllowedEmployees      int
	EmployeeCount         int64
	TotalPricePerEmployee float64
	IsSuspended           bool
}

// Revenue is the billed amount for the allowed seats.
func (r SubscriptionRow) Revenue() float64 {
	return r.TotalPricePerEmployee * float64(r.AllowedEmployees)
}

type EmployeeRow struct {
	UserID      string
	FullName    string
	Email       string
	Role        user.Role
	CompanyName *string
	JobTitle    *string
	Status      string
	IsSuspended bool
	CreatedAt   time.Time
}
