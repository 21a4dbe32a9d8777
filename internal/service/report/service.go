package report

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/access"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/attendance"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/report"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/task"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
)

const dateLayout = "2006-01-02"

var titles = map[report.Type]string{
	report.TypeAttendance:    "Attendance Report",
	report.TypeTasks:         "Tasks Report",
	report.TypeSubscriptions: "Subscriptions Report",
	report.TypeEmployees:     "Employees Report",
}

type ReportServiceImpl struct {
	reportRepo report.ReportRepository
	resolver   access.Resolver

	now func() time.Time
	loc *time.Location
}

func NewReportService(reportRepo report.ReportRepository, resolver access.Resolver, loc *time.Location) *ReportServiceImpl {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportServiceImpl{
		reportRepo: reportRepo,
		resolver:   resolver,
		now:        time.Now,
		loc:        loc,
	}
}

// Generate builds the requested report over the caller's scope.
func (s *ReportServiceImpl) Generate(ctx context.Context, caller user.Caller, req report.ReportRequest) (report.Report, error) {
	if err := req.Validate(); err != nil {
		return report.Report{}, err
	}
	if req.Type.AdminOnly() && !caller.Role.IsManager() {
		return report.Report{}, access.ErrPermissionDenied
	}

	scope, err := s.resolver.ResolveScope(ctx, caller, req.CompanyID)
	if err != nil {
		return report.Report{}, err
	}

	today := attendance.CalendarDay(s.now(), s.loc)
	from, to := req.Range(today)
	filter := report.RowFilter{
		AllCompanies: scope.All,
		CompanyIDs:   scope.CompanyIDs,
		From:         from,
		To:           to,
		Search:       req.Search,
	}
	if scope.IsSelf() {
		filter.AllCompanies = true
		filter.UserID = &scope.UserID
	}

	out := report.Report{
		Type:        req.Type,
		Title:       titles[req.Type],
		From:        from.Format(dateLayout),
		To:          to.Format(dateLayout),
		GeneratedAt: s.now().In(s.loc).Format(time.RFC3339),
		Rows:        []map[string]string{},
		Summary:     map[string]string{},
	}

	switch req.Type {
	case report.TypeAttendance:
		err = s.attendance(ctx, scope, filter, &out)
	case report.TypeTasks:
		err = s.tasks(ctx, scope, filter, today, &out)
	case report.TypeSubscriptions:
		err = s.subscriptions(ctx, scope, filter, &out)
	case report.TypeEmployees:
		err = s.employees(ctx, scope, filter, &out)
	}
	if err != nil {
		return report.Report{}, err
	}
	return out, nil
}

func (s *ReportServiceImpl) clock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(s.loc).Format("15:04")
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func (s *ReportServiceImpl) attendance(ctx context.Context, scope access.Scope, f report.RowFilter, out *report.Report) error {
	out.Headers = []string{"Date", "Employee", "Company", "Time In", "Time Out", "Worked Hours", "Manual"}
	var rows []report.AttendanceRow
	if !scope.IsEmpty() {
		var err error
		if rows, err = s.reportRepo.AttendanceRows(ctx, f); err != nil {
			return fmt.Errorf("failed to get attendance rows: %w", err)
		}
	}

	var manual, present int
	var worked time.Duration
	for _, r := range rows {
		hours := ""
		if r.TimeIn != nil && r.TimeOut != nil {
			d := r.TimeOut.Sub(*r.TimeIn)
			worked += d
			hours = strconv.FormatFloat(d.Hours(), 'f', 2, 64)
		}
		if r.TimeIn != nil {
			present++
		}
		if r.IsManualEntry {
			manual++
		}
		out.Rows = append(out.Rows, map[string]string{
			"Date":         r.Date.Format(dateLayout),
			"Employee":     r.EmployeeName,
			"Company":      deref(r.CompanyName),
			"Time In":      s.clock(r.TimeIn),
			"Time Out":     s.clock(r.TimeOut),
			"Worked Hours": hours,
			"Manual":       strconv.FormatBool(r.IsManualEntry),
		})
	}

	out.Summary["records"] = strconv.Itoa(len(rows))
	out.Summary["present"] = strconv.Itoa(present)
	out.Summary["manual_entries"] = strconv.Itoa(manual)
	out.Summary["worked_hours"] = strconv.FormatFloat(worked.Hours(), 'f', 2, 64)
	return nil
}

func (s *ReportServiceImpl) tasks(ctx context.Context, scope access.Scope, f report.RowFilter, today time.Time, out *report.Report) error {
	out.Headers = []string{"Title", "Assignee", "Company", "Start Date", "Due Date", "Status", "Late"}
	var rows []report.TaskRow
	if !scope.IsEmpty() {
		var err error
		if rows, err = s.reportRepo.TaskRows(ctx, f); err != nil {
			return fmt.Errorf("failed to get task rows: %w", err)
		}
	}

	var completed, late int
	for _, r := range rows {
		t := task.WorkTask{DueDate: r.DueDate, Status: r.Status}
		isLate := t.IsLate(today)
		if t.Completed() {
			completed++
		}
		if isLate {
			late++
		}
		out.Rows = append(out.Rows, map[string]string{
			"Title":      r.Title,
			"Assignee":   r.AssigneeName,
			"Company":    deref(r.CompanyName),
			"Start Date": r.StartDate.Format(dateLayout),
			"Due Date":   r.DueDate.Format(dateLayout),
			"Status":     string(r.Status),
			"Late":       strconv.FormatBool(isLate),
		})
	}

	out.Summary["tasks"] = strconv.Itoa(len(rows))
	out.Summary["completed"] = strconv.Itoa(completed)
	out.Summary["late"] = strconv.Itoa(late)
	return nil
}

func (s *ReportServiceImpl) subscriptions(ctx context.Context, scope access.Scope, f report.RowFilter, out *report.Report) error {
	out.Headers = []string{"Company", "Type", "End Date", "Allowed Employees", "Employees", "Price Per Employee", "Revenue", "Suspended"}
	var rows []report.SubscriptionRow
	if !scope.IsEmpty() {
		var err error
		if rows, err = s.reportRepo.SubscriptionRows(ctx, f); err != nil {
			return fmt.Errorf("failed to get subscription rows: %w", err)
		}
	}

	var revenue float64
	var suspended int
	for _, r := range rows {
		kind := "main"
		if r.ParentCompanyID != nil {
			kind = "sub"
		}
		end := ""
		if r.SubscriptionEndDate != nil {
			end = r.SubscriptionEndDate.Format(dateLayout)
		}
		revenue += r.Revenue()
		if r.IsSuspended {
			suspended++
		}
		out.Rows = append(out.Rows, map[string]string{
			"Company":            r.CompanyName,
			"Type":               kind,
			"End Date":           end,
			"Allowed Employees":  strconv.Itoa(r.AllowedEmployees),
			"Employees":          strconv.FormatInt(r.EmployeeCount, 10),
			"Price Per Employee": strconv.FormatFloat(r.TotalPricePerEmployee, 'f', 2, 64),
			"Revenue":            strconv.FormatFloat(r.Revenue(), 'f', 2, 64),
			"Suspended":          strconv.FormatBool(r.IsSuspended),
		})
	}

	out.Summary["companies"] = strconv.Itoa(len(rows))
	out.Summary["suspended"] = strconv.Itoa(suspended)
	out.Summary["total_revenue"] = strconv.FormatFloat(revenue, 'f', 2, 64)
	return nil
}

func (s *ReportServiceImpl) employees(ctx context.Context, scope access.Scope, f report.RowFilter, out *report.Report) error {
	out.Headers = []string{"Name", "Email", "Role", "Company", "Job Title", "Status", "Suspended", "Joined"}
	var rows []report.EmployeeRow
	if !scope.IsEmpty() {
		var err error
		if rows, err = s.reportRepo.EmployeeRows(ctx, f); err != nil {
			return fmt.Errorf("failed to get employee rows: %w", err)
		}
	}

	var suspended int
	for _, r := range rows {
		if r.IsSuspended {
			suspended++
		}
		out.Rows = append(out.Rows, map[string]string{
			"Name":      r.FullName,
			"Email":     r.Email,
			"Role":      string(r.Role),
			"Company":   deref(r.CompanyName),
			"Job Title": deref(r.JobTitle),
			"Status":    r.Status,
			"Suspended": strconv.FormatBool(r.IsSuspended),
			"Joined":    r.CreatedAt.In(s.loc).Format(dateLayout),
		})
	}

	out.Summary["users"] = strconv.Itoa(len(rows))
	out.Summary["suspended"] = strconv.Itoa(suspended)
	return nil
}
