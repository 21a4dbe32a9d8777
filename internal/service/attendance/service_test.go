package attendance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/access"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/attendance"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/company"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/metrics"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/repository/memory"
	accessservice "github.com/nabd-altamayyuz/hr-backend-go/internal/service/access"
)

var riyadh = time.FixedZone("AST", 3*60*60)

func strPtr(s string) *string { return &s }

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

type env struct {
	svc      *AttendanceServiceImpl
	store    *memory.Store
	metrics  *metrics.Metrics
	company  company.Company
	other    company.Company
	admin    user.Caller
	employee user.Caller
	clock    time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	co, err := store.Companies().Create(context.Background(), company.Company{Name: "Acme"})
	require.NoError(t, err)
	other, err := store.Companies().Create(context.Background(), company.Company{Name: "Other"})
	require.NoError(t, err)

	admin, err := store.Users().Create(context.Background(), user.User{FullName: "Admin", Email: "admin@acme.sa", Role: user.RoleCompanyAdmin, CompanyID: &co.ID})
	require.NoError(t, err)
	emp, err := store.Users().Create(context.Background(), user.User{FullName: "Layla", Email: "layla@acme.sa", Role: user.RoleEmployee, CompanyID: &co.ID})
	require.NoError(t, err)

	m := metrics.New()
	e := &env{
		store:    store,
		metrics:  m,
		company:  co,
		other:    other,
		admin:    user.Caller{UserID: admin.ID, Role: user.RoleCompanyAdmin, CompanyID: &co.ID},
		employee: user.Caller{UserID: emp.ID, Role: user.RoleEmployee, CompanyID: &co.ID},
		clock:    time.Date(2025, 3, 10, 5, 0, 0, 0, time.UTC), // 08:00 in Riyadh
	}
	e.svc = NewAttendanceService(store.Attendances(), store.Users(), accessservice.NewResolver(store.Companies()), m, riyadh)
	e.svc.now = func() time.Time { return e.clock }
	return e
}

func TestCheckIn_Idempotent(t *testing.T) {
	e := newEnv(t)

	first, err := e.svc.CheckIn(context.Background(), e.employee)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", first.Date)
	assert.Equal(t, "Monday", first.DayName)
	require.NotNil(t, first.TimeIn)

	e.clock = e.clock.Add(2 * time.Hour)
	second, err := e.svc.CheckIn(context.Background(), e.employee)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.TimeIn, second.TimeIn)

	history, err := e.svc.MyHistory(context.Background(), e.employee, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestCheckIn_ConcurrentCallsKeepOneRow(t *testing.T) {
	e := newEnv(t)

	var wg sync.WaitGroup
	ids := make(chan string, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := e.svc.CheckIn(context.Background(), e.employee)
			if assert.NoError(t, err) {
				ids <- resp.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		seen[id] = true
	}
	assert.Len(t, seen, 1)

	history, err := e.svc.MyHistory(context.Background(), e.employee, 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)
	assert.Contains(t, scrape(t, e.metrics), `hr_attendance_events_total{event="check_in"} 1`)
	assert.Contains(t, scrape(t, e.metrics), `hr_attendance_events_total{event="check_in_repeat"} 9`)
}

func TestCheckIn_UsesConfiguredTimezone(t *testing.T) {
	e := newEnv(t)
	e.clock = time.Date(2025, 3, 10, 22, 30, 0, 0, time.UTC) // already 11 March in Riyadh

	resp, err := e.svc.CheckIn(context.Background(), e.employee)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-11", resp.Date)
	assert.Equal(t, "Tuesday", resp.DayName)
}

func TestCheckIn_Eligibility(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.CheckIn(context.Background(), user.Caller{UserID: "root", Role: user.RoleSuperAdmin})
	assert.ErrorIs(t, err, attendance.ErrEmployeeNotEligible)

	require.NoError(t, e.store.Users().SetSuspended(context.Background(), e.employee.UserID, true))
	_, err = e.svc.CheckIn(context.Background(), e.employee)
	assert.ErrorIs(t, err, attendance.ErrEmployeeNotEligible)

	resp, err := e.svc.CheckIn(context.Background(), e.admin)
	require.NoError(t, err)
	assert.Equal(t, e.admin.UserID, resp.EmployeeID)
}

func TestCheckOut(t *testing.T) {
	e := newEnv(t)

	t.Run("without a session nothing is created", func(t *testing.T) {
		_, err := e.svc.CheckOut(context.Background(), e.employee)
		assert.ErrorIs(t, err, attendance.ErrNoOpenSession)

		status, err := e.svc.TodayStatus(context.Background(), e.employee)
		require.NoError(t, err)
		assert.False(t, status.CheckedIn)
		assert.False(t, status.CheckedOut)
	})

	t.Run("closes the open session once", func(t *testing.T) {
		_, err := e.svc.CheckIn(context.Background(), e.employee)
		require.NoError(t, err)

		e.clock = e.clock.Add(8*time.Hour + 30*time.Minute)
		out, err := e.svc.CheckOut(context.Background(), e.employee)
		require.NoError(t, err)
		require.NotNil(t, out.TimeOut)
		assert.Equal(t, 510, out.WorkedMinutes)

		_, err = e.svc.CheckOut(context.Background(), e.employee)
		assert.ErrorIs(t, err, attendance.ErrNoOpenSession)

		status, err := e.svc.TodayStatus(context.Background(), e.employee)
		require.NoError(t, err)
		assert.True(t, status.CheckedIn)
		assert.True(t, status.CheckedOut)
	})
}

func TestRecordManual(t *testing.T) {
	e := newEnv(t)

	t.Run("creates a manual entry in local time", func(t *testing.T) {
		resp, err := e.svc.RecordManual(context.Background(), e.admin, attendance.ManualAttendanceRequest{
			EmployeeID: e.employee.UserID, Date: "2025-03-05", TimeIn: strPtr("08:15"), TimeOut: strPtr("16:45"),
		})
		require.NoError(t, err)
		assert.True(t, resp.IsManualEntry)
		assert.Equal(t, "2025-03-05T08:15:00+03:00", *resp.TimeIn)
		assert.Equal(t, 510, resp.WorkedMinutes)
	})

	t.Run("overwrites the same day and keeps omitted times", func(t *testing.T) {
		resp, err := e.svc.RecordManual(context.Background(), e.admin, attendance.ManualAttendanceRequest{
			EmployeeID: e.employee.UserID, Date: "2025-03-05", TimeOut: strPtr("17:00"), Notes: strPtr("late shift"),
		})
		require.NoError(t, err)
		assert.Equal(t, "2025-03-05T08:15:00+03:00", *resp.TimeIn)
		assert.Equal(t, "2025-03-05T17:00:00+03:00", *resp.TimeOut)
		assert.Equal(t, "late shift", *resp.Notes)

		history, err := e.svc.MyHistory(context.Background(), e.employee, 30)
		require.NoError(t, err)
		assert.Len(t, history, 1)
	})

	t.Run("nothing to save", func(t *testing.T) {
		_, err := e.svc.RecordManual(context.Background(), e.admin, attendance.ManualAttendanceRequest{
			EmployeeID: e.employee.UserID, Date: "2025-03-06",
		})
		assert.ErrorIs(t, err, attendance.ErrEmptyManualEntry)
	})

	t.Run("time out before time in", func(t *testing.T) {
		_, err := e.svc.RecordManual(context.Background(), e.admin, attendance.ManualAttendanceRequest{
			EmployeeID: e.employee.UserID, Date: "2025-03-07", TimeIn: strPtr("10:00"), TimeOut: strPtr("09:00"),
		})
		assert.ErrorIs(t, err, attendance.ErrTimeOutBeforeTimeIn)
	})

	t.Run("employees cannot record", func(t *testing.T) {
		_, err := e.svc.RecordManual(context.Background(), e.employee, attendance.ManualAttendanceRequest{
			EmployeeID: e.employee.UserID, Date: "2025-03-07", TimeIn: strPtr("10:00"),
		})
		assert.ErrorIs(t, err, access.ErrPermissionDenied)
	})

	t.Run("target outside scope", func(t *testing.T) {
		outsider, err := e.store.Users().Create(context.Background(), user.User{FullName: "Out", Email: "out@o.sa", Role: user.RoleEmployee, CompanyID: &e.other.ID})
		require.NoError(t, err)
		_, err = e.svc.RecordManual(context.Background(), e.admin, attendance.ManualAttendanceRequest{
			EmployeeID: outsider.ID, Date: "2025-03-07", TimeIn: strPtr("10:00"),
		})
		assert.ErrorIs(t, err, access.ErrPermissionDenied)
	})
}

func TestEdit(t *testing.T) {
	e := newEnv(t)
	in, err := e.svc.CheckIn(context.Background(), e.employee)
	require.NoError(t, err)

	edited, err := e.svc.Edit(context.Background(), e.admin, attendance.EditAttendanceRequest{ID: in.ID, TimeIn: strPtr("07:30"), TimeOut: strPtr("15:30")})
	require.NoError(t, err)
	assert.True(t, edited.IsManualEntry)
	assert.Equal(t, "2025-03-10T07:30:00+03:00", *edited.TimeIn)

	cleared, err := e.svc.Edit(context.Background(), e.admin, attendance.EditAttendanceRequest{ID: in.ID, TimeOut: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, cleared.TimeOut)

	_, err = e.svc.Edit(context.Background(), e.admin, attendance.EditAttendanceRequest{ID: in.ID, TimeOut: strPtr("06:00")})
	assert.ErrorIs(t, err, attendance.ErrTimeOutBeforeTimeIn)

	_, err = e.svc.Edit(context.Background(), e.admin, attendance.EditAttendanceRequest{ID: "0191f3e4-0000-7000-8000-00000000ffff", Notes: strPtr("x")})
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestSheet(t *testing.T) {
	e := newEnv(t)
	_, err := e.store.Users().Create(context.Background(), user.User{FullName: "Absent Ali", Email: "ali@acme.sa", Role: user.RoleEmployee, CompanyID: &e.company.ID})
	require.NoError(t, err)
	suspended, err := e.store.Users().Create(context.Background(), user.User{FullName: "Gone", Email: "gone@acme.sa", Role: user.RoleEmployee, CompanyID: &e.company.ID})
	require.NoError(t, err)
	require.NoError(t, e.store.Users().SetSuspended(context.Background(), suspended.ID, true))
	_, err = e.store.Users().Create(context.Background(), user.User{FullName: "Elsewhere", Email: "x@o.sa", Role: user.RoleEmployee, CompanyID: &e.other.ID})
	require.NoError(t, err)

	_, err = e.svc.CheckIn(context.Background(), e.employee)
	require.NoError(t, err)

	sheet, err := e.svc.Sheet(context.Background(), e.admin, attendance.SheetRequest{})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", sheet.Date)
	assert.Equal(t, 1, sheet.PresentCount)
	assert.Equal(t, 1, sheet.AbsentCount)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "Absent Ali", sheet.Rows[0].EmployeeName)
	assert.False(t, sheet.Rows[0].IsPresent)
	assert.True(t, sheet.Rows[1].IsPresent)

	other, err := e.svc.Sheet(context.Background(), e.admin, attendance.SheetRequest{Date: strPtr("2025-03-09")})
	require.NoError(t, err)
	assert.Equal(t, 0, other.PresentCount)

	_, err = e.svc.Sheet(context.Background(), e.employee, attendance.SheetRequest{})
	assert.ErrorIs(t, err, access.ErrPermissionDenied)
}
