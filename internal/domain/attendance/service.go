package attendance

import (
	"context"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// CheckIn records the caller's arrival today. Repeating it is a no-op.
	CheckIn(ctx context.Context, caller user.Caller) (AttendanceResponse, error)

	// CheckOut closes the caller's open session for today.
	CheckOut(ctx context.Context, caller user.Caller) (AttendanceResponse, error)

	// RecordManual creates or overwrites an employee's record for a date.
	RecordManual(ctx context.Context, caller user.Caller, req ManualAttendanceRequest) (AttendanceResponse, error)

	// Edit changes the times and notes of an existing record.
	Edit(ctx context.Context, caller user.Caller, req EditAttendanceRequest) (AttendanceResponse, error)

	MyHistory(ctx context.Context, caller user.Caller, limit int) ([]AttendanceResponse, error)

	// Sheet lists every active employee in scope with the day's record.
	Sheet(ctx context.Context, caller user.Caller, filter SheetRequest) (SheetResponse, error)

	TodayStatus(ctx context.Context, caller user.Caller) (TodayStatusResponse, error)
}
