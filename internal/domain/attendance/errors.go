package attendance

import "errors"

// Attendance domain errors
var (
	ErrNoOpenSession       = errors.New("no open attendance session for today")
	ErrAttendanceNotFound  = errors.New("attendance record not found")
	ErrEmptyManualEntry    = errors.New("manual entry needs a time in or a time out")
	ErrTimeOutBeforeTimeIn = errors.New("time out cannot be before time in")
	ErrEmployeeNotEligible = errors.New("attendance can only be recorded for active users of a company")
)
