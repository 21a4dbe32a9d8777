package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/access"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/attendance"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/auth"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/company"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/employee"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/report"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/task"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/storage"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var quotaErr *company.QuotaExceededError
	if errors.As(err, &quotaErr) {
		QuotaExceeded(w, quotaErr.Resource, quotaErr.Allowed)
		return
	}

	var limited *auth.RateLimitedError
	if errors.As(err, &limited) {
		TooManyRequests(w, auth.ErrTooManyAttempts.Error(), limited.RetryAfter)
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrRefreshTokenRevoked),
		errors.Is(err, auth.ErrRefreshTokenCookieNotFound),
		errors.Is(err, auth.ErrRefreshTokenCookieEmpty),
		errors.Is(err, auth.ErrOAuthStateMismatch):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrAccountSuspended),
		errors.Is(err, auth.ErrGoogleEmailNotVerified):
		Forbidden(w, err.Error())
	case errors.Is(err, auth.ErrTooManyAttempts):
		TooManyRequests(w, err.Error(), 0)
	case errors.Is(err, auth.ErrWrongCurrentPassword):
		BadRequest(w, err.Error(), nil)

	// Scope and role errors
	case errors.Is(err, access.ErrPermissionDenied),
		errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, user.ErrCannotModifyHigherRole),
		errors.Is(err, user.ErrCannotModifySelf),
		errors.Is(err, employee.ErrRoleNotAllowed),
		errors.Is(err, attendance.ErrEmployeeNotEligible),
		errors.Is(err, company.ErrCompanySuspended),
		errors.Is(err, company.ErrSubscriptionTermsLocked),
		errors.Is(err, user.ErrUserSuspended):
		Forbidden(w, err.Error())

	// Not found
	case errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, company.ErrCompanyNotFound),
		errors.Is(err, attendance.ErrAttendanceNotFound),
		errors.Is(err, task.ErrTaskNotFound),
		errors.Is(err, storage.ErrFileNotFound):
		NotFound(w, err.Error())

	// Conflicts
	case errors.Is(err, user.ErrUserEmailExists),
		errors.Is(err, company.ErrConcurrencyConflict),
		errors.Is(err, task.ErrConcurrencyConflict),
		errors.Is(err, attendance.ErrNoOpenSession),
		errors.Is(err, company.ErrNestingTooDeep):
		Conflict(w, err.Error())

	// Unprocessable input the validators cannot see
	case errors.Is(err, employee.ErrCompanyRequired),
		errors.Is(err, employee.ErrCompanyNotAllowed),
		errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, user.ErrCompanyIDRequired),
		errors.Is(err, attendance.ErrEmptyManualEntry),
		errors.Is(err, attendance.ErrTimeOutBeforeTimeIn),
		errors.Is(err, task.ErrInvalidAssignee),
		errors.Is(err, task.ErrInvalidStatus),
		errors.Is(err, company.ErrTermsExceedParent),
		errors.Is(err, company.ErrFileTypeNotAllowed),
		errors.Is(err, company.ErrFileSizeExceeds),
		errors.Is(err, report.ErrInvalidReportType),
		errors.Is(err, report.ErrInvalidDateRange),
		errors.Is(err, report.ErrInvalidFormat),
		errors.Is(err, storage.ErrInvalidPath):
		writeJSON(w, http.StatusUnprocessableEntity, Response{
			Success: false,
			Error: &ErrorDetail{
				Code:    "UNPROCESSABLE_ENTITY",
				Message: err.Error(),
			},
		})

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
