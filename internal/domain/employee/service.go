package employee

import (
	"context"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
)

// EmployeeService manages the user accounts of companies.
type EmployeeService interface {
	// CreateEmployee enforces role rules, the duplicate email check and the employee quota.
	CreateEmployee(ctx context.Context, caller user.Caller, req CreateEmployeeRequest) (CreateEmployeeResponse, error)

	GetEmployee(ctx context.Context, caller user.Caller, id string) (user.UserResponse, error)

	UpdateEmployee(ctx context.Context, caller user.Caller, id string, req UpdateEmployeeRequest) (user.UserResponse, error)

	// DeleteEmployee removes the user with their attendance and tasks.
	DeleteEmployee(ctx context.Context, caller user.Caller, id string) error

	ListEmployees(ctx context.Context, caller user.Caller, filter EmployeeFilter) (ListEmployeeResponse, error)

	// SuspendEmployee toggles the suspension flag and returns the new value.
	SuspendEmployee(ctx context.Context, caller user.Caller, id string) (SuspendResponse, error)

	UploadAttachment(ctx context.Context, caller user.Caller, req UploadAttachmentRequest) (user.UserResponse, error)
}
