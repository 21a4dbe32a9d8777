package task

import (
	"context"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
)

type TaskService interface {
	Create(ctx context.Context, caller user.Caller, req CreateTaskRequest) (TaskResponse, error)
	Update(ctx context.Context, caller user.Caller, id string, req UpdateTaskRequest) (TaskResponse, error)
	// UpdateStatus is allowed for the assignee and for managers whose scope holds the task.
	UpdateStatus(ctx context.Context, caller user.Caller, id string, req UpdateStatusRequest) (TaskResponse, error)
	Complete(ctx context.Context, caller user.Caller, id string) (TaskResponse, error)
	GetByID(ctx context.Context, caller user.Caller, id string) (TaskResponse, error)
	List(ctx context.Context, caller user.Caller, filter TaskFilter) (ListTaskResponse, error)
	Delete(ctx context.Context, caller user.Caller, id string) error
	UploadAttachment(ctx context.Context, caller user.Caller, req UploadAttachmentRequest) (TaskResponse, error)
}
