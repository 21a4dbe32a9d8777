package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/access"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/company"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/task"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/repository/postgresql"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/service/file"
)

type TaskServiceImpl struct {
	task.TaskRepository
	user.UserRepository
	transactor  postgresql.Transactor
	resolver    access.Resolver
	fileService file.FileService

	now func() time.Time
	loc *time.Location
}

func NewTaskService(
	transactor postgresql.Transactor,
	taskRepository task.TaskRepository,
	userRepository user.UserRepository,
	resolver access.Resolver,
	fileService file.FileService,
	loc *time.Location,
) *TaskServiceImpl {
	if loc == nil {
		loc = time.UTC
	}
	return &TaskServiceImpl{
		TaskRepository: taskRepository,
		UserRepository: userRepository,
		transactor:     transactor,
		resolver:       resolver,
		fileService:    fileService,
		now:            time.Now,
		loc:            loc,
	}
}

func (s *TaskServiceImpl) today() time.Time {
	y, m, d := s.now().In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *TaskServiceImpl) toResponse(t task.WorkTask) task.TaskResponse {
	resp := t.ToResponse(s.today())
	if t.AttachmentPath != nil {
		url := s.fileService.GetFileURL(*t.AttachmentPath)
		resp.AttachmentPath = &url
	}
	return resp
}

func (s *TaskServiceImpl) managerScope(ctx context.Context, caller user.Caller) (access.Scope, error) {
	if !caller.Role.IsManager() {
		return access.Scope{}, access.ErrPermissionDenied
	}
	return s.resolver.ResolveScope(ctx, caller, nil)
}

// checkAssignee requires an active employee inside scope.
func (s *TaskServiceImpl) checkAssignee(ctx context.Context, scope access.Scope, assigneeID string) error {
	assignee, err := s.UserRepository.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.ErrInvalidAssignee
		}
		return fmt.Errorf("failed to get assignee: %w", err)
	}
	if err := scope.RequireUser(assignee); err != nil {
		return err
	}
	if assignee.Role != user.RoleEmployee || assignee.IsSuspended {
		return task.ErrInvalidAssignee
	}
	return nil
}

func (s *TaskServiceImpl) getTask(ctx context.Context, id string) (task.WorkTask, error) {
	t, err := s.TaskRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.WorkTask{}, task.ErrTaskNotFound
		}
		return task.WorkTask{}, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// visibleTask loads a task that is assigned to the caller or lies in the caller's scope.
func (s *TaskServiceImpl) visibleTask(ctx context.Context, caller user.Caller, id string) (task.WorkTask, error) {
	t, err := s.getTask(ctx, id)
	if err != nil {
		return task.WorkTask{}, err
	}
	if t.AssignedToID == caller.UserID {
		return t, nil
	}
	scope, err := s.managerScope(ctx, caller)
	if err != nil {
		return task.WorkTask{}, err
	}
	if err := scope.RequireCompany(t.AssigneeCompanyID); err != nil {
		return task.WorkTask{}, err
	}
	return t, nil
}

// managedTask loads a task the caller administers.
func (s *TaskServiceImpl) managedTask(ctx context.Context, caller user.Caller, id string) (task.WorkTask, access.Scope, error) {
	scope, err := s.managerScope(ctx, caller)
	if err != nil {
		return task.WorkTask{}, access.Scope{}, err
	}
	t, err := s.getTask(ctx, id)
	if err != nil {
		return task.WorkTask{}, access.Scope{}, err
	}
	if err := scope.RequireCompany(t.AssigneeCompanyID); err != nil {
		return task.WorkTask{}, access.Scope{}, err
	}
	return t, scope, nil
}

func (s *TaskServiceImpl) Create(ctx context.Context, caller user.Caller, req task.CreateTaskRequest) (task.TaskResponse, error) {
	if err := req.Validate(); err != nil {
		return task.TaskResponse{}, err
	}
	if req.FileHeader != nil {
		if err := company.ValidateAttachment(req.FileHeader); err != nil {
			return task.TaskResponse{}, err
		}
	}
	scope, err := s.managerScope(ctx, caller)
	if err != nil {
		return task.TaskResponse{}, err
	}
	if err := s.checkAssignee(ctx, scope, req.AssignedToID); err != nil {
		return task.TaskResponse{}, err
	}

	var created task.WorkTask
	var uploaded string
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		created, err = s.TaskRepository.Create(ctx, req.ToTask(caller.UserID))
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		if req.File == nil || req.FileHeader == nil {
			return nil
		}

		uploaded, err = s.fileService.UploadTaskAttachment(ctx, created.ID, req.File, req.FileHeader.Filename)
		if err != nil {
			return err
		}
		if err := s.TaskRepository.UpdateAttachment(ctx, created.ID, uploaded); err != nil {
			return fmt.Errorf("failed to save task attachment: %w", err)
		}
		created.AttachmentPath = &uploaded
		return nil
	})
	if err != nil {
		if uploaded != "" {
			_ = s.fileService.DeleteFile(ctx, uploaded)
		}
		return task.TaskResponse{}, err
	}

	slog.Info("task created", "task_id", created.ID, "assignee", created.AssignedToID, "by", caller.UserID)
	return s.toResponse(created), nil
}

func (s *TaskServiceImpl) Update(ctx context.Context, caller user.Caller, id string, req task.UpdateTaskRequest) (task.TaskResponse, error) {
	if err := req.Validate(); err != nil {
		return task.TaskResponse{}, err
	}
	t, scope, err := s.managedTask(ctx, caller, id)
	if err != nil {
		return task.TaskResponse{}, err
	}
	if req.AssignedToID != t.AssignedToID {
		if err := s.checkAssignee(ctx, scope, req.AssignedToID); err != nil {
			return task.TaskResponse{}, err
		}
	}

	expected := t.UpdatedAt
	if req.UpdatedAt != nil {
		expected = *req.UpdatedAt
	}
	req.ApplyTo(&t)

	updated, err := s.TaskRepository.Update(ctx, t, expected)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.TaskResponse{}, task.ErrConcurrencyConflict
		}
		return task.TaskResponse{}, fmt.Errorf("failed to update task: %w", err)
	}
	return s.toResponse(updated), nil
}

func (s *TaskServiceImpl) UpdateStatus(ctx context.Context, caller user.Caller, id string, req task.UpdateStatusRequest) (task.TaskResponse, error) {
	if err := req.Validate(); err != nil {
		return task.TaskResponse{}, err
	}
	t, err := s.visibleTask(ctx, caller, id)
	if err != nil {
		return task.TaskResponse{}, err
	}

	updated, err := s.TaskRepository.UpdateStatus(ctx, t.ID, req.Status, req.Reason)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.TaskResponse{}, task.ErrTaskNotFound
		}
		return task.TaskResponse{}, fmt.Errorf("failed to update task status: %w", err)
	}

	slog.Info("task status changed", "task_id", t.ID, "from", t.Status, "to", updated.Status, "by", caller.UserID)
	return s.toResponse(updated), nil
}

func (s *TaskServiceImpl) Complete(ctx context.Context, caller user.Caller, id string) (task.TaskResponse, error) {
	return s.UpdateStatus(ctx, caller, id, task.UpdateStatusRequest{Status: task.StatusCompleted})
}

func (s *TaskServiceImpl) GetByID(ctx context.Context, caller user.Caller, id string) (task.TaskResponse, error) {
	t, err := s.visibleTask(ctx, caller, id)
	if err != nil {
		return task.TaskResponse{}, err
	}
	return s.toResponse(t), nil
}

func (s *TaskServiceImpl) List(ctx context.Context, caller user.Caller, filter task.TaskFilter) (task.ListTaskResponse, error) {
	if err := filter.Validate(); err != nil {
		return task.ListTaskResponse{}, err
	}
	scope, err := s.resolver.ResolveScope(ctx, caller, filter.CompanyID)
	if err != nil {
		return task.ListTaskResponse{}, err
	}

	resp := task.ListTaskResponse{Page: filter.Page, Limit: filter.Limit, Tasks: []task.TaskResponse{}}
	if scope.IsEmpty() {
		return resp, nil
	}

	listFilter := task.ListFilter{
		AllCompanies: scope.All,
		CompanyIDs:   scope.CompanyIDs,
		AssigneeID:   filter.AssigneeID,
		Search:       filter.Search,
		Page:         filter.Page,
		Limit:        filter.Limit,
	}
	if scope.IsSelf() {
		listFilter.AllCompanies = true
		listFilter.AssigneeID = &scope.UserID
	}
	if filter.Status != nil {
		status := task.Status(*filter.Status)
		listFilter.Status = &status
	}
	if filter.LateOnly {
		today := s.today()
		listFilter.LateBefore = &today
	}

	tasks, total, err := s.TaskRepository.List(ctx, listFilter)
	if err != nil {
		return task.ListTaskResponse{}, fmt.Errorf("failed to list tasks: %w", err)
	}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, s.toResponse(t))
	}
	resp.TotalCount = total
	resp.TotalPages = int(math.Ceil(float64(total) / float64(filter.Limit)))
	return resp, nil
}

func (s *TaskServiceImpl) Delete(ctx context.Context, caller user.Caller, id string) error {
	t, _, err := s.managedTask(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.TaskRepository.Delete(ctx, t.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	s.fileService.ReplaceCleanup(ctx, t.AttachmentPath)
	return nil
}

func (s *TaskServiceImpl) UploadAttachment(ctx context.Context, caller user.Caller, req task.UploadAttachmentRequest) (task.TaskResponse, error) {
	if err := company.ValidateAttachment(req.FileHeader); err != nil {
		return task.TaskResponse{}, err
	}
	t, _, err := s.managedTask(ctx, caller, req.TaskID)
	if err != nil {
		return task.TaskResponse{}, err
	}

	path, err := s.fileService.UploadTaskAttachment(ctx, t.ID, req.File, req.FileHeader.Filename)
	if err != nil {
		return task.TaskResponse{}, err
	}
	if err := s.TaskRepository.UpdateAttachment(ctx, t.ID, path); err != nil {
		_ = s.fileService.DeleteFile(ctx, path)
		if errors.Is(err, pgx.ErrNoRows) {
			return task.TaskResponse{}, task.ErrTaskNotFound
		}
		return task.TaskResponse{}, fmt.Errorf("failed to save task attachment: %w", err)
	}
	s.fileService.ReplaceCleanup(ctx, t.AttachmentPath)

	t.AttachmentPath = &path
	return s.toResponse(t), nil
}
