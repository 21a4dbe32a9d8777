package task

import (
	"mime/multipart"
	"time"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/validator"
)

type TaskResponse struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Description    *string `json:"description,omitempty"`
	AssignedToID   string  `json:"assigned_to_id"`
	AssigneeName   *string `json:"assignee_name,omitempty"`
	CreatedByID    string  `json:"created_by_id"`
	StartDate      string  `json:"start_date"`
	DueDate        string  `json:"due_date"`
	Status         Status  `json:"status"`
	StatusReason   *string `json:"status_reason,omitempty"`
	IsCompleted    bool    `json:"is_completed"`
	IsLate         bool    `json:"is_late"`
	AttachmentPath *string `json:"attachment_path,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// ToResponse derives completion and lateness relative to today.
func (t WorkTask) ToResponse(today time.Time) TaskResponse {
	return TaskResponse{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		AssignedToID:   t.AssignedToID,
		AssigneeName:   t.AssigneeName,
		CreatedByID:    t.CreatedByID,
		StartDate:      t.StartDate.Format("2006-01-02"),
		DueDate:        t.DueDate.Format("2006-01-02"),
		Status:         t.Status,
		StatusReason:   t.StatusReason,
		IsCompleted:    t.Completed(),
		IsLate:         t.IsLate(today),
		AttachmentPath: t.AttachmentPath,
		CreatedAt:      t.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:      t.UpdatedAt.Format(time.RFC3339Nano),
	}
}

type TaskFields struct {
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
	AssignedToID string  `json:"assigned_to_id"`
	StartDate    string  `json:"start_date"` // YYYY-MM-DD
	DueDate      string  `json:"due_date"`   // YYYY-MM-DD
}

func (f *TaskFields) validate(errs validator.ValidationErrors) validator.ValidationErrors {
	if validator.IsEmpty(f.Title) {
		errs = append(errs, validator.ValidationError{
			Field:   "title",
			Message: "title is required",
		})
	} else if len(f.Title) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "title",
			Message: "title must not exceed 255 characters",
		})
	}
	if validator.IsEmpty(f.AssignedToID) {
		errs = append(errs, validator.ValidationError{
			Field:   "assigned_to_id",
			Message: "assigned_to_id is required",
		})
	}
	start, startOK := validator.IsValidDate(f.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	due, dueOK := validator.IsValidDate(f.DueDate)
	if !dueOK {
		errs = append(errs, validator.ValidationError{
			Field:   "due_date",
			Message: "due_date must be in YYYY-MM-DD format",
		})
	}
	if startOK && dueOK && due.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "due_date",
			Message: "due_date must not be before start_date",
		})
	}
	return errs
}

// apply assumes validate passed.
func (f TaskFields) apply(t *WorkTask) {
	t.Title = f.Title
	t.Description = f.Description
	t.AssignedToID = f.AssignedToID
	t.StartDate, _ = validator.IsValidDate(f.StartDate)
	t.DueDate, _ = validator.IsValidDate(f.DueDate)
}

type CreateTaskRequest struct {
	TaskFields
	File       multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}

func (r *CreateTaskRequest) Validate() error {
	var errs validator.ValidationErrors
	errs = r.TaskFields.validate(errs)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *CreateTaskRequest) ToTask(createdByID string) WorkTask {
	t := WorkTask{CreatedByID: createdByID, Status: StatusPending}
	r.TaskFields.apply(&t)
	return t
}

type UpdateTaskRequest struct {
	TaskFields
	// UpdatedAt is the version the client last read; a mismatch is a conflict.
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (r *UpdateTaskRequest) Validate() error {
	var errs validator.ValidationErrors
	errs = r.TaskFields.validate(errs)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *UpdateTaskRequest) ApplyTo(t *WorkTask) {
	r.TaskFields.apply(t)
}

type UpdateStatusRequest struct {
	Status Status  `json:"status"`
	Reason *string `json:"reason,omitempty"`
}

func (r *UpdateStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.Status.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: pending, completed, not_completed, delayed, cancelled",
		})
	}
	if r.Reason != nil && len(*r.Reason) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TaskFilter struct {
	CompanyID  *string `json:"company_id,omitempty"`
	AssigneeID *string `json:"assignee_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	LateOnly   bool    `json:"late_only"`
	Search     string  `json:"search,omitempty"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
}

func (f *TaskFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}
	if f.Status != nil && !Status(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: pending, completed, not_completed, delayed, cancelled",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListTaskResponse struct {
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
	Tasks      []TaskResponse `json:"tasks"`
}

type UploadAttachmentRequest struct {
	TaskID     string                `json:"-"`
	File       multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}
