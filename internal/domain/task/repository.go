package task

import (
	"context"
	"time"
)

type ListFilter struct {
	AllCompanies bool
	CompanyIDs   []string
	AssigneeID   *string
	Status       *Status
	OpenOnly     bool
	// LateBefore keeps tasks due before this day that are not completed.
	LateBefore *time.Time
	Search     string
	Page       int
	Limit      int
}

type TaskRepository interface {
	Create(ctx context.Context, t WorkTask) (WorkTask, error)
	GetByID(ctx context.Context, id string) (WorkTask, error)
	// Update writes every mutable column when updated_at still equals expectedUpdatedAt.
	Update(ctx context.Context, t WorkTask, expectedUpdatedAt time.Time) (WorkTask, error)
	UpdateStatus(ctx context.Context, id string, status Status, reason *string) (WorkTask, error)
	UpdateAttachment(ctx context.Context, id, path string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]WorkTask, int64, error)
}
