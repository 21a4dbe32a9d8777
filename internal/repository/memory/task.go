package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/task"
)

type TaskRepository struct {
	s *Store
}

func (s *Store) Tasks() *TaskRepository {
	return &TaskRepository{s: s}
}

// withAssignee fills the joined assignee columns. Callers hold mu.
func (s *Store) withAssignee(t task.WorkTask) task.WorkTask {
	t.AssigneeName, t.AssigneeCompanyID = nil, nil
	if u, ok := s.users[t.AssignedToID]; ok {
		name := u.FullName
		t.AssigneeName = &name
		t.AssigneeCompanyID = u.CompanyID
	}
	return t
}

func (r *TaskRepository) Create(_ context.Context, t task.WorkTask) (task.WorkTask, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[t.AssignedToID]; !ok {
		return task.WorkTask{}, pgx.ErrNoRows
	}
	if t.Status == "" {
		t.Status = task.StatusPending
	}
	t.ID = newID()
	t.StatusReason = nil
	t.AttachmentPath = nil
	now := r.s.tick()
	t.CreatedAt, t.UpdatedAt = now, now
	r.s.tasks[t.ID] = t
	return r.s.withAssignee(t), nil
}

func (r *TaskRepository) GetByID(_ context.Context, id string) (task.WorkTask, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tasks[id]
	if !ok {
		return task.WorkTask{}, pgx.ErrNoRows
	}
	return r.s.withAssignee(t), nil
}

func (r *TaskRepository) Update(_ context.Context, t task.WorkTask, expectedUpdatedAt time.Time) (task.WorkTask, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.tasks[t.ID]
	if !ok || !stored.UpdatedAt.Equal(expectedUpdatedAt) {
		return task.WorkTask{}, pgx.ErrNoRows
	}
	stored.Title = t.Title
	stored.Description = t.Description
	stored.AssignedToID = t.AssignedToID
	stored.StartDate = t.StartDate
	stored.DueDate = t.DueDate
	stored.UpdatedAt = r.s.tick()
	r.s.tasks[t.ID] = stored
	return r.s.withAssignee(stored), nil
}

func (r *TaskRepository) UpdateStatus(_ context.Context, id string, status task.Status, reason *string) (task.WorkTask, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tasks[id]
	if !ok {
		return task.WorkTask{}, pgx.ErrNoRows
	}
	t.Status = status
	t.StatusReason = reason
	t.UpdatedAt = r.s.tick()
	r.s.tasks[id] = t
	return r.s.withAssignee(t), nil
}

func (r *TaskRepository) UpdateAttachment(_ context.Context, id, path string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tasks[id]
	if !ok {
		return pgx.ErrNoRows
	}
	t.AttachmentPath = &path
	t.UpdatedAt = r.s.tick()
	r.s.tasks[id] = t
	return nil
}

func (r *TaskRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.tasks, id)
	return nil
}

func (r *TaskRepository) List(_ context.Context, filter task.ListFilter) ([]task.WorkTask, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matched := make([]task.WorkTask, 0)
	for _, t := range r.s.tasks {
		t = r.s.withAssignee(t)
		if !inScope(filter.AllCompanies, filter.CompanyIDs, t.AssigneeCompanyID) {
			continue
		}
		if filter.AssigneeID != nil && t.AssignedToID != *filter.AssigneeID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.OpenOnly && (t.Status == task.StatusCompleted || t.Status == task.StatusCancelled) {
			continue
		}
		if filter.LateBefore != nil && (!t.DueDate.Before(*filter.LateBefore) || t.Completed()) {
			continue
		}
		if !containsFold(filter.Search, &t.Title, t.AssigneeName) {
			continue
		}
		matched = append(matched, t)
	}
	slices.SortFunc(matched, func(a, b task.WorkTask) int {
		if c := a.DueDate.Compare(b.DueDate); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return paginate(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}
