package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/task"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/database"
)

type taskRepositoryImpl struct {
	db *database.DB
}

func NewTaskRepository(db *database.DB) task.TaskRepository {
	return &taskRepositoryImpl{db: db}
}

const taskColumns = `
	t.id, t.title, t.description, t.assigned_to_id, t.created_by_id, t.start_date, t.due_date,
	t.status, t.status_reason, t.attachment_path, t.created_at, t.updated_at,
	asg.full_name, asg.company_id`

const taskJoin = ` LEFT JOIN users asg ON asg.id = t.assigned_to_id`

func scanTask(row pgx.Row) (task.WorkTask, error) {
	var t task.WorkTask
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.AssignedToID, &t.CreatedByID, &t.StartDate, &t.DueDate,
		&t.Status, &t.StatusReason, &t.AttachmentPath, &t.CreatedAt, &t.UpdatedAt,
		&t.AssigneeName, &t.AssigneeCompanyID,
	)
	return t, err
}

func (r *taskRepositoryImpl) Create(ctx context.Context, newTask task.WorkTask) (task.WorkTask, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return task.WorkTask{}, err
	}
	if newTask.Status == "" {
		newTask.Status = task.StatusPending
	}

	query := `
		WITH t AS (
			INSERT INTO work_tasks (id, title, description, assigned_to_id, created_by_id, start_date, due_date, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING *
		)
		SELECT` + taskColumns + ` FROM t` + taskJoin

	created, err := scanTask(q.QueryRow(ctx, query,
		id, newTask.Title, newTask.Description, newTask.AssignedToID, newTask.CreatedByID,
		newTask.StartDate, newTask.DueDate, newTask.Status,
	))
	if err != nil {
		return task.WorkTask{}, fmt.Errorf("insert task: %w", err)
	}
	return created, nil
}

func (r *taskRepositoryImpl) GetByID(ctx context.Context, id string) (task.WorkTask, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT` + taskColumns + ` FROM work_tasks t` + taskJoin + ` WHERE t.id = $1`
	return scanTask(q.QueryRow(ctx, query, id))
}

func (r *taskRepositoryImpl) Update(ctx context.Context, t task.WorkTask, expectedUpdatedAt time.Time) (task.WorkTask, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH t AS (
			UPDATE work_tasks SET
				title = $2, description = $3, assigned_to_id = $4, start_date = $5, due_date = $6,
				updated_at = NOW()
			WHERE id = $1 AND updated_at = $7::timestamptz
			RETURNING *
		)
		SELECT` + taskColumns + ` FROM t` + taskJoin

	return scanTask(q.QueryRow(ctx, query,
		t.ID, t.Title, t.Description, t.AssignedToID, t.StartDate, t.DueDate, expectedUpdatedAt,
	))
}

func (r *taskRepositoryImpl) UpdateStatus(ctx context.Context, id string, status task.Status, reason *string) (task.WorkTask, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH t AS (
			UPDATE work_tasks SET status = $2, status_reason = $3, updated_at = NOW()
			WHERE id = $1
			RETURNING *
		)
		SELECT` + taskColumns + ` FROM t` + taskJoin

	return scanTask(q.QueryRow(ctx, query, id, status, reason))
}

func (r *taskRepositoryImpl) UpdateAttachment(ctx context.Context, id, path string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `UPDATE work_tasks SET attachment_path = $2, updated_at = NOW() WHERE id = $1`, id, path)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *taskRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM work_tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *taskRepositoryImpl) List(ctx context.Context, filter task.ListFilter) ([]task.WorkTask, int64, error) {
	q := GetQuerier(ctx, r.db)

	var w whereBuilder
	w.scope(filter.AllCompanies, filter.CompanyIDs, "asg.company_id")
	if filter.AssigneeID != nil {
		w.add("t.assigned_to_id = ?", *filter.AssigneeID)
	}
	if filter.Status != nil {
		w.add("t.status = ?", string(*filter.Status))
	}
	if filter.OpenOnly {
		w.add("t.status NOT IN ('completed', 'cancelled')")
	}
	if filter.LateBefore != nil {
		w.add("t.due_date < ? AND t.status <> 'completed'", *filter.LateBefore)
	}
	w.search(filter.Search, "t.title", "asg.full_name")
	where := w.sql()

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM work_tasks t`+taskJoin+where, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	limit := w.page(filter.Page, filter.Limit)
	query := `SELECT` + taskColumns + ` FROM work_tasks t` + taskJoin + where + ` ORDER BY t.due_date, t.created_at, t.id` + limit

	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]task.WorkTask, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, t)
	}
	return tasks, total, rows.Err()
}
