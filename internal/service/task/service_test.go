package task

import (
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/access"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/company"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/task"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/storage"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/repository/memory"
	accessservice "github.com/nabd-altamayyuz/hr-backend-go/internal/service/access"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/service/file"
)

type env struct {
	svc      *TaskServiceImpl
	store    *memory.Store
	baseDir  string
	admin    user.Caller
	employee user.Caller
	peer     user.Caller
	outsider user.User
}

func newEnv(t *testing.T) env {
	t.Helper()
	store := memory.NewStore()
	baseDir := t.TempDir()
	local, err := storage.NewLocalStorage(baseDir, "/uploads")
	require.NoError(t, err)

	co, err := store.Companies().Create(context.Background(), company.Company{Name: "Acme"})
	require.NoError(t, err)
	other, err := store.Companies().Create(context.Background(), company.Company{Name: "Other"})
	require.NoError(t, err)

	mk := func(name string, role user.Role, companyID *string) user.User {
		u, err := store.Users().Create(context.Background(), user.User{FullName: name, Email: strings.ToLower(name) + "@x.sa", Role: role, CompanyID: companyID})
		require.NoError(t, err)
		return u
	}
	admin := mk("Admin", user.RoleSubAdmin, &co.ID)
	emp := mk("Huda", user.RoleEmployee, &co.ID)
	peer := mk("Faisal", user.RoleEmployee, &co.ID)
	outsider := mk("Outsider", user.RoleEmployee, &other.ID)

	svc := NewTaskService(store, store.Tasks(), store.Users(), accessservice.NewResolver(store.Companies()), file.NewFileService(local), time.UTC)
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }

	return env{
		svc:      svc,
		store:    store,
		baseDir:  baseDir,
		admin:    user.Caller{UserID: admin.ID, Role: user.RoleSubAdmin, CompanyID: &co.ID},
		employee: user.Caller{UserID: emp.ID, Role: user.RoleEmployee, CompanyID: &co.ID},
		peer:     user.Caller{UserID: peer.ID, Role: user.RoleEmployee, CompanyID: &co.ID},
		outsider: outsider,
	}
}

func (e env) create(t *testing.T, title, start, due string) task.TaskResponse {
	t.Helper()
	resp, err := e.svc.Create(context.Background(), e.admin, task.CreateTaskRequest{TaskFields: task.TaskFields{
		Title: title, AssignedToID: e.employee.UserID, StartDate: start, DueDate: due,
	}})
	require.NoError(t, err)
	return resp
}

func TestCreate(t *testing.T) {
	e := newEnv(t)

	resp := e.create(t, "Quarterly report", "2025-03-01", "2025-03-15")
	assert.Equal(t, task.StatusPending, resp.Status)
	assert.Equal(t, e.admin.UserID, resp.CreatedByID)
	assert.Equal(t, "Huda", *resp.AssigneeName)
	assert.False(t, resp.IsCompleted)
	assert.False(t, resp.IsLate)

	t.Run("assignee outside scope", func(t *testing.T) {
		_, err := e.svc.Create(context.Background(), e.admin, task.CreateTaskRequest{TaskFields: task.TaskFields{
			Title: "x", AssignedToID: e.outsider.ID, StartDate: "2025-03-01", DueDate: "2025-03-02",
		}})
		assert.ErrorIs(t, err, access.ErrPermissionDenied)
	})

	t.Run("assignee must be an employee", func(t *testing.T) {
		_, err := e.svc.Create(context.Background(), e.admin, task.CreateTaskRequest{TaskFields: task.TaskFields{
			Title: "x", AssignedToID: e.admin.UserID, StartDate: "2025-03-01", DueDate: "2025-03-02",
		}})
		assert.ErrorIs(t, err, task.ErrInvalidAssignee)
	})

	t.Run("employees cannot create", func(t *testing.T) {
		_, err := e.svc.Create(context.Background(), e.employee, task.CreateTaskRequest{TaskFields: task.TaskFields{
			Title: "x", AssignedToID: e.employee.UserID, StartDate: "2025-03-01", DueDate: "2025-03-02",
		}})
		assert.ErrorIs(t, err, access.ErrPermissionDenied)
	})

	t.Run("with attachment", func(t *testing.T) {
		f, err := os.CreateTemp(t.TempDir(), "brief-*.pdf")
		require.NoError(t, err)
		_, err = f.WriteString("%PDF-1.4")
		require.NoError(t, err)
		_, err = f.Seek(0, 0)
		require.NoError(t, err)
		defer f.Close()

		resp, err := e.svc.Create(context.Background(), e.admin, task.CreateTaskRequest{
			TaskFields: task.TaskFields{Title: "Read brief", AssignedToID: e.employee.UserID, StartDate: "2025-03-01", DueDate: "2025-03-02"},
			File:       f,
			FileHeader: &multipart.FileHeader{Filename: "brief.pdf", Size: 8},
		})
		require.NoError(t, err)
		require.NotNil(t, resp.AttachmentPath)
		assert.True(t, strings.HasPrefix(*resp.AttachmentPath, "/uploads/tasks/"+resp.ID+"/"))

		stored, err := e.store.Tasks().GetByID(context.Background(), resp.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.AttachmentPath)
		_, err = os.Stat(filepath.Join(e.baseDir, filepath.FromSlash(*stored.AttachmentPath)))
		assert.NoError(t, err)
	})
}

func TestUpdateStatus_CompletionIsDerivedFromStatus(t *testing.T) {
	e := newEnv(t)
	created := e.create(t, "Audit", "2025-03-01", "2025-03-05")
	assert.True(t, created.IsLate)

	done, err := e.svc.Complete(context.Background(), e.employee, created.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusCompleted, done.Status)
	assert.True(t, done.IsCompleted)
	assert.False(t, done.IsLate)

	reopened, err := e.svc.UpdateStatus(context.Background(), e.admin, created.ID, task.UpdateStatusRequest{
		Status: task.StatusNotCompleted, Reason: strPtr("missing numbers"),
	})
	require.NoError(t, err)
	assert.False(t, reopened.IsCompleted)
	assert.True(t, reopened.IsLate)
	assert.Equal(t, "missing numbers", *reopened.StatusReason)

	_, err = e.svc.UpdateStatus(context.Background(), e.peer, created.ID, task.UpdateStatusRequest{Status: task.StatusCompleted})
	assert.ErrorIs(t, err, access.ErrPermissionDenied)

	_, err = e.svc.UpdateStatus(context.Background(), e.employee, created.ID, task.UpdateStatusRequest{Status: "finished"})
	assert.Error(t, err)
}

func TestUpdate_OptimisticConcurrency(t *testing.T) {
	e := newEnv(t)
	created := e.create(t, "Audit", "2025-03-01", "2025-03-20")
	version, err := time.Parse(time.RFC3339Nano, created.UpdatedAt)
	require.NoError(t, err)

	req := task.UpdateTaskRequest{
		TaskFields: task.TaskFields{Title: "Audit v2", AssignedToID: e.peer.UserID, StartDate: "2025-03-02", DueDate: "2025-03-21"},
		UpdatedAt:  &version,
	}
	updated, err := e.svc.Update(context.Background(), e.admin, created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Audit v2", updated.Title)
	assert.Equal(t, e.peer.UserID, updated.AssignedToID)

	_, err = e.svc.Update(context.Background(), e.admin, created.ID, req)
	assert.ErrorIs(t, err, task.ErrConcurrencyConflict)
}

func TestUpdate_SubSecondVersionConflicts(t *testing.T) {
	e := newEnv(t)
	created := e.create(t, "Audit", "2025-03-01", "2025-03-20")
	version, err := time.Parse(time.RFC3339Nano, created.UpdatedAt)
	require.NoError(t, err)

	near := version.Add(250 * time.Millisecond)
	_, err = e.svc.Update(context.Background(), e.admin, created.ID, task.UpdateTaskRequest{
		TaskFields: task.TaskFields{Title: "Audit v2", AssignedToID: e.peer.UserID, StartDate: "2025-03-02", DueDate: "2025-03-21"},
		UpdatedAt:  &near,
	})
	assert.ErrorIs(t, err, task.ErrConcurrencyConflict)
}

func TestList(t *testing.T) {
	e := newEnv(t)
	late := e.create(t, "Late one", "2025-03-01", "2025-03-05")
	e.create(t, "Upcoming", "2025-03-01", "2025-03-30")
	_, err := e.svc.Create(context.Background(), e.admin, task.CreateTaskRequest{TaskFields: task.TaskFields{
		Title: "Peer task", AssignedToID: e.peer.UserID, StartDate: "2025-03-01", DueDate: "2025-03-12",
	}})
	require.NoError(t, err)

	all, err := e.svc.List(context.Background(), e.admin, task.TaskFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.TotalCount)
	assert.Equal(t, "Late one", all.Tasks[0].Title)

	mine, err := e.svc.List(context.Background(), e.employee, task.TaskFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, mine.TotalCount)

	lateOnly, err := e.svc.List(context.Background(), e.admin, task.TaskFilter{LateOnly: true})
	require.NoError(t, err)
	require.Len(t, lateOnly.Tasks, 1)
	assert.Equal(t, late.ID, lateOnly.Tasks[0].ID)

	completed := string(task.StatusCompleted)
	none, err := e.svc.List(context.Background(), e.admin, task.TaskFilter{Status: &completed})
	require.NoError(t, err)
	assert.Empty(t, none.Tasks)
}

func TestGetAndDelete(t *testing.T) {
	e := newEnv(t)
	created := e.create(t, "Audit", "2025-03-01", "2025-03-20")

	_, err := e.svc.GetByID(context.Background(), e.employee, created.ID)
	require.NoError(t, err)
	_, err = e.svc.GetByID(context.Background(), e.peer, created.ID)
	assert.ErrorIs(t, err, access.ErrPermissionDenied)

	assert.ErrorIs(t, e.svc.Delete(context.Background(), e.employee, created.ID), access.ErrPermissionDenied)
	require.NoError(t, e.svc.Delete(context.Background(), e.admin, created.ID))
	_, err = e.svc.GetByID(context.Background(), e.admin, created.ID)
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
}

func strPtr(s string) *string { return &s }
