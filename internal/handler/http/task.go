package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/task"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/handler/http/response"
)

type TaskHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
	Complete(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	UploadAttachment(w http.ResponseWriter, r *http.Request)
}

type taskHandlerImpl struct {
	taskService task.TaskService
}

func NewTaskHandler(taskService task.TaskService) TaskHandler {
	return &taskHandlerImpl{taskService: taskService}
}

// Create implements TaskHandler. Accepts JSON, or multipart with a 'data'
// field and an optional 'attachment' file.
func (h *taskHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}

	var req task.CreateTaskRequest
	if isMultipart(r) {
		file, header, err := decodeMultipart(r, &req.TaskFields, "attachment")
		if err != nil {
			slog.Error("Failed to parse task form", "error", err)
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
		if file != nil {
			defer file.Close()
		}
		req.File, req.FileHeader = file, header
	} else if !decodeJSON(w, r, &req.TaskFields, "Create task") {
		return
	}

	created, err := h.taskService.Create(r.Context(), caller, req)
	if err != nil {
		slog.Error("Failed to create task", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Task created successfully", created)
}

// List implements TaskHandler.
func (h *taskHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	filter := task.TaskFilter{
		CompanyID:  queryPtr(r, "company_id"),
		AssigneeID: queryPtr(r, "assignee_id"),
		Status:     queryPtr(r, "status"),
		LateOnly:   queryBool(r, "late"),
		Search:     r.URL.Query().Get("search"),
		Page:       queryInt(r, "page"),
		Limit:      queryInt(r, "limit"),
	}

	list, err := h.taskService.List(r.Context(), caller, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, list.Tasks, &response.Meta{
		Page:       list.Page,
		Limit:      list.Limit,
		TotalItems: list.TotalCount,
		TotalPages: list.TotalPages,
	})
}

// GetByID implements TaskHandler.
func (h *taskHandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	found, err := h.taskService.GetByID(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, found)
}

// Update implements TaskHandler.
func (h *taskHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	var req task.UpdateTaskRequest
	if !decodeJSON(w, r, &req, "Update task") {
		return
	}
	updated, err := h.taskService.Update(r.Context(), caller, chi.URLParam(r, "id"), req)
	if err != nil {
		slog.Error("Failed to update task", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Task updated successfully", updated)
}

// UpdateStatus implements TaskHandler.
func (h *taskHandlerImpl) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	var req task.UpdateStatusRequest
	if !decodeJSON(w, r, &req, "Update task status") {
		return
	}
	updated, err := h.taskService.UpdateStatus(r.Context(), caller, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Task status updated", updated)
}

// Complete implements TaskHandler.
func (h *taskHandlerImpl) Complete(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	updated, err := h.taskService.Complete(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Task completed", updated)
}

// Delete implements TaskHandler.
func (h *taskHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	if err := h.taskService.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		slog.Error("Failed to delete task", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Task deleted successfully", nil)
}

// UploadAttachment implements TaskHandler.
func (h *taskHandlerImpl) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	file, header, ok := requireFile(w, r, "attachment")
	if !ok {
		return
	}
	defer file.Close()

	res, err := h.taskService.UploadAttachment(r.Context(), caller, task.UploadAttachmentRequest{
		TaskID:     chi.URLParam(r, "id"),
		File:       file,
		FileHeader: header,
	})
	if err != nil {
		slog.Error("Failed to upload task attachment", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Attachment uploaded successfully", res)
}
