package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/employee"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/handler/http/response"
)

type EmployeeHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Suspend(w http.ResponseWriter, r *http.Request)
	UploadAttachment(w http.ResponseWriter, r *http.Request)
}

type employeeHandlerImpl struct {
	employeeService employee.EmployeeService
}

func NewEmployeeHandler(employeeService employee.EmployeeService) EmployeeHandler {
	return &employeeHandlerImpl{employeeService: employeeService}
}

// Create implements EmployeeHandler.
func (h *employeeHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	var req employee.CreateEmployeeRequest
	if !decodeJSON(w, r, &req, "Create employee") {
		return
	}

	created, err := h.employeeService.CreateEmployee(r.Context(), caller, req)
	if err != nil {
		slog.Error("Failed to create employee", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Employee created successfully", created)
}

// List implements EmployeeHandler.
func (h *employeeHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	filter := employee.EmployeeFilter{
		CompanyID: queryPtr(r, "company_id"),
		Role:      queryPtr(r, "role"),
		Search:    r.URL.Query().Get("search"),
		Page:      queryInt(r, "page"),
		Limit:     queryInt(r, "limit"),
	}

	list, err := h.employeeService.ListEmployees(r.Context(), caller, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, list.Employees, &response.Meta{
		Page:       list.Page,
		Limit:      list.Limit,
		TotalItems: list.TotalCount,
		TotalPages: list.TotalPages,
	})
}

// GetByID implements EmployeeHandler.
func (h *employeeHandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	found, err := h.employeeService.GetEmployee(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, found)
}

// Update implements EmployeeHandler.
func (h *employeeHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	var req employee.UpdateEmployeeRequest
	if !decodeJSON(w, r, &req, "Update employee") {
		return
	}

	updated, err := h.employeeService.UpdateEmployee(r.Context(), caller, chi.URLParam(r, "id"), req)
	if err != nil {
		slog.Error("Failed to update employee", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Employee updated successfully", updated)
}

// Delete implements EmployeeHandler.
func (h *employeeHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	if err := h.employeeService.DeleteEmployee(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		slog.Error("Failed to delete employee", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Employee deleted successfully", nil)
}

// Suspend implements EmployeeHandler.
func (h *employeeHandlerImpl) Suspend(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	res, err := h.employeeService.SuspendEmployee(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	msg := "Employee reactivated"
	if res.IsSuspended {
		msg = "Employee suspended"
	}
	response.SuccessWithMessage(w, msg, res)
}

// UploadAttachment implements EmployeeHandler.
func (h *employeeHandlerImpl) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	file, header, ok := requireFile(w, r, "attachment")
	if !ok {
		return
	}
	defer file.Close()

	res, err := h.employeeService.UploadAttachment(r.Context(), caller, employee.UploadAttachmentRequest{
		EmployeeID: chi.URLParam(r, "id"),
		File:       file,
		FileHeader: header,
	})
	if err != nil {
		slog.Error("Failed to upload employee attachment", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Attachment uploaded successfully", res)
}
