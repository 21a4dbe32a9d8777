package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/company"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/handler/http/response"
)

type CompanyHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	CreateSub(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	ToggleSuspend(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	UploadAttachment(w http.ResponseWriter, r *http.Request)
}

type CompanyHandlerImpl struct {
	companyService company.CompanyService
}

func NewCompanyHandler(companyService company.CompanyService) CompanyHandler {
	return &CompanyHandlerImpl{companyService: companyService}
}

// Create implements CompanyHandler.
func (c *CompanyHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	var req company.CreateCompanyRequest
	if !decodeJSON(w, r, &req, "Create company") {
		return
	}

	created, err := c.companyService.Create(r.Context(), caller, req)
	if err != nil {
		slog.Error("Failed to create company", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Company created successfully", created)
}

// CreateSub implements CompanyHandler.
func (c *CompanyHandlerImpl) CreateSub(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	var req company.CreateSubCompanyRequest
	if !decodeJSON(w, r, &req, "Create sub-company") {
		return
	}

	created, err := c.companyService.CreateSub(r.Context(), caller, chi.URLParam(r, "id"), req)
	if err != nil {
		slog.Error("Failed to create sub-company", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Sub-company created successfully", created)
}

// List implements CompanyHandler.
func (c *CompanyHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	filter := company.ListCompanyFilter{
		CompanyID:    queryPtr(r, "company_id"),
		TopLevelOnly: queryBool(r, "top_level_only"),
		Search:       r.URL.Query().Get("search"),
		Page:         queryInt(r, "page"),
		Limit:        queryInt(r, "limit"),
	}

	list, err := c.companyService.List(r.Context(), caller, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, list.Companies, &response.Meta{
		Page:       list.Page,
		Limit:      list.Limit,
		TotalItems: list.TotalCount,
		TotalPages: list.TotalPages,
	})
}

// GetByID implements CompanyHandler.
func (c *CompanyHandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	found, err := c.companyService.GetByID(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, found)
}

// Update implements CompanyHandler.
func (c *CompanyHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	var req company.UpdateCompanyRequest
	if !decodeJSON(w, r, &req, "Update company") {
		return
	}

	updated, err := c.companyService.Update(r.Context(), caller, chi.URLParam(r, "id"), req)
	if err != nil {
		slog.Error("Failed to update company", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Company updated successfully", updated)
}

// ToggleSuspend implements CompanyHandler.
func (c *CompanyHandlerImpl) ToggleSuspend(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	res, err := c.companyService.ToggleSuspend(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	msg := "Company reactivated"
	if res.IsSuspended {
		msg = "Company suspended"
	}
	response.SuccessWithMessage(w, msg, res)
}

// Delete implements CompanyHandler.
func (c *CompanyHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	if err := c.companyService.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		slog.Error("Failed to delete company", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Company deleted successfully", nil)
}

// UploadAttachment implements CompanyHandler.
func (c *CompanyHandlerImpl) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	file, header, ok := requireFile(w, r, "attachment")
	if !ok {
		return
	}
	defer file.Close()

	res, err := c.companyService.UploadAttachment(r.Context(), caller, company.UploadAttachmentRequest{
		CompanyID:  chi.URLParam(r, "id"),
		File:       file,
		FileHeader: header,
	})
	if err != nil {
		slog.Error("Failed to upload company attachment", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Attachment uploaded successfully", res)
}
