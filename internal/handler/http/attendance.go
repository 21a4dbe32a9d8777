package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/attendance"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/handler/http/response"
)

const defaultHistoryLimit = 30

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	MyHistory(w http.ResponseWriter, r *http.Request)
	Sheet(w http.ResponseWriter, r *http.Request)
	RecordManual(w http.ResponseWriter, r *http.Request)
	Edit(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{attendanceService: attendanceService}
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	res, err := h.attendanceService.CheckIn(r.Context(), caller)
	if err != nil {
		slog.Error("Failed to check in", "user_id", caller.UserID, "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Checked in", res)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	res, err := h.attendanceService.CheckOut(r.Context(), caller)
	if err != nil {
		slog.Warn("Failed to check out", "user_id", caller.UserID, "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Checked out", res)
}

// Today implements AttendanceHandler.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	res, err := h.attendanceService.TodayStatus(r.Context(), caller)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, res)
}

// MyHistory implements AttendanceHandler.
func (h *attendanceHandlerImpl) MyHistory(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	limit := queryInt(r, "limit")
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	res, err := h.attendanceService.MyHistory(r.Context(), caller, limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, res)
}

// Sheet implements AttendanceHandler.
func (h *attendanceHandlerImpl) Sheet(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	res, err := h.attendanceService.Sheet(r.Context(), caller, attendance.SheetRequest{
		Date:      queryPtr(r, "date"),
		CompanyID: queryPtr(r, "company_id"),
		Search:    r.URL.Query().Get("search"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, res)
}

// RecordManual implements AttendanceHandler.
func (h *attendanceHandlerImpl) RecordManual(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	var req attendance.ManualAttendanceRequest
	if !decodeJSON(w, r, &req, "Manual attendance") {
		return
	}
	res, err := h.attendanceService.RecordManual(r.Context(), caller, req)
	if err != nil {
		slog.Error("Failed to record manual attendance", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Attendance recorded", res)
}

// Edit implements AttendanceHandler.
func (h *attendanceHandlerImpl) Edit(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	var req attendance.EditAttendanceRequest
	if !decodeJSON(w, r, &req, "Edit attendance") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	res, err := h.attendanceService.Edit(r.Context(), caller, req)
	if err != nil {
		slog.Error("Failed to edit attendance", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Attendance updated", res)
}
