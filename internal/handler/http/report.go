package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/report"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/handler/http/response"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/export"
)

type ReportHandler interface {
	Generate(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
	csv           *export.CSVExporter
	pdf           *export.PDFExporter
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
		csv:           export.NewCSVExporter(),
		pdf:           export.NewPDFExporter(),
	}
}

// Generate implements ReportHandler. format selects json, csv or pdf.
func (h *reportHandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	req := report.ReportRequest{
		Type:      report.Type(chi.URLParam(r, "type")),
		Format:    strings.ToLower(r.URL.Query().Get("format")),
		From:      queryPtr(r, "from"),
		To:        queryPtr(r, "to"),
		CompanyID: queryPtr(r, "company_id"),
		Search:    r.URL.Query().Get("search"),
	}
	if req.Format == "" {
		req.Format = report.FormatJSON
	}

	rep, err := h.reportService.Generate(r.Context(), caller, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	data := export.Dataset{Headers: rep.Headers, Rows: rep.Rows}
	filename := fmt.Sprintf("%s-%s-%s", rep.Type, rep.From, rep.To)

	switch req.Format {
	case report.FormatCSV:
		body, err := h.csv.Render(data)
		if err != nil {
			slog.Error("Failed to render csv report", "type", rep.Type, "error", err)
			response.HandleError(w, err)
			return
		}
		response.File(w, h.csv.ContentType(), filename+".csv", body)
	case report.FormatPDF:
		body, err := h.pdf.Render(data, rep.Title, rep.Summary)
		if err != nil {
			slog.Error("Failed to render pdf report", "type", rep.Type, "error", err)
			response.HandleError(w, err)
			return
		}
		response.File(w, h.pdf.ContentType(), filename+".pdf", body)
	default:
		response.Success(w, rep)
	}
}
