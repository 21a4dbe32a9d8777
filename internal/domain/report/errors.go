package report

import "errors"

var (
	ErrInvalidReportType = errors.New("unknown report type")
	ErrInvalidDateRange  = errors.New("end date must not be before start date")
	ErrInvalidFormat     = errors.New("format must be one of json, csv, pdf")
)
