package report

import (
	"context"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
)

// ReportService defines the interface for report generation
type ReportService interface {
	Generate(ctx context.Context, caller user.Caller, req ReportRequest) (Report, error)
}
