package dashboard

import (
	"context"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
)

// DashboardService picks the dashboard for the caller's role
type DashboardService interface {
	Get(ctx context.Context, caller user.Caller) (Response, error)
}
