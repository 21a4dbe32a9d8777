package middleware

import (
	"net/http"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/auth"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/handler/http/response"
)

// RequireCompany rejects callers other than super admins that belong to no company.
func RequireCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFrom(r.Context())
		if !ok {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}
		if !caller.IsSuperAdmin() && !caller.HasCompany() {
			response.HandleError(w, user.ErrCompanyIDRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}
