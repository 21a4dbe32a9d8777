package middleware

import (
	"fmt"
	"net/http"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/auth"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/handler/http/response"
)

// RequirePermission checks if the caller's role grants permission
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := CallerFrom(r.Context())
			if !ok {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}
			if !user.HasPermission(caller.Role, permission) {
				response.HandleError(w, fmt.Errorf("%w: required '%s', but user role is '%s'",
					user.ErrInsufficientPermissions, permission, caller.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
