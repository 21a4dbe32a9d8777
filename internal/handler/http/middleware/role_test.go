package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
)

func TestRequirePermission(t *testing.T) {
	companyID := "c1"
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := []struct {
		name       string
		caller     *user.Caller
		permission user.Permission
		want       int
	}{
		{"no caller", nil, user.PermissionReportsView, http.StatusUnauthorized},
		{"employee reads reports", &user.Caller{UserID: "e", Role: user.RoleEmployee, CompanyID: &companyID}, user.PermissionReportsView, http.StatusNoContent},
		{"employee edits attendance", &user.Caller{UserID: "e", Role: user.RoleEmployee, CompanyID: &companyID}, user.PermissionAttendanceManage, http.StatusForbidden},
		{"sub admin edits attendance", &user.Caller{UserID: "s", Role: user.RoleSubAdmin, CompanyID: &companyID}, user.PermissionAttendanceManage, http.StatusNoContent},
		{"company admin creates company", &user.Caller{UserID: "a", Role: user.RoleCompanyAdmin, CompanyID: &companyID}, user.PermissionCompanyCreate, http.StatusForbidden},
		{"super admin deletes company", &user.Caller{UserID: "r", Role: user.RoleSuperAdmin}, user.PermissionCompanyDelete, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.caller != nil {
				req = req.WithContext(WithCaller(req.Context(), *tt.caller))
			}
			rec := httptest.NewRecorder()
			RequirePermission(tt.permission)(ok).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
