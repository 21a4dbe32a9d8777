package access

import (
	"context"
	"errors"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
)

var ErrPermissionDenied = errors.New("permission denied")

// Scope is the set of records a caller may see. Exactly one form applies:
// All for an unfiltered super admin, CompanyIDs for admins and filtered
// super admins, UserID for employees. The zero value grants nothing.
type Scope struct {
	All        bool
	CompanyIDs []string
	UserID     string
}

// IsEmpty reports whether the scope grants access to nothing.
func (s Scope) IsEmpty() bool {
	return !s.All && len(s.CompanyIDs) == 0 && s.UserID == ""
}

// IsSelf reports whether the scope is limited to a single user.
func (s Scope) IsSelf() bool {
	return !s.All && s.UserID != ""
}

// AllowsCompany reports whether records of companyID are visible.
func (s Scope) AllowsCompany(companyID *string) bool {
	if s.All {
		return true
	}
	if companyID == nil {
		return false
	}
	for _, id := range s.CompanyIDs {
		if id == *companyID {
			return true
		}
	}
	return false
}

// AllowsUser reports whether u is visible in the scope.
func (s Scope) AllowsUser(u user.User) bool {
	if s.IsSelf() {
		return u.ID == s.UserID
	}
	return s.AllowsCompany(u.CompanyID)
}

// RequireCompany returns ErrPermissionDenied unless companyID is in scope.
func (s Scope) RequireCompany(companyID *string) error {
	if !s.AllowsCompany(companyID) {
		return ErrPermissionDenied
	}
	return nil
}

// RequireUser returns ErrPermissionDenied unless u is in scope.
func (s Scope) RequireUser(u user.User) error {
	if !s.AllowsUser(u) {
		return ErrPermissionDenied
	}
	return nil
}

// Resolver computes scopes for callers.
type Resolver interface {
	ResolveScope(ctx context.Context, caller user.Caller, requestedCompanyID *string) (Scope, error)
}

type ScopeResponse struct {
	All        bool     `json:"all"`
	CompanyIDs []string `json:"company_ids"`
	UserID     *string  `json:"user_id,omitempty"`
}

func (s Scope) ToResponse() ScopeResponse {
	resp := ScopeResponse{All: s.All, CompanyIDs: s.CompanyIDs}
	if resp.CompanyIDs == nil {
		resp.CompanyIDs = []string{}
	}
	if s.UserID != "" {
		id := s.UserID
		resp.UserID = &id
	}
	return resp
}
