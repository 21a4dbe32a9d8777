package access

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/access"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/company"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
)

type ResolverImpl struct {
	company.CompanyRepository
}

func NewResolver(companyRepository company.CompanyRepository) *ResolverImpl {
	return &ResolverImpl{CompanyRepository: companyRepository}
}

// ResolveScope computes the records caller may see, optionally narrowed to
// requestedCompanyID.
func (r *ResolverImpl) ResolveScope(ctx context.Context, caller user.Caller, requestedCompanyID *string) (access.Scope, error) {
	if requestedCompanyID != nil && *requestedCompanyID == "" {
		requestedCompanyID = nil
	}

	switch {
	case caller.IsSuperAdmin():
		if requestedCompanyID == nil {
			return access.Scope{All: true}, nil
		}
		if _, err := r.CompanyRepository.GetByID(ctx, *requestedCompanyID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return access.Scope{}, company.ErrCompanyNotFound
			}
			return access.Scope{}, fmt.Errorf("failed to get company: %w", err)
		}
		ids, err := r.withSubCompanies(ctx, *requestedCompanyID)
		if err != nil {
			return access.Scope{}, err
		}
		return access.Scope{CompanyIDs: ids}, nil

	case caller.Role == user.RoleEmployee:
		return access.Scope{UserID: caller.UserID}, nil

	case !caller.HasCompany():
		return access.Scope{}, nil
	}

	ids, err := r.withSubCompanies(ctx, *caller.CompanyID)
	if err != nil {
		return access.Scope{}, err
	}
	if requestedCompanyID == nil {
		return access.Scope{CompanyIDs: ids}, nil
	}
	if !slices.Contains(ids, *requestedCompanyID) {
		return access.Scope{}, access.ErrPermissionDenied
	}
	return access.Scope{CompanyIDs: []string{*requestedCompanyID}}, nil
}

func (r *ResolverImpl) withSubCompanies(ctx context.Context, companyID string) ([]string, error) {
	subs, err := r.CompanyRepository.ListSubCompanyIDs(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sub-companies: %w", err)
	}
	return append([]string{companyID}, subs...), nil
}
