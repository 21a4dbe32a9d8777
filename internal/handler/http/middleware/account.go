package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/auth"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/company"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/handler/http/response"
)

// AccountGuard re-checks suspension on every request, so a suspension takes
// effect before the caller's access token expires.
type AccountGuard struct {
	users     user.UserRepository
	companies company.CompanyRepository
}

func NewAccountGuard(users user.UserRepository, companies company.CompanyRepository) *AccountGuard {
	return &AccountGuard{users: users, companies: companies}
}

func (g *AccountGuard) RequireActiveAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFrom(r.Context())
		if !ok {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}
		if err := g.check(r.Context(), caller); err != nil {
			response.HandleError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *AccountGuard) check(ctx context.Context, caller user.Caller) error {
	u, err := g.users.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.ErrInvalidToken
		}
		slog.Error("account guard: get user", "error", err)
		return err
	}
	if u.IsSuspended {
		return auth.ErrAccountSuspended
	}

	companyID := u.CompanyID
	for companyID != nil {
		c, err := g.companies.GetByID(ctx, *companyID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return auth.ErrAccountSuspended
			}
			slog.Error("account guard: get company", "error", err)
			return err
		}
		if c.IsSuspended {
			return auth.ErrAccountSuspended
		}
		companyID = c.ParentCompanyID
	}
	return nil
}
