package user

import (
	"context"
)

// ListFilter selects users for list and report queries. With AllCompanies
// false, only users whose company is in CompanyIDs are returned.
type ListFilter struct {
	AllCompanies bool
	CompanyIDs   []string
	UserID       *string
	Roles        []Role
	Search       string
	ActiveOnly   bool
	Page         int
	Limit        int
}

type UserRepository interface {
	Create(ctx context.Context, newUser User) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, u User) (User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateAttachment(ctx context.Context, userID, path string) error
	SetSuspended(ctx context.Context, userID string, suspended bool) error
	Delete(ctx context.Context, userID string) error
	List(ctx context.Context, filter ListFilter) ([]User, int64, error)
	CountByCompanyAndRole(ctx context.Context, companyID string, role Role) (int64, error)
	ExistsByRole(ctx context.Context, role Role) (bool, error)
}
