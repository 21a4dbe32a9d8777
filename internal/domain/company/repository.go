package company

import (
	"context"
	"time"
)

type ListFilter struct {
	AllCompanies bool
	CompanyIDs   []string
	TopLevelOnly bool
	Search       string
	Page         int
	Limit        int
}

type CompanyRepository interface {
	Create(ctx context.Context, newCompany Company) (Company, error)
	GetByID(ctx context.Context, id string) (Company, error)
	// GetByIDForUpdate locks the company row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (Company, error)
	// Update writes every mutable column when updated_at still equals expectedUpdatedAt.
	Update(ctx context.Context, c Company, expectedUpdatedAt time.Time) (Company, error)
	UpdateAttachment(ctx context.Context, id, path string) error
	SetSuspended(ctx context.Context, id string, suspended bool) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]Company, int64, error)
	ListSubCompanyIDs(ctx context.Context, parentID string) ([]string, error)
	CountSubCompanies(ctx context.Context, parentID string) (int64, error)
}
