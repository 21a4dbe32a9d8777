package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/company"
)

type CompanyRepository struct {
	s *Store
}

func (s *Store) Companies() *CompanyRepository {
	return &CompanyRepository{s: s}
}

func (r *CompanyRepository) Create(_ context.Context, c company.Company) (company.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if c.ParentCompanyID != nil {
		if _, ok := r.s.companies[*c.ParentCompanyID]; !ok {
			return company.Company{}, pgx.ErrNoRows
		}
	}
	c.ID = newID()
	now := r.s.tick()
	c.CreatedAt, c.UpdatedAt = now, now
	r.s.companies[c.ID] = c
	return c, nil
}

func (r *CompanyRepository) GetByID(_ context.Context, id string) (company.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.companies[id]
	if !ok {
		return company.Company{}, pgx.ErrNoRows
	}
	return c, nil
}

func (r *CompanyRepository) GetByIDForUpdate(ctx context.Context, id string) (company.Company, error) {
	return r.GetByID(ctx, id)
}

func (r *CompanyRepository) Update(_ context.Context, c company.Company, expectedUpdatedAt time.Time) (company.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.companies[c.ID]
	if !ok || !stored.UpdatedAt.Equal(expectedUpdatedAt) {
		return company.Company{}, pgx.ErrNoRows
	}

	c.ParentCompanyID = stored.ParentCompanyID
	c.AttachmentPath = stored.AttachmentPath
	c.IsSuspended = stored.IsSuspended
	c.CreatedAt = stored.CreatedAt
	c.UpdatedAt = r.s.tick()
	r.s.companies[c.ID] = c
	return c, nil
}

func (r *CompanyRepository) modify(id string, fn func(*company.Company)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.companies[id]
	if !ok {
		return pgx.ErrNoRows
	}
	fn(&c)
	c.UpdatedAt = r.s.tick()
	r.s.companies[id] = c
	return nil
}

func (r *CompanyRepository) UpdateAttachment(_ context.Context, id, path string) error {
	return r.modify(id, func(c *company.Company) { c.AttachmentPath = &path })
}

func (r *CompanyRepository) SetSuspended(_ context.Context, id string, suspended bool) error {
	return r.modify(id, func(c *company.Company) { c.IsSuspended = suspended })
}

func (r *CompanyRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.companies[id]; !ok {
		return pgx.ErrNoRows
	}

	doomed := map[string]bool{id: true}
	for changed := true; changed; {
		changed = false
		for cid, c := range r.s.companies {
			if c.ParentCompanyID != nil && doomed[*c.ParentCompanyID] && !doomed[cid] {
				doomed[cid] = true
				changed = true
			}
		}
	}

	for cid := range doomed {
		delete(r.s.companies, cid)
	}
	for uid, u := range r.s.users {
		if u.CompanyID != nil && doomed[*u.CompanyID] {
			r.s.deleteUserLocked(uid)
		}
	}
	return nil
}

func (r *CompanyRepository) List(_ context.Context, filter company.ListFilter) ([]company.Company, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matched := make([]company.Company, 0)
	for _, c := range r.s.companies {
		id := c.ID
		if !inScope(filter.AllCompanies, filter.CompanyIDs, &id) {
			continue
		}
		if filter.TopLevelOnly && c.ParentCompanyID != nil {
			continue
		}
		if !containsFold(filter.Search, &c.Name, c.Email, c.RegistrationNumber) {
			continue
		}
		matched = append(matched, c)
	}
	slices.SortFunc(matched, func(a, b company.Company) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return paginate(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}

func (r *CompanyRepository) ListSubCompanyIDs(_ context.Context, parentID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	subs := make([]company.Company, 0)
	for _, c := range r.s.companies {
		if c.ParentCompanyID != nil && *c.ParentCompanyID == parentID {
			subs = append(subs, c)
		}
	}
	slices.SortFunc(subs, func(a, b company.Company) int { return a.CreatedAt.Compare(b.CreatedAt) })

	ids := make([]string, len(subs))
	for i, c := range subs {
		ids[i] = c.ID
	}
	return ids, nil
}

func (r *CompanyRepository) CountSubCompanies(ctx context.Context, parentID string) (int64, error) {
	ids, err := r.ListSubCompanyIDs(ctx, parentID)
	return int64(len(ids)), err
}
