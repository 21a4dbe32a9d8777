package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
)

type UserRepository struct {
	s *Store
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{s: s}
}

// withCompanyName fills the joined company name. Callers hold mu.
func (s *Store) withCompanyName(u user.User) user.User {
	u.CompanyName = nil
	if u.CompanyID != nil {
		if c, ok := s.companies[*u.CompanyID]; ok {
			name := c.Name
			u.CompanyName = &name
		}
	}
	return u
}

// deleteUserLocked removes a user and everything that references it. Callers hold mu.
func (s *Store) deleteUserLocked(id string) {
	delete(s.users, id)
	for aid, a := range s.attendances {
		if a.EmployeeID == id {
			delete(s.attendances, aid)
		}
	}
	for tid, t := range s.tasks {
		if t.AssignedToID == id || t.CreatedByID == id {
			delete(s.tasks, tid)
		}
	}
	for hash, tok := range s.tokens {
		if tok.userID == id {
			delete(s.tokens, hash)
		}
	}
}

func (r *UserRepository) Create(_ context.Context, u user.User) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return user.User{}, user.ErrUserEmailExists
		}
	}
	if u.CompanyID != nil {
		if _, ok := r.s.companies[*u.CompanyID]; !ok {
			return user.User{}, pgx.ErrNoRows
		}
	}
	if u.Status == "" {
		u.Status = user.StatusActive
	}
	u.ID = newID()
	now := r.s.tick()
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.users[u.ID] = u
	return r.s.withCompanyName(u), nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, pgx.ErrNoRows
	}
	return r.s.withCompanyName(u), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return r.s.withCompanyName(u), nil
		}
	}
	return user.User{}, pgx.ErrNoRows
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func (r *UserRepository) Update(_ context.Context, u user.User) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.users[u.ID]
	if !ok {
		return user.User{}, pgx.ErrNoRows
	}
	stored.FullName = u.FullName
	stored.NationalID = u.NationalID
	stored.JobTitle = u.JobTitle
	stored.PhoneNumber = u.PhoneNumber
	stored.Status = u.Status
	stored.UpdatedAt = r.s.tick()
	r.s.users[u.ID] = stored
	return r.s.withCompanyName(stored), nil
}

func (r *UserRepository) modify(id string, fn func(*user.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	fn(&u)
	u.UpdatedAt = r.s.tick()
	r.s.users[id] = u
	return nil
}

func (r *UserRepository) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	return r.modify(userID, func(u *user.User) { u.PasswordHash = passwordHash })
}

func (r *UserRepository) UpdateAttachment(_ context.Context, userID, path string) error {
	return r.modify(userID, func(u *user.User) { u.AttachmentPath = &path })
}

func (r *UserRepository) SetSuspended(_ context.Context, userID string, suspended bool) error {
	return r.modify(userID, func(u *user.User) { u.IsSuspended = suspended })
}

func (r *UserRepository) Delete(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return pgx.ErrNoRows
	}
	r.s.deleteUserLocked(userID)
	return nil
}

func (r *UserRepository) List(_ context.Context, filter user.ListFilter) ([]user.User, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matched := make([]user.User, 0)
	for _, u := range r.s.users {
		if !inScope(filter.AllCompanies, filter.CompanyIDs, u.CompanyID) {
			continue
		}
		if filter.UserID != nil && u.ID != *filter.UserID {
			continue
		}
		if len(filter.Roles) > 0 && !slices.Contains(filter.Roles, u.Role) {
			continue
		}
		if filter.ActiveOnly && u.IsSuspended {
			continue
		}
		if !containsFold(filter.Search, &u.FullName, &u.Email, u.JobTitle) {
			continue
		}
		matched = append(matched, r.s.withCompanyName(u))
	}
	slices.SortFunc(matched, func(a, b user.User) int {
		if c := strings.Compare(a.FullName, b.FullName); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return paginate(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}

func (r *UserRepository) CountByCompanyAndRole(_ context.Context, companyID string, role user.Role) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, u := range r.s.users {
		if u.InCompany(companyID) && u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *UserRepository) ExistsByRole(_ context.Context, role user.Role) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Role == role {
			return true, nil
		}
	}
	return false, nil
}
