package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/database"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

const userColumns = `
	u.id, u.full_name, u.national_id, u.email, u.password_hash, u.role, u.company_id,
	u.job_title, u.phone_number, u.status, u.attachment_path, u.is_suspended,
	u.created_at, u.updated_at, co.name`

// userJoin expects the users row aliased u.
const userJoin = ` LEFT JOIN companies co ON co.id = u.company_id`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.FullName, &u.NationalID, &u.Email, &u.PasswordHash, &u.Role, &u.CompanyID,
		&u.JobTitle, &u.PhoneNumber, &u.Status, &u.AttachmentPath, &u.IsSuspended,
		&u.CreatedAt, &u.UpdatedAt, &u.CompanyName,
	)
	return u, err
}

func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return user.User{}, err
	}
	if newUser.Status == "" {
		newUser.Status = user.StatusActive
	}

	query := `
		WITH u AS (
			INSERT INTO users (
				id, full_name, national_id, email, password_hash, role, company_id,
				job_title, phone_number, status, is_suspended
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING *
		)
		SELECT` + userColumns + ` FROM u` + userJoin

	created, err := scanUser(q.QueryRow(ctx, query,
		id, newUser.FullName, newUser.NationalID, newUser.Email, newUser.PasswordHash,
		newUser.Role, newUser.CompanyID, newUser.JobTitle, newUser.PhoneNumber,
		newUser.Status, newUser.IsSuspended,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT` + userColumns + ` FROM users u` + userJoin + ` WHERE u.id = $1`
	return scanUser(q.QueryRow(ctx, query, id))
}

func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT` + userColumns + ` FROM users u` + userJoin + ` WHERE LOWER(u.email) = LOWER($1)`
	return scanUser(q.QueryRow(ctx, query, email))
}

func (r *userRepositoryImpl) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	q := GetQuerier(ctx, r.db)
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, email).Scan(&exists)
	return exists, err
}

// Update writes the profile columns; role, company and credentials have their own paths.
func (r *userRepositoryImpl) Update(ctx context.Context, u user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH u AS (
			UPDATE users SET
				full_name = $2, national_id = $3, job_title = $4, phone_number = $5,
				status = $6, updated_at = NOW()
			WHERE id = $1
			RETURNING *
		)
		SELECT` + userColumns + ` FROM u` + userJoin

	return scanUser(q.QueryRow(ctx, query, u.ID, u.FullName, u.NationalID, u.JobTitle, u.PhoneNumber, u.Status))
}

func (r *userRepositoryImpl) exec(ctx context.Context, query string, args ...any) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepositoryImpl) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, userID, passwordHash)
}

func (r *userRepositoryImpl) UpdateAttachment(ctx context.Context, userID, path string) error {
	return r.exec(ctx, `UPDATE users SET attachment_path = $2, updated_at = NOW() WHERE id = $1`, userID, path)
}

func (r *userRepositoryImpl) SetSuspended(ctx context.Context, userID string, suspended bool) error {
	return r.exec(ctx, `UPDATE users SET is_suspended = $2, updated_at = NOW() WHERE id = $1`, userID, suspended)
}

func (r *userRepositoryImpl) Delete(ctx context.Context, userID string) error {
	return r.exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
}

func (r *userRepositoryImpl) List(ctx context.Context, filter user.ListFilter) ([]user.User, int64, error) {
	q := GetQuerier(ctx, r.db)

	var w whereBuilder
	w.scope(filter.AllCompanies, filter.CompanyIDs, "u.company_id")
	if filter.UserID != nil {
		w.add("u.id = ?", *filter.UserID)
	}
	if len(filter.Roles) > 0 {
		roles := make([]string, len(filter.Roles))
		for i, role := range filter.Roles {
			roles[i] = string(role)
		}
		w.add("u.role = ANY(?)", roles)
	}
	if filter.ActiveOnly {
		w.add("u.is_suspended = FALSE")
	}
	w.search(filter.Search, "u.full_name", "u.email", "u.job_title")
	where := w.sql()

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM users u`+where, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	limit := w.page(filter.Page, filter.Limit)
	query := `SELECT` + userColumns + ` FROM users u` + userJoin + where + ` ORDER BY u.full_name, u.id` + limit

	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *userRepositoryImpl) CountByCompanyAndRole(ctx context.Context, companyID string, role user.Role) (int64, error) {
	q := GetQuerier(ctx, r.db)
	var count int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE company_id = $1 AND role = $2`, companyID, role).Scan(&count)
	return count, err
}

func (r *userRepositoryImpl) ExistsByRole(ctx context.Context, role user.Role) (bool, error) {
	q := GetQuerier(ctx, r.db)
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE role = $1)`, role).Scan(&exists)
	return exists, err
}
