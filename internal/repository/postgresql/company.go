package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/company"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/database"
)

type companyRepositoryImpl struct {
	db *database.DB
}

func NewCompanyRepository(db *database.DB) company.CompanyRepository {
	return &companyRepositoryImpl{db: db}
}

const companyColumns = `
	c.id, c.name, c.registration_number, c.email, c.phone_number, c.responsible_person,
	c.national_address_short_code, c.tax_number, c.payment_term, c.parent_company_id,
	c.subscription_start_date, c.subscription_end_date, c.notification_days_before_expiry,
	c.allowed_employees, c.allowed_sub_accounts, c.price_per_employee, c.tax_rate,
	c.total_price_per_employee, c.attachment_path, c.is_suspended, c.created_at, c.updated_at`

func scanCompany(row pgx.Row) (company.Company, error) {
	var c company.Company
	err := row.Scan(
		&c.ID, &c.Name, &c.RegistrationNumber, &c.Email, &c.PhoneNumber, &c.ResponsiblePerson,
		&c.NationalAddressShortCode, &c.TaxNumber, &c.PaymentTerm, &c.ParentCompanyID,
		&c.SubscriptionStartDate, &c.SubscriptionEndDate, &c.NotificationDaysBeforeExpiry,
		&c.AllowedEmployees, &c.AllowedSubAccounts, &c.PricePerEmployee, &c.TaxRate,
		&c.TotalPricePerEmployee, &c.AttachmentPath, &c.IsSuspended, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func (r *companyRepositoryImpl) Create(ctx context.Context, newCompany company.Company) (company.Company, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return company.Company{}, err
	}

	query := `
		INSERT INTO companies AS c (
			id, name, registration_number, email, phone_number, responsible_person,
			national_address_short_code, tax_number, payment_term, parent_company_id,
			subscription_start_date, subscription_end_date, notification_days_before_expiry,
			allowed_employees, allowed_sub_accounts, price_per_employee, tax_rate,
			total_price_per_employee, is_suspended
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING` + companyColumns

	created, err := scanCompany(q.QueryRow(ctx, query,
		id, newCompany.Name, newCompany.RegistrationNumber, newCompany.Email, newCompany.PhoneNumber,
		newCompany.ResponsiblePerson, newCompany.NationalAddressShortCode, newCompany.TaxNumber,
		newCompany.PaymentTerm, newCompany.ParentCompanyID, newCompany.SubscriptionStartDate,
		newCompany.SubscriptionEndDate, newCompany.NotificationDaysBeforeExpiry,
		newCompany.AllowedEmployees, newCompany.AllowedSubAccounts, newCompany.PricePerEmployee,
		newCompany.TaxRate, newCompany.TotalPricePerEmployee, newCompany.IsSuspended,
	))
	if err != nil {
		return company.Company{}, fmt.Errorf("insert company: %w", err)
	}
	return created, nil
}

func (r *companyRepositoryImpl) GetByID(ctx context.Context, id string) (company.Company, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT` + companyColumns + ` FROM companies c WHERE c.id = $1`
	return scanCompany(q.QueryRow(ctx, query, id))
}

func (r *companyRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (company.Company, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT` + companyColumns + ` FROM companies c WHERE c.id = $1 FOR UPDATE`
	return scanCompany(q.QueryRow(ctx, query, id))
}

func (r *companyRepositoryImpl) Update(ctx context.Context, c company.Company, expectedUpdatedAt time.Time) (company.Company, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE companies AS c SET
			name = $2, registration_number = $3, email = $4, phone_number = $5,
			responsible_person = $6, national_address_short_code = $7, tax_number = $8,
			payment_term = $9, subscription_start_date = $10, subscription_end_date = $11,
			notification_days_before_expiry = $12, allowed_employees = $13,
			allowed_sub_accounts = $14, price_per_employee = $15, tax_rate = $16,
			total_price_per_employee = $17, updated_at = NOW()
		WHERE c.id = $1 AND c.updated_at = $18::timestamptz
		RETURNING` + companyColumns

	return scanCompany(q.QueryRow(ctx, query,
		c.ID, c.Name, c.RegistrationNumber, c.Email, c.PhoneNumber, c.ResponsiblePerson,
		c.NationalAddressShortCode, c.TaxNumber, c.PaymentTerm, c.SubscriptionStartDate,
		c.SubscriptionEndDate, c.NotificationDaysBeforeExpiry, c.AllowedEmployees,
		c.AllowedSubAccounts, c.PricePerEmployee, c.TaxRate, c.TotalPricePerEmployee,
		expectedUpdatedAt,
	))
}

func (r *companyRepositoryImpl) UpdateAttachment(ctx context.Context, id, path string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `UPDATE companies SET attachment_path = $2, updated_at = NOW() WHERE id = $1`, id, path)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *companyRepositoryImpl) SetSuspended(ctx context.Context, id string, suspended bool) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `UPDATE companies SET is_suspended = $2, updated_at = NOW() WHERE id = $1`, id, suspended)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete relies on ON DELETE CASCADE for sub-companies, users and their records.
func (r *companyRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *companyRepositoryImpl) List(ctx context.Context, filter company.ListFilter) ([]company.Company, int64, error) {
	q := GetQuerier(ctx, r.db)

	var w whereBuilder
	w.scope(filter.AllCompanies, filter.CompanyIDs, "c.id")
	if filter.TopLevelOnly {
		w.add("c.parent_company_id IS NULL")
	}
	w.search(filter.Search, "c.name", "c.email", "c.registration_number")
	where := w.sql()

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM companies c`+where, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count companies: %w", err)
	}

	limit := w.page(filter.Page, filter.Limit)
	query := `SELECT` + companyColumns + ` FROM companies c` + where + ` ORDER BY c.created_at DESC, c.id` + limit

	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	companies := make([]company.Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, err
		}
		companies = append(companies, c)
	}
	return companies, total, rows.Err()
}

func (r *companyRepositoryImpl) ListSubCompanyIDs(ctx context.Context, parentID string) ([]string, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `SELECT id FROM companies WHERE parent_company_id = $1 ORDER BY created_at`, parentID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *companyRepositoryImpl) CountSubCompanies(ctx context.Context, parentID string) (int64, error) {
	q := GetQuerier(ctx, r.db)
	var count int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM companies WHERE parent_company_id = $1`, parentID).Scan(&count)
	return count, err
}
