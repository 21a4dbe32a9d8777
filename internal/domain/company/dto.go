package company

import (
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/validator"
)

// CompanyProfile holds the descriptive fields shared by create and update requests.
type CompanyProfile struct {
	Name                     string  `json:"name"`
	RegistrationNumber       *string `json:"registration_number,omitempty"`
	Email                    *string `json:"email,omitempty"`
	PhoneNumber              *string `json:"phone_number,omitempty"`
	ResponsiblePerson        *string `json:"responsible_person,omitempty"`
	NationalAddressShortCode *string `json:"national_address_short_code,omitempty"`
	TaxNumber                *string `json:"tax_number,omitempty"`
	PaymentTerm              *string `json:"payment_term,omitempty"`
}

func (p *CompanyProfile) validate(errs validator.ValidationErrors) validator.ValidationErrors {
	if validator.IsEmpty(p.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	} else if len(p.Name) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 255 characters",
		})
	}
	if p.Email != nil && *p.Email != "" && !validator.IsValidEmail(*p.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "invalid email format",
		})
	}
	if p.PhoneNumber != nil && *p.PhoneNumber != "" && !validator.IsValidPhoneNumber(*p.PhoneNumber) {
		errs = append(errs, validator.ValidationError{
			Field:   "phone_number",
			Message: "invalid phone number",
		})
	}
	return errs
}

// ApplyTo copies the profile onto c.
func (p CompanyProfile) ApplyTo(c *Company) {
	c.Name = strings.TrimSpace(p.Name)
	c.RegistrationNumber = p.RegistrationNumber
	c.Email = p.Email
	c.PhoneNumber = p.PhoneNumber
	c.ResponsiblePerson = p.ResponsiblePerson
	c.NationalAddressShortCode = p.NationalAddressShortCode
	c.TaxNumber = p.TaxNumber
	c.PaymentTerm = p.PaymentTerm
}

// SubscriptionTerms holds the billing and quota fields.
type SubscriptionTerms struct {
	SubscriptionStartDate        *string `json:"subscription_start_date,omitempty"` // YYYY-MM-DD
	SubscriptionEndDate          *string `json:"subscription_end_date,omitempty"`   // YYYY-MM-DD
	NotificationDaysBeforeExpiry *int    `json:"notification_days_before_expiry,omitempty"`
	AllowedEmployees             int     `json:"allowed_employees"`
	AllowedSubAccounts           int     `json:"allowed_sub_accounts"`
	PricePerEmployee             float64 `json:"price_per_employee"`
	TaxRate                      float64 `json:"tax_rate"`
}

func (s *SubscriptionTerms) validate(errs validator.ValidationErrors) validator.ValidationErrors {
	var start, end time.Time
	var startOK, endOK bool
	if s.SubscriptionStartDate != nil {
		if start, startOK = validator.IsValidDate(*s.SubscriptionStartDate); !startOK {
			errs = append(errs, validator.ValidationError{
				Field:   "subscription_start_date",
				Message: "subscription_start_date must be in YYYY-MM-DD format",
			})
		}
	}
	if s.SubscriptionEndDate != nil {
		if end, endOK = validator.IsValidDate(*s.SubscriptionEndDate); !endOK {
			errs = append(errs, validator.ValidationError{
				Field:   "subscription_end_date",
				Message: "subscription_end_date must be in YYYY-MM-DD format",
			})
		}
	}
	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "subscription_end_date",
			Message: "subscription_end_date must not be before subscription_start_date",
		})
	}
	if s.NotificationDaysBeforeExpiry != nil && *s.NotificationDaysBeforeExpiry < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "notification_days_before_expiry",
			Message: "notification_days_before_expiry must not be negative",
		})
	}
	if s.AllowedEmployees < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "allowed_employees",
			Message: "allowed_employees must not be negative",
		})
	}
	if s.AllowedSubAccounts < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "allowed_sub_accounts",
			Message: "allowed_sub_accounts must not be negative",
		})
	}
	if s.PricePerEmployee < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "price_per_employee",
			Message: "price_per_employee must not be negative",
		})
	}
	if s.TaxRate < 0 || s.TaxRate > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "tax_rate",
			Message: "tax_rate must be between 0 and 100",
		})
	}
	return errs
}

// apply assumes validate passed.
func (s SubscriptionTerms) apply(c *Company) {
	c.SubscriptionStartDate = parseOptionalDate(s.SubscriptionStartDate)
	c.SubscriptionEndDate = parseOptionalDate(s.SubscriptionEndDate)
	c.NotificationDaysBeforeExpiry = DefaultNotificationDays
	if s.NotificationDaysBeforeExpiry != nil {
		c.NotificationDaysBeforeExpiry = *s.NotificationDaysBeforeExpiry
	}
	c.AllowedEmployees = s.AllowedEmployees
	c.AllowedSubAccounts = s.AllowedSubAccounts
	c.PricePerEmployee = s.PricePerEmployee
	c.TaxRate = s.TaxRate
	c.RecomputeTotalPrice()
}

func parseOptionalDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, ok := validator.IsValidDate(*s)
	if !ok {
		return nil
	}
	return &t
}

type CreateCompanyRequest struct {
	CompanyProfile
	SubscriptionTerms
	// AdminFullName names the company admin account created from Email.
	AdminFullName *string `json:"admin_full_name,omitempty"`
}

func (r *CreateCompanyRequest) Validate() error {
	var errs validator.ValidationErrors
	errs = r.CompanyProfile.validate(errs)
	errs = r.SubscriptionTerms.validate(errs)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToCompany builds a top-level company from the request.
func (r *CreateCompanyRequest) ToCompany() Company {
	var c Company
	r.CompanyProfile.ApplyTo(&c)
	r.SubscriptionTerms.apply(&c)
	return c
}

type CreateSubCompanyRequest struct {
	CompanyProfile
	AllowedEmployees int     `json:"allowed_employees"`
	PricePerEmployee float64 `json:"price_per_employee"`
	TaxRate          float64 `json:"tax_rate"`
}

func (r *CreateSubCompanyRequest) Validate() error {
	var errs validator.ValidationErrors
	errs = r.CompanyProfile.validate(errs)
	terms := SubscriptionTerms{
		AllowedEmployees: r.AllowedEmployees,
		PricePerEmployee: r.PricePerEmployee,
		TaxRate:          r.TaxRate,
	}
	errs = terms.validate(errs)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateCompanyRequest struct {
	CompanyProfile
	SubscriptionTerms
	// UpdatedAt is the version the client last read; a mismatch is a conflict.
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (r *UpdateCompanyRequest) Validate() error {
	var errs validator.ValidationErrors
	errs = r.CompanyProfile.validate(errs)
	errs = r.SubscriptionTerms.validate(errs)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ApplyTo overwrites the mutable fields of c. Creation time, parent and
// suspension state are left untouched.
func (r *UpdateCompanyRequest) ApplyTo(c *Company) {
	r.CompanyProfile.ApplyTo(c)
	r.SubscriptionTerms.apply(c)
}

// ChangesTerms reports whether applying r would alter c's subscription terms.
func (r *UpdateCompanyRequest) ChangesTerms(c Company) bool {
	proposed := c
	r.SubscriptionTerms.apply(&proposed)
	return !proposed.SameTerms(c)
}

type ListCompanyFilter struct {
	CompanyID    *string `json:"company_id,omitempty"`
	TopLevelOnly bool    `json:"top_level_only"`
	Search       string  `json:"search,omitempty"`
	Page         int     `json:"page"`
	Limit        int     `json:"limit"`
}

func (f *ListCompanyFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UploadAttachmentRequest struct {
	CompanyID  string                `json:"-"`
	File       multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}

var allowedAttachmentExts = []string{".pdf", ".jpg", ".jpeg", ".png", ".doc", ".docx", ".xlsx"}

// ValidateAttachment checks the extension and size of an uploaded file.
func ValidateAttachment(header *multipart.FileHeader) error {
	var errs validator.ValidationErrors
	if header == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "file is required",
		})
		return errs
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !validator.IsInSlice(ext, allowedAttachmentExts) {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "invalid file type: only pdf, jpg, jpeg, png, doc, docx, xlsx allowed",
		})
	}
	if header.Size > 10<<20 {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "file size must not exceed 10MB",
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *UploadAttachmentRequest) Validate() error {
	return ValidateAttachment(r.FileHeader)
}

type CompanyResponse struct {
	ID                           string   `json:"id"`
	Name                         string   `json:"name"`
	RegistrationNumber           *string  `json:"registration_number,omitempty"`
	Email                        *string  `json:"email,omitempty"`
	PhoneNumber                  *string  `json:"phone_number,omitempty"`
	ResponsiblePerson            *string  `json:"responsible_person,omitempty"`
	NationalAddressShortCode     *string  `json:"national_address_short_code,omitempty"`
	TaxNumber                    *string  `json:"tax_number,omitempty"`
	PaymentTerm                  *string  `json:"payment_term,omitempty"`
	ParentCompanyID              *string  `json:"parent_company_id,omitempty"`
	SubscriptionStartDate        *string  `json:"subscription_start_date,omitempty"`
	SubscriptionEndDate          *string  `json:"subscription_end_date,omitempty"`
	NotificationDaysBeforeExpiry int      `json:"notification_days_before_expiry"`
	AllowedEmployees             int      `json:"allowed_employees"`
	AllowedSubAccounts           int      `json:"allowed_sub_accounts"`
	PricePerEmployee             float64  `json:"price_per_employee"`
	TaxRate                      float64  `json:"tax_rate"`
	TotalPricePerEmployee        float64  `json:"total_price_per_employee"`
	AttachmentURL                *string  `json:"attachment_url,omitempty"`
	IsSuspended                  bool     `json:"is_suspended"`
	CreatedAt                    string   `json:"created_at"`
	UpdatedAt                    string   `json:"updated_at"`
	EmployeeCount                *int64   `json:"employee_count,omitempty"`
	SubCompanyIDs                []string `json:"sub_company_ids,omitempty"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func (c Company) ToResponse() CompanyResponse {
	return CompanyResponse{
		ID:                           c.ID,
		Name:                         c.Name,
		RegistrationNumber:           c.RegistrationNumber,
		Email:                        c.Email,
		PhoneNumber:                  c.PhoneNumber,
		ResponsiblePerson:            c.ResponsiblePerson,
		NationalAddressShortCode:     c.NationalAddressShortCode,
		TaxNumber:                    c.TaxNumber,
		PaymentTerm:                  c.PaymentTerm,
		ParentCompanyID:              c.ParentCompanyID,
		SubscriptionStartDate:        formatDate(c.SubscriptionStartDate),
		SubscriptionEndDate:          formatDate(c.SubscriptionEndDate),
		NotificationDaysBeforeExpiry: c.NotificationDaysBeforeExpiry,
		AllowedEmployees:             c.AllowedEmployees,
		AllowedSubAccounts:           c.AllowedSubAccounts,
		PricePerEmployee:             c.PricePerEmployee,
		TaxRate:                      c.TaxRate,
		TotalPricePerEmployee:        c.TotalPricePerEmployee,
		AttachmentURL:                c.AttachmentPath,
		IsSuspended:                  c.IsSuspended,
		CreatedAt:                    c.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:                    c.UpdatedAt.Format(time.RFC3339Nano),
	}
}

type CreateCompanyResponse struct {
	Company CompanyResponse    `json:"company"`
	Admin   *user.UserResponse `json:"admin,omitempty"`
	// TemporaryPassword is returned once and never stored in plain text.
	TemporaryPassword *string `json:"temporary_password,omitempty"`
}

type ListCompanyResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Companies  []CompanyResponse `json:"companies"`
}

type SuspendResponse struct {
	ID          string `json:"id"`
	IsSuspended bool   `json:"is_suspended"`
}

type AttachmentResponse struct {
	AttachmentURL string `json:"attachment_url"`
}
