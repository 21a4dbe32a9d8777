package employee

import (
	"mime/multipart"
	"strings"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/validator"
)

type CreateEmployeeRequest struct {
	FullName    string  `json:"full_name"`
	NationalID  *string `json:"national_id,omitempty"`
	Email       string  `json:"email"`
	Password    *string `json:"password,omitempty"` // generated when omitted
	Role        string  `json:"role"`               // defaults to employee
	CompanyID   *string `json:"company_id,omitempty"`
	JobTitle    *string `json:"job_title,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.FullName) {
		errs = append(errs, validator.ValidationError{
			Field:   "full_name",
			Message: "full_name is required",
		})
	} else if len(r.FullName) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "full_name",
			Message: "full_name must not exceed 255 characters",
		})
	}

	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	} else if !validator.IsValidEmail(strings.TrimSpace(r.Email)) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "invalid email format",
		})
	}

	if r.Password != nil && len(*r.Password) < 8 {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must be at least 8 characters",
		})
	}

	if r.Role == "" {
		r.Role = string(user.RoleEmployee)
	}
	if !user.Role(r.Role).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of: super_admin, company_admin, sub_admin, employee",
		})
	}

	if r.NationalID != nil && *r.NationalID != "" && !validator.IsValidNationalID(*r.NationalID) {
		errs = append(errs, validator.ValidationError{
			Field:   "national_id",
			Message: "national_id must be exactly 10 digits",
		})
	}
	if r.PhoneNumber != nil && *r.PhoneNumber != "" && !validator.IsValidPhoneNumber(*r.PhoneNumber) {
		errs = append(errs, validator.ValidationError{
			Field:   "phone_number",
			Message: "invalid phone number",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateEmployeeRequest struct {
	FullName    string  `json:"full_name"`
	NationalID  string  `json:"national_id"`
	JobTitle    *string `json:"job_title,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Status      *string `json:"status,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.FullName) {
		errs = append(errs, validator.ValidationError{
			Field:   "full_name",
			Message: "full_name is required",
		})
	}
	if validator.IsEmpty(r.NationalID) {
		errs = append(errs, validator.ValidationError{
			Field:   "national_id",
			Message: "national_id is required",
		})
	} else if !validator.IsValidNationalID(r.NationalID) {
		errs = append(errs, validator.ValidationError{
			Field:   "national_id",
			Message: "national_id must be exactly 10 digits",
		})
	}
	if r.PhoneNumber != nil && *r.PhoneNumber != "" && !validator.IsValidPhoneNumber(*r.PhoneNumber) {
		errs = append(errs, validator.ValidationError{
			Field:   "phone_number",
			Message: "invalid phone number",
		})
	}
	if r.Status != nil && !validator.IsInSlice(*r.Status, []string{user.StatusActive, user.StatusInactive}) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: Active, Inactive",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ApplyTo copies the editable fields onto u.
func (r *UpdateEmployeeRequest) ApplyTo(u *user.User) {
	u.FullName = strings.TrimSpace(r.FullName)
	nationalID := r.NationalID
	u.NationalID = &nationalID
	u.JobTitle = r.JobTitle
	u.PhoneNumber = r.PhoneNumber
	if r.Status != nil {
		u.Status = *r.Status
	}
}

type EmployeeFilter struct {
	CompanyID *string `json:"company_id,omitempty"`
	Role      *string `json:"role,omitempty"`
	Search    string  `json:"search,omitempty"`
	Page      int     `json:"page"`
	Limit     int     `json:"limit"`
}

func (f *EmployeeFilter) Validate() error {
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
	if f.Role != nil && !user.Role(*f.Role).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of: super_admin, company_admin, sub_admin, employee",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CreateEmployeeResponse struct {
	Employee user.UserResponse `json:"employee"`
	// TemporaryPassword is set only when the password was generated.
	TemporaryPassword *string `json:"temporary_password,omitempty"`
}

type ListEmployeeResponse struct {
	TotalCount int64               `json:"total_count"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"total_pages"`
	Employees  []user.UserResponse `json:"employees"`
}

type SuspendResponse struct {
	ID          string `json:"id"`
	IsSuspended bool   `json:"is_suspended"`
}

type UploadAttachmentRequest struct {
	EmployeeID string                `json:"-"`
	File       multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}
