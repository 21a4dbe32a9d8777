package user

import "time"

type Role string

const (
	RoleSuperAdmin   Role = "super_admin"   // Platform operator, sees every company
	RoleCompanyAdmin Role = "company_admin" // Manages one company and its sub-companies
	RoleSubAdmin     Role = "sub_admin"     // Delegated admin, same scope as company admin
	RoleEmployee     Role = "employee"      // Regular employee
)

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// IsValid reports whether r is one of the four known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleCompanyAdmin, RoleSubAdmin, RoleEmployee:
		return true
	}
	return false
}

// IsCompanyAdmin covers both company admins and sub admins.
func (r Role) IsCompanyAdmin() bool {
	return r == RoleCompanyAdmin || r == RoleSubAdmin
}

// IsManager is true for every role allowed to manage other users.
func (r Role) IsManager() bool {
	return r == RoleSuperAdmin || r.IsCompanyAdmin()
}

// CanCreate reports whether r may create a user with role target.
func (r Role) CanCreate(target Role) bool {
	switch r {
	case RoleSuperAdmin:
		return target.IsValid()
	case RoleCompanyAdmin:
		return target == RoleSubAdmin || target == RoleEmployee
	case RoleSubAdmin:
		return target == RoleEmployee
	}
	return false
}

func (r Role) rank() int {
	switch r {
	case RoleSuperAdmin:
		return 3
	case RoleCompanyAdmin:
		return 2
	case RoleSubAdmin:
		return 1
	}
	return 0
}

// Outranks reports whether r sits strictly above target.
func (r Role) Outranks(target Role) bool {
	return r.rank() > target.rank()
}

type User struct {
	ID             string
	FullName       string
	NationalID     *string
	Email          string
	PasswordHash   string
	Role           Role
	CompanyID      *string
	JobTitle       *string
	PhoneNumber    *string
	Status         string
	AttachmentPath *string
	IsSuspended    bool
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Join
	CompanyName *string
}

// InCompany reports whether the user belongs to companyID.
func (u *User) InCompany(companyID string) bool {
	return u.CompanyID != nil && *u.CompanyID == companyID
}

// Caller is the authenticated identity every operation is evaluated for.
type Caller struct {
	UserID    string
	Role      Role
	CompanyID *string
}

func (c Caller) IsSuperAdmin() bool {
	return c.Role == RoleSuperAdmin
}

func (c Caller) HasCompany() bool {
	return c.CompanyID != nil && *c.CompanyID != ""
}
