package employee

import "errors"

var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrRoleNotAllowed    = errors.New("you are not allowed to create users with this role")
	ErrCompanyRequired   = errors.New("company_id is required for this role")
	ErrCompanyNotAllowed = errors.New("super admins cannot belong to a company")
)
