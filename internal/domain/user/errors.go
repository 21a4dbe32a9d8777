package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUserEmailExists         = errors.New("email already registered")
	ErrInvalidRole             = errors.New("invalid role")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrCompanyIDRequired       = errors.New("company ID is required")
	ErrUserSuspended           = errors.New("user is suspended")
	ErrCannotModifyHigherRole  = errors.New("cannot modify a user with an equal or higher role")
	ErrCannotModifySelf        = errors.New("cannot suspend or delete your own account")
)
