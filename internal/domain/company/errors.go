package company

import (
	"errors"
	"fmt"
)

var (
	ErrCompanyNotFound     = errors.New("company not found")
	ErrCompanySuspended    = errors.New("company is suspended")
	ErrQuotaExceeded       = errors.New("quota exceeded")
	ErrNestingTooDeep      = errors.New("sub-companies cannot have their own sub-companies")
	ErrConcurrencyConflict = errors.New("company was modified by another request")
	ErrFileTypeNotAllowed  = errors.New("file type not allowed")
	ErrFileSizeExceeds     = errors.New("file size exceeds 10MB")

	ErrSubscriptionTermsLocked = errors.New("only a super admin may change subscription terms")
	ErrTermsExceedParent       = errors.New("sub-company terms exceed the parent company's limits")
)

const (
	QuotaEmployees   = "employees"
	QuotaSubAccounts = "sub_accounts"
)

// QuotaExceededError carries the limit that was hit. It matches
// ErrQuotaExceeded under errors.Is.
type QuotaExceededError struct {
	Resource string
	Allowed  int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded: %s limit is %d", e.Resource, e.Allowed)
}

func (e *QuotaExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded
}
