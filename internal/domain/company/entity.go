package company

import (
	"math"
	"time"
)

type Company struct {
	ID                           string
	Name                         string
	RegistrationNumber           *string
	Email                        *string
	PhoneNumber                  *string
	ResponsiblePerson            *string
	NationalAddressShortCode     *string
	TaxNumber                    *string
	PaymentTerm                  *string
	ParentCompanyID              *string
	SubscriptionStartDate        *time.Time
	SubscriptionEndDate          *time.Time
	NotificationDaysBeforeExpiry int
	AllowedEmployees             int
	AllowedSubAccounts           int
	PricePerEmployee             float64
	TaxRate                      float64
	TotalPricePerEmployee        float64
	AttachmentPath               *string
	IsSuspended                  bool
	CreatedAt                    time.Time
	UpdatedAt                    time.Time
}

const DefaultNotificationDays = 30

// IsTopLevel reports whether the company has no parent.
func (c *Company) IsTopLevel() bool {
	return c.ParentCompanyID == nil
}

// RecomputeTotalPrice sets TotalPricePerEmployee to price plus tax, rounded to cents.
func (c *Company) RecomputeTotalPrice() {
	total := c.PricePerEmployee * (1 + c.TaxRate/100)
	c.TotalPricePerEmployee = math.Round(total*100) / 100
}

// EmployeeQuotaUnlimited reports whether employee creation is uncapped.
func (c *Company) EmployeeQuotaUnlimited() bool {
	return c.AllowedEmployees == 0
}

// DaysUntilExpiry returns whole days between today and the subscription end.
// ok is false when the company has no end date.
func (c *Company) DaysUntilExpiry(today time.Time) (days int, ok bool) {
	if c.SubscriptionEndDate == nil {
		return 0, false
	}
	end := truncateDay(*c.SubscriptionEndDate)
	start := truncateDay(today)
	return int(math.Round(end.Sub(start).Hours() / 24)), true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameTerms reports whether c and o carry identical subscription terms.
func (c *Company) SameTerms(o Company) bool {
	return sameDay(c.SubscriptionStartDate, o.SubscriptionStartDate) &&
		sameDay(c.SubscriptionEndDate, o.SubscriptionEndDate) &&
		c.NotificationDaysBeforeExpiry == o.NotificationDaysBeforeExpiry &&
		c.AllowedEmployees == o.AllowedEmployees &&
		c.AllowedSubAccounts == o.AllowedSubAccounts &&
		c.PricePerEmployee == o.PricePerEmployee &&
		c.TaxRate == o.TaxRate
}

// WithinLimitsOf checks a sub-company's terms against its parent: no
// sub-accounts of its own, an employee cap no larger than the parent's, and
// an end date no later than the parent's.
func (c *Company) WithinLimitsOf(parent Company) error {
	if c.AllowedSubAccounts != 0 {
		return ErrTermsExceedParent
	}
	if !parent.EmployeeQuotaUnlimited() &&
		(c.EmployeeQuotaUnlimited() || c.AllowedEmployees > parent.AllowedEmployees) {
		return ErrTermsExceedParent
	}
	if parent.SubscriptionEndDate != nil &&
		(c.SubscriptionEndDate == nil || truncateDay(*c.SubscriptionEndDate).After(truncateDay(*parent.SubscriptionEndDate))) {
		return ErrTermsExceedParent
	}
	return nil
}

func sameDay(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return truncateDay(*a).Equal(truncateDay(*b))
}
