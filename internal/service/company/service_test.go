package company

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/access"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/company"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/metrics"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/password"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/storage"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/repository/memory"
	accessservice "github.com/nabd-altamayyuz/hr-backend-go/internal/service/access"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/service/file"
)

var superAdmin = user.Caller{UserID: "root", Role: user.RoleSuperAdmin}

func strPtr(s string) *string { return &s }

func newTestService(t *testing.T) (*CompanyServiceImpl, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	local, err := storage.NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	svc := NewCompanyService(store, store.Companies(), store.Users(), accessservice.NewResolver(store.Companies()),
		file.NewFileService(local), metrics.New(), time.UTC)
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }
	return svc, store
}

func createParent(t *testing.T, svc *CompanyServiceImpl, allowedSubs int) company.CompanyResponse {
	t.Helper()
	resp, err := svc.Create(context.Background(), superAdmin, company.CreateCompanyRequest{
		CompanyProfile: company.CompanyProfile{Name: "Parent Co"},
		SubscriptionTerms: company.SubscriptionTerms{
			SubscriptionEndDate: strPtr("2025-12-31"),
			AllowedEmployees:    10,
			AllowedSubAccounts:  allowedSubs,
			PricePerEmployee:    100,
			TaxRate:             15,
		},
	})
	require.NoError(t, err)
	return resp.Company
}

func TestCompanyService_Create(t *testing.T) {
	svc, store := newTestService(t)

	resp, err := svc.Create(context.Background(), superAdmin, company.CreateCompanyRequest{
		CompanyProfile:    company.CompanyProfile{Name: "Acme", Email: strPtr("Admin@Acme.sa")},
		SubscriptionTerms: company.SubscriptionTerms{PricePerEmployee: 100, TaxRate: 15, AllowedEmployees: 5},
		AdminFullName:     strPtr("Acme Admin"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme", resp.Company.Name)
	assert.InDelta(t, 115.0, resp.Company.TotalPricePerEmployee, 0.001)
	assert.Equal(t, company.DefaultNotificationDays, resp.Company.NotificationDaysBeforeExpiry)
	require.NotNil(t, resp.Admin)
	assert.Equal(t, "admin@acme.sa", resp.Admin.Email)
	assert.Equal(t, user.RoleCompanyAdmin, resp.Admin.Role)
	require.NotNil(t, resp.TemporaryPassword)

	admin, err := store.Users().GetByEmail(context.Background(), "admin@acme.sa")
	require.NoError(t, err)
	assert.True(t, password.Matches(admin.PasswordHash, *resp.TemporaryPassword))
	assert.NotEqual(t, *resp.TemporaryPassword, admin.PasswordHash)
}

func TestCompanyService_Create_ExistingEmailCreatesNoAdmin(t *testing.T) {
	svc, store := newTestService(t)
	_, err := store.Users().Create(context.Background(), user.User{FullName: "Root", Email: "taken@acme.sa", Role: user.RoleSuperAdmin})
	require.NoError(t, err)

	resp, err := svc.Create(context.Background(), superAdmin, company.CreateCompanyRequest{
		CompanyProfile: company.CompanyProfile{Name: "Acme", Email: strPtr("taken@acme.sa")},
	})
	require.NoError(t, err)
	assert.Nil(t, resp.Admin)
	assert.Nil(t, resp.TemporaryPassword)
}

func TestCompanyService_Create_RequiresSuperAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	companyID := "x"

	_, err := svc.Create(context.Background(), user.Caller{UserID: "a", Role: user.RoleCompanyAdmin, CompanyID: &companyID},
		company.CreateCompanyRequest{CompanyProfile: company.CompanyProfile{Name: "Acme"}})
	assert.ErrorIs(t, err, access.ErrPermissionDenied)
}

func TestCompanyService_Create_Validation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), superAdmin, company.CreateCompanyRequest{
		SubscriptionTerms: company.SubscriptionTerms{TaxRate: 150},
	})
	var verrs interface{ ToMap() map[string]string }
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs.ToMap(), "name")
	assert.Contains(t, verrs.ToMap(), "tax_rate")
}

func TestCompanyService_CreateSub(t *testing.T) {
	svc, _ := newTestService(t)
	parent := createParent(t, svc, 2)
	admin := user.Caller{UserID: "admin", Role: user.RoleCompanyAdmin, CompanyID: &parent.ID}

	sub, err := svc.CreateSub(context.Background(), admin, parent.ID, company.CreateSubCompanyRequest{
		CompanyProfile:   company.CompanyProfile{Name: "Branch"},
		AllowedEmployees: 3,
		PricePerEmployee: 50,
		TaxRate:          10,
	})
	require.NoError(t, err)

	assert.Equal(t, &parent.ID, sub.ParentCompanyID)
	assert.Equal(t, parent.SubscriptionEndDate, sub.SubscriptionEndDate)
	assert.Equal(t, "2025-03-10", *sub.SubscriptionStartDate)
	assert.Equal(t, 0, sub.AllowedSubAccounts)
	assert.InDelta(t, 55.0, sub.TotalPricePerEmployee, 0.001)

	t.Run("nesting is capped at one level", func(t *testing.T) {
		_, err := svc.CreateSub(context.Background(), superAdmin, sub.ID, company.CreateSubCompanyRequest{
			CompanyProfile: company.CompanyProfile{Name: "Too deep"},
		})
		assert.ErrorIs(t, err, company.ErrNestingTooDeep)
	})

	t.Run("admin of another company is denied", func(t *testing.T) {
		other := "someone-else"
		_, err := svc.CreateSub(context.Background(), user.Caller{UserID: "b", Role: user.RoleCompanyAdmin, CompanyID: &other},
			parent.ID, company.CreateSubCompanyRequest{CompanyProfile: company.CompanyProfile{Name: "Nope"}})
		assert.ErrorIs(t, err, access.ErrPermissionDenied)
	})

	t.Run("sub admin is denied", func(t *testing.T) {
		_, err := svc.CreateSub(context.Background(), user.Caller{UserID: "c", Role: user.RoleSubAdmin, CompanyID: &parent.ID},
			parent.ID, company.CreateSubCompanyRequest{CompanyProfile: company.CompanyProfile{Name: "Nope"}})
		assert.ErrorIs(t, err, access.ErrPermissionDenied)
	})
}

func TestCompanyService_CreateSub_QuotaUnderConcurrency(t *testing.T) {
	svc, store := newTestService(t)
	parent := createParent(t, svc, 3)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateSub(context.Background(), superAdmin, parent.ID, company.CreateSubCompanyRequest{
				CompanyProfile: company.CompanyProfile{Name: "Branch"},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, rejected int
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		var quotaErr *company.QuotaExceededError
		require.ErrorAs(t, err, &quotaErr)
		assert.Equal(t, company.QuotaSubAccounts, quotaErr.Resource)
		assert.Equal(t, 3, quotaErr.Allowed)
		rejected++
	}
	assert.Equal(t, 3, ok)
	assert.Equal(t, 7, rejected)

	count, err := store.Companies().CountSubCompanies(context.Background(), parent.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestCompanyService_GetByIDAndList(t *testing.T) {
	svc, store := newTestService(t)
	parent := createParent(t, svc, 2)
	sub, err := svc.CreateSub(context.Background(), superAdmin, parent.ID, company.CreateSubCompanyRequest{
		CompanyProfile: company.CompanyProfile{Name: "Branch"},
	})
	require.NoError(t, err)
	other := createParent(t, svc, 0)

	_, err = store.Users().Create(context.Background(), user.User{FullName: "E", Email: "e@p.sa", Role: user.RoleEmployee, CompanyID: &parent.ID})
	require.NoError(t, err)

	got, err := svc.GetByID(context.Background(), superAdmin, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{sub.ID}, got.SubCompanyIDs)
	require.NotNil(t, got.EmployeeCount)
	assert.EqualValues(t, 1, *got.EmployeeCount)

	admin := user.Caller{UserID: "admin", Role: user.RoleCompanyAdmin, CompanyID: &parent.ID}
	_, err = svc.GetByID(context.Background(), admin, other.ID)
	assert.ErrorIs(t, err, access.ErrPermissionDenied)

	_, err = svc.GetByID(context.Background(), superAdmin, "0191f3e4-0000-7000-8000-00000000ffff")
	assert.ErrorIs(t, err, company.ErrCompanyNotFound)

	list, err := svc.List(context.Background(), admin, company.ListCompanyFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.TotalCount)
	assert.Equal(t, 1, list.TotalPages)

	all, err := svc.List(context.Background(), superAdmin, company.ListCompanyFilter{TopLevelOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.TotalCount)

	_, err = svc.List(context.Background(), user.Caller{UserID: "e", Role: user.RoleEmployee, CompanyID: &parent.ID}, company.ListCompanyFilter{})
	assert.ErrorIs(t, err, access.ErrPermissionDenied)
}

func TestCompanyService_Update(t *testing.T) {
	svc, _ := newTestService(t)
	parent := createParent(t, svc, 1)
	stale, err := time.Parse(time.RFC3339Nano, parent.UpdatedAt)
	require.NoError(t, err)

	req := company.UpdateCompanyRequest{
		CompanyProfile:    company.CompanyProfile{Name: "Renamed"},
		SubscriptionTerms: company.SubscriptionTerms{PricePerEmployee: 200, TaxRate: 5, AllowedSubAccounts: 1},
		UpdatedAt:         &stale,
	}
	updated, err := svc.Update(context.Background(), superAdmin, parent.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.InDelta(t, 210.0, updated.TotalPricePerEmployee, 0.001)
	assert.Equal(t, parent.CreatedAt, updated.CreatedAt)

	_, err = svc.Update(context.Background(), superAdmin, parent.ID, req)
	assert.ErrorIs(t, err, company.ErrConcurrencyConflict)
}

func TestCompanyService_UpdateSubSecondVersion(t *testing.T) {
	svc, store := newTestService(t)
	parent := createParent(t, svc, 1)
	version, err := time.Parse(time.RFC3339Nano, parent.UpdatedAt)
	require.NoError(t, err)
	stored, err := store.Companies().GetByID(context.Background(), parent.ID)
	require.NoError(t, err)
	assert.True(t, stored.UpdatedAt.Equal(version))

	// A version from later in the same second is still stale.
	near := version.Add(400 * time.Millisecond)
	_, err = svc.Update(context.Background(), superAdmin, parent.ID, company.UpdateCompanyRequest{
		CompanyProfile: company.CompanyProfile{Name: "Renamed"},
		UpdatedAt:      &near,
	})
	assert.ErrorIs(t, err, company.ErrConcurrencyConflict)
}

func TestCompanyService_UpdateTermsRequireSuperAdmin(t *testing.T) {
	svc, store := newTestService(t)
	parent := createParent(t, svc, 1)

	grab := company.UpdateCompanyRequest{
		CompanyProfile: company.CompanyProfile{Name: "Parent Co"},
		SubscriptionTerms: company.SubscriptionTerms{
			SubscriptionEndDate: strPtr("2099-12-31"),
			AllowedEmployees:    0,
			AllowedSubAccounts:  500,
		},
	}
	for _, role := range []user.Role{user.RoleSubAdmin, user.RoleCompanyAdmin} {
		caller := user.Caller{UserID: "tenant", Role: role, CompanyID: &parent.ID}
		_, err := svc.Update(context.Background(), caller, parent.ID, grab)
		assert.ErrorIs(t, err, company.ErrSubscriptionTermsLocked, role)
	}

	stored, err := store.Companies().GetByID(context.Background(), parent.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.AllowedEmployees)
	assert.Equal(t, 1, stored.AllowedSubAccounts)
	assert.Equal(t, "2025-12-31", stored.SubscriptionEndDate.Format(time.DateOnly))

	// Echoing the current terms back is a profile-only edit.
	echo := company.UpdateCompanyRequest{
		CompanyProfile: company.CompanyProfile{Name: "Parent Holding"},
		SubscriptionTerms: company.SubscriptionTerms{
			SubscriptionEndDate: strPtr("2025-12-31"),
			AllowedEmployees:    10,
			AllowedSubAccounts:  1,
			PricePerEmployee:    100,
			TaxRate:             15,
		},
	}
	subAdmin := user.Caller{UserID: "sub", Role: user.RoleSubAdmin, CompanyID: &parent.ID}
	updated, err := svc.Update(context.Background(), subAdmin, parent.ID, echo)
	require.NoError(t, err)
	assert.Equal(t, "Parent Holding", updated.Name)
	assert.Equal(t, 10, updated.AllowedEmployees)
}

func TestCompanyService_UpdateSubTermsWithinParentLimits(t *testing.T) {
	svc, _ := newTestService(t)
	parent := createParent(t, svc, 2)
	sub, err := svc.CreateSub(context.Background(), superAdmin, parent.ID, company.CreateSubCompanyRequest{
		CompanyProfile:   company.CompanyProfile{Name: "Branch"},
		AllowedEmployees: 3,
	})
	require.NoError(t, err)
	admin := user.Caller{UserID: "admin", Role: user.RoleCompanyAdmin, CompanyID: &parent.ID}

	terms := func(employees int, end string) company.UpdateCompanyRequest {
		return company.UpdateCompanyRequest{
			CompanyProfile: company.CompanyProfile{Name: "Branch"},
			SubscriptionTerms: company.SubscriptionTerms{
				SubscriptionEndDate: strPtr(end),
				AllowedEmployees:    employees,
				PricePerEmployee:    80,
				TaxRate:             15,
			},
		}
	}

	updated, err := svc.Update(context.Background(), admin, sub.ID, terms(5, "2025-06-30"))
	require.NoError(t, err)
	assert.Equal(t, 5, updated.AllowedEmployees)

	_, err = svc.Update(context.Background(), admin, sub.ID, terms(50, "2025-06-30"))
	assert.ErrorIs(t, err, company.ErrTermsExceedParent)
	_, err = svc.Update(context.Background(), admin, sub.ID, terms(0, "2025-06-30"))
	assert.ErrorIs(t, err, company.ErrTermsExceedParent, "unlimited under a limited parent")
	_, err = svc.Update(context.Background(), admin, sub.ID, terms(5, "2099-12-31"))
	assert.ErrorIs(t, err, company.ErrTermsExceedParent)

	subAdmin := user.Caller{UserID: "sub", Role: user.RoleSubAdmin, CompanyID: &sub.ID}
	_, err = svc.Update(context.Background(), subAdmin, sub.ID, terms(6, "2025-06-30"))
	assert.ErrorIs(t, err, company.ErrSubscriptionTermsLocked)
}

func TestCompanyService_ToggleSuspend(t *testing.T) {
	svc, _ := newTestService(t)
	parent := createParent(t, svc, 1)
	sub, err := svc.CreateSub(context.Background(), superAdmin, parent.ID, company.CreateSubCompanyRequest{
		CompanyProfile: company.CompanyProfile{Name: "Branch"},
	})
	require.NoError(t, err)
	admin := user.Caller{UserID: "admin", Role: user.RoleCompanyAdmin, CompanyID: &parent.ID}

	resp, err := svc.ToggleSuspend(context.Background(), admin, sub.ID)
	require.NoError(t, err)
	assert.True(t, resp.IsSuspended)

	resp, err = svc.ToggleSuspend(context.Background(), admin, sub.ID)
	require.NoError(t, err)
	assert.False(t, resp.IsSuspended)

	_, err = svc.ToggleSuspend(context.Background(), admin, parent.ID)
	assert.ErrorIs(t, err, access.ErrPermissionDenied)

	resp, err = svc.ToggleSuspend(context.Background(), superAdmin, parent.ID)
	require.NoError(t, err)
	assert.True(t, resp.IsSuspended)
}

func TestCompanyService_DeleteCascades(t *testing.T) {
	svc, store := newTestService(t)
	parent := createParent(t, svc, 1)
	sub, err := svc.CreateSub(context.Background(), superAdmin, parent.ID, company.CreateSubCompanyRequest{
		CompanyProfile: company.CompanyProfile{Name: "Branch"},
	})
	require.NoError(t, err)
	emp, err := store.Users().Create(context.Background(), user.User{FullName: "E", Email: "e@b.sa", Role: user.RoleEmployee, CompanyID: &sub.ID})
	require.NoError(t, err)

	admin := user.Caller{UserID: "admin", Role: user.RoleCompanyAdmin, CompanyID: &parent.ID}
	assert.ErrorIs(t, svc.Delete(context.Background(), admin, parent.ID), access.ErrPermissionDenied)

	require.NoError(t, svc.Delete(context.Background(), superAdmin, parent.ID))
	_, err = store.Companies().GetByID(context.Background(), sub.ID)
	assert.Error(t, err)
	_, err = store.Users().GetByID(context.Background(), emp.ID)
	assert.Error(t, err)

	assert.ErrorIs(t, svc.Delete(context.Background(), superAdmin, parent.ID), company.ErrCompanyNotFound)
}
