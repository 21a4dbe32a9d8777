package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/access"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/company"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/repository/memory"
)

type fixture struct {
	resolver *ResolverImpl
	parent   string
	subA     string
	subB     string
	other    string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	repo := store.Companies()

	parent, err := repo.Create(context.Background(), company.Company{Name: "Parent"})
	require.NoError(t, err)
	subA, err := repo.Create(context.Background(), company.Company{Name: "Sub A", ParentCompanyID: &parent.ID})
	require.NoError(t, err)
	subB, err := repo.Create(context.Background(), company.Company{Name: "Sub B", ParentCompanyID: &parent.ID})
	require.NoError(t, err)
	other, err := repo.Create(context.Background(), company.Company{Name: "Other"})
	require.NoError(t, err)

	return fixture{resolver: NewResolver(repo), parent: parent.ID, subA: subA.ID, subB: subB.ID, other: other.ID}
}

func TestResolveScope_SuperAdmin(t *testing.T) {
	f := newFixture(t)
	caller := user.Caller{UserID: "root", Role: user.RoleSuperAdmin}

	scope, err := f.resolver.ResolveScope(context.Background(), caller, nil)
	require.NoError(t, err)
	assert.Equal(t, access.Scope{All: true}, scope)

	scope, err = f.resolver.ResolveScope(context.Background(), caller, &f.parent)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{f.parent, f.subA, f.subB}, scope.CompanyIDs)
	assert.False(t, scope.All)

	missing := "0191f3e4-0000-7000-8000-00000000ffff"
	_, err = f.resolver.ResolveScope(context.Background(), caller, &missing)
	assert.ErrorIs(t, err, company.ErrCompanyNotFound)
}

func TestResolveScope_CompanyAdmins(t *testing.T) {
	f := newFixture(t)

	for _, role := range []user.Role{user.RoleCompanyAdmin, user.RoleSubAdmin} {
		t.Run(string(role), func(t *testing.T) {
			caller := user.Caller{UserID: "admin", Role: role, CompanyID: &f.parent}

			scope, err := f.resolver.ResolveScope(context.Background(), caller, nil)
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{f.parent, f.subA, f.subB}, scope.CompanyIDs)

			scope, err = f.resolver.ResolveScope(context.Background(), caller, &f.parent)
			require.NoError(t, err)
			assert.Equal(t, []string{f.parent}, scope.CompanyIDs)

			scope, err = f.resolver.ResolveScope(context.Background(), caller, &f.subB)
			require.NoError(t, err)
			assert.Equal(t, []string{f.subB}, scope.CompanyIDs)

			_, err = f.resolver.ResolveScope(context.Background(), caller, &f.other)
			assert.ErrorIs(t, err, access.ErrPermissionDenied)
		})
	}
}

func TestResolveScope_SubCompanyAdminSeesOnlyItself(t *testing.T) {
	f := newFixture(t)
	caller := user.Caller{UserID: "admin", Role: user.RoleCompanyAdmin, CompanyID: &f.subA}

	scope, err := f.resolver.ResolveScope(context.Background(), caller, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{f.subA}, scope.CompanyIDs)

	_, err = f.resolver.ResolveScope(context.Background(), caller, &f.parent)
	assert.ErrorIs(t, err, access.ErrPermissionDenied)
}

func TestResolveScope_Employee(t *testing.T) {
	f := newFixture(t)
	caller := user.Caller{UserID: "emp-1", Role: user.RoleEmployee, CompanyID: &f.parent}

	scope, err := f.resolver.ResolveScope(context.Background(), caller, &f.other)
	require.NoError(t, err)
	assert.Equal(t, access.Scope{UserID: "emp-1"}, scope)
}

func TestResolveScope_AdminWithoutCompanyGetsNothing(t *testing.T) {
	f := newFixture(t)
	caller := user.Caller{UserID: "orphan", Role: user.RoleSubAdmin}

	scope, err := f.resolver.ResolveScope(context.Background(), caller, nil)
	require.NoError(t, err)
	assert.True(t, scope.IsEmpty())
}
