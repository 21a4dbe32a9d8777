package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/auth"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/company"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/jwt"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/metrics"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/password"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/ratelimit"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/repository/memory"
)

const (
	testSecret   = "test-secret-key-for-jwt"
	testPassword = "password123"
)

var testSession = auth.SessionTrackingRequest{IPAddress: "127.0.0.1", UserAgent: "Mozilla/5.0"}

type env struct {
	svc     *AuthServiceImpl
	store   *memory.Store
	jwt     *jwt.JWTService
	company company.Company
}

func newEnv(t *testing.T) env {
	t.Helper()
	store := memory.NewStore()
	jwtService := jwt.NewJWTService(testSecret, time.Hour, 24*time.Hour, false)
	svc := NewAuthService(store, store.Users(), store.Companies(), store.RefreshTokens(), jwtService,
		ratelimit.NewInMemory(time.Minute), 3, metrics.New())

	co, err := store.Companies().Create(context.Background(), company.Company{Name: "Acme"})
	require.NoError(t, err)
	return env{svc: svc, store: store, jwt: jwtService, company: co}
}

func (e env) createUser(t *testing.T, email string, role user.Role) user.User {
	t.Helper()
	hash, err := password.Hash(testPassword)
	require.NoError(t, err)
	var companyID *string
	if role != user.RoleSuperAdmin {
		companyID = &e.company.ID
	}
	u, err := e.store.Users().Create(context.Background(), user.User{
		FullName: "Test User", Email: email, PasswordHash: hash, Role: role, CompanyID: companyID,
	})
	require.NoError(t, err)
	return u
}

func TestLogin_Success(t *testing.T) {
	e := newEnv(t)
	u := e.createUser(t, "login@example.com", user.RoleEmployee)

	resp, err := e.svc.Login(context.Background(), auth.LoginRequest{Email: "LOGIN@example.com", Password: testPassword}, testSession)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Greater(t, resp.AccessTokenExpiresIn, int64(0))
	assert.Equal(t, u.ID, resp.User.ID)

	userID, revoked, err := e.store.RefreshTokens().IsRefreshTokenRevoked(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)
	assert.False(t, revoked)

	token, err := e.jwt.JWTAuth().Decode(resp.AccessToken)
	require.NoError(t, err)
	tokenType, _ := token.Get("type")
	role, _ := token.Get("role")
	companyID, _ := token.Get("company_id")
	assert.Equal(t, jwt.TokenTypeAccess, tokenType)
	assert.Equal(t, string(user.RoleEmployee), role)
	assert.Equal(t, e.company.ID, companyID)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	e := newEnv(t)
	e.createUser(t, "user@example.com", user.RoleEmployee)

	_, err := e.svc.Login(context.Background(), auth.LoginRequest{Email: "user@example.com", Password: "wrong-password"}, testSession)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = e.svc.Login(context.Background(), auth.LoginRequest{Email: "nobody@example.com", Password: testPassword}, testSession)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_Suspended(t *testing.T) {
	t.Run("user", func(t *testing.T) {
		e := newEnv(t)
		u := e.createUser(t, "user@example.com", user.RoleEmployee)
		require.NoError(t, e.store.Users().SetSuspended(context.Background(), u.ID, true))

		_, err := e.svc.Login(context.Background(), auth.LoginRequest{Email: u.Email, Password: testPassword}, testSession)
		assert.ErrorIs(t, err, auth.ErrAccountSuspended)
	})

	t.Run("parent company", func(t *testing.T) {
		e := newEnv(t)
		sub, err := e.store.Companies().Create(context.Background(), company.Company{Name: "Acme Branch", ParentCompanyID: &e.company.ID})
		require.NoError(t, err)
		hash, err := password.Hash(testPassword)
		require.NoError(t, err)
		u, err := e.store.Users().Create(context.Background(), user.User{
			FullName: "Branch User", Email: "branch@example.com", Role: user.RoleEmployee, CompanyID: &sub.ID, PasswordHash: hash,
		})
		require.NoError(t, err)
		require.NoError(t, e.store.Companies().SetSuspended(context.Background(), e.company.ID, true))

		_, err = e.svc.Login(context.Background(), auth.LoginRequest{Email: u.Email, Password: testPassword}, testSession)
		assert.ErrorIs(t, err, auth.ErrAccountSuspended)
	})
}

func TestLogin_RateLimited(t *testing.T) {
	e := newEnv(t)
	e.createUser(t, "user@example.com", user.RoleEmployee)
	bad := auth.LoginRequest{Email: "user@example.com", Password: "wrong-password"}

	for i := 0; i < 3; i++ {
		_, err := e.svc.Login(context.Background(), bad, testSession)
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	}

	_, err := e.svc.Login(context.Background(), auth.LoginRequest{Email: "user@example.com", Password: testPassword}, testSession)
	require.ErrorIs(t, err, auth.ErrTooManyAttempts)
	var limited *auth.RateLimitedError
	require.ErrorAs(t, err, &limited)
	assert.Greater(t, limited.RetryAfter, time.Duration(0))

	other := auth.SessionTrackingRequest{IPAddress: "10.0.0.9"}
	_, err = e.svc.Login(context.Background(), auth.LoginRequest{Email: "user@example.com", Password: testPassword}, other)
	assert.NoError(t, err)
}

func TestRefreshToken(t *testing.T) {
	e := newEnv(t)
	e.createUser(t, "user@example.com", user.RoleCompanyAdmin)
	login, err := e.svc.Login(context.Background(), auth.LoginRequest{Email: "user@example.com", Password: testPassword}, testSession)
	require.NoError(t, err)

	refreshed, err := e.svc.RefreshToken(context.Background(), auth.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = e.svc.RefreshToken(context.Background(), auth.RefreshTokenRequest{RefreshToken: login.AccessToken})
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = e.svc.RefreshToken(context.Background(), auth.RefreshTokenRequest{RefreshToken: "not-a-jwt"})
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	require.NoError(t, e.svc.Logout(context.Background(), login.RefreshToken))
	_, err = e.svc.RefreshToken(context.Background(), auth.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)

	assert.NoError(t, e.svc.Logout(context.Background(), login.RefreshToken))
	assert.NoError(t, e.svc.Logout(context.Background(), "unknown"))
}

func TestChangePassword(t *testing.T) {
	e := newEnv(t)
	u := e.createUser(t, "user@example.com", user.RoleEmployee)
	caller := user.Caller{UserID: u.ID, Role: u.Role, CompanyID: u.CompanyID}
	login, err := e.svc.Login(context.Background(), auth.LoginRequest{Email: u.Email, Password: testPassword}, testSession)
	require.NoError(t, err)

	err = e.svc.ChangePassword(context.Background(), caller, auth.ChangePasswordRequest{
		CurrentPassword: "nope", NewPassword: "new-password-1", ConfirmPassword: "new-password-1",
	})
	assert.ErrorIs(t, err, auth.ErrWrongCurrentPassword)

	err = e.svc.ChangePassword(context.Background(), caller, auth.ChangePasswordRequest{
		CurrentPassword: testPassword, NewPassword: "new-password-1", ConfirmPassword: "new-password-1",
	})
	require.NoError(t, err)

	_, err = e.svc.RefreshToken(context.Background(), auth.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)

	_, err = e.svc.Login(context.Background(), auth.LoginRequest{Email: u.Email, Password: "new-password-1"}, testSession)
	assert.NoError(t, err)
}

func TestLoginWithGoogle(t *testing.T) {
	e := newEnv(t)
	u := e.createUser(t, "google@example.com", user.RoleEmployee)

	resp, err := e.svc.LoginWithGoogle(context.Background(), "google@example.com", testSession)
	require.NoError(t, err)
	assert.Equal(t, u.ID, resp.User.ID)

	_, err = e.svc.LoginWithGoogle(context.Background(), "stranger@example.com", testSession)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestMe(t *testing.T) {
	e := newEnv(t)
	u := e.createUser(t, "me@example.com", user.RoleSubAdmin)

	me, err := e.svc.Me(context.Background(), user.Caller{UserID: u.ID})
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", me.Email)
	assert.Equal(t, "Acme", *me.CompanyName)

	_, err = e.svc.Me(context.Background(), user.Caller{UserID: "missing"})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestEnsureSuperAdmin(t *testing.T) {
	e := newEnv(t)

	require.NoError(t, e.svc.EnsureSuperAdmin(context.Background(), "", ""))
	exists, err := e.store.Users().ExistsByRole(context.Background(), user.RoleSuperAdmin)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, e.svc.EnsureSuperAdmin(context.Background(), "Root@Example.com", "bootstrap-pass"))
	root, err := e.store.Users().GetByEmail(context.Background(), "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.RoleSuperAdmin, root.Role)
	assert.Nil(t, root.CompanyID)

	// a second run is a no-op
	require.NoError(t, e.svc.EnsureSuperAdmin(context.Background(), "other@example.com", "bootstrap-pass"))
	_, err = e.store.Users().GetByEmail(context.Background(), "other@example.com")
	assert.Error(t, err)

	_, err = e.svc.Login(context.Background(), auth.LoginRequest{Email: "root@example.com", Password: "bootstrap-pass"}, testSession)
	assert.NoError(t, err)
}
