package jwt

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *JWTService {
	return NewJWTService("test-secret", time.Hour, 24*time.Hour, false)
}

func TestGenerateAccessToken_Claims(t *testing.T) {
	svc := newTestService()
	companyID := "0191f3e4-0000-7000-8000-000000000001"

	token, exp, err := svc.GenerateAccessToken("user-1", "a@b.sa", &companyID, user.RoleCompanyAdmin)
	require.NoError(t, err)
	assert.Greater(t, exp, time.Now().Unix())

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)

	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["user_id"])
	assert.Equal(t, companyID, claims["company_id"])
	assert.Equal(t, "company_admin", claims["role"])
	assert.Equal(t, TokenTypeAccess, claims["type"])
}

func TestGenerateAccessToken_NoCompany(t *testing.T) {
	svc := newTestService()

	token, _, err := svc.GenerateAccessToken("root", "root@b.sa", nil, user.RoleSuperAdmin)
	require.NoError(t, err)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)
	assert.Nil(t, claims["company_id"])
}

func TestParseRefreshToken(t *testing.T) {
	svc := newTestService()

	refresh, _, err := svc.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	userID, err := svc.ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	t.Run("access token is rejected", func(t *testing.T) {
		access, _, err := svc.GenerateAccessToken("user-1", "a@b.sa", nil, user.RoleEmployee)
		require.NoError(t, err)
		_, err = svc.ParseRefreshToken(access)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})

	t.Run("other secret is rejected", func(t *testing.T) {
		other := NewJWTService("another-secret", time.Hour, time.Hour, false)
		_, err := other.ParseRefreshToken(refresh)
		assert.Error(t, err)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		short := NewJWTService("test-secret", time.Hour, -time.Hour, false)
		expired, _, err := short.GenerateRefreshToken("user-1")
		require.NoError(t, err)
		_, err = svc.ParseRefreshToken(expired)
		assert.Error(t, err)
	})
}

func TestGenerateRefreshToken_Unique(t *testing.T) {
	svc := newTestService()
	a, _, err := svc.GenerateRefreshToken("user-1")
	require.NoError(t, err)
	b, _, err := svc.GenerateRefreshToken("user-1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestRefreshTokenCookie(t *testing.T) {
	svc := NewJWTService("s", time.Hour, time.Hour, true)
	exp := time.Now().Add(time.Hour).Unix()

	c := svc.RefreshTokenCookie("tok", exp)
	assert.Equal(t, RefreshTokenCookieName, c.Name)
	assert.Equal(t, "/api/v1/auth", c.Path)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)

	cleared := svc.ClearRefreshTokenCookie()
	assert.Equal(t, -1, cleared.MaxAge)
	assert.Empty(t, cleared.Value)
}

func TestRevokeToken(t *testing.T) {
	svc := newTestService()
	assert.False(t, svc.IsTokenRevoked("x"))
	svc.RevokeToken("x")
	assert.True(t, svc.IsTokenRevoked("x"))
}
