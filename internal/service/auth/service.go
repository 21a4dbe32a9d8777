package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/auth"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/company"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/jwt"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/metrics"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/password"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/ratelimit"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/repository/postgresql"
)

const (
	outcomeSuccess   = "success"
	outcomeInvalid   = "invalid_credentials"
	outcomeSuspended = "suspended"
	outcomeLimited   = "rate_limited"
)

type AuthServiceImpl struct {
	user.UserRepository
	company.CompanyRepository
	auth.RefreshTokenRepository
	jwt.Service
	transactor    postgresql.Transactor
	limiter       ratelimit.Limiter
	loginAttempts int
	metrics       *metrics.Metrics

	now func() time.Time
}

func NewAuthService(
	transactor postgresql.Transactor,
	userRepository user.UserRepository,
	companyRepository company.CompanyRepository,
	refreshTokenRepository auth.RefreshTokenRepository,
	jwtService jwt.Service,
	limiter ratelimit.Limiter,
	loginAttempts int,
	m *metrics.Metrics,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		UserRepository:         userRepository,
		CompanyRepository:      companyRepository,
		RefreshTokenRepository: refreshTokenRepository,
		Service:                jwtService,
		transactor:             transactor,
		limiter:                limiter,
		loginAttempts:          loginAttempts,
		metrics:                m,
		now:                    time.Now,
	}
}

func loginKey(email, ip string) string {
	return "login:" + strings.ToLower(strings.TrimSpace(email)) + ":" + ip
}

// checkActive rejects suspended users and users whose company, or its parent, is suspended.
func (a *AuthServiceImpl) checkActive(ctx context.Context, u user.User) error {
	if u.IsSuspended {
		return auth.ErrAccountSuspended
	}
	companyID := u.CompanyID
	for companyID != nil {
		c, err := a.CompanyRepository.GetByID(ctx, *companyID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return auth.ErrAccountSuspended
			}
			return fmt.Errorf("failed to get company: %w", err)
		}
		if c.IsSuspended {
			return auth.ErrAccountSuspended
		}
		companyID = c.ParentCompanyID
	}
	return nil
}

// issueTokens signs an access and refresh pair and persists the refresh token.
func (a *AuthServiceImpl) issueTokens(ctx context.Context, u user.User, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	var tokenResponse auth.TokenResponse
	var err error

	tokenResponse.AccessToken, tokenResponse.AccessTokenExpiresIn, err = a.Service.GenerateAccessToken(u.ID, u.Email, u.CompanyID, u.Role)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}
	tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, err = a.Service.GenerateRefreshToken(u.ID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create refresh token: %w", err)
	}

	err = a.RefreshTokenRepository.CreateRefreshToken(ctx, u.ID, tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, session)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to save refresh token to database: %w", err)
	}

	tokenResponse.User = u.ToResponse()
	return tokenResponse, nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, loginReq auth.LoginRequest, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := loginReq.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	key := loginKey(loginReq.Email, sessionTrackReq.IPAddress)
	if a.limiter != nil {
		decision := a.limiter.Allow(ctx, key, a.loginAttempts)
		if !decision.Allowed {
			a.metrics.LoginAttempt(outcomeLimited)
			slog.Warn("login rate limited", "email", loginReq.Email, "ip", sessionTrackReq.IPAddress)
			return auth.TokenResponse{}, &auth.RateLimitedError{RetryAfter: decision.RetryAfter(a.now())}
		}
	}

	userData, err := a.UserRepository.GetByEmail(ctx, loginReq.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.metrics.LoginAttempt(outcomeInvalid)
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	if userData.PasswordHash == "" || !password.Matches(userData.PasswordHash, loginReq.Password) {
		a.metrics.LoginAttempt(outcomeInvalid)
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := a.checkActive(ctx, userData); err != nil {
		if errors.Is(err, auth.ErrAccountSuspended) {
			a.metrics.LoginAttempt(outcomeSuspended)
		}
		return auth.TokenResponse{}, err
	}

	tokenResponse, err := a.issueTokens(ctx, userData, sessionTrackReq)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	if a.limiter != nil {
		a.limiter.Reset(ctx, key)
	}
	a.metrics.LoginAttempt(outcomeSuccess)
	slog.Info("user logged in", "user_id", userData.ID, "role", userData.Role)
	return tokenResponse, nil
}

// LoginWithGoogle implements auth.AuthService.
func (a *AuthServiceImpl) LoginWithGoogle(ctx context.Context, googleEmail string, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	userData, err := a.UserRepository.GetByEmail(ctx, googleEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.metrics.LoginAttempt(outcomeInvalid)
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user data by email: %w", err)
	}
	if err := a.checkActive(ctx, userData); err != nil {
		if errors.Is(err, auth.ErrAccountSuspended) {
			a.metrics.LoginAttempt(outcomeSuspended)
		}
		return auth.TokenResponse{}, err
	}

	tokenResponse, err := a.issueTokens(ctx, userData, sessionTrackReq)
	if err != nil {
		return auth.TokenResponse{}, err
	}
	a.metrics.LoginAttempt(outcomeSuccess)
	slog.Info("user logged in with google", "user_id", userData.ID)
	return tokenResponse, nil
}

// RefreshToken implements auth.AuthService.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.AccessTokenResponse{}, err
	}

	subject, err := a.Service.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	userID, isRevoked, err := a.RefreshTokenRepository.IsRefreshTokenRevoked(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.AccessTokenResponse{}, auth.ErrInvalidToken
		}
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to check refresh token: %w", err)
	}
	if isRevoked {
		return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
	}
	if userID != subject {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	userData, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.AccessTokenResponse{}, auth.ErrInvalidToken
		}
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	if err := a.checkActive(ctx, userData); err != nil {
		return auth.AccessTokenResponse{}, err
	}

	var accessTokenResponse auth.AccessTokenResponse
	accessTokenResponse.AccessToken, accessTokenResponse.AccessTokenExpiresIn, err =
		a.Service.GenerateAccessToken(userData.ID, userData.Email, userData.CompanyID, userData.Role)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	return accessTokenResponse, nil
}

// Logout implements auth.AuthService. Unknown or already revoked tokens are not an error.
func (a *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	return a.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		_, isRevoked, err := a.RefreshTokenRepository.IsRefreshTokenRevoked(ctx, token)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("failed to check if refresh token is revoked: %w", err)
		}
		if isRevoked {
			return nil
		}
		if err := a.RefreshTokenRepository.RevokeRefreshToken(ctx, token); err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
		return nil
	})
}

// ChangePassword implements auth.AuthService. Every session of the user is revoked.
func (a *AuthServiceImpl) ChangePassword(ctx context.Context, caller user.Caller, req auth.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	userData, err := a.UserRepository.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.ErrUserNotFound
		}
		return fmt.Errorf("failed to get user by id: %w", err)
	}
	if !password.Matches(userData.PasswordHash, req.CurrentPassword) {
		return auth.ErrWrongCurrentPassword
	}

	hash, err := password.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = a.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := a.UserRepository.UpdatePassword(ctx, userData.ID, hash); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		if err := a.RefreshTokenRepository.RevokeAllForUser(ctx, userData.ID); err != nil {
			return fmt.Errorf("failed to revoke sessions: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("password changed", "user_id", userData.ID)
	return nil
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context, caller user.Caller) (user.UserResponse, error) {
	userData, err := a.UserRepository.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.UserResponse{}, user.ErrUserNotFound
		}
		return user.UserResponse{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return userData.ToResponse(), nil
}

// EnsureSuperAdmin implements auth.AuthService.
func (a *AuthServiceImpl) EnsureSuperAdmin(ctx context.Context, email, plain string) error {
	if email == "" {
		return nil
	}
	exists, err := a.UserRepository.ExistsByRole(ctx, user.RoleSuperAdmin)
	if err != nil {
		return fmt.Errorf("failed to check super admin: %w", err)
	}
	if exists {
		return nil
	}

	taken, err := a.UserRepository.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		slog.Warn("bootstrap super admin email already belongs to another user", "email", email)
		return user.ErrUserEmailExists
	}

	hash, err := password.Hash(plain)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	created, err := a.UserRepository.Create(ctx, user.User{
		FullName:     "Super Admin",
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         user.RoleSuperAdmin,
		Status:       user.StatusActive,
	})
	if err != nil {
		return fmt.Errorf("failed to create super admin: %w", err)
	}

	slog.Info("bootstrap super admin created", "user_id", created.ID, "email", created.Email)
	return nil
}
