package auth

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidCredentials         = errors.New("invalid email or password")
	ErrAccountSuspended           = errors.New("account or company is suspended")
	ErrTooManyAttempts            = errors.New("too many login attempts, try again later")
	ErrInvalidToken               = errors.New("invalid or expired token")
	ErrRefreshTokenRevoked        = errors.New("refresh token has been revoked")
	ErrRefreshTokenCookieNotFound = errors.New("refresh token cookie not found")
	ErrRefreshTokenCookieEmpty    = errors.New("refresh token cookie is empty")
	ErrGoogleEmailNotVerified     = errors.New("google account email is not verified")
	ErrOAuthStateMismatch         = errors.New("oauth state mismatch")
	ErrWrongCurrentPassword       = errors.New("current password is incorrect")
)

// RateLimitedError tells the client how long to wait. It matches
// ErrTooManyAttempts under errors.Is.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s (retry after %s)", ErrTooManyAttempts, e.RetryAfter)
}

func (e *RateLimitedError) Is(target error) bool {
	return target == ErrTooManyAttempts
}
