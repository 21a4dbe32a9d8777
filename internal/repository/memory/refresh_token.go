package memory

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/auth"
)

type RefreshTokenRepository struct {
	s *Store
}

func (s *Store) RefreshTokens() *RefreshTokenRepository {
	return &RefreshTokenRepository{s: s}
}

func (r *RefreshTokenRepository) CreateRefreshToken(_ context.Context, userID string, token string, expiresAt int64, _ auth.SessionTrackingRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return pgx.ErrNoRows
	}
	r.s.tokens[token] = refreshToken{userID: userID, expiresAt: time.Unix(expiresAt, 0)}
	return nil
}

func (r *RefreshTokenRepository) IsRefreshTokenRevoked(_ context.Context, token string) (string, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tokens[token]
	if !ok {
		return "", false, pgx.ErrNoRows
	}
	return t.userID, t.revoked || !t.expiresAt.After(time.Now()), nil
}

func (r *RefreshTokenRepository) RevokeRefreshToken(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if t, ok := r.s.tokens[token]; ok {
		t.revoked = true
		r.s.tokens[token] = t
	}
	return nil
}

func (r *RefreshTokenRepository) RevokeAllForUser(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for key, t := range r.s.tokens {
		if t.userID == userID {
			t.revoked = true
			r.s.tokens[key] = t
		}
	}
	return nil
}
