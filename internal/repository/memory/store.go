// Package memory implements every repository interface over in-process maps.
// It mirrors the PostgreSQL semantics the services rely on: pgx.ErrNoRows for
// missing rows, cascading deletes, the (employee_id, date) uniqueness and
// second-precision optimistic concurrency. Service tests run against it.
package memory

import (
	"context"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/attendance"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/company"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/task"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
)

type txKey struct{}

type refreshToken struct {
	userID    string
	expiresAt time.Time
	revoked   bool
}

type Store struct {
	// txMu serializes transactions the way row locks serialize them in PostgreSQL.
	txMu sync.Mutex
	mu   sync.Mutex

	clock time.Time

	companies   map[string]company.Company
	users       map[string]user.User
	attendances map[string]attendance.Attendance
	tasks       map[string]task.WorkTask
	tokens      map[string]refreshToken
}

func NewStore() *Store {
	return &Store{
		clock:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		companies:   make(map[string]company.Company),
		users:       make(map[string]user.User),
		attendances: make(map[string]attendance.Attendance),
		tasks:       make(map[string]task.WorkTask),
		tokens:      make(map[string]refreshToken),
	}
}

// tick advances the store clock by one second per write so updated_at
// always changes. Callers hold mu.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// WithinTransaction runs fn exclusively and restores every table when fn fails.
// Nested calls join the outer transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := struct {
		companies   map[string]company.Company
		users       map[string]user.User
		attendances map[string]attendance.Attendance
		tasks       map[string]task.WorkTask
		tokens      map[string]refreshToken
	}{maps.Clone(s.companies), maps.Clone(s.users), maps.Clone(s.attendances), maps.Clone(s.tasks), maps.Clone(s.tokens)}
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.companies, s.users, s.attendances, s.tasks, s.tokens =
			snapshot.companies, snapshot.users, snapshot.attendances, snapshot.tasks, snapshot.tokens
		s.mu.Unlock()
		return err
	}
	return nil
}

func containsFold(term string, fields ...*string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range fields {
		if f != nil && strings.Contains(strings.ToLower(*f), term) {
			return true
		}
	}
	return false
}

func inScope(all bool, ids []string, companyID *string) bool {
	if all {
		return true
	}
	if companyID == nil {
		return false
	}
	for _, id := range ids {
		if id == *companyID {
			return true
		}
	}
	return false
}

// paginate applies LIMIT/OFFSET semantics; limit <= 0 returns everything.
func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := min(start+limit, len(items))
	return items[start:end]
}
