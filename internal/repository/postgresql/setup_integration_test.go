//go:build integration

package postgresql_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/database"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/repository/postgresql"
)

// Run with: go test -tags=integration ./internal/repository/postgresql/...
var testDB *database.DB

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("hr_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		log.Printf("failed to start postgres container: %v", err)
		return 1
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			log.Printf("failed to terminate postgres container: %v", err)
		}
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Printf("failed to get connection string: %v", err)
		return 1
	}

	testDB, err = database.NewPostgreSQLDB(ctx, connStr)
	if err != nil {
		log.Printf("failed to connect: %v", err)
		return 1
	}
	defer testDB.Close()

	if _, err := testDB.Exec(ctx, postgresql.Schema); err != nil {
		log.Printf("failed to apply schema: %v", err)
		return 1
	}

	return m.Run()
}

// truncateAll empties every table between tests.
func truncateAll(t *testing.T) {
	t.Helper()
	tables := []string{"refresh_tokens", "work_tasks", "attendances", "users", "companies"}
	for _, table := range tables {
		if _, err := testDB.Exec(context.Background(), fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			t.Fatalf("failed to truncate table %s: %v", table, err)
		}
	}
}
