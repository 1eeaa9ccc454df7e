package storage

import (
	"context"
	"os"
	"testing"

	domain "github.com/example/kanban-task-service/domain/task"
)

// setupTestPostgres connects to TEST_DATABASE_URL and empties the tasks table.
// Tests are skipped when no database is configured.
func setupTestPostgres(t *testing.T) *PostgresStore {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL tests")
	}

	ctx := context.Background()
	store, err := OpenPostgres(ctx, url, WithClock(newStepClock().Now))
	if err != nil {
		t.Skipf("PostgreSQL not available: %v", err)
	}
	if _, err := store.pool.Exec(ctx, `TRUNCATE tasks`); err != nil {
		t.Fatalf("failed to truncate tasks: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPostgresStore(t *testing.T) {
	testStoreContract(t, func(t *testing.T) domain.Store {
		return setupTestPostgres(t)
	})
}
