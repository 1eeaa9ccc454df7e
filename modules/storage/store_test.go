package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	domain "github.com/example/kanban-task-service/domain/task"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any) {}
func (m *mockLogger) Warn(_ string, _ ...any) {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger { return m }
func (m *mockLogger) WithModule(_ string) types.Logger { return m }
func (m *mockLogger) WithError(_ error) types.Logger { return m }

// stepClock returns a time one second later on every call.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTask(title string, status domain.Status) *domain.Task {
	return &domain.Task{
		Title:    title,
		Status:   status,
		Priority: domain.PriorityMed,
	}
}

// testStoreContract exercises the behavior every Store implementation shares.
func testStoreContract(t *testing.T, open func(t *testing.T) domain.Store) {
	ctx := context.Background()

	t.Run("insert assigns identity and version 0", func(t *testing.T) {
		s := open(t)
		got, err := s.Insert(ctx, newTask("first", domain.StatusToDo))
		require.NoError(t, err)

		assert.NotEmpty(t, got.ID)
		assert.Zero(t, got.Version)
		assert.False(t, got.CreatedAt.IsZero())
		assert.True(t, got.CreatedAt.Equal(got.UpdatedAt))

		found, err := s.FindByID(ctx, got.ID)
		require.NoError(t, err)
		assert.Equal(t, got.Title, found.Title)
		assert.True(t, got.CreatedAt.Equal(found.CreatedAt))
	})

	t.Run("insert keeps a preassigned id", func(t *testing.T) {
		s := open(t)
		in := newTask("with id", domain.StatusToDo)
		in.ID = "a5b0c7de-0000-4000-8000-000000000001"
		got, err := s.Insert(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, in.ID, got.ID)
	})

	t.Run("find unknown id", func(t *testing.T) {
		s := open(t)
		_, err := s.FindByID(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("conditional update advances version", func(t *testing.T) {
		s := open(t)
		created, err := s.Insert(ctx, newTask("draft", domain.StatusToDo))
		require.NoError(t, err)

		next := *created
		next.Title = "final"
		next.Status = domain.StatusDone
		got, err := s.ConditionalUpdate(ctx, &next, created.Version)
		require.NoError(t, err)

		assert.Equal(t, int64(1), got.Version)
		assert.Equal(t, "final", got.Title)
		assert.True(t, got.UpdatedAt.After(created.UpdatedAt))
		assert.True(t, got.CreatedAt.Equal(created.CreatedAt))

		stored, err := s.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stored.Version)
		assert.Equal(t, domain.StatusDone, stored.Status)
		assert.True(t, stored.UpdatedAt.Equal(got.UpdatedAt))
	})

	t.Run("stale version conflicts and leaves the row alone", func(t *testing.T) {
		s := open(t)
		created, err := s.Insert(ctx, newTask("draft", domain.StatusToDo))
		require.NoError(t, err)

		first := *created
		first.Title = "winner"
		_, err = s.ConditionalUpdate(ctx, &first, 0)
		require.NoError(t, err)

		second := *created
		second.Title = "loser"
		_, err = s.ConditionalUpdate(ctx, &second, 0)
		assert.ErrorIs(t, err, domain.ErrConflict)

		stored, err := s.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "winner", stored.Title)
		assert.Equal(t, int64(1), stored.Version)
	})

	t.Run("update of deleted row is not found", func(t *testing.T) {
		s := open(t)
		created, err := s.Insert(ctx, newTask("gone soon", domain.StatusToDo))
		require.NoError(t, err)

		deleted, err := s.DeleteByID(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		_, err = s.ConditionalUpdate(ctx, created, 0)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("exists and delete", func(t *testing.T) {
		s := open(t)
		created, err := s.Insert(ctx, newTask("temp", domain.StatusToDo))
		require.NoError(t, err)

		ok, err := s.ExistsByID(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		deleted, err := s.DeleteByID(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = s.DeleteByID(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, deleted)

		ok, err = s.ExistsByID(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("find all pages, filters and sorts", func(t *testing.T) {
		s := open(t)
		for _, tc := range []struct {
			title  string
			status domain.Status
		}{
			{"a", domain.StatusToDo},
			{"b", domain.StatusDone},
			{"c", domain.StatusToDo},
			{"d", domain.StatusToDo},
		} {
			_, err := s.Insert(ctx, newTask(tc.title, tc.status))
			require.NoError(t, err)
		}

		page, err := s.FindAll(ctx, domain.Filter{}, domain.PageRequest{Size: 3})
		require.NoError(t, err)
		assert.Equal(t, int64(4), page.TotalElements)
		assert.Equal(t, 2, page.TotalPages)
		require.Len(t, page.Content, 3)
		assert.Equal(t, []string{"d", "c", "b"}, titles(page.Content))
		assert.True(t, page.First)
		assert.False(t, page.Last)

		page, err = s.FindAll(ctx, domain.Filter{}, domain.PageRequest{Page: 1, Size: 3})
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, titles(page.Content))
		assert.True(t, page.Last)

		page, err = s.FindAll(ctx, domain.Filter{Status: domain.StatusToDo}, domain.PageRequest{
			Sort: []domain.SortOrder{{Field: "title"}},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.TotalElements)
		assert.Equal(t, []string{"a", "c", "d"}, titles(page.Content))
	})
}

func titles(tasks []domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}
