package task

import (
	"context"

	domain "github.com/example/kanban-task-service/domain/task"
	"github.com/google/uuid"
)

// Repository is the typed view of the store the service works with.
type Repository struct {
	store domain.Store
}

// NewRepository creates a repository over store.
func NewRepository(store domain.Store) *Repository {
	return &Repository{store: store}
}

// NextID returns a fresh task id.
func (r *Repository) NextID() string {
	return uuid.New().String()
}

// FindByID returns domain.ErrNotFound when the task does not exist.
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	return r.store.FindByID(ctx, id)
}

// FindAll returns one page of tasks, optionally narrowed to one status.
func (r *Repository) FindAll(ctx context.Context, status domain.Status, page domain.PageRequest) (*domain.Page, error) {
	p, err := r.store.FindAll(ctx, domain.Filter{Status: status}, page)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Save inserts a task that was never stored, and otherwise writes it back
// only if its stored version still equals t.Version.
func (r *Repository) Save(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	if t.IsNew() {
		return r.store.Insert(ctx, t)
	}
	return r.store.ConditionalUpdate(ctx, t, t.Version)
}

// Exists reports whether a task with id is stored.
func (r *Repository) Exists(ctx context.Context, id string) (bool, error) {
	return r.store.ExistsByID(ctx, id)
}

// Delete removes a task and reports whether it was there.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	return r.store.DeleteByID(ctx, id)
}
