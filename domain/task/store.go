package task

import "context"

// Store is the persistence contract for tasks. Implementations are the only
// place where a write is serialized against other writers of the same id.
type Store interface {
	// FindByID returns ErrNotFound when the id is unknown.
	FindByID(ctx context.Context, id string) (*Task, error)
	FindAll(ctx context.Context, filter Filter, page PageRequest) (Page, error)
	// Insert assigns an id when t has none, sets both timestamps and
	// version 0, and returns the stored record.
	Insert(ctx context.Context, t *Task) (*Task, error)
	// ConditionalUpdate writes the mutable fields of t only when the stored
	// version equals expectedVersion, advancing the version by one and
	// refreshing updatedAt. It returns ErrConflict on a version mismatch and
	// ErrNotFound when the row no longer exists.
	ConditionalUpdate(ctx context.Context, t *Task, expectedVersion int64) (*Task, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	// DeleteByID reports whether a row was removed.
	DeleteByID(ctx context.Context, id string) (bool, error)
	Close() error
}
