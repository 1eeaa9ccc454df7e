package task

import (
	"context"
	"fmt"
	"time"

	domain "github.com/example/kanban-task-service/domain/task"
	"github.com/example/kanban-task-service/events"
	"github.com/go-monolith/mono/pkg/types"
)

// Publisher receives one event per committed mutation. Publish must not block.
type Publisher interface {
	Publish(evt events.TaskEvent)
}

// DefaultTimeout bounds every store call made by the service.
const DefaultTimeout = 5 * time.Second

// Service is the task core. It validates and merges input, writes through the
// repository with optimistic concurrency, and publishes an event for every
// successful mutation.
//
// Mutations of the same id hold a per-id lock from the conditional write
// until the event is published, so subscribers see events for one task in
// commit order. The current version is read before the lock is taken, which
// keeps concurrent writers colliding on the version check.
type Service struct {
	repo      *Repository
	publisher Publisher
	locks     *keyedMutex
	timeout   time.Duration
	logger    types.Logger
}

var _ TaskPort = (*Service)(nil)

// NewService creates the task core. A nil publisher disables events.
func NewService(repo *Repository, publisher Publisher, timeout time.Duration, logger types.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		locks:     newKeyedMutex(),
		timeout:   timeout,
		logger:    logger,
	}
}

// bounded limits a read to the service timeout.
func (s *Service) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// detached is used for the write-then-publish step. It ignores the caller's
// cancellation so an abandoned request cannot leave a committed write without
// its event, but it still times out.
func (s *Service) detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
}

func (s *Service) publish(evt events.TaskEvent) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(evt)
}

// ListTasks returns one page of tasks.
func (s *Service) ListTasks(ctx context.Context, q ListQuery) (*domain.Page, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, &domain.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown value %q", q.Status)}
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	page, err := s.repo.FindAll(ctx, q.Status, domain.PageRequest{Page: q.Page, Size: q.Size, Sort: q.Sort})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return page, nil
}

// GetTask returns the task with id.
func (s *Service) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

// CreateTask stores a new task built from in and announces it.
func (s *Service) CreateTask(ctx context.Context, in domain.Input) (*domain.Task, error) {
	t, err := domain.New(in)
	if err != nil {
		return nil, err
	}
	t.ID = s.repo.NextID()

	unlock := s.locks.Lock(t.ID)
	defer unlock()

	ctx, cancel := s.detached(ctx)
	defer cancel()

	saved, err := s.repo.Save(ctx, &t)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.publish(events.Created(*saved))

	s.logger.Info("Task created", "id", saved.ID, "status", saved.Status, "priority", saved.Priority)
	return saved, nil
}

// UpdateTask replaces every mutable field of the task with in.
func (s *Service) UpdateTask(ctx context.Context, id string, in domain.Input) (*domain.Task, error) {
	return s.mutate(ctx, "update", id, func(current domain.Task) (domain.Task, error) {
		return domain.Replace(current, in)
	})
}

// PartialUpdateTask applies only the fields present in in.
func (s *Service) PartialUpdateTask(ctx context.Context, id string, in domain.Input) (*domain.Task, error) {
	return s.mutate(ctx, "patch", id, func(current domain.Task) (domain.Task, error) {
		return domain.Merge(current, in)
	})
}

func (s *Service) mutate(ctx context.Context, op, id string, apply func(domain.Task) (domain.Task, error)) (*domain.Task, error) {
	readCtx, cancelRead := s.bounded(ctx)
	current, err := s.repo.FindByID(readCtx, id)
	cancelRead()
	if err != nil {
		return nil, fmt.Errorf("%s task %s: %w", op, id, err)
	}

	next, err := apply(*current)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	writeCtx, cancel := s.detached(ctx)
	defer cancel()

	saved, err := s.repo.Save(writeCtx, &next)
	if err != nil {
		s.logger.Debug("Task write rejected", "op", op, "id", id, "version", current.Version, "error", err)
		return nil, fmt.Errorf("%s task %s: %w", op, id, err)
	}
	s.publish(events.Updated(*saved))

	s.logger.Info("Task updated", "op", op, "id", id, "version", saved.Version)
	return saved, nil
}

// DeleteTask removes the task and announces its id.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	readCtx, cancelRead := s.bounded(ctx)
	exists, err := s.repo.Exists(readCtx, id)
	cancelRead()
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	if !exists {
		return fmt.Errorf("delete task %s: %w", id, domain.ErrNotFound)
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	writeCtx, cancel := s.detached(ctx)
	defer cancel()

	deleted, err := s.repo.Delete(writeCtx, id)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	if !deleted {
		// Removed by a concurrent delete after the existence check.
		return fmt.Errorf("delete task %s: %w", id, domain.ErrNotFound)
	}
	s.publish(events.Deleted(id))

	s.logger.Info("Task deleted", "id", id)
	return nil
}
