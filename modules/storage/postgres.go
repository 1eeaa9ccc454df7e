package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/example/kanban-task-service/domain/task"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
    id          VARCHAR(36)   PRIMARY KEY,
    title       VARCHAR(255)  NOT NULL CHECK (btrim(title) <> ''),
    description VARCHAR(1000) NOT NULL DEFAULT '',
    status      VARCHAR(16)   NOT NULL CHECK (status IN ('TO_DO', 'IN_PROGRESS', 'DONE')),
    priority    VARCHAR(8)    NOT NULL CHECK (priority IN ('LOW', 'MED', 'HIGH')),
    version     BIGINT        NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ   NOT NULL,
    updated_at  TIMESTAMPTZ   NOT NULL
);
CREATE INDEX IF NOT EXISTS tasks_status_idx ON tasks (status);
CREATE INDEX IF NOT EXISTS tasks_created_at_idx ON tasks (created_at);
`

const taskColumns = `id, title, description, status, priority, version, created_at, updated_at`

// PostgresStore keeps tasks in PostgreSQL through a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

var _ domain.Store = (*PostgresStore)(nil)

// OpenPostgres connects to databaseURL, verifies the connection and applies
// the schema.
func OpenPostgres(ctx context.Context, databaseURL string, opts ...Option) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	o := buildOptions(opts)
	return &PostgresStore{pool: pool, now: o.now}, nil
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		t                  domain.Task
		status, priority   string
		createdAt, updated time.Time
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &priority, &t.Version, &createdAt, &updated); err != nil {
		return nil, err
	}
	t.Status = domain.Status(status)
	t.Priority = domain.Priority(priority)
	t.CreatedAt = createdAt.UTC()
	t.UpdatedAt = updated.UTC()
	return &t, nil
}

// FindByID retrieves a task by its ID.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	t, err := scanTask(s.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, classify("find task", err)
	}
	return t, nil
}

// FindAll returns one page of tasks matching filter.
func (s *PostgresStore) FindAll(ctx context.Context, filter domain.Filter, page domain.PageRequest) (domain.Page, error) {
	page = page.Normalize()

	var total int64
	if err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM tasks WHERE ($1 = '' OR status = $1)`, string(filter.Status),
	).Scan(&total); err != nil {
		return domain.Page{}, classify("count tasks", err)
	}

	order := make([]string, 0, len(page.Sort)+1)
	for _, o := range page.Sort {
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		order = append(order, domain.SortColumns[o.Field]+" "+dir)
	}
	order = append(order, "id ASC")

	rows, err := s.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE ($1 = '' OR status = $1) ORDER BY `+
			strings.Join(order, ", ")+` LIMIT $2 OFFSET $3`,
		string(filter.Status), page.Size, page.Offset(),
	)
	if err != nil {
		return domain.Page{}, classify("list tasks", err)
	}
	defer rows.Close()

	content := make([]domain.Task, 0, page.Size)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return domain.Page{}, classify("scan task", err)
		}
		content = append(content, *t)
	}
	if err := rows.Err(); err != nil {
		return domain.Page{}, classify("list tasks", err)
	}
	return domain.NewPage(content, page, total), nil
}

// Insert stores a new task at version 0.
func (s *PostgresStore) Insert(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	id := t.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := s.now().UTC().Truncate(time.Microsecond)

	out, err := scanTask(s.pool.QueryRow(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES ($1, $2, $3, $4, $5, 0, $6, $6) RETURNING `+taskColumns,
		id, t.Title, t.Description, string(t.Status), string(t.Priority), now,
	))
	if err != nil {
		return nil, classify("insert task", err)
	}
	return out, nil
}

// ConditionalUpdate writes t when the stored version still equals expectedVersion.
func (s *PostgresStore) ConditionalUpdate(ctx context.Context, t *domain.Task, expectedVersion int64) (*domain.Task, error) {
	updatedAt := domain.NextTimestamp(t.UpdatedAt, s.now())

	out, err := scanTask(s.pool.QueryRow(ctx,
		`UPDATE tasks
		    SET title = $1, description = $2, status = $3, priority = $4,
		        version = version + 1, updated_at = $5
		  WHERE id = $6 AND version = $7
		RETURNING `+taskColumns,
		t.Title, t.Description, string(t.Status), string(t.Priority), updatedAt, t.ID, expectedVersion,
	))
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, classify("update task", err)
	}

	exists, err := s.ExistsByID(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	return nil, domain.ErrConflict
}

// ExistsByID reports whether a task with id is stored.
func (s *PostgresStore) ExistsByID(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, classify("check task", err)
	}
	return exists, nil
}

// DeleteByID removes the task and reports whether a row was deleted.
func (s *PostgresStore) DeleteByID(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return false, classify("delete task", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// classify maps a pgx error onto the task error set. Constraint violations
// are input problems; everything else means the store could not serve.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23514", "22001": // check_violation, string_data_right_truncation
			return fmt.Errorf("%s: %w: %s", op, domain.ErrValidation, pgErr.Message)
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w: %s", op, domain.ErrConflict, pgErr.Message)
		}
	}
	return domain.Unavailable(op, err)
}
