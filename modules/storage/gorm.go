// Package storage holds the task store implementations.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/kanban-task-service/domain/task"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// taskRecord is the GORM model for the tasks table.
type taskRecord struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:varchar(1000);not null;default:''"`
	Status      string    `gorm:"type:varchar(16);not null;index"`
	Priority    string    `gorm:"type:varchar(8);not null"`
	Version     int64     `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"not null;index;autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (taskRecord) TableName() string {
	return "tasks"
}

func toRecord(t *domain.Task) taskRecord {
	return taskRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Version:     t.Version,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (r taskRecord) toDomain() domain.Task {
	return domain.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      domain.Status(r.Status),
		Priority:    domain.Priority(r.Priority),
		Version:     r.Version,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

// Option configures a store.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now for timestamping writes.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// GormStore keeps tasks in SQLite through GORM.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

var _ domain.Store = (*GormStore)(nil)

// OpenSQLite opens (or creates) the SQLite database at path and migrates it.
// Use ":memory:" for a throwaway database.
func OpenSQLite(path string, debug bool, opts ...Option) (*GormStore, error) {
	level := logger.Silent
	if debug {
		level = logger.Info
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serializes writers anyway; a single connection also keeps an
	// in-memory database shared by every caller.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return NewGormStore(db, opts...)
}

// NewGormStore wraps an open GORM handle and migrates the tasks table.
func NewGormStore(db *gorm.DB, opts ...Option) (*GormStore, error) {
	if err := db.AutoMigrate(&taskRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	o := buildOptions(opts)
	return &GormStore{db: db, now: o.now}, nil
}

// Ping checks the database connection.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// FindByID retrieves a task by its ID.
func (s *GormStore) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	var rec taskRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.Unavailable("find task", err)
	}
	t := rec.toDomain()
	return &t, nil
}

// FindAll returns one page of tasks matching filter.
func (s *GormStore) FindAll(ctx context.Context, filter domain.Filter, page domain.PageRequest) (domain.Page, error) {
	page = page.Normalize()

	filtered := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&taskRecord{})
		if filter.Status != "" {
			q = q.Where("status = ?", string(filter.Status))
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return domain.Page{}, domain.Unavailable("count tasks", err)
	}

	q := filtered()
	for _, o := range page.Sort {
		dir := "asc"
		if o.Desc {
			dir = "desc"
		}
		q = q.Order(domain.SortColumns[o.Field] + " " + dir)
	}

	var recs []taskRecord
	if err := q.Order("id asc").Limit(page.Size).Offset(page.Offset()).Find(&recs).Error; err != nil {
		return domain.Page{}, domain.Unavailable("list tasks", err)
	}

	content := make([]domain.Task, 0, len(recs))
	for _, r := range recs {
		content = append(content, r.toDomain())
	}
	return domain.NewPage(content, page, total), nil
}

// Insert stores a new task at version 0.
func (s *GormStore) Insert(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	rec := toRecord(t)
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	now := s.now().UTC().Truncate(time.Microsecond)
	rec.Version = 0
	rec.CreatedAt = now
	rec.UpdatedAt = now

	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, domain.Unavailable("insert task", err)
	}
	out := rec.toDomain()
	return &out, nil
}

// ConditionalUpdate writes t when the stored version still equals expectedVersion.
func (s *GormStore) ConditionalUpdate(ctx context.Context, t *domain.Task, expectedVersion int64) (*domain.Task, error) {
	updatedAt := domain.NextTimestamp(t.UpdatedAt, s.now())

	result := s.db.WithContext(ctx).Model(&taskRecord{}).
		Where("id = ? AND version = ?", t.ID, expectedVersion).
		Updates(map[string]any{
			"title":       t.Title,
			"description": t.Description,
			"status":      string(t.Status),
			"priority":    string(t.Priority),
			"version":     gorm.Expr("version + 1"),
			"updated_at":  updatedAt,
		})
	if err := result.Error; err != nil {
		return nil, domain.Unavailable("update task", err)
	}
	if result.RowsAffected == 0 {
		return nil, s.missedUpdate(ctx, t.ID)
	}
	return updated(t, expectedVersion, updatedAt), nil
}

// updated is the record a successful conditional update has just written.
func updated(t *domain.Task, expectedVersion int64, updatedAt time.Time) *domain.Task {
	out := *t
	out.Version = expectedVersion + 1
	out.UpdatedAt = updatedAt
	out.CreatedAt = t.CreatedAt.UTC()
	return &out
}

// missedUpdate explains why a conditional update touched no row.
func (s *GormStore) missedUpdate(ctx context.Context, id string) error {
	exists, err := s.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

// ExistsByID reports whether a task with id is stored.
func (s *GormStore) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&taskRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, domain.Unavailable("check task", err)
	}
	return count > 0, nil
}

// DeleteByID removes the task and reports whether a row was deleted.
func (s *GormStore) DeleteByID(ctx context.Context, id string) (bool, error) {
	result := s.db.WithContext(ctx).Delete(&taskRecord{}, "id = ?", id)
	if err := result.Error; err != nil {
		return false, domain.Unavailable("delete task", err)
	}
	return result.RowsAffected > 0, nil
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
