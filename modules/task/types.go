package task

import (
	"context"
	"errors"

	domain "github.com/example/kanban-task-service/domain/task"
)

// TaskPort is the contract the API adapters drive. Both the in-process
// Service and the request-reply adapter implement it, so every surface runs
// the same core logic.
type TaskPort interface {
	ListTasks(ctx context.Context, q ListQuery) (*domain.Page, error)
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	CreateTask(ctx context.Context, in domain.Input) (*domain.Task, error)
	UpdateTask(ctx context.Context, id string, in domain.Input) (*domain.Task, error)
	PartialUpdateTask(ctx context.Context, id string, in domain.Input) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// ListQuery selects a page of tasks. An empty Status lists every task.
type ListQuery struct {
	Status domain.Status      `json:"status,omitempty"`
	Page   int                `json:"page"`
	Size   int                `json:"size"`
	Sort   []domain.SortOrder `json:"sort,omitempty"`
}

// GetTaskRequest is the request for the get and delete services.
type GetTaskRequest struct {
	ID string `json:"id"`
}

// CreateTaskRequest is the request for the create service.
type CreateTaskRequest struct {
	Input domain.Input `json:"input"`
}

// UpdateTaskRequest is the request for the update and patch services.
type UpdateTaskRequest struct {
	ID    string       `json:"id"`
	Input domain.Input `json:"input"`
}

// TaskReply carries a task or the fault that prevented it.
type TaskReply struct {
	Task  *domain.Task `json:"task,omitempty"`
	Fault *Fault       `json:"fault,omitempty"`
}

// PageReply carries a page of tasks or a fault.
type PageReply struct {
	Page  *domain.Page `json:"page,omitempty"`
	Fault *Fault       `json:"fault,omitempty"`
}

// DeleteReply reports the outcome of a delete.
type DeleteReply struct {
	Deleted bool   `json:"deleted"`
	Fault   *Fault `json:"fault,omitempty"`
}

// Fault codes.
const (
	CodeNotFound         = "not_found"
	CodeValidationFailed = "validation_failed"
	CodeConflict         = "conflict"
	CodeStoreUnavailable = "store_unavailable"
	CodeInternal         = "internal"
)

// Fault is a task error in wire form. Service replies carry it instead of a
// transport error so that callers can tell the error kinds apart.
type Fault struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var faultSentinels = []struct {
	code string
	err  error
}{
	{CodeNotFound, domain.ErrNotFound},
	{CodeValidationFailed, domain.ErrValidation},
	{CodeConflict, domain.ErrConflict},
	{CodeStoreUnavailable, domain.ErrStoreUnavailable},
}

// ToFault converts err into its wire form. It returns nil for a nil error.
func ToFault(err error) *Fault {
	if err == nil {
		return nil
	}
	for _, s := range faultSentinels {
		if errors.Is(err, s.err) {
			return &Fault{Code: s.code, Message: err.Error()}
		}
	}
	return &Fault{Code: CodeInternal, Message: err.Error()}
}

// Err restores the error a Fault was made from, matching the same sentinel.
func (f *Fault) Err() error {
	for _, s := range faultSentinels {
		if s.code == f.Code {
			return &remoteError{sentinel: s.err, message: f.Message}
		}
	}
	return errors.New(f.Message)
}

// remoteError keeps the remote message while matching a sentinel.
type remoteError struct {
	sentinel error
	message  string
}

func (e *remoteError) Error() string { return e.message }
func (e *remoteError) Unwrap() error { return e.sentinel }
