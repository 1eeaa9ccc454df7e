package graph

import (
	"errors"

	domain "github.com/example/kanban-task-service/domain/task"
)

// Error codes reported in extensions.code.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeBadUserInput = "BAD_USER_INPUT"
	CodeConflict     = "CONFLICT"
	CodeUnavailable  = "UNAVAILABLE"
	CodeInternal     = "INTERNAL"
)

// graphError attaches a machine-readable code to a resolver error.
type graphError struct {
	code string
	err  error
}

func (e *graphError) Error() string { return e.err.Error() }
func (e *graphError) Unwrap() error { return e.err }

// Extensions is picked up by graphql-go when formatting the error.
func (e *graphError) Extensions() map[string]any {
	return map[string]any{"code": e.code}
}

func toGraphError(err error) error {
	code := CodeInternal
	switch {
	case errors.Is(err, domain.ErrNotFound):
		code = CodeNotFound
	case errors.Is(err, domain.ErrValidation):
		code = CodeBadUserInput
	case errors.Is(err, domain.ErrConflict):
		code = CodeConflict
	case errors.Is(err, domain.ErrStoreUnavailable):
		code = CodeUnavailable
	}
	return &graphError{code: code, err: err}
}
