package api

import (
	"errors"

	domain "github.com/example/kanban-task-service/domain/task"
	"github.com/gofiber/fiber/v2"
)

// errorResponse maps a task error onto its HTTP status and body.
func errorResponse(err error) (int, ErrorResponse) {
	resp := ErrorResponse{Message: err.Error()}
	status := fiber.StatusInternalServerError

	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status, resp.Error = fiber.StatusNotFound, "not_found"
	case errors.As(err, &verr):
		status, resp.Error, resp.Field = fiber.StatusBadRequest, "validation_failed", verr.Field
	case errors.Is(err, domain.ErrValidation):
		status, resp.Error = fiber.StatusBadRequest, "validation_failed"
	case errors.Is(err, domain.ErrConflict):
		status, resp.Error = fiber.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrStoreUnavailable):
		status, resp.Error = fiber.StatusServiceUnavailable, "store_unavailable"
	default:
		resp.Error, resp.Message = "server_error", "Internal Server Error"
	}
	return status, resp
}

// customErrorHandler handles errors that escape a handler, such as routing misses.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
