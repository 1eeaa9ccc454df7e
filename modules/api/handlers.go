package api

import (
	"bytes"
	"encoding/json"
	"mime"
	"strings"

	domain "github.com/example/kanban-task-service/domain/task"
	"github.com/example/kanban-task-service/modules/auth"
	"github.com/example/kanban-task-service/modules/notification"
	"github.com/example/kanban-task-service/modules/task"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

const mergePatchJSON = "application/merge-patch+json"

// handlers serves the REST surface on top of a TaskPort.
type handlers struct {
	port   task.TaskPort
	hub    *notification.Hub
	jwt    *auth.JWTManager
	logger types.Logger
}

// fail writes err as an ErrorResponse. Server-side failures are logged.
func (h *handlers) fail(c *fiber.Ctx, err error) error {
	status, resp := errorResponse(err)
	if status >= fiber.StatusInternalServerError {
		h.logger.Error("Request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(resp)
}

// decodeInput reads a task input from the raw body. Keys left out of the
// document stay absent; keys sent as null are marked null.
func decodeInput(c *fiber.Ctx) (domain.Input, error) {
	var in domain.Input
	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 {
		return in, &domain.ValidationError{Field: "body", Reason: "must not be empty"}
	}
	if body[0] != '{' {
		return in, &domain.ValidationError{Field: "body", Reason: "must be a JSON object"}
	}
	if err := json.Unmarshal(body, &in); err != nil {
		return in, &domain.ValidationError{Field: "body", Reason: "must be a JSON object with valid field types"}
	}
	return in, nil
}

// health handles GET /health.
func (h *handlers) health(c *fiber.Ctx) error {
	details := map[string]any{"module": "api"}
	if h.hub != nil {
		stats := h.hub.Stats()
		details["subscribers"] = stats.Subscribers
		details["published"] = stats.Published
		details["dropped"] = stats.Dropped
	}
	return c.JSON(HealthResponse{Status: "healthy", Details: details})
}

// login handles POST /api/auth/login. Any non-empty username is accepted.
func (h *handlers) login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_failed",
			Message: "username is required",
			Field:   "username",
		})
	}

	token, err := h.jwt.GenerateToken(username)
	if err != nil {
		h.logger.Error("Failed to sign token", "username", username, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "server_error",
			Message: "Failed to issue token",
		})
	}

	return c.JSON(LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: h.jwt.TokenDuration(),
	})
}

// listTasks handles GET /api/tasks.
func (h *handlers) listTasks(c *fiber.Ctx) error {
	var sort []string
	for _, v := range c.Context().QueryArgs().PeekMulti("sort") {
		sort = append(sort, string(v))
	}

	page, err := h.port.ListTasks(c.UserContext(), task.ListQuery{
		Status: domain.Status(c.Query("status")),
		Page:   c.QueryInt("page", 0),
		Size:   c.QueryInt("size", domain.DefaultPageSize),
		Sort:   domain.ParseSort(sort),
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(page)
}

// getTask handles GET /api/tasks/:id.
func (h *handlers) getTask(c *fiber.Ctx) error {
	t, err := h.port.GetTask(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(t)
}

// createTask handles POST /api/tasks.
func (h *handlers) createTask(c *fiber.Ctx) error {
	in, err := decodeInput(c)
	if err != nil {
		return h.fail(c, err)
	}

	t, err := h.port.CreateTask(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	c.Location("/api/tasks/" + t.ID)
	return c.Status(fiber.StatusCreated).JSON(t)
}

// updateTask handles PUT /api/tasks/:id.
func (h *handlers) updateTask(c *fiber.Ctx) error {
	in, err := decodeInput(c)
	if err != nil {
		return h.fail(c, err)
	}

	t, err := h.port.UpdateTask(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(t)
}

// patchTask handles PATCH /api/tasks/:id as a JSON merge patch.
func (h *handlers) patchTask(c *fiber.Ctx) error {
	if ct := c.Get(fiber.HeaderContentType); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || (mediaType != mergePatchJSON && mediaType != fiber.MIMEApplicationJSON) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(ErrorResponse{
				Error:   "unsupported_media_type",
				Message: "use " + mergePatchJSON + " or " + fiber.MIMEApplicationJSON,
			})
		}
	}

	in, err := decodeInput(c)
	if err != nil {
		return h.fail(c, err)
	}

	t, err := h.port.PartialUpdateTask(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(t)
}

// deleteTask handles DELETE /api/tasks/:id.
func (h *handlers) deleteTask(c *fiber.Ctx) error {
	if err := h.port.DeleteTask(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
