package api

import (
	"errors"

	"github.com/example/kanban-task-service/modules/auth"
	"github.com/example/kanban-task-service/modules/graph"
	"github.com/example/kanban-task-service/modules/notification"
	"github.com/example/kanban-task-service/modules/task"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Port task.TaskPort
	// Hub enables /ws/tasks when set.
	Hub *notification.Hub
	JWT *auth.JWTManager
	// AuthDisabled serves every route without a token.
	AuthDisabled bool
	CORSOrigins  string
	AccessLog    bool
	Logger       types.Logger
}

// NewRouter builds the HTTP surface: REST, GraphQL and the task stream.
func NewRouter(opts RouterOptions) (*fiber.App, error) {
	if opts.Port == nil {
		return nil, errors.New("task port is required")
	}
	if opts.JWT == nil {
		return nil, errors.New("jwt manager is required")
	}

	schema, err := graph.NewSchema(opts.Port)
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})

	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	origins := opts.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))

	h := &handlers{port: opts.Port, hub: opts.Hub, jwt: opts.JWT, logger: opts.Logger}

	guard := auth.Middleware(opts.JWT)
	if opts.AuthDisabled {
		guard = func(c *fiber.Ctx) error { return c.Next() }
	}

	app.Get("/health", h.health)
	app.Post("/api/auth/login", h.login)

	tasks := app.Group("/api/tasks", guard)
	tasks.Get("/", h.listTasks)
	tasks.Post("/", h.createTask)
	tasks.Get("/:id", h.getTask)
	tasks.Put("/:id", h.updateTask)
	tasks.Patch("/:id", h.patchTask)
	tasks.Delete("/:id", h.deleteTask)

	app.Post("/graphql", guard, schema.Handler())

	if opts.Hub != nil {
		app.Use("/ws", guard, upgradeOnly)
		app.Get("/ws/tasks", websocket.New(h.streamTasks))
	}

	return app, nil
}
