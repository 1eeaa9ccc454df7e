package api

import (
	"context"
	"fmt"

	"github.com/example/kanban-task-service/config"
	"github.com/example/kanban-task-service/modules/auth"
	"github.com/example/kanban-task-service/modules/notification"
	"github.com/example/kanban-task-service/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// APIModule is the driving adapter that exposes the REST, GraphQL and
// WebSocket endpoints. It reaches the task core through the TaskPort served
// by the task module.
type APIModule struct {
	cfg         *config.Config
	hub         *notification.Hub
	logger      types.Logger
	app         *fiber.App
	taskAdapter task.TaskPort
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule. hub may be nil to disable the task stream.
func NewModule(cfg *config.Config, hub *notification.Hub, logger types.Logger) *APIModule {
	return &APIModule{
		cfg:    cfg,
		hub:    hub,
		logger: logger.WithModule("api"),
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"task"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "task":
		m.taskAdapter = task.NewTaskAdapter(container)
	}
}

// Start builds the router and serves it in the background.
func (m *APIModule) Start(_ context.Context) error {
	if m.taskAdapter == nil {
		return fmt.Errorf("taskAdapter dependency not set")
	}

	app, err := NewRouter(RouterOptions{
		Port: m.taskAdapter,
		Hub:  m.hub,
		JWT: auth.NewJWTManager(auth.JWTConfig{
			SecretKey:     m.cfg.JWTSecret,
			TokenDuration: m.cfg.JWTTTL,
			Issuer:        m.cfg.JWTIssuer,
		}),
		AuthDisabled: m.cfg.AuthDisabled,
		CORSOrigins:  m.cfg.CORSOrigins,
		AccessLog:    true,
		Logger:       m.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}
	m.app = app

	go func() {
		if err := m.app.Listen(m.cfg.HTTPAddr); err != nil {
			m.logger.Error("HTTP server error", "error", err)
		}
	}()

	if m.cfg.AuthDisabled {
		m.logger.Warn("Authentication is disabled")
	}
	m.logger.Info("HTTP server started", "addr", m.cfg.HTTPAddr)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	m.logger.Info("Shutting down HTTP server")
	return m.app.ShutdownWithContext(ctx)
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	details := map[string]any{"addr": m.cfg.HTTPAddr}
	if m.hub != nil {
		details["subscribers"] = m.hub.SubscriberCount()
	}
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: details,
	}
}
