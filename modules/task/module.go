package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/kanban-task-service/config"
	domain "github.com/example/kanban-task-service/domain/task"
	"github.com/example/kanban-task-service/modules/storage"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Service names, exposed as services.task.<name>.
const (
	ServiceList   = "list"
	ServiceGet    = "get"
	ServiceCreate = "create"
	ServiceUpdate = "update"
	ServicePatch  = "patch"
	ServiceDelete = "delete"
)

// TaskModule owns the task store and the task core service.
type TaskModule struct {
	cfg       *config.Config
	store     domain.Store
	service   *Service
	publisher Publisher
	logger    types.Logger
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates the module. Committed mutations are announced on publisher.
func NewModule(cfg *config.Config, publisher Publisher, logger types.Logger) *TaskModule {
	return &TaskModule{
		cfg:       cfg,
		publisher: publisher,
		logger:    logger.WithModule("task"),
	}
}

func (m *TaskModule) Name() string {
	return "task"
}

// Service returns the task core. It is nil until Start has run.
func (m *TaskModule) Service() *Service {
	return m.service
}

func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceList, json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceList, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGet, json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGet, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceCreate, json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceCreate, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceUpdate, json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceUpdate, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServicePatch, json.Unmarshal, json.Marshal, m.patchTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServicePatch, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceDelete, json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceDelete, err)
	}

	m.logger.Info("Registered services", "services", "services.task.{list,get,create,update,patch,delete}")
	return nil
}

// Start opens the configured store and builds the service.
func (m *TaskModule) Start(ctx context.Context) error {
	store, err := storage.Open(ctx, m.cfg, m.logger)
	if err != nil {
		return fmt.Errorf("failed to open task store: %w", err)
	}
	m.store = store
	m.service = NewService(NewRepository(store), m.publisher, m.cfg.StoreTimeout, m.logger)

	m.logger.Info("Module started", "driver", m.cfg.DBDriver, "cache", m.cfg.RedisAddr != "")
	return nil
}

// Stop closes the store.
func (m *TaskModule) Stop(_ context.Context) error {
	if m.store == nil {
		return nil
	}
	if err := m.store.Close(); err != nil {
		return fmt.Errorf("failed to close task store: %w", err)
	}
	m.logger.Info("Module stopped")
	return nil
}

func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if m.store == nil {
		return mono.HealthStatus{Healthy: false, Message: "store not initialized"}
	}
	if err := storage.Ping(ctx, m.store); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("store ping failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver": m.cfg.DBDriver,
			"cache":  m.cfg.RedisAddr != "",
		},
	}
}

// Request-reply handlers. Task errors travel in the reply as a Fault; the
// returned error is reserved for failures of the handler itself.

func (m *TaskModule) listTasks(ctx context.Context, req ListQuery, _ *mono.Msg) (PageReply, error) {
	page, err := m.service.ListTasks(ctx, req)
	return PageReply{Page: page, Fault: ToFault(err)}, nil
}

func (m *TaskModule) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskReply, error) {
	t, err := m.service.GetTask(ctx, req.ID)
	return TaskReply{Task: t, Fault: ToFault(err)}, nil
}

func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskReply, error) {
	t, err := m.service.CreateTask(ctx, req.Input)
	return TaskReply{Task: t, Fault: ToFault(err)}, nil
}

func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskReply, error) {
	t, err := m.service.UpdateTask(ctx, req.ID, req.Input)
	return TaskReply{Task: t, Fault: ToFault(err)}, nil
}

func (m *TaskModule) patchTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskReply, error) {
	t, err := m.service.PartialUpdateTask(ctx, req.ID, req.Input)
	return TaskReply{Task: t, Fault: ToFault(err)}, nil
}

func (m *TaskModule) deleteTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (DeleteReply, error) {
	err := m.service.DeleteTask(ctx, req.ID)
	return DeleteReply{Deleted: err == nil, Fault: ToFault(err)}, nil
}
