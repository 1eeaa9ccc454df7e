package task

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/kanban-task-service/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter implements TaskPort over the task module's request-reply
// services.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a TaskPort backed by container, the service
// container received through SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

// call invokes a service and decodes its reply into resp. Transport failures
// mean the task core could not be reached and are reported as
// domain.ErrStoreUnavailable.
func call[Req, Resp any](ctx context.Context, a *taskAdapter, service string, req Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w: %v", service, domain.ErrStoreUnavailable, err)
	}
	return nil
}

func taskCall[Req any](ctx context.Context, a *taskAdapter, service string, req Req) (*domain.Task, error) {
	var resp TaskReply
	if err := call(ctx, a, service, req, &resp); err != nil {
		return nil, err
	}
	if resp.Fault != nil {
		return nil, resp.Fault.Err()
	}
	return resp.Task, nil
}

func (a *taskAdapter) ListTasks(ctx context.Context, q ListQuery) (*domain.Page, error) {
	var resp PageReply
	if err := call(ctx, a, ServiceList, &q, &resp); err != nil {
		return nil, err
	}
	if resp.Fault != nil {
		return nil, resp.Fault.Err()
	}
	return resp.Page, nil
}

func (a *taskAdapter) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return taskCall(ctx, a, ServiceGet, &GetTaskRequest{ID: id})
}

func (a *taskAdapter) CreateTask(ctx context.Context, in domain.Input) (*domain.Task, error) {
	return taskCall(ctx, a, ServiceCreate, &CreateTaskRequest{Input: in})
}

func (a *taskAdapter) UpdateTask(ctx context.Context, id string, in domain.Input) (*domain.Task, error) {
	return taskCall(ctx, a, ServiceUpdate, &UpdateTaskRequest{ID: id, Input: in})
}

func (a *taskAdapter) PartialUpdateTask(ctx context.Context, id string, in domain.Input) (*domain.Task, error) {
	return taskCall(ctx, a, ServicePatch, &UpdateTaskRequest{ID: id, Input: in})
}

func (a *taskAdapter) DeleteTask(ctx context.Context, id string) error {
	var resp DeleteReply
	if err := call(ctx, a, ServiceDelete, &GetTaskRequest{ID: id}, &resp); err != nil {
		return err
	}
	if resp.Fault != nil {
		return resp.Fault.Err()
	}
	return nil
}
