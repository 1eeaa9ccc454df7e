package events

import (
	domain "github.com/example/kanban-task-service/domain/task"
	"github.com/go-monolith/mono/pkg/helper"
)

// EventType tags a TaskEvent.
type EventType string

const (
	TaskCreated EventType = "CREATED"
	TaskUpdated EventType = "UPDATED"
	TaskDeleted EventType = "DELETED"
)

// TaskEvent is what live subscribers receive after a committed mutation.
// Payload is the full task for CREATED and UPDATED, and the task id for DELETED.
type TaskEvent struct {
	EventType EventType `json:"eventType"`
	Payload   any       `json:"payload"`
}

// Created builds the event for a newly stored task.
func Created(t domain.Task) TaskEvent {
	return TaskEvent{EventType: TaskCreated, Payload: t}
}

// Updated builds the event for a task after a successful update.
func Updated(t domain.Task) TaskEvent {
	return TaskEvent{EventType: TaskUpdated, Payload: t}
}

// Deleted builds the event for a removed task.
func Deleted(id string) TaskEvent {
	return TaskEvent{EventType: TaskDeleted, Payload: id}
}

// TaskID returns the id of the task the event is about.
func (e TaskEvent) TaskID() string {
	switch p := e.Payload.(type) {
	case domain.Task:
		return p.ID
	case *domain.Task:
		return p.ID
	case string:
		return p
	}
	return ""
}

// TaskChangedEvent is the bus message for a created or updated task.
type TaskChangedEvent struct {
	Task domain.Task `json:"task"`
}

// TaskRemovedEvent is the bus message for a deleted task.
type TaskRemovedEvent struct {
	TaskID string `json:"taskId"`
}

// TaskCreatedV1 is the typed event definition for task creation.
// Subject: events.task.v1.task-created
var TaskCreatedV1 = helper.EventDefinition[TaskChangedEvent](
	"task", "TaskCreated", "v1",
)

// TaskUpdatedV1 is the typed event definition for task updates.
// Subject: events.task.v1.task-updated
var TaskUpdatedV1 = helper.EventDefinition[TaskChangedEvent](
	"task", "TaskUpdated", "v1",
)

// TaskDeletedV1 is the typed event definition for task deletion.
// Subject: events.task.v1.task-deleted
var TaskDeletedV1 = helper.EventDefinition[TaskRemovedEvent](
	"task", "TaskDeleted", "v1",
)
