package notification

import (
	"fmt"

	domain "github.com/example/kanban-task-service/domain/task"
	"github.com/example/kanban-task-service/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// relay forwards hub events to the mono event bus so that consumers outside
// this process see the same stream, in the same order, as live subscribers.
type relay struct {
	sub    *Subscription
	bus    mono.EventBus
	logger types.Logger
	done   chan struct{}
}

func startRelay(hub *Hub, bus mono.EventBus, buffer int, logger types.Logger) *relay {
	r := &relay{
		sub:    hub.SubscribeBuffered(buffer),
		bus:    bus,
		logger: logger,
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *relay) run() {
	defer close(r.done)
	for evt := range r.sub.Events() {
		if err := r.forward(evt); err != nil {
			r.logger.Warn("Failed to relay task event", "type", evt.EventType, "id", evt.TaskID(), "error", err)
		}
	}
}

func (r *relay) forward(evt events.TaskEvent) error {
	switch evt.EventType {
	case events.TaskCreated, events.TaskUpdated:
		t, ok := evt.Payload.(domain.Task)
		if !ok {
			return fmt.Errorf("unexpected payload %T", evt.Payload)
		}
		def := events.TaskUpdatedV1
		if evt.EventType == events.TaskCreated {
			def = events.TaskCreatedV1
		}
		return def.Publish(r.bus, events.TaskChangedEvent{Task: t}, nil)
	case events.TaskDeleted:
		return events.TaskDeletedV1.Publish(r.bus, events.TaskRemovedEvent{TaskID: evt.TaskID()}, nil)
	}
	return fmt.Errorf("unknown event type %q", evt.EventType)
}

// stop unsubscribes and waits for in-flight forwards to finish.
func (r *relay) stop() {
	r.sub.Close()
	<-r.done
}
