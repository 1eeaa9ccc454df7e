package notification

import (
	"context"

	"github.com/example/kanban-task-service/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// NotificationModule owns the live event hub. When an event bus is available
// it also relays every hub event onto the bus.
type NotificationModule struct {
	hub         *Hub
	eventBus    mono.EventBus
	relay       *relay
	relayBuffer int
	logger      types.Logger
}

var _ mono.Module = (*NotificationModule)(nil)
var _ mono.EventEmitterModule = (*NotificationModule)(nil)
var _ mono.HealthCheckableModule = (*NotificationModule)(nil)

// NewModule creates the module. subscriberBuffer sizes each live
// subscription; relayBuffer sizes the bus relay's subscription.
func NewModule(subscriberBuffer, relayBuffer int, logger types.Logger) *NotificationModule {
	return &NotificationModule{
		hub:         NewHub(subscriberBuffer),
		relayBuffer: relayBuffer,
		logger:      logger.WithModule("notification"),
	}
}

func (m *NotificationModule) Name() string {
	return "notification"
}

// Hub returns the hub mutations are published to.
func (m *NotificationModule) Hub() *Hub {
	return m.hub
}

func (m *NotificationModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *NotificationModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

func (m *NotificationModule) Start(_ context.Context) error {
	if m.eventBus == nil {
		m.logger.Warn("Event bus not set, task events stay in-process")
	} else {
		m.relay = startRelay(m.hub, m.eventBus, m.relayBuffer, m.logger)
	}
	m.logger.Info("Module started", "subscriber_buffer", m.hub.buffer, "relay", m.relay != nil)
	return nil
}

func (m *NotificationModule) Stop(_ context.Context) error {
	if m.relay != nil {
		m.relay.stop()
	}
	stats := m.hub.Stats()
	m.hub.Close()
	m.logger.Info("Module stopped", "published", stats.Published, "dropped", stats.Dropped)
	return nil
}

func (m *NotificationModule) Health(_ context.Context) mono.HealthStatus {
	stats := m.hub.Stats()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"subscribers": stats.Subscribers,
			"published":   stats.Published,
			"dropped":     stats.Dropped,
		},
	}
}
