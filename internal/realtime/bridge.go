package realtime

import (
	"encoding/json"

	"github.com/bhakti2406/local-service-finder/internal/events"
	"github.com/bhakti2406/local-service-finder/internal/models"

	"github.com/rs/zerolog"
)

// Envelope is the frame format pushed to realtime clients.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Bridge forwards domain events from the bus into hub rooms. Delivery is best
// effort: the durable write already happened by the time an event reaches the
// bridge, so failures here are logged and swallowed.
type Bridge struct {
	hub    *Hub
	logger *zerolog.Logger
}

func NewBridge(hub *Hub, bus *events.EventBus, logger *zerolog.Logger) *Bridge {
	b := &Bridge{hub: hub, logger: logger}
	bus.Subscribe(events.EventBookingStatusChanged, b.onBookingStatusChanged)
	bus.Subscribe(events.EventMessageReceived, b.onMessageReceived)
	return b
}

func (b *Bridge) onBookingStatusChanged(event *events.Event) error {
	var payload events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		b.logger.Error().Err(err).Str("event", event.Type).Msg("failed to decode event payload")
		return nil
	}

	frame, err := json.Marshal(Envelope{Type: event.Type, Payload: event.Payload})
	if err != nil {
		b.logger.Error().Err(err).Str("event", event.Type).Msg("failed to encode frame")
		return nil
	}

	b.hub.Publish(UserRoom(payload.UserID), frame)
	b.hub.Publish(AdminRoom, frame)
	return nil
}

func (b *Bridge) onMessageReceived(event *events.Event) error {
	var payload events.MessageEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		b.logger.Error().Err(err).Str("event", event.Type).Msg("failed to decode event payload")
		return nil
	}

	frame, err := json.Marshal(Envelope{Type: event.Type, Payload: event.Payload})
	if err != nil {
		b.logger.Error().Err(err).Str("event", event.Type).Msg("failed to encode frame")
		return nil
	}

	// The counterparty of a receiver is the admin pool, and vice versa.
	if payload.SenderRole == models.RoleAdmin {
		b.hub.Publish(UserRoom(payload.ConversationID), frame)
	} else {
		b.hub.Publish(AdminRoom, frame)
	}
	return nil
}
