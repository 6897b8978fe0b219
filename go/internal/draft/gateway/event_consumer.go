package gateway

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftroom/go/internal/draft/events"
)

// EventSource defines where the gateway consumes draft events from. A
// pubsub.Broker satisfies it; when the broker carries a NATS upstream the
// gateway sees events from every service instance.
type EventSource interface {
	Subscribe() chan events.DraftEvent
	Unsubscribe(ch chan events.DraftEvent)
}

// EventConsumer pipes draft events from the broker to WebSocket clients
type EventConsumer struct {
	connectionManager *ConnectionManager
	source            EventSource
}

// NewEventConsumer creates an event consumer feeding the connection manager
func NewEventConsumer(cm *ConnectionManager, source EventSource) *EventConsumer {
	return &EventConsumer{
		connectionManager: cm,
		source:            source,
	}
}

// Start consumes events until ctx is cancelled
func (ec *EventConsumer) Start(ctx context.Context) error {
	ch := ec.source.Subscribe()
	defer ec.source.Unsubscribe(ch)

	log.Info().Msg("gateway event consumer started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("event consumer shutting down")
			return nil
		case event, ok := <-ch:
			if !ok {
				log.Info().Msg("event source closed")
				return nil
			}
			ec.processEvent(event)
		}
	}
}

// processEvent fans one event out to the draft's WebSocket connections
func (ec *EventConsumer) processEvent(event events.DraftEvent) {
	draftID, err := uuid.Parse(event.DraftID)
	if err != nil {
		log.Error().
			Err(err).
			Str("event_id", event.ID).
			Str("draft_id", event.DraftID).
			Msg("event carries invalid draft ID, dropping")
		return
	}

	ec.connectionManager.BroadcastToDraft(draftID, event)

	log.Debug().
		Str("event_id", event.ID).
		Str("draft_id", event.DraftID).
		Str("event_type", string(event.Type)).
		Msg("event broadcast to WebSocket clients")
}
