package orchestrator

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftroom/go/internal/draft/events"
)

// EventSource defines what the orchestrator consumes draft events from.
// A pubsub.Broker satisfies it whether the broker is local or bridged to
// NATS.
type EventSource interface {
	Subscribe() chan events.DraftEvent
	Unsubscribe(ch chan events.DraftEvent)
}

// Consume subscribes to draft events and routes each one through
// HandleDomainEvent. Blocks until ctx is cancelled or the source closes
// the subscription.
func (o *Orchestrator) Consume(ctx context.Context, source EventSource) {
	ch := source.Subscribe()
	defer source.Unsubscribe(ch)

	log.Info().Str("instance", o.instanceID).Msg("orchestrator consuming draft events")

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("instance", o.instanceID).Msg("event consumer shutting down")
			return
		case event, ok := <-ch:
			if !ok {
				log.Info().Str("instance", o.instanceID).Msg("event source closed")
				return
			}
			if err := o.HandleDomainEvent(ctx, event); err != nil {
				log.Error().
					Err(err).
					Str("event_type", string(event.Type)).
					Str("draft_id", event.DraftID).
					Msg("failed to handle domain event")
			}
		}
	}
}

// HandleDomainEvent routes an incoming domain event. A started draft or a
// committed pick means the team now on the clock may be a bot, so those
// wake the scheduler; terminal events need nothing from us.
func (o *Orchestrator) HandleDomainEvent(ctx context.Context, event events.DraftEvent) error {
	log.Debug().
		Str("event_type", string(event.Type)).
		Str("draft_id", event.DraftID).
		Str("instance", o.instanceID).
		Msg("handling domain event")

	switch event.Type {
	case events.EventTypeDraftStarted, events.EventTypePickMade:
		o.wake()
		return nil

	case events.EventTypeDraftCompleted, events.EventTypeDraftCancelled, events.EventTypeDraftReset:
		// Nothing to schedule; the draft either ended or went back to
		// the lobby.
		return nil

	default:
		log.Warn().
			Str("event_type", string(event.Type)).
			Str("draft_id", event.DraftID).
			Msg("unknown event type - ignoring")
		return nil
	}
}

// wake nudges the scheduler without blocking. A full wake channel means a
// wake-up is already pending, which is all we need.
func (o *Orchestrator) wake() {
	select {
	case o.wakeCh <- struct{}{}:
	default:
	}
}
