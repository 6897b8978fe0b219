package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of draft event.
type EventType string

const (
	EventTypePickMade       EventType = "PickMade"
	EventTypeDraftStarted   EventType = "DraftStarted"
	EventTypeDraftCompleted EventType = "DraftCompleted"
	EventTypeDraftCancelled EventType = "DraftCancelled"
	EventTypeDraftReset     EventType = "DraftReset"
)

// DraftEvent is the envelope every draft event travels in, from the engine
// through the broker out to websocket clients and NATS.
type DraftEvent struct {
	ID        string          `json:"id"`        // Event UUID
	DraftID   string          `json:"draft_id"`  // Draft UUID
	Type      EventType       `json:"type"`      // Event type
	Timestamp time.Time       `json:"timestamp"` // Event creation time
	Data      json.RawMessage `json:"data"`      // Event-specific payload
}

// New wraps a payload struct in a DraftEvent envelope.
func New(draftID uuid.UUID, eventType EventType, payload any) (DraftEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return DraftEvent{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return DraftEvent{
		ID:        uuid.New().String(),
		DraftID:   draftID.String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}, nil
}

// Publisher delivers draft events to interested parties. Publishing is
// best-effort: the engine logs and moves on when it fails, so
// implementations must never block a committed pick for long.
type Publisher interface {
	Publish(ctx context.Context, event DraftEvent) error
}

// NopPublisher drops every event. Useful for tools and tests that do not
// care about notifications.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event DraftEvent) error {
	return nil
}

// ParseEventPayload parses event data into the appropriate payload struct.
func ParseEventPayload(event *DraftEvent) (any, error) {
	switch event.Type {
	case EventTypePickMade:
		var payload PickMadePayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeDraftStarted:
		var payload DraftStartedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeDraftCompleted:
		var payload DraftCompletedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeDraftCancelled:
		var payload DraftCancelledPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeDraftReset:
		var payload DraftResetPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	default:
		return nil, nil // Unknown event type
	}
}
