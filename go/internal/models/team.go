package models

import (
	"time"

	"github.com/google/uuid"
)

// TeamKind defines who controls a team's picks.
type TeamKind string

const (
	TeamKindHuman TeamKind = "HUMAN"
	TeamKindBot   TeamKind = "BOT"
)

// Team represents a roster slot in a single draft. Names are unique within
// a draft. Bot teams have no owner.
type Team struct {
	ID        uuid.UUID  `json:"id"`
	DraftID   uuid.UUID  `json:"draft_id"`
	Name      string     `json:"name"`
	Kind      TeamKind   `json:"kind"`
	OwnerID   *uuid.UUID `json:"owner_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsBot reports whether the team picks for itself.
func (t *Team) IsBot() bool {
	return t.Kind == TeamKindBot
}
