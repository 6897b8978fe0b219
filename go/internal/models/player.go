package models

import (
	"time"

	"github.com/google/uuid"
)

// Player represents a draftable player in the shared pool. Availability is
// not a property of the player; a player is available in a given draft when
// no pick in that draft references them.
type Player struct {
	ID         uuid.UUID `json:"id"`
	ExternalID string    `json:"external_id"`
	FullName   string    `json:"full_name"`
	Position   string    `json:"position"` // 'QB', 'RB', 'WR', etc.
	ProTeam    string    `json:"pro_team"`
	CreatedAt  time.Time `json:"created_at"`
}
