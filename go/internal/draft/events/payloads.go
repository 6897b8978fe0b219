package events

import (
	"time"
)

// Event payload types shared between the engine, broker, and gateway.

// PickMadePayload is the payload for a PickMade event. NextTeam fields are
// empty on the final pick of a draft.
type PickMadePayload struct {
	PickID       string    `json:"pick_id"`
	TeamID       string    `json:"team_id"`
	TeamName     string    `json:"team_name"`
	PlayerID     string    `json:"player_id"`
	PlayerName   string    `json:"player_name"`
	Round        int       `json:"round"`
	Pick         int       `json:"pick"`
	OverallPick  int       `json:"overall_pick"`
	MadeAt       time.Time `json:"made_at"`
	NextTeamID   string    `json:"next_team_id,omitempty"`
	NextTeamName string    `json:"next_team_name,omitempty"`
}

// DraftStartedPayload is the payload for a DraftStarted event. DraftOrder
// reveals the frozen first-round order.
type DraftStartedPayload struct {
	DraftID     string    `json:"draft_id"`
	DraftKind   string    `json:"draft_kind"`
	StartedAt   time.Time `json:"started_at"`
	TotalRounds int       `json:"total_rounds"`
	TotalPicks  int       `json:"total_picks"`
	DraftOrder  []string  `json:"draft_order"`
}

// DraftCompletedPayload is the payload for a DraftCompleted event.
type DraftCompletedPayload struct {
	DraftID     string    `json:"draft_id"`
	CompletedAt time.Time `json:"completed_at"`
	Duration    string    `json:"duration"`
	TotalPicks  int       `json:"total_picks"`
}

// DraftCancelledPayload is the payload for a DraftCancelled event.
type DraftCancelledPayload struct {
	DraftID     string    `json:"draft_id"`
	CancelledAt time.Time `json:"cancelled_at"`
}

// DraftResetPayload is the payload for a DraftReset event.
type DraftResetPayload struct {
	DraftID      string    `json:"draft_id"`
	ResetAt      time.Time `json:"reset_at"`
	PicksDropped int       `json:"picks_dropped"`
}
