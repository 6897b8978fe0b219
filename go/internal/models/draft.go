package models

import (
	"github.com/google/uuid"
	"time"
)

// DraftKind defines the kind of draft.
type DraftKind string

const (
	// DraftKindLeague is a real draft whose results feed a league.
	DraftKindLeague DraftKind = "LEAGUE"
	// DraftKindMock is a practice draft, typically filled with bot teams.
	DraftKindMock DraftKind = "MOCK"
)

// DraftStatus defines the status of a draft.
type DraftStatus string

const (
	DraftStatusNotStarted DraftStatus = "NOT_STARTED"
	DraftStatusInProgress DraftStatus = "IN_PROGRESS"
	DraftStatusCompleted  DraftStatus = "COMPLETED"
	DraftStatusCancelled  DraftStatus = "CANCELLED"
)

// DraftSettings holds JSONB configuration for drafts. Fixed at creation.
type DraftSettings struct {
	Rounds       int `json:"rounds"`
	TeamCapacity int `json:"team_capacity"`
	BotDelayMs   int `json:"bot_delay_ms,omitempty"`
}

// Draft represents a draft instance.
//
// CurrentRound is 1-indexed. CurrentPick counts completed picks across the
// whole draft, so it is also the 0-indexed position of the next pick; it is
// never reset at round boundaries. DraftOrder is nil until the draft starts
// and immutable afterwards.
type Draft struct {
	ID           uuid.UUID     `json:"id"`
	Name         string        `json:"name"`
	Kind         DraftKind     `json:"kind"`
	Status       DraftStatus   `json:"status"`
	Settings     DraftSettings `json:"settings"`
	DraftOrder   []uuid.UUID   `json:"draft_order,omitempty"`
	CurrentRound int           `json:"current_round"`
	CurrentPick  int           `json:"current_pick"`
	StartedAt    *time.Time    `json:"started_at,omitempty"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// TotalPicks returns the number of picks a full run of the draft produces.
func (d *Draft) TotalPicks() int {
	return d.Settings.Rounds * d.Settings.TeamCapacity
}

// Terminal reports whether a draft in this status can no longer accept picks.
func (s DraftStatus) Terminal() bool {
	return s == DraftStatusCompleted || s == DraftStatusCancelled
}
