// Package store defines the persistence contracts shared by every backend.
// The draft app declares the interfaces it consumes; this package holds the
// request types those interfaces speak and the sentinel errors backends
// translate their failures into.
package store

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/models"
)

var (
	// ErrNotFound means the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStateConflict means a conditional update lost a race: the draft row
	// no longer holds the counters or status the caller observed.
	ErrStateConflict = errors.New("draft state conflict")
	// ErrPlayerTaken means the player is already picked in this draft.
	ErrPlayerTaken = errors.New("player already picked in draft")
	// ErrDuplicateTeam means the team name is already registered in this draft.
	ErrDuplicateTeam = errors.New("team name already registered in draft")
	// ErrDraftFull means the draft roster is at capacity.
	ErrDraftFull = errors.New("draft roster is full")
)

// CreateDraftRequest carries everything needed to insert a draft row. New
// drafts always start NOT_STARTED with zeroed counters and no order.
type CreateDraftRequest struct {
	ID       uuid.UUID
	Name     string
	Kind     models.DraftKind
	Settings models.DraftSettings
}

// StartDraftRequest transitions a draft to IN_PROGRESS and freezes its
// order. Backends must apply it conditionally on the draft still being
// NOT_STARTED and report ErrStateConflict otherwise.
type StartDraftRequest struct {
	DraftID    uuid.UUID
	DraftOrder []uuid.UUID
	StartedAt  time.Time
}

// CommitPickRequest describes the atomic pick commit: the pick row to
// insert plus the counter state the draft row must still hold for this
// commit to win. Backends apply the whole request in one transaction:
// advance current_pick/current_round/status conditionally on
// current_pick == ExpectedPick (ErrStateConflict when the guard fails) and
// insert the pick (ErrPlayerTaken when the player is already used).
type CommitPickRequest struct {
	Pick         models.DraftPick
	ExpectedPick int
	NewRound     int
	NewStatus    models.DraftStatus
	CompletedAt  *time.Time
}

// CreateTeamRequest registers a team in a draft. Backends enforce name
// uniqueness per draft (ErrDuplicateTeam) and the draft's team capacity
// (ErrDraftFull).
type CreateTeamRequest struct {
	ID      uuid.UUID
	DraftID uuid.UUID
	Name    string
	Kind    models.TeamKind
	OwnerID *uuid.UUID
}

// CreatePlayerRequest inserts a player into the shared pool.
type CreatePlayerRequest struct {
	ID         uuid.UUID
	ExternalID string
	FullName   string
	Position   string
	ProTeam    string
}
