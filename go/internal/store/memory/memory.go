// Package memory implements the store contracts with mutex-guarded maps.
// It mirrors the postgres backend's conditional-update semantics, so the
// engine behaves identically on either; tests and zero-infra dev setups
// run on this one.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/mcdev12/draftroom/go/internal/store"
)

// Store holds all draft data in process memory.
type Store struct {
	mu      sync.RWMutex
	drafts  map[uuid.UUID]*models.Draft
	teams   map[uuid.UUID]*models.Team
	players map[uuid.UUID]*models.Player
	picks   map[uuid.UUID][]models.DraftPick // keyed by draft id, overall-pick order
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		drafts:  make(map[uuid.UUID]*models.Draft),
		teams:   make(map[uuid.UUID]*models.Team),
		players: make(map[uuid.UUID]*models.Player),
		picks:   make(map[uuid.UUID][]models.DraftPick),
	}
}

func (s *Store) CreateDraft(ctx context.Context, req store.CreateDraftRequest) (*models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.drafts[req.ID]; exists {
		return nil, fmt.Errorf("draft %s already exists", req.ID)
	}

	now := time.Now().UTC()
	draft := &models.Draft{
		ID:           req.ID,
		Name:         req.Name,
		Kind:         req.Kind,
		Status:       models.DraftStatusNotStarted,
		Settings:     req.Settings,
		CurrentRound: 1,
		CurrentPick:  0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.drafts[req.ID] = draft
	return copyDraft(draft), nil
}

func (s *Store) GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	draft, ok := s.drafts[id]
	if !ok {
		return nil, fmt.Errorf("draft %s: %w", id, store.ErrNotFound)
	}
	return copyDraft(draft), nil
}

func (s *Store) ListDrafts(ctx context.Context) ([]models.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	drafts := make([]models.Draft, 0, len(s.drafts))
	for _, draft := range s.drafts {
		drafts = append(drafts, *copyDraft(draft))
	}
	sort.Slice(drafts, func(i, j int) bool {
		if drafts[i].CreatedAt.Equal(drafts[j].CreatedAt) {
			return drafts[i].ID.String() < drafts[j].ID.String()
		}
		return drafts[i].CreatedAt.Before(drafts[j].CreatedAt)
	})
	return drafts, nil
}

func (s *Store) ListDraftIDsByStatus(ctx context.Context, status models.DraftStatus) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []uuid.UUID
	for id, draft := range s.drafts {
		if draft.Status == status {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

func (s *Store) StartDraft(ctx context.Context, req store.StartDraftRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[req.DraftID]
	if !ok {
		return fmt.Errorf("draft %s: %w", req.DraftID, store.ErrNotFound)
	}
	if draft.Status != models.DraftStatusNotStarted {
		return store.ErrStateConflict
	}

	order := make([]uuid.UUID, len(req.DraftOrder))
	copy(order, req.DraftOrder)
	startedAt := req.StartedAt

	draft.Status = models.DraftStatusInProgress
	draft.DraftOrder = order
	draft.CurrentRound = 1
	draft.CurrentPick = 0
	draft.StartedAt = &startedAt
	draft.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) CommitPick(ctx context.Context, req store.CommitPickRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[req.Pick.DraftID]
	if !ok {
		return fmt.Errorf("draft %s: %w", req.Pick.DraftID, store.ErrNotFound)
	}
	if draft.Status != models.DraftStatusInProgress || draft.CurrentPick != req.ExpectedPick {
		return store.ErrStateConflict
	}
	for _, pick := range s.picks[draft.ID] {
		if pick.PlayerID == req.Pick.PlayerID {
			return store.ErrPlayerTaken
		}
		if pick.OverallPick == req.Pick.OverallPick {
			return store.ErrStateConflict
		}
	}

	s.picks[draft.ID] = append(s.picks[draft.ID], req.Pick)
	draft.CurrentPick = req.ExpectedPick + 1
	draft.CurrentRound = req.NewRound
	draft.Status = req.NewStatus
	if req.CompletedAt != nil {
		completedAt := *req.CompletedAt
		draft.CompletedAt = &completedAt
	}
	draft.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) CancelDraft(ctx context.Context, id uuid.UUID, cancelledAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[id]
	if !ok {
		return fmt.Errorf("draft %s: %w", id, store.ErrNotFound)
	}
	if draft.Status.Terminal() {
		return store.ErrStateConflict
	}

	draft.Status = models.DraftStatusCancelled
	draft.CompletedAt = &cancelledAt
	draft.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) ResetDraft(ctx context.Context, id uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[id]
	if !ok {
		return 0, fmt.Errorf("draft %s: %w", id, store.ErrNotFound)
	}

	dropped := len(s.picks[id])
	delete(s.picks, id)

	draft.Status = models.DraftStatusNotStarted
	draft.DraftOrder = nil
	draft.CurrentRound = 1
	draft.CurrentPick = 0
	draft.StartedAt = nil
	draft.CompletedAt = nil
	draft.UpdatedAt = time.Now().UTC()
	return dropped, nil
}

func (s *Store) CreateTeam(ctx context.Context, req store.CreateTeamRequest) (*models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[req.DraftID]
	if !ok {
		return nil, fmt.Errorf("draft %s: %w", req.DraftID, store.ErrNotFound)
	}

	count := 0
	for _, team := range s.teams {
		if team.DraftID != req.DraftID {
			continue
		}
		if team.Name == req.Name {
			return nil, store.ErrDuplicateTeam
		}
		count++
	}
	if count >= draft.Settings.TeamCapacity {
		return nil, store.ErrDraftFull
	}

	var ownerID *uuid.UUID
	if req.OwnerID != nil {
		owner := *req.OwnerID
		ownerID = &owner
	}
	team := &models.Team{
		ID:        req.ID,
		DraftID:   req.DraftID,
		Name:      req.Name,
		Kind:      req.Kind,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}
	s.teams[req.ID] = team
	return copyTeam(team), nil
}

func (s *Store) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	team, ok := s.teams[id]
	if !ok {
		return nil, fmt.Errorf("team %s: %w", id, store.ErrNotFound)
	}
	return copyTeam(team), nil
}

func (s *Store) GetTeamByName(ctx context.Context, draftID uuid.UUID, name string) (*models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, team := range s.teams {
		if team.DraftID == draftID && team.Name == name {
			return copyTeam(team), nil
		}
	}
	return nil, fmt.Errorf("team %q: %w", name, store.ErrNotFound)
}

func (s *Store) ListTeamsByDraft(ctx context.Context, draftID uuid.UUID) ([]models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var teams []models.Team
	for _, team := range s.teams {
		if team.DraftID == draftID {
			teams = append(teams, *copyTeam(team))
		}
	}
	sort.Slice(teams, func(i, j int) bool {
		if teams[i].CreatedAt.Equal(teams[j].CreatedAt) {
			return teams[i].Name < teams[j].Name
		}
		return teams[i].CreatedAt.Before(teams[j].CreatedAt)
	})
	return teams, nil
}

func (s *Store) UpdateTeamName(ctx context.Context, id uuid.UUID, name string) (*models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	team, ok := s.teams[id]
	if !ok {
		return nil, fmt.Errorf("team %s: %w", id, store.ErrNotFound)
	}
	for _, other := range s.teams {
		if other.DraftID == team.DraftID && other.ID != id && other.Name == name {
			return nil, store.ErrDuplicateTeam
		}
	}

	team.Name = name
	return copyTeam(team), nil
}

func (s *Store) CreatePlayer(ctx context.Context, req store.CreatePlayerRequest) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.players[req.ID]; exists {
		return nil, fmt.Errorf("player %s already exists", req.ID)
	}

	player := &models.Player{
		ID:         req.ID,
		ExternalID: req.ExternalID,
		FullName:   req.FullName,
		Position:   req.Position,
		ProTeam:    req.ProTeam,
		CreatedAt:  time.Now().UTC(),
	}
	s.players[req.ID] = player
	return copyPlayer(player), nil
}

func (s *Store) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	player, ok := s.players[id]
	if !ok {
		return nil, fmt.Errorf("player %s: %w", id, store.ErrNotFound)
	}
	return copyPlayer(player), nil
}

func (s *Store) ListPlayers(ctx context.Context) ([]models.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listPlayersLocked(nil), nil
}

func (s *Store) ListAvailablePlayers(ctx context.Context, draftID uuid.UUID) ([]models.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	taken := make(map[uuid.UUID]bool, len(s.picks[draftID]))
	for _, pick := range s.picks[draftID] {
		taken[pick.PlayerID] = true
	}
	return s.listPlayersLocked(taken), nil
}

func (s *Store) listPlayersLocked(exclude map[uuid.UUID]bool) []models.Player {
	var players []models.Player
	for id, player := range s.players {
		if exclude[id] {
			continue
		}
		players = append(players, *copyPlayer(player))
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].FullName == players[j].FullName {
			return players[i].ID.String() < players[j].ID.String()
		}
		return players[i].FullName < players[j].FullName
	})
	return players
}

func (s *Store) ListPicksByDraft(ctx context.Context, draftID uuid.UUID) ([]models.DraftPick, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	picks := make([]models.DraftPick, len(s.picks[draftID]))
	copy(picks, s.picks[draftID])
	sort.Slice(picks, func(i, j int) bool { return picks[i].OverallPick < picks[j].OverallPick })
	return picks, nil
}

func (s *Store) PlayerPicked(ctx context.Context, draftID, playerID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, pick := range s.picks[draftID] {
		if pick.PlayerID == playerID {
			return true, nil
		}
	}
	return false, nil
}

// Copies keep callers from mutating shared state through returned pointers.

func copyDraft(draft *models.Draft) *models.Draft {
	out := *draft
	if draft.DraftOrder != nil {
		out.DraftOrder = make([]uuid.UUID, len(draft.DraftOrder))
		copy(out.DraftOrder, draft.DraftOrder)
	}
	if draft.StartedAt != nil {
		startedAt := *draft.StartedAt
		out.StartedAt = &startedAt
	}
	if draft.CompletedAt != nil {
		completedAt := *draft.CompletedAt
		out.CompletedAt = &completedAt
	}
	return &out
}

func copyTeam(team *models.Team) *models.Team {
	out := *team
	if team.OwnerID != nil {
		ownerID := *team.OwnerID
		out.OwnerID = &ownerID
	}
	return &out
}

func copyPlayer(player *models.Player) *models.Player {
	out := *player
	return &out
}
