package draft

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/mcdev12/draftroom/go/internal/store"
	"github.com/rs/zerolog/log"
)

// DraftRepository defines what the app layer needs from the draft store
type DraftRepository interface {
	CreateDraft(ctx context.Context, req store.CreateDraftRequest) (*models.Draft, error)
	GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error)
	ListDrafts(ctx context.Context) ([]models.Draft, error)
	ListDraftIDsByStatus(ctx context.Context, status models.DraftStatus) ([]uuid.UUID, error)
	StartDraft(ctx context.Context, req store.StartDraftRequest) error
	CommitPick(ctx context.Context, req store.CommitPickRequest) error
	CancelDraft(ctx context.Context, id uuid.UUID, cancelledAt time.Time) error
	ResetDraft(ctx context.Context, id uuid.UUID) (int, error)
}

// TeamRepository defines what the app layer needs from the team store
type TeamRepository interface {
	CreateTeam(ctx context.Context, req store.CreateTeamRequest) (*models.Team, error)
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
	GetTeamByName(ctx context.Context, draftID uuid.UUID, name string) (*models.Team, error)
	ListTeamsByDraft(ctx context.Context, draftID uuid.UUID) ([]models.Team, error)
	UpdateTeamName(ctx context.Context, id uuid.UUID, name string) (*models.Team, error)
}

// PlayerRepository defines what the app layer needs from the player store
type PlayerRepository interface {
	CreatePlayer(ctx context.Context, req store.CreatePlayerRequest) (*models.Player, error)
	GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]models.Player, error)
	ListAvailablePlayers(ctx context.Context, draftID uuid.UUID) ([]models.Player, error)
}

// PickRepository defines what the app layer needs from the pick store
type PickRepository interface {
	ListPicksByDraft(ctx context.Context, draftID uuid.UUID) ([]models.DraftPick, error)
	PlayerPicked(ctx context.Context, draftID, playerID uuid.UUID) (bool, error)
}

// Authorizer decides whether an actor may run privileged draft operations
// (start, cancel, reset). Establishing who the actor is belongs to the
// transport layer; the engine only asks yes or no.
type Authorizer interface {
	CanAdminister(ctx context.Context, draftID, actorID uuid.UUID) error
}

// AllowAllAuthorizer approves every authenticated actor. Development default.
type AllowAllAuthorizer struct{}

func (AllowAllAuthorizer) CanAdminister(ctx context.Context, draftID, actorID uuid.UUID) error {
	return nil
}

// PickResult reports a committed pick back to the caller.
type PickResult struct {
	PickNumber int  `json:"pick_number"`
	Round      int  `json:"round"`
	Complete   bool `json:"complete"`
}

// Snapshot is a full read of one draft: state record, roster, pick ledger
// in overall order, and whose turn is next.
type Snapshot struct {
	Draft    *models.Draft      `json:"draft"`
	Teams    []models.Team      `json:"teams"`
	Picks    []models.DraftPick `json:"picks"`
	NextTeam *models.Team       `json:"next_team,omitempty"`
}

// App handles draft business logic. All turn bookkeeping goes through it:
// it resolves whose pick it is, validates submissions, and commits them
// atomically through the store.
type App struct {
	repo       DraftRepository
	teamRepo   TeamRepository
	playerRepo PlayerRepository
	pickRepo   PickRepository
	strategy   AutoPickStrategy
	publisher  events.Publisher
	auth       Authorizer
	clock      clockwork.Clock

	rngMu sync.Mutex
	rng   *rand.Rand

	// One mutex per draft so concurrent submissions for the same draft
	// serialize in-process. The store's conditional commit is the guard of
	// record; this keeps racing callers from burning round trips.
	locksMu sync.Mutex
	locks   map[uuid.UUID]*sync.Mutex
}

// NewApp creates a new draft App
func NewApp(repo DraftRepository, teamRepo TeamRepository, playerRepo PlayerRepository, pickRepo PickRepository, strategy AutoPickStrategy, publisher events.Publisher, auth Authorizer, clock clockwork.Clock) *App {
	return &App{
		repo:       repo,
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
		pickRepo:   pickRepo,
		strategy:   strategy,
		publisher:  publisher,
		auth:       auth,
		clock:      clock,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		locks:      make(map[uuid.UUID]*sync.Mutex),
	}
}

func (a *App) draftLock(draftID uuid.UUID) *sync.Mutex {
	a.locksMu.Lock()
	defer a.locksMu.Unlock()
	lock, ok := a.locks[draftID]
	if !ok {
		lock = &sync.Mutex{}
		a.locks[draftID] = lock
	}
	return lock
}

// CreateDraft creates a new draft with validation. New drafts are always
// NOT_STARTED with an empty order.
func (a *App) CreateDraft(ctx context.Context, req store.CreateDraftRequest) (*models.Draft, error) {
	if err := a.validateCreateDraftRequest(req); err != nil {
		return nil, err
	}

	draft, err := a.repo.CreateDraft(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}

	log.Info().
		Str("draft_id", draft.ID.String()).
		Str("kind", string(draft.Kind)).
		Int("rounds", draft.Settings.Rounds).
		Int("team_capacity", draft.Settings.TeamCapacity).
		Msg("created draft")
	return draft, nil
}

// GetDraft retrieves a draft by ID
func (a *App) GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	draft, err := a.repo.GetDraft(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return draft, nil
}

// ListDrafts retrieves all drafts
func (a *App) ListDrafts(ctx context.Context) ([]models.Draft, error) {
	drafts, err := a.repo.ListDrafts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	return drafts, nil
}

// GetSnapshot assembles the full state of one draft: the state record, the
// roster, the pick ledger, and the team on the clock when one exists.
func (a *App) GetSnapshot(ctx context.Context, draftID uuid.UUID) (*Snapshot, error) {
	draft, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	teams, err := a.teamRepo.ListTeamsByDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	picks, err := a.pickRepo.ListPicksByDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list picks: %w", err)
	}

	snapshot := &Snapshot{
		Draft: draft,
		Teams: teams,
		Picks: picks,
	}

	if draft.Status == models.DraftStatusInProgress {
		if teamID, ok := TeamOnClock(draft.DraftOrder, draft.CurrentRound, draft.CurrentPick); ok {
			team, err := a.teamRepo.GetTeam(ctx, teamID)
			if err != nil {
				return nil, fmt.Errorf("failed to get team on the clock: %w", err)
			}
			snapshot.NextTeam = team
		}
	}

	return snapshot, nil
}

// RegisterTeam adds a team to a draft's roster. Only NOT_STARTED drafts
// accept registrations; bot teams get a pool name when none is supplied.
func (a *App) RegisterTeam(ctx context.Context, req store.CreateTeamRequest) (*models.Team, error) {
	draft, err := a.repo.GetDraft(ctx, req.DraftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	if draft.Status != models.DraftStatusNotStarted {
		if draft.Status.Terminal() {
			return nil, newError(ErrorKindAlreadyTerminal, "draft is already %s", draft.Status)
		}
		return nil, newError(ErrorKindPreconditionFailed, "cannot register teams once the draft has started")
	}

	if req.ID == uuid.Nil {
		return nil, newError(ErrorKindPreconditionFailed, "team id is required")
	}
	switch req.Kind {
	case models.TeamKindHuman:
		if req.OwnerID == nil || *req.OwnerID == uuid.Nil {
			return nil, newError(ErrorKindPreconditionFailed, "human teams require an owner")
		}
	case models.TeamKindBot:
		req.OwnerID = nil
	default:
		return nil, newError(ErrorKindPreconditionFailed, "invalid team kind: %s", req.Kind)
	}

	teams, err := a.teamRepo.ListTeamsByDraft(ctx, req.DraftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	if len(teams) >= draft.Settings.TeamCapacity {
		return nil, newError(ErrorKindPreconditionFailed, "draft roster is full (%d teams)", draft.Settings.TeamCapacity)
	}
	if req.Name == "" {
		if req.Kind != models.TeamKindBot {
			return nil, newError(ErrorKindPreconditionFailed, "team name is required")
		}
		req.Name = nextBotName(teams)
	}

	team, err := a.teamRepo.CreateTeam(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateTeam):
			return nil, newError(ErrorKindPreconditionFailed, "team name %q is already registered", req.Name)
		case errors.Is(err, store.ErrDraftFull):
			return nil, newError(ErrorKindPreconditionFailed, "draft roster is full (%d teams)", draft.Settings.TeamCapacity)
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	log.Info().
		Str("draft_id", req.DraftID.String()).
		Str("team_id", team.ID.String()).
		Str("name", team.Name).
		Str("kind", string(team.Kind)).
		Msg("registered team")
	return team, nil
}

// ListTeams returns a draft's roster.
func (a *App) ListTeams(ctx context.Context, draftID uuid.UUID) ([]models.Team, error) {
	if _, err := a.repo.GetDraft(ctx, draftID); err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	teams, err := a.teamRepo.ListTeamsByDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

// RenameTeam changes a team's display name. Identity and draft order slot
// stay put, so renames are safe mid-draft.
func (a *App) RenameTeam(ctx context.Context, draftID, teamID uuid.UUID, name string) (*models.Team, error) {
	if name == "" {
		return nil, newError(ErrorKindPreconditionFailed, "team name is required")
	}

	team, err := a.teamRepo.GetTeam(ctx, teamID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(ErrorKindTeamNotFound, "team %s is not registered in this draft", teamID)
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	if team.DraftID != draftID {
		return nil, newError(ErrorKindTeamNotFound, "team %s is not registered in this draft", teamID)
	}

	updated, err := a.teamRepo.UpdateTeamName(ctx, teamID, name)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateTeam) {
			return nil, newError(ErrorKindPreconditionFailed, "team name %q is already registered", name)
		}
		return nil, fmt.Errorf("failed to rename team: %w", err)
	}
	return updated, nil
}

// StartDraft freezes the roster into a random snake order and moves the
// draft to IN_PROGRESS. The roster must hold exactly the configured number
// of teams. Privileged.
func (a *App) StartDraft(ctx context.Context, draftID, actorID uuid.UUID) (*models.Draft, error) {
	if err := a.authorize(ctx, draftID, actorID); err != nil {
		return nil, err
	}

	lock := a.draftLock(draftID)
	lock.Lock()
	defer lock.Unlock()

	draft, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	if draft.Status != models.DraftStatusNotStarted {
		if draft.Status.Terminal() {
			return nil, newError(ErrorKindAlreadyTerminal, "draft is already %s", draft.Status)
		}
		return nil, newError(ErrorKindPreconditionFailed, "draft is already in progress")
	}

	teams, err := a.teamRepo.ListTeamsByDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	if len(teams) != draft.Settings.TeamCapacity {
		return nil, newError(ErrorKindPreconditionFailed,
			"draft needs exactly %d teams to start, has %d", draft.Settings.TeamCapacity, len(teams))
	}

	teamIDs := make([]uuid.UUID, len(teams))
	for i, team := range teams {
		teamIDs[i] = team.ID
	}
	a.rngMu.Lock()
	order := GenerateDraftOrder(teamIDs, a.rng)
	a.rngMu.Unlock()

	startedAt := a.clock.Now().UTC()
	err = a.repo.StartDraft(ctx, store.StartDraftRequest{
		DraftID:    draftID,
		DraftOrder: order,
		StartedAt:  startedAt,
	})
	if err != nil {
		if errors.Is(err, store.ErrStateConflict) {
			return nil, newError(ErrorKindPreconditionFailed, "draft was started by someone else")
		}
		return nil, fmt.Errorf("failed to start draft: %w", err)
	}

	started, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	orderIDs := make([]string, len(order))
	for i, id := range order {
		orderIDs[i] = id.String()
	}
	a.publish(ctx, draftID, events.EventTypeDraftStarted, events.DraftStartedPayload{
		DraftID:     draftID.String(),
		DraftKind:   string(started.Kind),
		StartedAt:   startedAt,
		TotalRounds: started.Settings.Rounds,
		TotalPicks:  started.TotalPicks(),
		DraftOrder:  orderIDs,
	})

	log.Info().
		Str("draft_id", draftID.String()).
		Int("teams", len(order)).
		Int("rounds", started.Settings.Rounds).
		Msg("started draft")
	return started, nil
}

// GetNextTeam resolves which team is on the clock.
func (a *App) GetNextTeam(ctx context.Context, draftID uuid.UUID) (*models.Team, error) {
	draft, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	if draft.Status.Terminal() {
		return nil, newError(ErrorKindAlreadyTerminal, "draft is already %s", draft.Status)
	}
	teamID, ok := TeamOnClock(draft.DraftOrder, draft.CurrentRound, draft.CurrentPick)
	if !ok {
		return nil, newError(ErrorKindNotStarted, "draft has not started")
	}

	team, err := a.teamRepo.GetTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get team on the clock: %w", err)
	}
	return team, nil
}

// MakePick validates and commits one pick for the named team. The turn
// check and the commit are consistent under concurrency: the store applies
// the counter advance conditionally, so of two racing submissions exactly
// one lands and the other resolves to a typed failure.
func (a *App) MakePick(ctx context.Context, draftID uuid.UUID, teamName string, playerID uuid.UUID) (*PickResult, error) {
	lock := a.draftLock(draftID)
	lock.Lock()
	defer lock.Unlock()

	draft, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	switch draft.Status {
	case models.DraftStatusInProgress:
	case models.DraftStatusNotStarted:
		return nil, newError(ErrorKindNotStarted, "draft has not started")
	default:
		return nil, newError(ErrorKindAlreadyTerminal, "draft is already %s", draft.Status)
	}

	expectedID, ok := TeamOnClock(draft.DraftOrder, draft.CurrentRound, draft.CurrentPick)
	if !ok {
		return nil, newError(ErrorKindNotStarted, "draft has no order yet")
	}

	team, err := a.teamRepo.GetTeamByName(ctx, draftID, teamName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(ErrorKindTeamNotFound, "team %q is not registered in this draft", teamName)
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	if team.ID != expectedID {
		expected, err := a.teamRepo.GetTeam(ctx, expectedID)
		if err != nil {
			return nil, fmt.Errorf("failed to get team on the clock: %w", err)
		}
		return nil, newWrongTurnError(expected.Name, team.Name)
	}

	player, err := a.playerRepo.GetPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(ErrorKindPlayerNotFound, "player %s does not exist", playerID)
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	taken, err := a.pickRepo.PlayerPicked(ctx, draftID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check player availability: %w", err)
	}
	if taken {
		return nil, newError(ErrorKindPlayerUnavailable, "player %s was already drafted", player.FullName)
	}

	teamCount := len(draft.DraftOrder)
	newPickNumber := draft.CurrentPick + 1
	newRound := draft.CurrentRound
	if newPickNumber%teamCount == 0 {
		newRound = draft.CurrentRound + 1
	}

	now := a.clock.Now().UTC()
	newStatus := models.DraftStatusInProgress
	var completedAt *time.Time
	if newRound > draft.Settings.Rounds {
		newStatus = models.DraftStatusCompleted
		completedAt = &now
	}

	pick := models.DraftPick{
		ID:          uuid.New(),
		DraftID:     draftID,
		Round:       draft.CurrentRound,
		Pick:        (draft.CurrentPick % teamCount) + 1,
		OverallPick: newPickNumber,
		TeamID:      team.ID,
		PlayerID:    playerID,
		PickedAt:    now,
	}

	err = a.repo.CommitPick(ctx, store.CommitPickRequest{
		Pick:         pick,
		ExpectedPick: draft.CurrentPick,
		NewRound:     newRound,
		NewStatus:    newStatus,
		CompletedAt:  completedAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrPlayerTaken):
			return nil, newError(ErrorKindPlayerUnavailable, "player %s was already drafted", player.FullName)
		case errors.Is(err, store.ErrStateConflict):
			// Another process advanced the draft between our read and the
			// commit. Re-resolve so the caller learns who actually holds
			// the slot now.
			return nil, a.staleTurnError(ctx, draftID, team.Name)
		}
		return nil, fmt.Errorf("failed to commit pick: %w", err)
	}

	complete := newStatus == models.DraftStatusCompleted
	a.publishPickMade(ctx, draft, pick, team, player, newRound, newPickNumber, complete)
	if complete {
		a.publishDraftCompleted(ctx, draft, now, newPickNumber)
	}

	log.Info().
		Str("draft_id", draftID.String()).
		Str("team", team.Name).
		Str("player", player.FullName).
		Int("overall_pick", newPickNumber).
		Int("round", pick.Round).
		Bool("complete", complete).
		Msg("pick made")

	return &PickResult{
		PickNumber: newPickNumber,
		Round:      pick.Round,
		Complete:   complete,
	}, nil
}

// staleTurnError reloads the draft after a commit conflict and reports the
// slot's current holder.
func (a *App) staleTurnError(ctx context.Context, draftID uuid.UUID, attempted string) error {
	draft, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return fmt.Errorf("failed to get draft after commit conflict: %w", err)
	}
	if draft.Status != models.DraftStatusInProgress {
		return newError(ErrorKindAlreadyTerminal, "draft is already %s", draft.Status)
	}
	expectedID, ok := TeamOnClock(draft.DraftOrder, draft.CurrentRound, draft.CurrentPick)
	if !ok {
		return newError(ErrorKindNotStarted, "draft has not started")
	}
	expected, err := a.teamRepo.GetTeam(ctx, expectedID)
	if err != nil {
		return fmt.Errorf("failed to get team on the clock: %w", err)
	}
	return newWrongTurnError(expected.Name, attempted)
}

// CancelDraft moves a draft to CANCELLED. Allowed from NOT_STARTED and
// IN_PROGRESS; terminal drafts stay put. Privileged.
func (a *App) CancelDraft(ctx context.Context, draftID, actorID uuid.UUID) (*models.Draft, error) {
	if err := a.authorize(ctx, draftID, actorID); err != nil {
		return nil, err
	}

	lock := a.draftLock(draftID)
	lock.Lock()
	defer lock.Unlock()

	draft, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	if err := validateStatusTransition(draft.Status, models.DraftStatusCancelled); err != nil {
		return nil, err
	}

	cancelledAt := a.clock.Now().UTC()
	if err := a.repo.CancelDraft(ctx, draftID, cancelledAt); err != nil {
		if errors.Is(err, store.ErrStateConflict) {
			return nil, newError(ErrorKindAlreadyTerminal, "draft is already finished")
		}
		return nil, fmt.Errorf("failed to cancel draft: %w", err)
	}

	cancelled, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	a.publish(ctx, draftID, events.EventTypeDraftCancelled, events.DraftCancelledPayload{
		DraftID:     draftID.String(),
		CancelledAt: cancelledAt,
	})

	log.Info().Str("draft_id", draftID.String()).Msg("cancelled draft")
	return cancelled, nil
}

// ResetDraft wipes a draft back to NOT_STARTED: every pick is deleted, the
// order is cleared, the counters return to zero. The roster and the player
// pool survive. This is an administrative escape hatch, not a normal
// transition, so it works from any status. Privileged.
func (a *App) ResetDraft(ctx context.Context, draftID, actorID uuid.UUID) (*models.Draft, error) {
	if err := a.authorize(ctx, draftID, actorID); err != nil {
		return nil, err
	}

	lock := a.draftLock(draftID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := a.repo.GetDraft(ctx, draftID); err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	dropped, err := a.repo.ResetDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to reset draft: %w", err)
	}

	reset, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	a.publish(ctx, draftID, events.EventTypeDraftReset, events.DraftResetPayload{
		DraftID:      draftID.String(),
		ResetAt:      a.clock.Now().UTC(),
		PicksDropped: dropped,
	})

	log.Warn().
		Str("draft_id", draftID.String()).
		Int("picks_dropped", dropped).
		Msg("reset draft")
	return reset, nil
}

// CreatePlayer adds a player to the shared pool.
func (a *App) CreatePlayer(ctx context.Context, req store.CreatePlayerRequest) (*models.Player, error) {
	if req.ID == uuid.Nil {
		return nil, newError(ErrorKindPreconditionFailed, "player id is required")
	}
	if req.FullName == "" {
		return nil, newError(ErrorKindPreconditionFailed, "player full name is required")
	}

	player, err := a.playerRepo.CreatePlayer(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return player, nil
}

// ListPlayers returns the whole player pool.
func (a *App) ListPlayers(ctx context.Context) ([]models.Player, error) {
	players, err := a.playerRepo.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

// ListAvailablePlayers returns all players not yet picked in the specified draft
func (a *App) ListAvailablePlayers(ctx context.Context, draftID uuid.UUID) ([]models.Player, error) {
	if _, err := a.repo.GetDraft(ctx, draftID); err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	players, err := a.playerRepo.ListAvailablePlayers(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list available players: %w", err)
	}
	return players, nil
}

// ListDraftIDsByStatus exposes the store scan the autoplay scheduler runs on.
func (a *App) ListDraftIDsByStatus(ctx context.Context, status models.DraftStatus) ([]uuid.UUID, error) {
	ids, err := a.repo.ListDraftIDsByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts by status: %w", err)
	}
	return ids, nil
}

func (a *App) authorize(ctx context.Context, draftID, actorID uuid.UUID) error {
	if actorID == uuid.Nil {
		return newError(ErrorKindNotAuthenticated, "caller identity required")
	}
	if err := a.auth.CanAdminister(ctx, draftID, actorID); err != nil {
		return newError(ErrorKindNotAuthorized, "actor %s may not administer this draft", actorID)
	}
	return nil
}

// publish wraps a payload and hands it to the publisher. Event delivery is
// best-effort; a failed publish never fails the operation that produced it.
func (a *App) publish(ctx context.Context, draftID uuid.UUID, eventType events.EventType, payload any) {
	event, err := events.New(draftID, eventType, payload)
	if err != nil {
		log.Warn().Err(err).Str("draft_id", draftID.String()).Msg("failed to build draft event")
		return
	}
	if err := a.publisher.Publish(ctx, event); err != nil {
		log.Warn().
			Err(err).
			Str("draft_id", draftID.String()).
			Str("event_type", string(eventType)).
			Msg("failed to publish draft event")
	}
}

func (a *App) publishPickMade(ctx context.Context, draft *models.Draft, pick models.DraftPick, team *models.Team, player *models.Player, newRound, newPickNumber int, complete bool) {
	payload := events.PickMadePayload{
		PickID:      pick.ID.String(),
		TeamID:      team.ID.String(),
		TeamName:    team.Name,
		PlayerID:    player.ID.String(),
		PlayerName:  player.FullName,
		Round:       pick.Round,
		Pick:        pick.Pick,
		OverallPick: pick.OverallPick,
		MadeAt:      pick.PickedAt,
	}
	if !complete {
		if nextID, ok := TeamOnClock(draft.DraftOrder, newRound, newPickNumber); ok {
			if next, err := a.teamRepo.GetTeam(ctx, nextID); err == nil {
				payload.NextTeamID = next.ID.String()
				payload.NextTeamName = next.Name
			}
		}
	}
	a.publish(ctx, draft.ID, events.EventTypePickMade, payload)
}

func (a *App) publishDraftCompleted(ctx context.Context, draft *models.Draft, completedAt time.Time, totalPicks int) {
	duration := ""
	if draft.StartedAt != nil {
		duration = completedAt.Sub(*draft.StartedAt).String()
	}
	a.publish(ctx, draft.ID, events.EventTypeDraftCompleted, events.DraftCompletedPayload{
		DraftID:     draft.ID.String(),
		CompletedAt: completedAt,
		Duration:    duration,
		TotalPicks:  totalPicks,
	})
}

// validateCreateDraftRequest validates create draft request
func (a *App) validateCreateDraftRequest(req store.CreateDraftRequest) error {
	if req.ID == uuid.Nil {
		return newError(ErrorKindPreconditionFailed, "id is required")
	}
	if req.Name == "" {
		return newError(ErrorKindPreconditionFailed, "name is required")
	}
	switch req.Kind {
	case models.DraftKindLeague, models.DraftKindMock:
	default:
		return newError(ErrorKindPreconditionFailed, "invalid draft kind: %s", req.Kind)
	}
	if req.Settings.Rounds <= 0 {
		return newError(ErrorKindPreconditionFailed, "rounds must be greater than 0")
	}
	if req.Settings.TeamCapacity < 2 {
		return newError(ErrorKindPreconditionFailed, "team_capacity must be at least 2")
	}
	if req.Settings.BotDelayMs < 0 {
		return newError(ErrorKindPreconditionFailed, "bot_delay_ms cannot be negative")
	}
	return nil
}

// validateStatusTransition validates if a status transition is allowed
func validateStatusTransition(currentStatus, newStatus models.DraftStatus) error {
	if currentStatus == newStatus {
		if currentStatus.Terminal() {
			return newError(ErrorKindAlreadyTerminal, "draft is already %s", currentStatus)
		}
		return nil
	}

	allowedTransitions := map[models.DraftStatus][]models.DraftStatus{
		models.DraftStatusNotStarted: {models.DraftStatusInProgress, models.DraftStatusCancelled},
		models.DraftStatusInProgress: {models.DraftStatusCompleted, models.DraftStatusCancelled},
		models.DraftStatusCompleted:  {}, // No transitions allowed from completed
		models.DraftStatusCancelled:  {}, // No transitions allowed from cancelled
	}

	allowedNext, exists := allowedTransitions[currentStatus]
	if !exists {
		return newError(ErrorKindPreconditionFailed, "unknown current status: %s", currentStatus)
	}

	for _, allowed := range allowedNext {
		if newStatus == allowed {
			return nil
		}
	}

	if currentStatus.Terminal() {
		return newError(ErrorKindAlreadyTerminal, "draft is already %s", currentStatus)
	}
	return newError(ErrorKindPreconditionFailed, "transition from %s to %s is not allowed", currentStatus, newStatus)
}
