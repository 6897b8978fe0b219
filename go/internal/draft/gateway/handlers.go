package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftroom/go/internal/draft"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/mcdev12/draftroom/go/internal/store"
)

// DraftApp defines what the HTTP layer needs from the draft app.
type DraftApp interface {
	CreateDraft(ctx context.Context, req store.CreateDraftRequest) (*models.Draft, error)
	GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error)
	ListDrafts(ctx context.Context) ([]models.Draft, error)
	GetSnapshot(ctx context.Context, draftID uuid.UUID) (*draft.Snapshot, error)
	RegisterTeam(ctx context.Context, req store.CreateTeamRequest) (*models.Team, error)
	ListTeams(ctx context.Context, draftID uuid.UUID) ([]models.Team, error)
	RenameTeam(ctx context.Context, draftID, teamID uuid.UUID, name string) (*models.Team, error)
	StartDraft(ctx context.Context, draftID, actorID uuid.UUID) (*models.Draft, error)
	MakePick(ctx context.Context, draftID uuid.UUID, teamName string, playerID uuid.UUID) (*draft.PickResult, error)
	GetNextTeam(ctx context.Context, draftID uuid.UUID) (*models.Team, error)
	RunBotTurn(ctx context.Context, draftID uuid.UUID) (*draft.BotTurnResult, error)
	ProcessAllPendingBotTurns(ctx context.Context, draftID uuid.UUID) (*draft.BotPlayResult, error)
	ResetDraft(ctx context.Context, draftID, actorID uuid.UUID) (*models.Draft, error)
	CancelDraft(ctx context.Context, draftID, actorID uuid.UUID) (*models.Draft, error)
	CreatePlayer(ctx context.Context, req store.CreatePlayerRequest) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]models.Player, error)
	ListAvailablePlayers(ctx context.Context, draftID uuid.UUID) ([]models.Player, error)
}

// APIHandler serves the draft REST API.
type APIHandler struct {
	app DraftApp
}

// NewAPIHandler creates the REST handler around the draft app.
func NewAPIHandler(app DraftApp) *APIHandler {
	return &APIHandler{app: app}
}

// RegisterRoutes registers all REST routes with an HTTP mux.
func (h *APIHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/drafts", h.HandleCreateDraft)
	mux.HandleFunc("GET /api/drafts", h.HandleListDrafts)
	mux.HandleFunc("GET /api/drafts/{id}", h.HandleGetDraft)
	mux.HandleFunc("GET /api/drafts/{id}/state", h.HandleGetDraftState)
	mux.HandleFunc("POST /api/drafts/{id}/start", h.HandleStartDraft)
	mux.HandleFunc("POST /api/drafts/{id}/picks", h.HandleMakePick)
	mux.HandleFunc("GET /api/drafts/{id}/next-team", h.HandleGetNextTeam)
	mux.HandleFunc("POST /api/drafts/{id}/bot-turn", h.HandleRunBotTurn)
	mux.HandleFunc("POST /api/drafts/{id}/bot-turns", h.HandleProcessBotTurns)
	mux.HandleFunc("POST /api/drafts/{id}/reset", h.HandleResetDraft)
	mux.HandleFunc("POST /api/drafts/{id}/cancel", h.HandleCancelDraft)
	mux.HandleFunc("POST /api/drafts/{id}/teams", h.HandleRegisterTeam)
	mux.HandleFunc("GET /api/drafts/{id}/teams", h.HandleListTeams)
	mux.HandleFunc("PATCH /api/drafts/{id}/teams/{teamID}", h.HandleRenameTeam)
	mux.HandleFunc("GET /api/drafts/{id}/players", h.HandleListAvailablePlayers)
	mux.HandleFunc("GET /api/players", h.HandleListPlayers)
	mux.HandleFunc("POST /api/players", h.HandleCreatePlayer)
}

// HandleCreateDraft handles POST /api/drafts
func (h *APIHandler) HandleCreateDraft(w http.ResponseWriter, r *http.Request) {
	var req CreateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	kind := models.DraftKindLeague
	if req.Kind != "" {
		kind = models.DraftKind(req.Kind)
	}

	created, err := h.app.CreateDraft(r.Context(), store.CreateDraftRequest{
		ID:   uuid.New(),
		Name: req.Name,
		Kind: kind,
		Settings: models.DraftSettings{
			Rounds:       req.Rounds,
			TeamCapacity: req.TeamCapacity,
			BotDelayMs:   req.BotDelayMs,
		},
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleListDrafts handles GET /api/drafts
func (h *APIHandler) HandleListDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.app.ListDrafts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, drafts)
}

// HandleGetDraft handles GET /api/drafts/{id}
func (h *APIHandler) HandleGetDraft(w http.ResponseWriter, r *http.Request) {
	draftID, ok := pathDraftID(w, r)
	if !ok {
		return
	}
	d, err := h.app.GetDraft(r.Context(), draftID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HandleGetDraftState handles GET /api/drafts/{id}/state
func (h *APIHandler) HandleGetDraftState(w http.ResponseWriter, r *http.Request) {
	draftID, ok := pathDraftID(w, r)
	if !ok {
		return
	}

	snapshot, err := h.app.GetSnapshot(r.Context(), draftID)
	if err != nil {
		writeError(w, err)
		return
	}

	// Resolve player names for the pick ledger
	playerNames := make(map[string]string)
	if len(snapshot.Picks) > 0 {
		players, err := h.app.ListPlayers(r.Context())
		if err != nil {
			log.Warn().Err(err).Str("draft_id", draftID.String()).Msg("could not resolve player names for state")
		} else {
			for _, p := range players {
				playerNames[p.ID.String()] = p.FullName
			}
		}
	}

	writeJSON(w, http.StatusOK, buildDraftState(snapshot, playerNames))
}

// HandleStartDraft handles POST /api/drafts/{id}/start
func (h *APIHandler) HandleStartDraft(w http.ResponseWriter, r *http.Request) {
	draftID, ok := pathDraftID(w, r)
	if !ok {
		return
	}
	d, err := h.app.StartDraft(r.Context(), draftID, actorID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HandleMakePick handles POST /api/drafts/{id}/picks
func (h *APIHandler) HandleMakePick(w http.ResponseWriter, r *http.Request) {
	draftID, ok := pathDraftID(w, r)
	if !ok {
		return
	}

	var req MakePickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.TeamName == "" {
		writeBadRequest(w, "team_name is required")
		return
	}
	playerID, err := uuid.Parse(req.PlayerID)
	if err != nil {
		writeBadRequest(w, "invalid player_id format")
		return
	}

	result, err := h.app.MakePick(r.Context(), draftID, req.TeamName, playerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// HandleGetNextTeam handles GET /api/drafts/{id}/next-team
func (h *APIHandler) HandleGetNextTeam(w http.ResponseWriter, r *http.Request) {
	draftID, ok := pathDraftID(w, r)
	if !ok {
		return
	}
	team, err := h.app.GetNextTeam(r.Context(), draftID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// HandleRunBotTurn handles POST /api/drafts/{id}/bot-turn
func (h *APIHandler) HandleRunBotTurn(w http.ResponseWriter, r *http.Request) {
	draftID, ok := pathDraftID(w, r)
	if !ok {
		return
	}
	result, err := h.app.RunBotTurn(r.Context(), draftID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleProcessBotTurns handles POST /api/drafts/{id}/bot-turns
func (h *APIHandler) HandleProcessBotTurns(w http.ResponseWriter, r *http.Request) {
	draftID, ok := pathDraftID(w, r)
	if !ok {
		return
	}
	result, err := h.app.ProcessAllPendingBotTurns(r.Context(), draftID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleResetDraft handles POST /api/drafts/{id}/reset
func (h *APIHandler) HandleResetDraft(w http.ResponseWriter, r *http.Request) {
	draftID, ok := pathDraftID(w, r)
	if !ok {
		return
	}
	d, err := h.app.ResetDraft(r.Context(), draftID, actorID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HandleCancelDraft handles POST /api/drafts/{id}/cancel
func (h *APIHandler) HandleCancelDraft(w http.ResponseWriter, r *http.Request) {
	draftID, ok := pathDraftID(w, r)
	if !ok {
		return
	}
	d, err := h.app.CancelDraft(r.Context(), draftID, actorID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HandleRegisterTeam handles POST /api/drafts/{id}/teams
func (h *APIHandler) HandleRegisterTeam(w http.ResponseWriter, r *http.Request) {
	draftID, ok := pathDraftID(w, r)
	if !ok {
		return
	}

	var req RegisterTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	kind := models.TeamKindHuman
	if req.Kind != "" {
		kind = models.TeamKind(req.Kind)
	}

	var ownerID *uuid.UUID
	if req.OwnerID != "" {
		parsed, err := uuid.Parse(req.OwnerID)
		if err != nil {
			writeBadRequest(w, "invalid owner_id format")
			return
		}
		ownerID = &parsed
	}

	team, err := h.app.RegisterTeam(r.Context(), store.CreateTeamRequest{
		ID:      uuid.New(),
		DraftID: draftID,
		Name:    req.Name,
		Kind:    kind,
		OwnerID: ownerID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

// HandleListTeams handles GET /api/drafts/{id}/teams
func (h *APIHandler) HandleListTeams(w http.ResponseWriter, r *http.Request) {
	draftID, ok := pathDraftID(w, r)
	if !ok {
		return
	}
	teams, err := h.app.ListTeams(r.Context(), draftID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

// HandleRenameTeam handles PATCH /api/drafts/{id}/teams/{teamID}
func (h *APIHandler) HandleRenameTeam(w http.ResponseWriter, r *http.Request) {
	draftID, ok := pathDraftID(w, r)
	if !ok {
		return
	}
	teamID, err := uuid.Parse(r.PathValue("teamID"))
	if err != nil {
		writeBadRequest(w, "invalid team id format")
		return
	}

	var req RenameTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	team, err := h.app.RenameTeam(r.Context(), draftID, teamID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// HandleListAvailablePlayers handles GET /api/drafts/{id}/players
func (h *APIHandler) HandleListAvailablePlayers(w http.ResponseWriter, r *http.Request) {
	draftID, ok := pathDraftID(w, r)
	if !ok {
		return
	}
	players, err := h.app.ListAvailablePlayers(r.Context(), draftID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

// HandleListPlayers handles GET /api/players
func (h *APIHandler) HandleListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.app.ListPlayers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

// HandleCreatePlayer handles POST /api/players
func (h *APIHandler) HandleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req CreatePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	player, err := h.app.CreatePlayer(r.Context(), store.CreatePlayerRequest{
		ID:         uuid.New(),
		ExternalID: req.ExternalID,
		FullName:   req.FullName,
		Position:   req.Position,
		ProTeam:    req.ProTeam,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, player)
}

// pathDraftID parses the {id} path segment, writing a 400 when malformed.
func pathDraftID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	draftID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid draft id format")
		return uuid.Nil, false
	}
	return draftID, true
}

// actorID reads the caller identity from the X-User-ID header. Absent or
// malformed headers resolve to uuid.Nil, which privileged operations
// reject as unauthenticated.
func actorID(r *http.Request) uuid.UUID {
	id, err := uuid.Parse(r.Header.Get("X-User-ID"))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: ErrorBody{
		Kind:    "BAD_REQUEST",
		Message: message,
	}})
}

// writeError maps domain failures to HTTP statuses. Turn and availability
// conflicts are 409s so clients can refresh and retry; state rule
// violations are 422s; lookups that found nothing are 404s.
func writeError(w http.ResponseWriter, err error) {
	if domainErr, ok := draft.AsError(err); ok {
		status := http.StatusInternalServerError
		switch domainErr.Kind {
		case draft.ErrorKindWrongTurn, draft.ErrorKindPlayerUnavailable:
			status = http.StatusConflict
		case draft.ErrorKindTeamNotFound, draft.ErrorKindPlayerNotFound:
			status = http.StatusNotFound
		case draft.ErrorKindPreconditionFailed, draft.ErrorKindNotStarted, draft.ErrorKindAlreadyTerminal:
			status = http.StatusUnprocessableEntity
		case draft.ErrorKindNotAuthenticated:
			status = http.StatusUnauthorized
		case draft.ErrorKindNotAuthorized:
			status = http.StatusForbidden
		}
		writeJSON(w, status, ErrorResponse{Error: ErrorBody{
			Kind:         string(domainErr.Kind),
			Message:      domainErr.Message,
			ExpectedTeam: domainErr.ExpectedTeam,
		}})
		return
	}

	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: ErrorBody{
			Kind:    "NOT_FOUND",
			Message: "resource not found",
		}})
		return
	}

	log.Error().Err(err).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: ErrorBody{
		Kind:    "INTERNAL",
		Message: "internal server error",
	}})
}
