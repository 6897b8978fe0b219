package gateway

import (
	"time"

	"github.com/mcdev12/draftroom/go/internal/draft"
	"github.com/mcdev12/draftroom/go/internal/models"
)

// CreateDraftRequest is the POST /api/drafts body.
type CreateDraftRequest struct {
	Name         string `json:"name"`
	Kind         string `json:"kind,omitempty"` // LEAGUE (default) or MOCK
	Rounds       int    `json:"rounds"`
	TeamCapacity int    `json:"team_capacity"`
	BotDelayMs   int    `json:"bot_delay_ms,omitempty"`
}

// RegisterTeamRequest is the POST /api/drafts/{id}/teams body.
type RegisterTeamRequest struct {
	Name    string `json:"name,omitempty"` // optional for bots, pool name assigned
	Kind    string `json:"kind,omitempty"` // HUMAN (default) or BOT
	OwnerID string `json:"owner_id,omitempty"`
}

// RenameTeamRequest is the PATCH /api/drafts/{id}/teams/{teamID} body.
type RenameTeamRequest struct {
	Name string `json:"name"`
}

// MakePickRequest is the POST /api/drafts/{id}/picks body.
type MakePickRequest struct {
	TeamName string `json:"team_name"`
	PlayerID string `json:"player_id"`
}

// CreatePlayerRequest is the POST /api/players body.
type CreatePlayerRequest struct {
	ExternalID string `json:"external_id,omitempty"`
	FullName   string `json:"full_name"`
	Position   string `json:"position"`
	ProTeam    string `json:"pro_team,omitempty"`
}

// TeamInfo is the team shape embedded in state responses.
type TeamInfo struct {
	TeamID string `json:"team_id"`
	Name   string `json:"name"`
	Kind   string `json:"kind"`
}

// PickInfo is one committed pick in a state response.
type PickInfo struct {
	PickID      string    `json:"pick_id"`
	TeamID      string    `json:"team_id"`
	TeamName    string    `json:"team_name"`
	PlayerID    string    `json:"player_id"`
	PlayerName  string    `json:"player_name,omitempty"`
	Round       int       `json:"round"`
	Pick        int       `json:"pick"`
	OverallPick int       `json:"overall_pick"`
	MadeAt      time.Time `json:"made_at"`
}

// DraftStateResponse is the full draft snapshot served at
// GET /api/drafts/{id}/state.
type DraftStateResponse struct {
	DraftID        string     `json:"draft_id"`
	Name           string     `json:"name"`
	Kind           string     `json:"kind"`
	Status         string     `json:"status"`
	CurrentRound   int        `json:"current_round"`
	CurrentPick    int        `json:"current_pick"`
	TotalRounds    int        `json:"total_rounds"`
	TotalPicks     int        `json:"total_picks"`
	CompletedPicks int        `json:"completed_picks"`
	DraftOrder     []string   `json:"draft_order,omitempty"`
	OnClock        *TeamInfo  `json:"on_clock,omitempty"`
	Teams          []TeamInfo `json:"teams"`
	Picks          []PickInfo `json:"picks"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// ErrorResponse is the JSON error body every failed request gets.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the machine-readable failure classification.
type ErrorBody struct {
	Kind         string `json:"kind"`
	Message      string `json:"message"`
	ExpectedTeam string `json:"expected_team,omitempty"`
}

func teamInfo(team models.Team) TeamInfo {
	return TeamInfo{
		TeamID: team.ID.String(),
		Name:   team.Name,
		Kind:   string(team.Kind),
	}
}

// buildDraftState assembles the state response from a snapshot, resolving
// team and player IDs to display names.
func buildDraftState(snapshot *draft.Snapshot, playerNames map[string]string) *DraftStateResponse {
	d := snapshot.Draft

	state := &DraftStateResponse{
		DraftID:        d.ID.String(),
		Name:           d.Name,
		Kind:           string(d.Kind),
		Status:         string(d.Status),
		CurrentRound:   d.CurrentRound,
		CurrentPick:    d.CurrentPick,
		TotalRounds:    d.Settings.Rounds,
		TotalPicks:     d.TotalPicks(),
		CompletedPicks: len(snapshot.Picks),
		Teams:          make([]TeamInfo, 0, len(snapshot.Teams)),
		Picks:          make([]PickInfo, 0, len(snapshot.Picks)),
		StartedAt:      d.StartedAt,
		CompletedAt:    d.CompletedAt,
	}

	teamNames := make(map[string]string, len(snapshot.Teams))
	for _, team := range snapshot.Teams {
		state.Teams = append(state.Teams, teamInfo(team))
		teamNames[team.ID.String()] = team.Name
	}

	for _, id := range d.DraftOrder {
		state.DraftOrder = append(state.DraftOrder, id.String())
	}

	if snapshot.NextTeam != nil {
		info := teamInfo(*snapshot.NextTeam)
		state.OnClock = &info
	}

	for _, pick := range snapshot.Picks {
		state.Picks = append(state.Picks, PickInfo{
			PickID:      pick.ID.String(),
			TeamID:      pick.TeamID.String(),
			TeamName:    teamNames[pick.TeamID.String()],
			PlayerID:    pick.PlayerID.String(),
			PlayerName:  playerNames[pick.PlayerID.String()],
			Round:       pick.Round,
			Pick:        pick.Pick,
			OverallPick: pick.OverallPick,
			MadeAt:      pick.PickedAt,
		})
	}

	return state
}
