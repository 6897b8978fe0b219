package draft

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/rs/zerolog/log"
)

// AutoPickStrategy chooses a player for a bot team out of the players still
// available in the draft. The slice is never empty.
type AutoPickStrategy interface {
	SelectPlayer(ctx context.Context, draftID uuid.UUID, available []models.Player) (*models.Player, error)
}

// RandomStrategy picks uniformly at random.
type RandomStrategy struct {
	rng *rand.Rand
}

// NewRandomStrategy constructs a RandomStrategy with its own seed.
func NewRandomStrategy() *RandomStrategy {
	src := rand.NewSource(time.Now().UnixNano())
	return &RandomStrategy{rng: rand.New(src)}
}

// SelectPlayer implements AutoPickStrategy.
func (s *RandomStrategy) SelectPlayer(ctx context.Context, draftID uuid.UUID, available []models.Player) (*models.Player, error) {
	if len(available) == 0 {
		return nil, fmt.Errorf("no available players")
	}
	choice := available[s.rng.Intn(len(available))]

	log.Debug().
		Str("draft_id", draftID.String()).
		Str("player_id", choice.ID.String()).
		Msg("auto-pick selected player")
	return &choice, nil
}

// BotTurnOutcome describes how a bot turn ended.
type BotTurnOutcome string

const (
	// BotTurnPicked means the bot committed a pick.
	BotTurnPicked BotTurnOutcome = "PICKED"
	// BotTurnNotBot means a human team is on the clock. Not an error; the
	// result names who the engine is waiting on.
	BotTurnNotBot BotTurnOutcome = "NOT_BOT_TURN"
	// BotTurnNoPlayers means the pool has no available players left.
	BotTurnNoPlayers BotTurnOutcome = "NO_PLAYERS_AVAILABLE"
	// BotTurnDraftOver means the draft reached a terminal status.
	BotTurnDraftOver BotTurnOutcome = "DRAFT_OVER"
)

// BotTurnResult reports one RunBotTurn call.
type BotTurnResult struct {
	Outcome    BotTurnOutcome `json:"outcome"`
	TeamName   string         `json:"team_name,omitempty"`   // picking team, or who the engine waits on
	PlayerName string         `json:"player_name,omitempty"` // picked player
	Pick       *PickResult    `json:"pick,omitempty"`
}

// BotPlayResult summarizes one ProcessAllPendingBotTurns run.
type BotPlayResult struct {
	PicksMade int            `json:"picks_made"`
	Outcome   BotTurnOutcome `json:"outcome"`
	TeamName  string         `json:"team_name,omitempty"` // set when a human stopped the run
	Complete  bool           `json:"complete"`
}

// RunBotTurn plays a single bot turn. When the team on the clock is human
// it reports BotTurnNotBot and leaves the draft untouched; when the pool is
// exhausted it reports BotTurnNoPlayers. A configured bot delay runs before
// the pick as UX pacing and is cancelled by ctx; correctness never depends
// on it.
func (a *App) RunBotTurn(ctx context.Context, draftID uuid.UUID) (*BotTurnResult, error) {
	draft, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	switch draft.Status {
	case models.DraftStatusInProgress:
	case models.DraftStatusNotStarted:
		return nil, newError(ErrorKindNotStarted, "draft has not started")
	default:
		return &BotTurnResult{Outcome: BotTurnDraftOver}, nil
	}

	teamID, ok := TeamOnClock(draft.DraftOrder, draft.CurrentRound, draft.CurrentPick)
	if !ok {
		return nil, newError(ErrorKindNotStarted, "draft has no order yet")
	}
	team, err := a.teamRepo.GetTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get team on the clock: %w", err)
	}
	if !team.IsBot() {
		return &BotTurnResult{Outcome: BotTurnNotBot, TeamName: team.Name}, nil
	}

	available, err := a.playerRepo.ListAvailablePlayers(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list available players: %w", err)
	}
	if len(available) == 0 {
		return &BotTurnResult{Outcome: BotTurnNoPlayers, TeamName: team.Name}, nil
	}

	player, err := a.strategy.SelectPlayer(ctx, draftID, available)
	if err != nil {
		return nil, fmt.Errorf("failed to select player: %w", err)
	}

	if delay := time.Duration(draft.Settings.BotDelayMs) * time.Millisecond; delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-a.clock.After(delay):
		}
	}

	result, err := a.MakePick(ctx, draftID, team.Name, player.ID)
	if err != nil {
		// A human may have raced ahead during the delay; MakePick re-checks
		// the slot, so whatever it reports is the current truth.
		return nil, err
	}

	return &BotTurnResult{
		Outcome:    BotTurnPicked,
		TeamName:   team.Name,
		PlayerName: player.FullName,
		Pick:       result,
	}, nil
}

// ProcessAllPendingBotTurns plays bot turns back to back until a human is
// on the clock, the draft finishes, or the context is cancelled.
func (a *App) ProcessAllPendingBotTurns(ctx context.Context, draftID uuid.UUID) (*BotPlayResult, error) {
	summary := &BotPlayResult{}
	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result, err := a.RunBotTurn(ctx, draftID)
		if err != nil {
			return summary, err
		}

		switch result.Outcome {
		case BotTurnPicked:
			summary.PicksMade++
			if result.Pick != nil && result.Pick.Complete {
				summary.Outcome = BotTurnDraftOver
				summary.Complete = true
				return summary, nil
			}
		case BotTurnNotBot:
			summary.Outcome = BotTurnNotBot
			summary.TeamName = result.TeamName
			return summary, nil
		default:
			summary.Outcome = result.Outcome
			return summary, nil
		}
	}
}

// botNamePool feeds default names for bot teams registered without one.
var botNamePool = []string{
	"Bot Alpha",
	"Bot Bravo",
	"Bot Charlie",
	"Bot Delta",
	"Bot Echo",
	"Bot Foxtrot",
	"Bot Golf",
	"Bot Hotel",
}

func nextBotName(existing []models.Team) string {
	used := make(map[string]bool, len(existing))
	for _, team := range existing {
		used[team.Name] = true
	}
	for _, name := range botNamePool {
		if !used[name] {
			return name
		}
	}
	for i := len(botNamePool) + 1; ; i++ {
		name := fmt.Sprintf("Bot %d", i)
		if !used[name] {
			return name
		}
	}
}
