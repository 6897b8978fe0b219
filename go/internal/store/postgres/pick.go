package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/models"
)

type pickRow struct {
	ID          uuid.UUID `db:"id"`
	DraftID     uuid.UUID `db:"draft_id"`
	Round       int       `db:"round"`
	Pick        int       `db:"pick"`
	OverallPick int       `db:"overall_pick"`
	TeamID      uuid.UUID `db:"team_id"`
	PlayerID    uuid.UUID `db:"player_id"`
	PickedAt    time.Time `db:"picked_at"`
}

func (r pickRow) toModel() models.DraftPick {
	return models.DraftPick{
		ID:          r.ID,
		DraftID:     r.DraftID,
		Round:       r.Round,
		Pick:        r.Pick,
		OverallPick: r.OverallPick,
		TeamID:      r.TeamID,
		PlayerID:    r.PlayerID,
		PickedAt:    r.PickedAt,
	}
}

func (s *Store) ListPicksByDraft(ctx context.Context, draftID uuid.UUID) ([]models.DraftPick, error) {
	var rows []pickRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM draft_picks WHERE draft_id = $1 ORDER BY overall_pick`, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list picks: %w", err)
	}

	picks := make([]models.DraftPick, 0, len(rows))
	for _, row := range rows {
		picks = append(picks, row.toModel())
	}
	return picks, nil
}

func (s *Store) PlayerPicked(ctx context.Context, draftID, playerID uuid.UUID) (bool, error) {
	var picked bool
	err := s.db.GetContext(ctx, &picked, `
		SELECT EXISTS (
			SELECT 1 FROM draft_picks WHERE draft_id = $1 AND player_id = $2
		)`, draftID, playerID)
	if err != nil {
		return false, fmt.Errorf("failed to check player availability: %w", err)
	}
	return picked, nil
}
