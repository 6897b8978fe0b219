package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/mcdev12/draftroom/go/internal/store"
)

type playerRow struct {
	ID         uuid.UUID `db:"id"`
	ExternalID string    `db:"external_id"`
	FullName   string    `db:"full_name"`
	Position   string    `db:"position"`
	ProTeam    string    `db:"pro_team"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r playerRow) toModel() *models.Player {
	return &models.Player{
		ID:         r.ID,
		ExternalID: r.ExternalID,
		FullName:   r.FullName,
		Position:   r.Position,
		ProTeam:    r.ProTeam,
		CreatedAt:  r.CreatedAt,
	}
}

func (s *Store) CreatePlayer(ctx context.Context, req store.CreatePlayerRequest) (*models.Player, error) {
	var row playerRow
	err := s.db.GetContext(ctx, &row, `
		INSERT INTO players (id, external_id, full_name, position, pro_team)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *`,
		req.ID, req.ExternalID, req.FullName, req.Position, req.ProTeam)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return row.toModel(), nil
}

func (s *Store) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	var row playerRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM players WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("player %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return row.toModel(), nil
}

func (s *Store) ListPlayers(ctx context.Context) ([]models.Player, error) {
	var rows []playerRow
	err := s.db.SelectContext(ctx, &rows, `SELECT * FROM players ORDER BY full_name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return playerRowsToModels(rows), nil
}

// ListAvailablePlayers returns pool players with no pick row in the given
// draft. Availability is draft-scoped: the same player can be taken in one
// draft and open in another.
func (s *Store) ListAvailablePlayers(ctx context.Context, draftID uuid.UUID) ([]models.Player, error) {
	var rows []playerRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT p.* FROM players p
		WHERE NOT EXISTS (
			SELECT 1 FROM draft_picks dp
			WHERE dp.draft_id = $1 AND dp.player_id = p.id
		)
		ORDER BY p.full_name, p.id`, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list available players: %w", err)
	}
	return playerRowsToModels(rows), nil
}

func playerRowsToModels(rows []playerRow) []models.Player {
	players := make([]models.Player, 0, len(rows))
	for _, row := range rows {
		players = append(players, *row.toModel())
	}
	return players
}
