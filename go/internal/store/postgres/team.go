package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/mcdev12/draftroom/go/internal/sqlutil"
	"github.com/mcdev12/draftroom/go/internal/store"
)

type teamRow struct {
	ID        uuid.UUID     `db:"id"`
	DraftID   uuid.UUID     `db:"draft_id"`
	Name      string        `db:"name"`
	Kind      string        `db:"kind"`
	OwnerID   uuid.NullUUID `db:"owner_id"`
	CreatedAt time.Time     `db:"created_at"`
}

func (r teamRow) toModel() *models.Team {
	return &models.Team{
		ID:        r.ID,
		DraftID:   r.DraftID,
		Name:      r.Name,
		Kind:      models.TeamKind(r.Kind),
		OwnerID:   sqlutil.FromNullUUID(r.OwnerID),
		CreatedAt: r.CreatedAt,
	}
}

// CreateTeam inserts a team, enforcing the draft's capacity inside the
// statement so two racing registrations cannot overfill the roster.
func (s *Store) CreateTeam(ctx context.Context, req store.CreateTeamRequest) (*models.Team, error) {
	var row teamRow
	err := s.db.GetContext(ctx, &row, `
		INSERT INTO teams (id, draft_id, name, kind, owner_id)
		SELECT $1, $2, $3, $4, $5
		WHERE (SELECT COUNT(*) FROM teams WHERE draft_id = $2) <
		      (SELECT (settings->>'team_capacity')::int FROM drafts WHERE id = $2)
		RETURNING *`,
		req.ID, req.DraftID, req.Name, string(req.Kind), sqlutil.ToNullUUID(req.OwnerID))
	if err != nil {
		if isUniqueViolation(err, "teams_draft_id_name_key") {
			return nil, store.ErrDuplicateTeam
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrDraftFull
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return row.toModel(), nil
}

func (s *Store) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	var row teamRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM teams WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("team %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return row.toModel(), nil
}

func (s *Store) GetTeamByName(ctx context.Context, draftID uuid.UUID, name string) (*models.Team, error) {
	var row teamRow
	err := s.db.GetContext(ctx, &row,
		`SELECT * FROM teams WHERE draft_id = $1 AND name = $2`, draftID, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("team %q: %w", name, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get team by name: %w", err)
	}
	return row.toModel(), nil
}

func (s *Store) ListTeamsByDraft(ctx context.Context, draftID uuid.UUID) ([]models.Team, error) {
	var rows []teamRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM teams WHERE draft_id = $1 ORDER BY created_at, name`, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	teams := make([]models.Team, 0, len(rows))
	for _, row := range rows {
		teams = append(teams, *row.toModel())
	}
	return teams, nil
}

func (s *Store) UpdateTeamName(ctx context.Context, id uuid.UUID, name string) (*models.Team, error) {
	var row teamRow
	err := s.db.GetContext(ctx, &row,
		`UPDATE teams SET name = $1 WHERE id = $2 RETURNING *`, name, id)
	if err != nil {
		if isUniqueViolation(err, "teams_draft_id_name_key") {
			return nil, store.ErrDuplicateTeam
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("team %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to rename team: %w", err)
	}
	return row.toModel(), nil
}
