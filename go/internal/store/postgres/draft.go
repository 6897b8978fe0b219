package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/mcdev12/draftroom/go/internal/sqlutil"
	"github.com/mcdev12/draftroom/go/internal/store"
	"github.com/sqlc-dev/pqtype"
)

type draftRow struct {
	ID           uuid.UUID             `db:"id"`
	Name         string                `db:"name"`
	Kind         string                `db:"kind"`
	Status       string                `db:"status"`
	Settings     []byte                `db:"settings"`
	DraftOrder   pqtype.NullRawMessage `db:"draft_order"`
	CurrentRound int                   `db:"current_round"`
	CurrentPick  int                   `db:"current_pick"`
	StartedAt    sql.NullTime          `db:"started_at"`
	CompletedAt  sql.NullTime          `db:"completed_at"`
	CreatedAt    time.Time             `db:"created_at"`
	UpdatedAt    time.Time             `db:"updated_at"`
}

func (r draftRow) toModel() (*models.Draft, error) {
	var settings models.DraftSettings
	if err := json.Unmarshal(r.Settings, &settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft settings: %w", err)
	}

	var order []uuid.UUID
	if r.DraftOrder.Valid {
		if err := json.Unmarshal(r.DraftOrder.RawMessage, &order); err != nil {
			return nil, fmt.Errorf("failed to unmarshal draft order: %w", err)
		}
	}

	return &models.Draft{
		ID:           r.ID,
		Name:         r.Name,
		Kind:         models.DraftKind(r.Kind),
		Status:       models.DraftStatus(r.Status),
		Settings:     settings,
		DraftOrder:   order,
		CurrentRound: r.CurrentRound,
		CurrentPick:  r.CurrentPick,
		StartedAt:    sqlutil.FromSqlTime(r.StartedAt),
		CompletedAt:  sqlutil.FromSqlTime(r.CompletedAt),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}, nil
}

func (s *Store) CreateDraft(ctx context.Context, req store.CreateDraftRequest) (*models.Draft, error) {
	settings, err := json.Marshal(req.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal draft settings: %w", err)
	}

	var row draftRow
	err = s.db.GetContext(ctx, &row, `
		INSERT INTO drafts (id, name, kind, status, settings)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *`,
		req.ID, req.Name, string(req.Kind), string(models.DraftStatusNotStarted), settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}
	return row.toModel()
}

func (s *Store) GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	var row draftRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM drafts WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("draft %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return row.toModel()
}

func (s *Store) ListDrafts(ctx context.Context) ([]models.Draft, error) {
	var rows []draftRow
	err := s.db.SelectContext(ctx, &rows, `SELECT * FROM drafts ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}

	drafts := make([]models.Draft, 0, len(rows))
	for _, row := range rows {
		draft, err := row.toModel()
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, *draft)
	}
	return drafts, nil
}

func (s *Store) ListDraftIDsByStatus(ctx context.Context, status models.DraftStatus) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.SelectContext(ctx, &ids,
		`SELECT id FROM drafts WHERE status = $1 ORDER BY created_at, id`, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts by status: %w", err)
	}
	return ids, nil
}

func (s *Store) StartDraft(ctx context.Context, req store.StartDraftRequest) error {
	order, err := json.Marshal(req.DraftOrder)
	if err != nil {
		return fmt.Errorf("failed to marshal draft order: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE drafts
		SET status = $1, draft_order = $2, current_round = 1, current_pick = 0,
		    started_at = $3, updated_at = now()
		WHERE id = $4 AND status = $5`,
		string(models.DraftStatusInProgress), order, req.StartedAt,
		req.DraftID, string(models.DraftStatusNotStarted))
	if err != nil {
		return fmt.Errorf("failed to start draft: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrStateConflict
	}
	return nil
}

// CommitPick advances the counters and inserts the pick in one transaction.
// The counter update is guarded on the pick count the caller observed; a
// zero-row update means another writer got there first.
func (s *Store) CommitPick(ctx context.Context, req store.CommitPickRequest) error {
	return sqlutil.Run(ctx, s.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE drafts
			SET current_pick = $1, current_round = $2, status = $3,
			    completed_at = $4, updated_at = now()
			WHERE id = $5 AND status = $6 AND current_pick = $7`,
			req.ExpectedPick+1, req.NewRound, string(req.NewStatus),
			sqlutil.ToSqlTime(req.CompletedAt),
			req.Pick.DraftID, string(models.DraftStatusInProgress), req.ExpectedPick)
		if err != nil {
			return fmt.Errorf("failed to advance draft counters: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if rows == 0 {
			return store.ErrStateConflict
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO draft_picks (id, draft_id, round, pick, overall_pick, team_id, player_id, picked_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			req.Pick.ID, req.Pick.DraftID, req.Pick.Round, req.Pick.Pick,
			req.Pick.OverallPick, req.Pick.TeamID, req.Pick.PlayerID, req.Pick.PickedAt)
		if err != nil {
			if isUniqueViolation(err, "draft_picks_draft_id_player_id_key") {
				return store.ErrPlayerTaken
			}
			if isUniqueViolation(err, "") {
				return store.ErrStateConflict
			}
			return fmt.Errorf("failed to insert pick: %w", err)
		}
		return nil
	})
}

func (s *Store) CancelDraft(ctx context.Context, id uuid.UUID, cancelledAt time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE drafts
		SET status = $1, completed_at = $2, updated_at = now()
		WHERE id = $3 AND status IN ($4, $5)`,
		string(models.DraftStatusCancelled), cancelledAt, id,
		string(models.DraftStatusNotStarted), string(models.DraftStatusInProgress))
	if err != nil {
		return fmt.Errorf("failed to cancel draft: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrStateConflict
	}
	return nil
}

// ResetDraft drops every pick and rewinds the draft row to NOT_STARTED.
// Returns how many picks were deleted.
func (s *Store) ResetDraft(ctx context.Context, id uuid.UUID) (int, error) {
	var dropped int
	err := sqlutil.Run(ctx, s.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM draft_picks WHERE draft_id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete picks: %w", err)
		}
		deleted, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		dropped = int(deleted)

		result, err = tx.ExecContext(ctx, `
			UPDATE drafts
			SET status = $1, draft_order = NULL, current_round = 1, current_pick = 0,
			    started_at = NULL, completed_at = NULL, updated_at = now()
			WHERE id = $2`,
			string(models.DraftStatusNotStarted), id)
		if err != nil {
			return fmt.Errorf("failed to rewind draft: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("draft %s: %w", id, store.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return dropped, nil
}
