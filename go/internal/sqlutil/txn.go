package sqlutil

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Run executes fn inside a transaction. A nil return commits; any error
// rolls back and is returned as-is.
func Run(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
