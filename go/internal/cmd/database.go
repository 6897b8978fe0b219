package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftroom/go/internal/dbconfig"
	"github.com/mcdev12/draftroom/go/internal/store/postgres"
)

// setupDatabase connects to Postgres using the DB_* environment and
// applies the schema.
func setupDatabase(ctx context.Context) (*sqlx.DB, *postgres.Store, error) {
	dbCfg := dbconfig.NewConfigFromEnv()

	db, err := postgres.Connect(ctx, dbCfg.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := postgres.NewStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	log.Info().
		Str("host", dbCfg.Host).
		Str("database", dbCfg.Database).
		Msg("connected to database")

	return db, store, nil
}
