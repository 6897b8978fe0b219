package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftroom/go/internal/dbconfig"
	"github.com/mcdev12/draftroom/go/internal/draft"
	"github.com/mcdev12/draftroom/go/internal/draft/orchestrator"
	"github.com/mcdev12/draftroom/go/internal/pubsub"
	"github.com/mcdev12/draftroom/go/internal/store/postgres"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	natsURL := os.Getenv("NATS_URL")
	dbCfg := dbconfig.NewConfigFromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	db, err := postgres.Connect(ctx, dbCfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	log.Info().
		Str("database", dbCfg.Database).
		Str("nats_url", natsURL).
		Msg("starting draft orchestrator")

	// Broker: bridged to NATS when configured, otherwise local-only with
	// the idle poll picking up the slack.
	var broker *pubsub.Broker
	if natsURL != "" {
		cfg := pubsub.DefaultJetStreamConfig()
		cfg.URL = natsURL
		upstream, err := pubsub.NewJetStream(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to NATS")
		}
		broker = pubsub.NewWithUpstream(upstream)
	} else {
		log.Warn().Msg("NATS_URL not set; running on idle polling only")
		broker = pubsub.New()
	}
	defer broker.Close()

	store := postgres.NewStore(db)
	app := draft.NewApp(
		store,
		store,
		store,
		store,
		draft.NewRandomStrategy(),
		broker,
		draft.AllowAllAuthorizer{},
		clockwork.NewRealClock(),
	)

	orch := orchestrator.New(app, clockwork.NewRealClock())

	// Start orchestrator scheduler in background
	go func() {
		if err := orch.Run(ctx); err != nil {
			log.Error().Err(err).Msg("orchestrator scheduler failed")
			cancel()
		}
	}()

	// Start consuming draft events
	go orch.Consume(ctx, broker)

	// Health check endpoint on its own port
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:         getEnv("ORCHESTRATOR_ADDR", ":8082"),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health check server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health check server shutdown failed")
	}

	cancel()

	// Give workers time to finish the turn they are on
	time.Sleep(2 * time.Second)

	log.Info().Msg("draft orchestrator shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
