package main

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftroom/go/internal/draft"
	"github.com/mcdev12/draftroom/go/internal/draft/gateway"
	"github.com/mcdev12/draftroom/go/internal/draft/orchestrator"
	"github.com/mcdev12/draftroom/go/internal/pubsub"
	"github.com/mcdev12/draftroom/go/internal/store/memory"
)

// Services bundles everything the server runs.
type Services struct {
	App          *draft.App
	Gateway      *gateway.Service
	Orchestrator *orchestrator.Orchestrator
	Broker       *pubsub.Broker
}

// setupServices wires the dependency chain. Storage backend and NATS
// bridging come from config; everything downstream of them is fixed:
// store -> app -> gateway, with the orchestrator riding along when
// enabled. The returned cleanup closes whatever was opened.
func setupServices(ctx context.Context, cfg *Config) (*Services, func(), error) {
	// Event broker, bridged to NATS when configured
	var broker *pubsub.Broker
	if cfg.NATS.URL != "" {
		jsCfg := pubsub.DefaultJetStreamConfig()
		jsCfg.URL = cfg.NATS.URL
		upstream, err := pubsub.NewJetStream(jsCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		broker = pubsub.NewWithUpstream(upstream)
	} else {
		log.Info().Msg("no NATS URL configured; events fan out in-process only")
		broker = pubsub.New()
	}

	// Storage backend
	var (
		repo       draft.DraftRepository
		teamRepo   draft.TeamRepository
		playerRepo draft.PlayerRepository
		pickRepo   draft.PickRepository
		cleanup    func()
	)
	switch cfg.Storage.Backend {
	case "memory":
		log.Warn().Msg("using in-memory storage; state is lost on restart")
		st := memory.NewStore()
		repo, teamRepo, playerRepo, pickRepo = st, st, st, st
		cleanup = func() { broker.Close() }
	case "postgres":
		db, st, err := setupDatabase(ctx)
		if err != nil {
			broker.Close()
			return nil, nil, err
		}
		repo, teamRepo, playerRepo, pickRepo = st, st, st, st
		cleanup = func() {
			db.Close()
			broker.Close()
		}
	default:
		broker.Close()
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	app := draft.NewApp(
		repo,
		teamRepo,
		playerRepo,
		pickRepo,
		draft.NewRandomStrategy(),
		broker,
		draft.AllowAllAuthorizer{},
		clockwork.NewRealClock(),
	)

	services := &Services{
		App:     app,
		Gateway: gateway.NewService(gateway.DefaultConfig(), app, broker),
		Broker:  broker,
	}

	if cfg.Server.Orchestrator {
		services.Orchestrator = orchestrator.New(app, clockwork.NewRealClock())
	}

	return services, cleanup, nil
}
