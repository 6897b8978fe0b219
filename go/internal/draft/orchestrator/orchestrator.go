package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftroom/go/internal/draft"
	"github.com/mcdev12/draftroom/go/internal/models"
)

const (
	idlePollDuration = 5 * time.Second
	maxScanRetries   = 3
)

// DraftEngine defines what the orchestrator needs from the draft app.
type DraftEngine interface {
	ListDraftIDsByStatus(ctx context.Context, status models.DraftStatus) ([]uuid.UUID, error)
	ProcessAllPendingBotTurns(ctx context.Context, draftID uuid.UUID) (*draft.BotPlayResult, error)
}

// Orchestrator keeps bot turns moving without anyone calling the bot-turn
// endpoints by hand. It wakes on draft events, scans for in-progress
// drafts, and hands each to a worker that plays bot turns until a human
// is on the clock. Humans are never auto-picked for; a draft whose next
// slot belongs to a human just goes quiet until that human acts.
type Orchestrator struct {
	engine     DraftEngine
	clock      clockwork.Clock
	wakeCh     chan struct{}
	instanceID string // unique ID for this scheduler instance

	// Worker pool configuration
	numWorkers int
	workCh     chan uuid.UUID

	// Track in-flight work to prevent duplicate processing
	inFlight   map[uuid.UUID]bool
	inFlightMu sync.Mutex
}

// New creates a bot-turn orchestrator with a small worker pool.
func New(engine DraftEngine, clock clockwork.Clock) *Orchestrator {
	numWorkers := 4
	return &Orchestrator{
		engine:     engine,
		clock:      clock,
		wakeCh:     make(chan struct{}, 1),
		instanceID: uuid.New().String()[:8], // short ID for logging

		numWorkers: numWorkers,
		workCh:     make(chan uuid.UUID, numWorkers*2), // Buffer to prevent blocking
		inFlight:   make(map[uuid.UUID]bool),
	}
}

// Run loops until ctx is cancelled: scan in-progress drafts, queue them
// for the worker pool, then sleep until the idle poll elapses or an event
// wakes us. The poll is a safety net; the wake channel is the normal path.
func (o *Orchestrator) Run(ctx context.Context) error {
	log.Info().Str("instance", o.instanceID).Int("workers", o.numWorkers).Msg("orchestrator started")

	// Start worker pool
	var wg sync.WaitGroup
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	for i := 0; i < o.numWorkers; i++ {
		wg.Add(1)
		go o.worker(workerCtx, &wg, i)
	}

	// Ensure workers are cleaned up
	defer func() {
		log.Info().Str("instance", o.instanceID).Msg("shutting down workers")
		cancelWorkers()
		close(o.workCh)
		wg.Wait()
		log.Info().Str("instance", o.instanceID).Msg("all workers shut down")
	}()

	timer := o.clock.NewTimer(idlePollDuration)
	defer timer.Stop()

	retryCount := 0

	for {
		select {
		case <-o.wakeCh:
			log.Debug().Str("instance", o.instanceID).Msg("drained wake channel")
		default:
		}

		due, err := o.engine.ListDraftIDsByStatus(ctx, models.DraftStatusInProgress)
		if err != nil {
			// Handle transient errors with retry
			retryCount++
			if retryCount > maxScanRetries {
				log.Error().Err(err).Str("instance", o.instanceID).Msg("error listing in-progress drafts after retries")
				return err
			}
			log.Error().
				Err(err).
				Int("retry", retryCount).
				Str("instance", o.instanceID).
				Msg("error listing in-progress drafts, retrying")
			timer.Reset(time.Second * time.Duration(retryCount))
			select {
			case <-timer.Chan():
				continue
			case <-ctx.Done():
				return nil
			}
		}
		retryCount = 0 // Reset on success

		if len(due) > 0 {
			log.Debug().
				Int("count_due", len(due)).
				Str("instance", o.instanceID).
				Msg("queueing in-progress drafts")
		}

		// Send drafts to worker pool for parallel processing with deduplication
		for _, draftID := range due {
			o.inFlightMu.Lock()
			if o.inFlight[draftID] {
				// Skip if already being processed
				o.inFlightMu.Unlock()
				continue
			}
			o.inFlight[draftID] = true
			o.inFlightMu.Unlock()

			select {
			case <-ctx.Done():
				// Clean up in-flight tracking on shutdown
				o.inFlightMu.Lock()
				delete(o.inFlight, draftID)
				o.inFlightMu.Unlock()
				log.Info().Str("instance", o.instanceID).Msg("shutdown while queueing drafts")
				return nil
			case o.workCh <- draftID:
				log.Debug().Str("draft_id", draftID.String()).Str("instance", o.instanceID).Msg("queued draft for bot play")
			}
		}

		timer.Reset(idlePollDuration)
		select {
		case <-timer.Chan():
		case <-o.wakeCh:
			log.Debug().Str("instance", o.instanceID).Msg("woken up from idle")
		case <-ctx.Done():
			log.Info().Str("instance", o.instanceID).Msg("shutdown during idle")
			return nil
		}
	}
}

// worker plays bot turns for drafts from the work channel
func (o *Orchestrator) worker(ctx context.Context, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()

	log.Info().
		Str("instance", o.instanceID).
		Int("worker_id", workerID).
		Msg("worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info().
				Str("instance", o.instanceID).
				Int("worker_id", workerID).
				Msg("worker shutting down")
			return
		case draftID, ok := <-o.workCh:
			if !ok {
				log.Info().
					Str("instance", o.instanceID).
					Int("worker_id", workerID).
					Msg("work channel closed, worker shutting down")
				return
			}

			o.playDraft(ctx, draftID)

			// Clean up in-flight tracking regardless of success/failure
			o.inFlightMu.Lock()
			delete(o.inFlight, draftID)
			o.inFlightMu.Unlock()
		}
	}
}

// playDraft runs the draft's pending bot turns. Losing a turn race to a
// human or another instance is routine, not an error; the pick event that
// beat us will wake the scheduler again anyway.
func (o *Orchestrator) playDraft(ctx context.Context, draftID uuid.UUID) {
	result, err := o.engine.ProcessAllPendingBotTurns(ctx, draftID)
	if err != nil {
		switch draft.KindOf(err) {
		case draft.ErrorKindWrongTurn:
			log.Debug().
				Str("draft_id", draftID.String()).
				Str("instance", o.instanceID).
				Msg("bot turn raced, backing off")
		case draft.ErrorKindNotStarted, draft.ErrorKindAlreadyTerminal:
			log.Debug().
				Str("draft_id", draftID.String()).
				Str("instance", o.instanceID).
				Msg("draft no longer playable")
		default:
			log.Error().
				Err(err).
				Str("draft_id", draftID.String()).
				Str("instance", o.instanceID).
				Msg("bot play failed")
		}
		return
	}

	if result.PicksMade > 0 {
		log.Info().
			Str("draft_id", draftID.String()).
			Str("instance", o.instanceID).
			Int("picks_made", result.PicksMade).
			Str("outcome", string(result.Outcome)).
			Bool("complete", result.Complete).
			Msg("bot turns played")
		return
	}

	log.Debug().
		Str("draft_id", draftID.String()).
		Str("instance", o.instanceID).
		Str("outcome", string(result.Outcome)).
		Str("waiting_on", result.TeamName).
		Msg("no bot turns pending")
}
