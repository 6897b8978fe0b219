package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftroom/go/internal/draft/events"
)

const upstreamBuffer = 256

type JetStreamConfig struct {
	URL             string
	StreamName      string
	SubjectPrefix   string
	ConsumerName    string        // Durable consumer name; empty for ephemeral
	MaxReconnects   int
	ReconnectWait   time.Duration
	MaxAge          time.Duration // How long to keep messages
	MaxMsgs         int64         // Max number of messages to keep
	Replicas        int           // Number of replicas for the stream
	DuplicateWindow time.Duration // Window for duplicate detection
}

func DefaultJetStreamConfig() JetStreamConfig {
	return JetStreamConfig{
		URL:             nats.DefaultURL,
		StreamName:      "DRAFT_EVENTS",
		SubjectPrefix:   "draft.events",
		MaxReconnects:   -1, // Infinite
		ReconnectWait:   2 * time.Second,
		MaxAge:          7 * 24 * time.Hour, // 7 days
		MaxMsgs:         -1,                 // No limit
		Replicas:        1,
		DuplicateWindow: 2 * time.Hour,
	}
}

// JetStream is a broker Upstream backed by NATS JetStream. Publishes go
// to the DRAFT_EVENTS stream with the event ID as the dedup key, and a
// consumer feeds everything on the stream back through Events.
type JetStream struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	config  JetStreamConfig
	events  chan events.DraftEvent
	consume jetstream.ConsumeContext
}

func NewJetStream(cfg JetStreamConfig) (*JetStream, error) {
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	u := &JetStream{
		nc:     nc,
		js:     js,
		config: cfg,
		events: make(chan events.DraftEvent, upstreamBuffer),
	}

	ctx := context.Background()
	if err := u.ensureStream(ctx); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}
	if err := u.startConsumer(ctx); err != nil {
		nc.Close()
		return nil, fmt.Errorf("start consumer: %w", err)
	}

	return u, nil
}

func (u *JetStream) ensureStream(ctx context.Context) error {
	sc := jetstream.StreamConfig{
		Name:        u.config.StreamName,
		Description: "Draft event stream",
		Subjects:    []string{fmt.Sprintf("%s.>", u.config.SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      u.config.MaxAge,
		MaxMsgs:     u.config.MaxMsgs,
		Storage:     jetstream.FileStorage,
		Replicas:    u.config.Replicas,
		Duplicates:  u.config.DuplicateWindow,
	}

	stream, err := u.js.Stream(ctx, u.config.StreamName)
	if err != nil {
		// Create new stream
		if _, err = u.js.CreateStream(ctx, sc); err != nil {
			return fmt.Errorf("create stream: %w", err)
		}
		log.Info().
			Str("stream", u.config.StreamName).
			Msg("created JetStream stream")
		return nil
	}

	// Update existing if needed
	info, err := stream.Info(ctx)
	if err != nil {
		return fmt.Errorf("get stream info: %w", err)
	}
	if !isStreamConfigEqual(info.Config, sc) {
		if _, err = u.js.UpdateStream(ctx, sc); err != nil {
			return fmt.Errorf("update stream: %w", err)
		}
		log.Info().
			Str("stream", u.config.StreamName).
			Msg("updated JetStream stream")
	}
	return nil
}

// startConsumer attaches a consumer to the stream and pumps its messages
// into the events channel. A durable name in the config resumes across
// restarts; without one the consumer is ephemeral and starts at new
// messages only, which is what live fanout wants.
func (u *JetStream) startConsumer(ctx context.Context) error {
	stream, err := u.js.Stream(ctx, u.config.StreamName)
	if err != nil {
		return fmt.Errorf("get stream: %w", err)
	}

	cons, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:       u.config.ConsumerName,
		FilterSubject: fmt.Sprintf("%s.>", u.config.SubjectPrefix),
		DeliverPolicy: jetstream.DeliverNewPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return fmt.Errorf("create consumer: %w", err)
	}

	cc, err := cons.Consume(func(msg jetstream.Msg) {
		var event events.DraftEvent
		if err := json.Unmarshal(msg.Data(), &event); err != nil {
			log.Error().
				Err(err).
				Str("subject", msg.Subject()).
				Msg("failed to unmarshal draft event, skipping")
			msg.Ack()
			return
		}
		select {
		case u.events <- event:
		default:
			log.Warn().
				Str("event_id", event.ID).
				Msg("upstream event buffer full, dropping event")
		}
		msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}

	u.consume = cc
	return nil
}

// Publish implements Upstream.
func (u *JetStream) Publish(ctx context.Context, event events.DraftEvent) error {
	subject := fmt.Sprintf("%s.%s", u.config.SubjectPrefix, event.Type)

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ack, err := u.js.PublishMsg(ctx, &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"Event-Type": []string{string(event.Type)},
			"Draft-ID":   []string{event.DraftID},
			"Event-ID":   []string{event.ID},
		},
	},
		jetstream.WithMsgID(event.ID),
		jetstream.WithExpectStream(u.config.StreamName),
	)
	if err != nil {
		return fmt.Errorf("publish to JetStream: %w", err)
	}

	log.Debug().
		Str("subject", subject).
		Str("event_id", event.ID).
		Uint64("sequence", ack.Sequence).
		Msg("published to JetStream")

	return nil
}

// Events implements Upstream.
func (u *JetStream) Events() <-chan events.DraftEvent {
	return u.events
}

// Close implements Upstream.
func (u *JetStream) Close() error {
	if u.consume != nil {
		u.consume.Stop()
	}
	if u.nc != nil {
		u.nc.Close()
	}
	return nil
}

func isStreamConfigEqual(a, b jetstream.StreamConfig) bool {
	return a.Name == b.Name &&
		a.MaxAge == b.MaxAge &&
		a.MaxMsgs == b.MaxMsgs &&
		a.Replicas == b.Replicas &&
		a.Duplicates == b.Duplicates
}
