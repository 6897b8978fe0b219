package pubsub

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftroom/go/internal/draft/events"
)

const subscriberBuffer = 64

// Upstream bridges the broker to an external bus so that every service
// instance sees every event, not just the ones it produced itself.
type Upstream interface {
	// Publish sends an event to the bus.
	Publish(ctx context.Context, event events.DraftEvent) error
	// Events yields events arriving from the bus, including echoes of
	// our own publishes.
	Events() <-chan events.DraftEvent
	// Close tears down the bus connection.
	Close() error
}

// Broker fans draft events out to in-process subscribers. Without an
// upstream it is a purely local broker: Publish delivers straight to
// subscribers. With an upstream, Publish goes to the bus and local
// delivery happens when the bus echoes the event back, so all instances
// observe the same ordering.
type Broker struct {
	mu          sync.RWMutex
	subscribers []chan events.DraftEvent
	upstream    Upstream
	done        chan struct{}
	closeOnce   sync.Once
}

// New creates a local-only broker.
func New() *Broker {
	return &Broker{done: make(chan struct{})}
}

// NewWithUpstream creates a broker bridged to an external bus. Events
// from the bus are forwarded to local subscribers until Close is called.
func NewWithUpstream(upstream Upstream) *Broker {
	b := &Broker{
		upstream: upstream,
		done:     make(chan struct{}),
	}
	go b.forward()
	return b
}

func (b *Broker) forward() {
	for {
		select {
		case event, ok := <-b.upstream.Events():
			if !ok {
				return
			}
			b.publishLocal(event)
		case <-b.done:
			return
		}
	}
}

// Publish implements events.Publisher.
func (b *Broker) Publish(ctx context.Context, event events.DraftEvent) error {
	if b.upstream != nil {
		return b.upstream.Publish(ctx, event)
	}
	b.publishLocal(event)
	return nil
}

// publishLocal delivers an event to every subscriber. Sends never block:
// a subscriber that has fallen subscriberBuffer events behind misses this
// one rather than stalling the rest.
func (b *Broker) publishLocal(event events.DraftEvent) {
	b.mu.RLock()
	subs := make([]chan events.DraftEvent, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
			log.Warn().
				Str("event_id", event.ID).
				Str("event_type", string(event.Type)).
				Msg("subscriber buffer full, dropping event")
		}
	}
}

// Subscribe registers a new subscriber and returns its event channel.
// The caller must Unsubscribe the channel when done with it.
func (b *Broker) Subscribe() chan events.DraftEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan events.DraftEvent, subscriberBuffer)
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(ch chan events.DraftEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subscribers {
		if sub == ch {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// Close stops the upstream forwarder, closes the upstream connection and
// drops all subscribers.
func (b *Broker) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.done)
		if b.upstream != nil {
			err = b.upstream.Close()
		}
		b.mu.Lock()
		for _, sub := range b.subscribers {
			close(sub)
		}
		b.subscribers = nil
		b.mu.Unlock()
	})
	return err
}
