// Package notify relays tournament events to live viewers and to
// outbound sinks such as webhooks and the event archive.
package notify

import (
	"context"
	"sync"
	"sync/atomic"

	"esports-scoreboard/internal/constants"
	"esports-scoreboard/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Sink receives every published event after viewers have been served.
// Errors are logged by the hub and never reach the publisher.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, event domain.Event) error
}

type envelope struct {
	seq   uint64
	event domain.Event
}

type subscriber struct {
	// from is the last sequence number published before the subscription;
	// the viewer's initial snapshot already covers those events.
	from uint64
	ch   chan domain.Event
}

// Hub is the notification gateway. Publish only enqueues; Run dispatches.
type Hub struct {
	events *queue[envelope]
	outbox *queue[domain.Event]

	mu          sync.RWMutex
	seq         uint64
	subscribers map[string]*subscriber
	closed      bool

	sinks     []Sink
	buffer    int
	dropped   atomic.Uint64
	delivered atomic.Uint64

	logger zerolog.Logger
}

func NewHub(buffer int, sinks []Sink, logger zerolog.Logger) *Hub {
	if buffer < 1 {
		buffer = constants.DefaultSubscriberBuffer
	}
	return &Hub{
		events:      newQueue[envelope](constants.EventQueueCapacity),
		outbox:      newQueue[domain.Event](constants.EventQueueCapacity),
		subscribers: make(map[string]*subscriber),
		sinks:       sinks,
		buffer:      buffer,
		logger:      logger,
	}
}

// Publish enqueues events in order. It never blocks on delivery.
func (h *Hub) Publish(events ...domain.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, e := range events {
		h.seq++
		if !h.events.Enqueue(envelope{seq: h.seq, event: e}) {
			h.logger.Debug().Str("type", string(e.Type)).Msg("hub closed, event discarded")
		}
	}
}

// Subscribe registers a viewer. The viewer receives only events published
// after this call.
func (h *Hub) Subscribe() (string, <-chan domain.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.New().String()
	ch := make(chan domain.Event, h.buffer)
	if h.closed {
		close(ch)
		return id, ch
	}
	h.subscribers[id] = &subscriber{from: h.seq, ch: ch}

	h.logger.Debug().Str("subscriber_id", id).Int("subscribers", len(h.subscribers)).Msg("viewer subscribed")
	return id, ch
}

func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.subscribers[id]
	if !ok {
		return
	}
	delete(h.subscribers, id)
	close(sub.ch)

	h.logger.Debug().Str("subscriber_id", id).Int("subscribers", len(h.subscribers)).Msg("viewer unsubscribed")
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Dropped counts events skipped for viewers whose buffer was full.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Delivered counts events handed to viewers.
func (h *Hub) Delivered() uint64 {
	return h.delivered.Load()
}

func (h *Hub) Pending() int {
	return h.events.Len() + h.outbox.Len()
}

// Run dispatches until ctx is cancelled or Close is called and the queue
// has drained. Subscriber channels are closed when it returns.
func (h *Hub) Run(ctx context.Context) error {
	h.logger.Info().Int("sinks", len(h.sinks)).Int("buffer", h.buffer).Msg("notification hub starting")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer h.outbox.Close()
		return h.dispatch(ctx)
	})
	g.Go(func() error {
		return h.deliver(ctx)
	})
	err := g.Wait()

	h.closeSubscribers()
	h.logger.Info().
		Uint64("delivered", h.delivered.Load()).
		Uint64("dropped", h.dropped.Load()).
		Msg("notification hub stopped")
	return err
}

// Close stops accepting events. Queued events are still dispatched.
func (h *Hub) Close() {
	h.events.Close()
}

func (h *Hub) dispatch(ctx context.Context) error {
	for {
		env, ok := h.events.TryDequeue()
		if ok {
			h.fanOut(env)
			if len(h.sinks) > 0 {
				h.outbox.Enqueue(env.event)
			}
			continue
		}

		select {
		case <-ctx.Done():
			h.events.Close()
			return nil
		case <-h.events.Wait():
			if h.events.Drained() {
				return nil
			}
		}
	}
}

func (h *Hub) fanOut(env envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, sub := range h.subscribers {
		if env.seq <= sub.from {
			continue
		}
		select {
		case sub.ch <- env.event:
			h.delivered.Add(1)
		default:
			// events are full snapshots; the next one repairs the view
			h.dropped.Add(1)
			h.logger.Warn().
				Str("subscriber_id", id).
				Str("type", string(env.event.Type)).
				Msg("viewer buffer full, event dropped")
		}
	}
}

func (h *Hub) deliver(ctx context.Context) error {
	for {
		event, ok := h.outbox.TryDequeue()
		if ok {
			h.sinkAll(ctx, event)
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case <-h.outbox.Wait():
			if h.outbox.Drained() {
				return nil
			}
		}
	}
}

func (h *Hub) sinkAll(ctx context.Context, event domain.Event) {
	for _, sink := range h.sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, constants.SinkTimeout)
		err := sink.Deliver(sinkCtx, event)
		cancel()
		if err != nil {
			h.logger.Error().
				Err(err).
				Str("sink", sink.Name()).
				Str("type", string(event.Type)).
				Msg("sink delivery failed")
		}
	}
}

func (h *Hub) closeSubscribers() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for id, sub := range h.subscribers {
		close(sub.ch)
		delete(h.subscribers, id)
	}
}
