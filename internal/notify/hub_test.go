package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"esports-scoreboard/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Deliver(_ context.Context, event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func (s *recordingSink) Types() []domain.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.EventType, len(s.events))
	for i, e := range s.events {
		out[i] = e.Type
	}
	return out
}

func runHub(t *testing.T, h *Hub) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- h.Run(context.Background()) }()
	t.Cleanup(func() {
		h.Close()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("hub did not stop")
		}
	})
	return done
}

func receive(t *testing.T, ch <-chan domain.Event) domain.Event {
	t.Helper()
	select {
	case e, ok := <-ch:
		require.True(t, ok, "channel closed")
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return domain.Event{}
}

func TestHub_DeliversInPublishOrder(t *testing.T) {
	h := NewHub(8, nil, zerolog.Nop())
	_, ch := h.Subscribe()
	runHub(t, h)

	h.Publish(
		domain.Event{Type: domain.EventMatchSubmitted},
		domain.Event{Type: domain.EventLeaderboardChanged},
		domain.Event{Type: domain.EventMatchStatusChanged},
	)

	assert.Equal(t, domain.EventMatchSubmitted, receive(t, ch).Type)
	assert.Equal(t, domain.EventLeaderboardChanged, receive(t, ch).Type)
	assert.Equal(t, domain.EventMatchStatusChanged, receive(t, ch).Type)
}

func TestHub_SkipsEventsPublishedBeforeSubscribe(t *testing.T) {
	h := NewHub(8, nil, zerolog.Nop())
	h.Publish(domain.Event{Type: domain.EventLeaderboardChanged})

	_, ch := h.Subscribe()
	h.Publish(domain.Event{Type: domain.EventAudioAction})
	runHub(t, h)

	assert.Equal(t, domain.EventAudioAction, receive(t, ch).Type)
}

func TestHub_DropsWhenViewerIsFull(t *testing.T) {
	h := NewHub(1, nil, zerolog.Nop())
	_, slow := h.Subscribe()
	_, fast := h.Subscribe()
	done := make(chan error, 1)

	h.Publish(domain.Event{Type: domain.EventLeaderboardChanged}, domain.Event{Type: domain.EventMatchStatusChanged})
	h.Close()
	go func() { done <- h.Run(context.Background()) }()
	require.NoError(t, <-done)

	assert.Equal(t, uint64(2), h.Dropped())
	assert.Equal(t, uint64(2), h.Delivered())

	assert.Equal(t, domain.EventLeaderboardChanged, receive(t, slow).Type)
	assert.Equal(t, domain.EventLeaderboardChanged, receive(t, fast).Type)
	_, ok := <-slow
	assert.False(t, ok)
}

func TestHub_FeedsSinksAndSurvivesErrors(t *testing.T) {
	failing := &recordingSink{err: errors.New("boom")}
	ok := &recordingSink{}
	h := NewHub(4, []Sink{failing, ok}, zerolog.Nop())

	h.Publish(domain.Event{Type: domain.EventMatchSubmitted}, domain.Event{Type: domain.EventLeaderboardChanged})
	h.Close()
	require.NoError(t, h.Run(context.Background()))

	want := []domain.EventType{domain.EventMatchSubmitted, domain.EventLeaderboardChanged}
	assert.Equal(t, want, failing.Types())
	assert.Equal(t, want, ok.Types())
	assert.Equal(t, 0, h.Pending())
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	h := NewHub(4, nil, zerolog.Nop())
	id, ch := h.Subscribe()
	assert.Equal(t, 1, h.SubscriberCount())

	h.Unsubscribe(id)
	h.Unsubscribe(id)
	assert.Equal(t, 0, h.SubscriberCount())
	_, open := <-ch
	assert.False(t, open)
}

func TestHub_StopsOnContextCancel(t *testing.T) {
	h := NewHub(4, nil, zerolog.Nop())
	_, ch := h.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	_, open := <-ch
	assert.False(t, open)

	_, late := h.Subscribe()
	_, open = <-late
	assert.False(t, open)

	h.Publish(domain.Event{Type: domain.EventAudioAction})
	assert.Equal(t, 0, h.Pending())
}
