package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"esports-scoreboard/internal/config"
	"esports-scoreboard/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capture struct {
	mu      sync.Mutex
	events  []domain.Event
	headers []string
}

func (c *capture) handler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var e domain.Event
		_ = json.Unmarshal(body, &e)

		c.mu.Lock()
		c.events = append(c.events, e)
		c.headers = append(c.headers, r.Header.Get("X-Scoreboard-Event"))
		c.mu.Unlock()

		w.WriteHeader(status)
	}
}

func (c *capture) received() ([]domain.Event, []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Event(nil), c.events...), append([]string(nil), c.headers...)
}

func TestWebhookClient_DeliversToEveryURL(t *testing.T) {
	var a, b capture
	srvA := httptest.NewServer(a.handler(http.StatusOK))
	defer srvA.Close()
	srvB := httptest.NewServer(b.handler(http.StatusNoContent))
	defer srvB.Close()

	c := NewWebhookClient(&config.Config{
		WebhookURLs:    []string{srvA.URL, srvB.URL},
		WebhookTimeout: 2 * time.Second,
	}, zerolog.Nop())
	require.True(t, c.Enabled())

	state := domain.MatchState{State: domain.MatchLive, MatchNumber: 3}
	err := c.Deliver(context.Background(), domain.Event{Type: domain.EventMatchStatusChanged, MatchState: &state})
	require.NoError(t, err)

	for _, got := range []*capture{&a, &b} {
		events, headers := got.received()
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventMatchStatusChanged, events[0].Type)
		assert.Equal(t, 3, events[0].MatchState.MatchNumber)
		assert.Equal(t, "match-status-changed", headers[0])
	}

	stats := c.Stats()
	assert.Equal(t, 1, stats[srvA.URL].Delivered)
	assert.Equal(t, http.StatusNoContent, stats[srvB.URL].LastStatus)
}

func TestWebhookClient_ReportsFailuresButTriesAll(t *testing.T) {
	var ok, failing capture
	srvOK := httptest.NewServer(ok.handler(http.StatusOK))
	defer srvOK.Close()
	srvFail := httptest.NewServer(failing.handler(http.StatusInternalServerError))
	defer srvFail.Close()

	c := NewWebhookClient(&config.Config{
		WebhookURLs:    []string{srvFail.URL, srvOK.URL},
		WebhookTimeout: 2 * time.Second,
	}, zerolog.Nop())

	err := c.Deliver(context.Background(), domain.Event{Type: domain.EventAudioAction})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")

	okEvents, _ := ok.received()
	failedEvents, _ := failing.received()
	assert.Len(t, okEvents, 1)
	assert.Len(t, failedEvents, 1)

	stats := c.Stats()
	assert.Equal(t, 1, stats[srvFail.URL].Failed)
	assert.NotEmpty(t, stats[srvFail.URL].LastError)
	assert.Equal(t, 1, stats[srvOK.URL].Delivered)
}

func TestWebhookClient_NoURLs(t *testing.T) {
	c := NewWebhookClient(&config.Config{}, zerolog.Nop())
	assert.False(t, c.Enabled())
	assert.Equal(t, "webhook", c.Name())
	assert.NoError(t, c.Deliver(context.Background(), domain.Event{Type: domain.EventAudioAction}))
}

func TestWebhookClient_CancelledContext(t *testing.T) {
	var got capture
	srv := httptest.NewServer(got.handler(http.StatusOK))
	defer srv.Close()

	c := NewWebhookClient(&config.Config{WebhookURLs: []string{srv.URL}}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Deliver(ctx, domain.Event{Type: domain.EventAudioAction})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	events, _ := got.received()
	assert.Empty(t, events)
}
