package api

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"sync"
	"time"

	"esports-scoreboard/internal/config"
	"esports-scoreboard/internal/constants"
	"esports-scoreboard/internal/domain"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"golang.org/x/sync/errgroup"
)

// WebhookClient relays every event to the configured webhook URLs as a
// JSON POST. It is registered with the notification hub as a sink.
type WebhookClient struct {
	urls    []string
	timeout time.Duration
	client  *fasthttp.Client
	statsMu sync.RWMutex
	stats   map[string]DeliveryStats
	logger  zerolog.Logger
}

type DeliveryStats struct {
	Delivered  int    `json:"delivered"`
	Failed     int    `json:"failed"`
	LastStatus int    `json:"last_status"`
	LastError  string `json:"last_error,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewWebhookClient(cfg *config.Config, logger zerolog.Logger) *WebhookClient {
	timeout := cfg.WebhookTimeout
	if timeout <= 0 {
		timeout = constants.WebhookTimeout
	}
	return &WebhookClient{
		urls:    cfg.WebhookURLs,
		timeout: timeout,
		client: &fasthttp.Client{
			MaxConnsPerHost:     constants.WebhookMaxConcurrency,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		stats:  make(map[string]DeliveryStats, len(cfg.WebhookURLs)),
		logger: logger,
	}
}

func (c *WebhookClient) Name() string {
	return "webhook"
}

func (c *WebhookClient) Enabled() bool {
	return len(c.urls) > 0
}

// Stats returns per-URL delivery counters.
func (c *WebhookClient) Stats() map[string]DeliveryStats {
	c.statsMu.RLock()
	defer c.statsMu.RUnlock()
	return maps.Clone(c.stats)
}

// Deliver posts the event to every URL in parallel. Every URL is attempted;
// the first failure is returned.
func (c *WebhookClient) Deliver(ctx context.Context, event domain.Event) error {
	if len(c.urls) == 0 {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	var g errgroup.Group
	g.SetLimit(constants.WebhookMaxConcurrency)
	for _, url := range c.urls {
		g.Go(func() error {
			status, err := c.post(ctx, url, event.Type, body)
			c.record(url, status, err)
			if err != nil {
				c.logger.Warn().
					Err(err).
					Str("url", url).
					Str("type", string(event.Type)).
					Msg("webhook delivery failed")
				return fmt.Errorf("webhook %s: %w", url, err)
			}
			c.logger.Debug().Str("url", url).Int("status", status).Str("type", string(event.Type)).Msg("webhook delivered")
			return nil
		})
	}
	return g.Wait()
}

func (c *WebhookClient) post(ctx context.Context, url string, eventType domain.EventType, body []byte) (int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("X-Scoreboard-Event", string(eventType))
	req.SetBody(body)

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return 0, err
	}

	status := resp.StatusCode()
	if status < fasthttp.StatusOK || status >= fasthttp.StatusMultipleChoices {
		return status, fmt.Errorf("unexpected status: %d", status)
	}
	return status, nil
}

func (c *WebhookClient) record(url string, status int, err error) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()

	s := c.stats[url]
	s.LastStatus = status
	if err != nil {
		s.Failed++
		s.LastError = err.Error()
	} else {
		s.Delivered++
		s.LastError = ""
	}
	s.UpdatedAt = time.Now()
	c.stats[url] = s
}
