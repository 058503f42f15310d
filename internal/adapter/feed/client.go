package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/acedergren/polisen-events-collector/internal/domain"
)

// Client fetches the public polisen.se events API. The API serves at most the
// 500 most recent events, and its usage rules require an identifying
// User-Agent and at least ten seconds between calls; the limiter enforces
// that spacing across an interval-mode process.
type Client struct {
	httpClient *http.Client
	url        string
	userAgent  string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a feed client. A non-positive minInterval disables the
// call spacing floor.
func NewClient(url, userAgent string, timeout, minInterval time.Duration, logger *slog.Logger) *Client {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		userAgent:  userAgent,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger.With("component", "feed_client"),
	}
}

// Fetch implements domain.EventFeed.
func (c *Client) Fetch(ctx context.Context) ([]domain.Event, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for feed call slot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("fetching feed", "url", c.url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFeedUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %d: %s", domain.ErrFeedBadStatus, resp.StatusCode, snippet)
	}

	var events []domain.Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFeedDecode, err)
	}
	if events == nil {
		return nil, fmt.Errorf("%w: payload is not a list", domain.ErrFeedDecode)
	}

	c.logger.Debug("fetched feed window", "events", len(events))
	return events, nil
}
