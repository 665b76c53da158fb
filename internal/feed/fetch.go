package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/starford/postview/internal/models"
)

const maxFeedBytes = 8 << 20

// ErrTooLarge is returned for feed bodies over the size limit.
var ErrTooLarge = errors.New("feed: too large")

// Fetcher retrieves a remote feed over HTTP.
type Fetcher struct {
	url     string
	format  string
	client  *http.Client
	limiter *rate.Limiter
	maxBody int64
}

// NewFetcher creates a Fetcher for url. At most one request is sent per
// minGap; an empty format means auto-detection.
func NewFetcher(url, format string, timeout, minGap time.Duration) *Fetcher {
	if format == "" {
		format = FormatAuto
	}
	limit := rate.Inf
	if minGap > 0 {
		limit = rate.Every(minGap)
	}
	return &Fetcher{
		url:     url,
		format:  format,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
		maxBody: maxFeedBytes,
	}
}

// URL returns the feed location.
func (f *Fetcher) URL() string { return f.url }

// Fetch downloads and decodes the feed.
func (f *Fetcher) Fetch(ctx context.Context) (*models.Payload, []byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("feed: rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("feed: create request: %w", err)
	}
	req.Header.Set("User-Agent", "postview/1.0")
	req.Header.Set("Accept", "application/json, application/javascript, application/rss+xml, application/atom+xml;q=0.9, */*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("feed: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("feed: HTTP %d from %s", resp.StatusCode, f.url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, nil, fmt.Errorf("feed: read body: %w", err)
	}
	if int64(len(body)) > f.maxBody {
		return nil, nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, f.url, f.maxBody)
	}
	payload, err := Decode(body, f.format)
	if err != nil {
		return nil, nil, err
	}
	return payload, body, nil
}

// Poll fetches immediately and then every interval until ctx is done,
// handing each payload to sink. Fetch errors are logged and retried on the
// next tick.
func (f *Fetcher) Poll(ctx context.Context, interval time.Duration, sink func(context.Context, *models.Payload, []byte) error, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	run := func() {
		payload, raw, err := f.Fetch(ctx)
		if err != nil {
			if ctx.Err() == nil {
				logger.Warn("feed fetch failed", slog.String("url", f.url), slog.String("error", err.Error()))
			}
			return
		}
		if err := sink(ctx, payload, raw); err != nil {
			logger.Error("feed ingest failed", slog.String("url", f.url), slog.String("error", err.Error()))
		}
	}

	run()
	if interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			run()
		}
	}
}
