// Package news fetches ticker headlines from the Yahoo Finance RSS feed.
package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"FinSent/internal/breaker"
	"FinSent/internal/observability"
)

// DefaultFeedBaseURL is the Yahoo Finance syndication host.
const DefaultFeedBaseURL = "https://feeds.finance.yahoo.com"

// RSSFetcher retrieves the most recent headline titles for a ticker.
type RSSFetcher struct {
	baseURL  string
	client   *http.Client
	limiter  *rate.Limiter
	breakers *breaker.Registry
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// Options configures an RSSFetcher. Zero BaseURL and Timeout fall back to
// defaults; a zero RequestsPerSecond turns the limiter off.
type Options struct {
	BaseURL           string
	ProxyURL          string
	Timeout           time.Duration
	RequestsPerSecond float64 // 0 disables client-side limiting
	Burst             int
}

// NewRSSFetcher creates a fetcher. breakers, logger and metrics may be nil.
func NewRSSFetcher(opts Options, breakers *breaker.Registry, logger *zap.Logger, metrics *observability.Metrics) *RSSFetcher {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultFeedBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	transport := &http.Transport{}
	if opts.ProxyURL != "" {
		if u, err := url.Parse(opts.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &RSSFetcher{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		client:   &http.Client{Timeout: opts.Timeout, Transport: transport},
		limiter:  limiter,
		breakers: breakers,
		logger:   observability.OrNop(logger),
		metrics:  metrics,
	}
}

// FeedURL builds the headline feed URL for ticker.
func (f *RSSFetcher) FeedURL(ticker string) string {
	return fmt.Sprintf("%s/rss/2.0/headline?s=%s&region=US&lang=en-US", f.baseURL, url.QueryEscape(ticker))
}

// Fetch returns at most maxItems headline titles in feed order (most recent
// first). Failures are logged and yield an empty slice; it never returns an error.
func (f *RSSFetcher) Fetch(ctx context.Context, ticker string, maxItems int) []string {
	ticker = strings.TrimSpace(ticker)
	if maxItems <= 0 || ticker == "" {
		return []string{}
	}
	log := f.logger.With(observability.Ticker(ticker))

	items, err := breaker.Execute(f.breakers, breaker.YahooRSS, func() ([]*gofeed.Item, error) {
		return f.fetchFeed(ctx, ticker)
	})
	if err != nil {
		log.Warn("headline fetch failed", zap.Error(err))
		f.metrics.RecordHeadlineFetch("error", 0)
		return []string{}
	}

	headlines := make([]string, 0, min(maxItems, len(items)))
	for _, item := range items {
		if len(headlines) == maxItems {
			break
		}
		if item == nil {
			continue
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		headlines = append(headlines, title)
	}

	f.metrics.RecordHeadlineFetch("ok", len(headlines))
	log.Debug("headlines fetched", zap.Int("count", len(headlines)))
	return headlines
}

func (f *RSSFetcher) fetchFeed(ctx context.Context, ticker string) ([]*gofeed.Item, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.FeedURL(ticker), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	start := time.Now()
	resp, err := f.client.Do(req)
	f.metrics.RecordUpstream("yahoo-rss", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("feed returned status: %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, &breaker.RequestError{StatusCode: resp.StatusCode, Err: err}
		}
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return feed.Items, nil
}
