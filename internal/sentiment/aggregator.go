package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"FinSent/internal/model"
	"FinSent/internal/observability"
)

// ErrInvalidTickers rejects an aggregate request with an empty or duplicate ticker.
var ErrInvalidTickers = errors.New("invalid ticker list")

// HeadlineSource fetches up to maxItems headlines for a ticker and never fails;
// problems surface as an empty slice.
type HeadlineSource interface {
	Fetch(ctx context.Context, ticker string, maxItems int) []string
}

// NameLookup returns the display name for a ticker, or "" if unknown.
type NameLookup func(ticker string) string

// CatalogLookup builds a NameLookup over a ticker catalog.
func CatalogLookup(catalog []model.TickerInfo) NameLookup {
	names := make(map[string]string, len(catalog))
	for _, t := range catalog {
		names[strings.ToUpper(t.Symbol)] = t.Name
	}
	return func(ticker string) string { return names[ticker] }
}

// Aggregator reduces per-headline sentiment into per-ticker summaries.
type Aggregator struct {
	headlines HeadlineSource
	scorer    *Scorer
	names     NameLookup
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// NewAggregator creates an Aggregator. names, logger and metrics may be nil.
func NewAggregator(headlines HeadlineSource, scorer *Scorer, names NameLookup, logger *zap.Logger, metrics *observability.Metrics) *Aggregator {
	if names == nil {
		names = func(string) string { return "" }
	}
	return &Aggregator{
		headlines: headlines,
		scorer:    scorer,
		names:     names,
		logger:    observability.OrNop(logger),
		metrics:   metrics,
	}
}

// NormalizeTickers trims and upper-cases tickers, rejecting empty entries and
// duplicates so every input maps to exactly one summary.
func NormalizeTickers(tickers []string) ([]string, error) {
	out := make([]string, 0, len(tickers))
	seen := make(map[string]struct{}, len(tickers))
	for i, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			return nil, fmt.Errorf("%w: empty ticker at position %d", ErrInvalidTickers, i)
		}
		if _, dup := seen[t]; dup {
			return nil, fmt.Errorf("%w: duplicate ticker %s", ErrInvalidTickers, t)
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}

// Aggregate returns one summary per ticker. Tickers are processed one at a time
// in input order.
func (a *Aggregator) Aggregate(ctx context.Context, tickers []string, maxItems int) (map[string]model.TickerSentimentSummary, error) {
	ordered, err := a.AggregateOrdered(ctx, tickers, maxItems)
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.TickerSentimentSummary, len(ordered))
	for _, s := range ordered {
		out[s.Ticker] = s
	}
	return out, nil
}

// AggregateOrdered is Aggregate with results in input order, for display.
func (a *Aggregator) AggregateOrdered(ctx context.Context, tickers []string, maxItems int) ([]model.TickerSentimentSummary, error) {
	normalized, err := NormalizeTickers(tickers)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.TickerSentimentSummary, 0, len(normalized))
	for _, ticker := range normalized {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		summaries = append(summaries, a.summarize(ctx, ticker, maxItems))
	}
	return summaries, nil
}

func (a *Aggregator) summarize(ctx context.Context, ticker string, maxItems int) model.TickerSentimentSummary {
	name := a.names(ticker)
	headlines := a.headlines.Fetch(ctx, ticker, maxItems)
	if len(headlines) == 0 {
		a.logger.Info("no headlines, using neutral summary", observability.Ticker(ticker))
		return model.DefaultSummary(ticker, name)
	}

	s := a.scorer.Summarize(ticker, name, headlines)

	a.metrics.RecordSentiment(ticker, s.Score)
	a.logger.Debug("ticker sentiment aggregated", observability.Ticker(ticker),
		zap.Int("headlines", s.Headlines), zap.Float64("score", s.Score))
	return s
}
