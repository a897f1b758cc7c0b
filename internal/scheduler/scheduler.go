package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"FinSent/internal/model"
	"FinSent/internal/observability"
)

// PriceFetcher fetches and caches one ticker's price history.
type PriceFetcher interface {
	Fetch(ctx context.Context, ticker string, period model.Period, interval model.Interval) (*model.PriceSeries, error)
}

// SentimentAggregator summarizes headline sentiment for tickers in input order.
type SentimentAggregator interface {
	AggregateOrdered(ctx context.Context, tickers []string, maxItems int) ([]model.TickerSentimentSummary, error)
}

// Options configures what a refresh covers.
type Options struct {
	Watchlist    []string
	Period       model.Period
	Interval     model.Interval
	MaxHeadlines int
}

// RefreshReport is the outcome of one watchlist refresh.
type RefreshReport struct {
	StartedAt time.Time                      `json:"started_at"`
	Duration  time.Duration                  `json:"duration"`
	Prices    map[string]int                 `json:"prices"`
	Failed    []string                       `json:"failed"`
	Sentiment []model.TickerSentimentSummary `json:"sentiment"`
}

// Scheduler manages the cron refresh of the watchlist.
type Scheduler struct {
	Cron      *cron.Cron
	Prices    PriceFetcher
	Sentiment SentimentAggregator
	Opts      Options
	Logger    *zap.Logger
	Metrics   *observability.Metrics
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler. logger and metrics may be nil.
func NewScheduler(ctx context.Context, prices PriceFetcher, sentiment SentimentAggregator, opts Options, logger *zap.Logger, metrics *observability.Metrics) *Scheduler {
	logger = observability.OrNop(logger)
	cl := cronLogger{logger.Sugar()}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		Prices:    prices,
		Sentiment: sentiment,
		Opts:      opts,
		Logger:    logger,
		Metrics:   metrics,
		Ctx:       ctx,
	}
}

// RegisterAll registers the refresh task. An empty spec leaves the scheduler idle.
func (s *Scheduler) RegisterAll(refreshCron string) error {
	if refreshCron == "" {
		s.Logger.Info("refresh schedule disabled")
		return nil
	}
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started", zap.Int("jobs", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

func (s *Scheduler) refreshTask() {
	s.RefreshNow(s.Ctx)
}

// RefreshNow fetches price history for every watchlist ticker, rewriting the cache
// files, then aggregates watchlist sentiment once. Failures are logged and reported,
// never fatal.
func (s *Scheduler) RefreshNow(ctx context.Context) RefreshReport {
	report := RefreshReport{
		StartedAt: time.Now(),
		Prices:    make(map[string]int, len(s.Opts.Watchlist)),
		Failed:    []string{},
		Sentiment: []model.TickerSentimentSummary{},
	}
	s.Logger.Info("running watchlist refresh", zap.Strings("watchlist", s.Opts.Watchlist))

	for _, ticker := range s.Opts.Watchlist {
		if ctx.Err() != nil {
			report.Failed = append(report.Failed, ticker)
			continue
		}
		series, err := s.Prices.Fetch(ctx, ticker, s.Opts.Period, s.Opts.Interval)
		if err != nil {
			s.Logger.Warn("refresh price fetch failed", observability.Ticker(ticker), zap.Error(err))
			report.Failed = append(report.Failed, ticker)
			continue
		}
		report.Prices[series.Ticker] = len(series.Bars)
	}

	summaries, err := s.Sentiment.AggregateOrdered(ctx, s.Opts.Watchlist, s.Opts.MaxHeadlines)
	if err != nil {
		s.Logger.Error("refresh sentiment failed", zap.Error(err))
	} else {
		report.Sentiment = summaries
		for _, sum := range summaries {
			s.Logger.Info("sentiment",
				observability.Ticker(sum.Ticker),
				zap.String("label", string(sum.Sentiment)),
				zap.Float64("score", sum.Score),
				zap.Int("headlines", sum.Headlines))
		}
	}

	report.Duration = time.Since(report.StartedAt)
	outcome := "ok"
	switch {
	case err != nil || (len(report.Prices) == 0 && len(s.Opts.Watchlist) > 0):
		outcome = "failed"
	case len(report.Failed) > 0:
		outcome = "partial"
	}
	s.Metrics.RecordRefresh(outcome)
	s.Logger.Info("watchlist refresh finished",
		zap.String("outcome", outcome),
		zap.Int("prices", len(report.Prices)),
		zap.Strings("failed", report.Failed),
		zap.Duration("duration", report.Duration))
	return report
}

// cronLogger routes cron's own logging through zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
