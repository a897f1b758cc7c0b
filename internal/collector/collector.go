package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"FinSent/internal/breaker"
	"FinSent/internal/model"
	"FinSent/internal/observability"
)

// ErrNoData is returned when the provider fails or returns no rows. It is an
// expected outcome: callers show a message instead of treating it as fatal.
var ErrNoData = errors.New("no price data")

// CacheWriter persists a fetched series and returns where it went.
type CacheWriter interface {
	Write(series *model.PriceSeries) (string, error)
}

// Collector fetches price history, normalises it and writes the cache file.
type Collector struct {
	Fetcher  Fetcher
	Cache    CacheWriter
	Breakers *breaker.Registry
	Logger   *zap.Logger
	Metrics  *observability.Metrics
}

// NewCollector creates a new Collector. cache, breakers, logger and metrics may be nil.
func NewCollector(fetcher Fetcher, cache CacheWriter, breakers *breaker.Registry, logger *zap.Logger, metrics *observability.Metrics) *Collector {
	return &Collector{
		Fetcher:  fetcher,
		Cache:    cache,
		Breakers: breakers,
		Logger:   observability.OrNop(logger),
		Metrics:  metrics,
	}
}

// Fetch retrieves the price series for ticker over period at interval. It makes a
// single upstream attempt. Invalid input wraps model.ErrInvalidParameter; any
// upstream failure or empty result wraps ErrNoData.
func (c *Collector) Fetch(ctx context.Context, ticker string, period model.Period, interval model.Interval) (*model.PriceSeries, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	source := c.Fetcher.Name()
	log := c.Logger.With(observability.Ticker(ticker),
		zap.String("period", string(period)), zap.String("interval", string(interval)))

	if ticker == "" {
		c.Metrics.RecordPriceFetch(source, "invalid")
		return nil, fmt.Errorf("%w: empty ticker", model.ErrInvalidParameter)
	}
	if err := model.ValidateRange(period, interval); err != nil {
		c.Metrics.RecordPriceFetch(source, "invalid")
		return nil, err
	}

	start := time.Now()
	bars, err := breaker.Execute(c.Breakers, breaker.YahooChart, func() ([]model.PriceBar, error) {
		return c.Fetcher.FetchHistory(ctx, ticker, period, interval)
	})
	c.Metrics.RecordUpstream(source, time.Since(start))
	if err != nil {
		log.Warn("price fetch failed", zap.Error(err))
		c.Metrics.RecordPriceFetch(source, "no_data")
		return nil, fmt.Errorf("%w for %s: %w", ErrNoData, ticker, err)
	}

	bars = normalize(bars)
	if len(bars) == 0 {
		log.Warn("price fetch returned no rows")
		c.Metrics.RecordPriceFetch(source, "no_data")
		return nil, fmt.Errorf("%w for %s", ErrNoData, ticker)
	}

	series := &model.PriceSeries{
		Ticker:    ticker,
		Period:    period,
		Interval:  interval,
		Bars:      bars,
		FetchedAt: time.Now(),
	}

	if c.Cache != nil {
		path, err := c.Cache.Write(series)
		if err != nil {
			log.Warn("cache write failed", zap.Error(err))
			c.Metrics.RecordCacheWrite("error")
		} else {
			series.CachePath = path
			c.Metrics.RecordCacheWrite("ok")
		}
	}

	c.Metrics.RecordPriceFetch(source, "ok")
	c.Metrics.SetPriceBars(ticker, len(bars))
	log.Info("price history fetched", zap.Int("bars", len(bars)), zap.String("cache", series.CachePath))
	return series, nil
}

// normalize sorts bars ascending and drops duplicate timestamps, keeping the last one seen.
func normalize(bars []model.PriceBar) []model.PriceBar {
	if len(bars) == 0 {
		return bars
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}
