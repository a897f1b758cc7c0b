package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidParameter is returned when a ticker, period or interval is rejected before any upstream call.
var ErrInvalidParameter = errors.New("invalid parameter")

// PriceBar represents a single OHLCV bar.
type PriceBar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries holds one fetch result, ordered by time ascending with no duplicate timestamps.
type PriceSeries struct {
	Ticker    string     `json:"ticker"`
	Period    Period     `json:"period"`
	Interval  Interval   `json:"interval"`
	Bars      []PriceBar `json:"bars"`
	FetchedAt time.Time  `json:"fetched_at"`
	CachePath string     `json:"cache_path,omitempty"`
}

// Closes returns the closing prices in series order.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Period is the lookback range passed to the chart provider.
type Period string

const (
	Period5d  Period = "5d"
	Period1mo Period = "1mo"
	Period3mo Period = "3mo"
	Period6mo Period = "6mo"
	Period1y  Period = "1y"
	Period2y  Period = "2y"
	Period5y  Period = "5y"
)

// Periods lists the supported periods in dropdown order.
var Periods = []Period{Period5d, Period1mo, Period3mo, Period6mo, Period1y, Period2y, Period5y}

// Interval is the bar sampling interval.
type Interval string

const (
	Interval1d  Interval = "1d"
	Interval1h  Interval = "1h"
	Interval30m Interval = "30m"
	Interval15m Interval = "15m"
	Interval5m  Interval = "5m"
)

// Intervals lists the supported intervals in dropdown order.
var Intervals = []Interval{Interval1d, Interval1h, Interval30m, Interval15m, Interval5m}

// ParsePeriod validates s against the supported periods.
func ParsePeriod(s string) (Period, error) {
	for _, p := range Periods {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: unsupported period %q", ErrInvalidParameter, s)
}

// ParseInterval validates s against the supported intervals.
func ParseInterval(s string) (Interval, error) {
	for _, iv := range Intervals {
		if string(iv) == s {
			return iv, nil
		}
	}
	return "", fmt.Errorf("%w: unsupported interval %q", ErrInvalidParameter, s)
}

// ValidateRange checks that period and interval are supported and that the combination
// stays inside the chart provider's intraday lookback limits.
func ValidateRange(period Period, interval Interval) error {
	if _, err := ParsePeriod(string(period)); err != nil {
		return err
	}
	if _, err := ParseInterval(string(interval)); err != nil {
		return err
	}
	switch interval {
	case Interval5m, Interval15m, Interval30m:
		if period != Period5d && period != Period1mo {
			return fmt.Errorf("%w: interval %s only supports periods up to 1mo, got %s", ErrInvalidParameter, interval, period)
		}
	case Interval1h:
		if period == Period5y {
			return fmt.Errorf("%w: interval 1h only supports periods up to 2y, got %s", ErrInvalidParameter, period)
		}
	}
	return nil
}
