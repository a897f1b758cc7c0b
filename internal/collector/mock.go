package collector

import (
	"context"
	"sync/atomic"
	"time"

	"FinSent/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  []model.PriceBar
	Err   error
	// Now anchors generated bars; zero means time.Now().
	Now time.Time

	calls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls reports how many times FetchHistory ran.
func (m *MockFetcher) Calls() int { return int(m.calls.Load()) }

func (m *MockFetcher) FetchHistory(_ context.Context, _ string, period model.Period, interval model.Interval) ([]model.PriceBar, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		out := make([]model.PriceBar, len(m.Bars))
		copy(out, m.Bars)
		return out, nil
	}
	return generateMockBars(m.Price, m.now(), barCount(period, interval), step(interval)), nil
}

func (m *MockFetcher) now() time.Time {
	if m.Now.IsZero() {
		return time.Now().Truncate(time.Minute)
	}
	return m.Now
}

func step(interval model.Interval) time.Duration {
	switch interval {
	case model.Interval1h:
		return time.Hour
	case model.Interval30m:
		return 30 * time.Minute
	case model.Interval15m:
		return 15 * time.Minute
	case model.Interval5m:
		return 5 * time.Minute
	default:
		return 24 * time.Hour
	}
}

// barCount approximates how many bars a period holds, capped to keep mock output small.
func barCount(period model.Period, interval model.Interval) int {
	days := map[model.Period]int{
		model.Period5d: 5, model.Period1mo: 22, model.Period3mo: 63, model.Period6mo: 126,
		model.Period1y: 252, model.Period2y: 504, model.Period5y: 1260,
	}[period]
	if days == 0 {
		days = 22
	}
	n := int(time.Duration(days) * 24 * time.Hour / step(interval))
	if interval != model.Interval1d {
		// regular session is 6.5h
		n = n * 13 / 48
	}
	if n > 2000 {
		n = 2000
	}
	if n < 1 {
		n = 1
	}
	return n
}

func generateMockBars(basePrice float64, end time.Time, count int, step time.Duration) []model.PriceBar {
	bars := make([]model.PriceBar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.PriceBar{
			Time:   end.Add(-time.Duration(count-i) * step),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
