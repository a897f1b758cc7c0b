package collector

import (
	"context"

	"FinSent/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchHistory(ctx context.Context, ticker string, period model.Period, interval model.Interval) ([]model.PriceBar, error)
	Name() string
}
