package calculator

import (
	"errors"
	"fmt"

	"FinSent/internal/model"
)

// SMASeries returns the rolling simple moving average of prices. Element i of the
// result covers prices[i : i+window], so it lines up with prices[i+window-1].
func SMASeries(prices []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, errors.New("window must be positive")
	}
	if len(prices) < window {
		return nil, errors.New("not enough data for SMA calculation")
	}
	out := make([]float64, 0, len(prices)-window+1)
	sum := 0.0
	for i, p := range prices {
		sum += p
		if i >= window {
			sum -= prices[i-window]
		}
		if i >= window-1 {
			out = append(out, sum/float64(window))
		}
	}
	return out, nil
}

// CloseSMA averages the closes of the trailing window bars, the same value
// SMASeries ends on.
func CloseSMA(bars []model.PriceBar, window int) (float64, error) {
	switch {
	case window <= 0:
		return 0, errors.New("window must be positive")
	case len(bars) < window:
		return 0, fmt.Errorf("need %d bars for SMA(%d), have %d", window, window, len(bars))
	}
	var sum float64
	for _, b := range bars[len(bars)-window:] {
		sum += b.Close
	}
	return sum / float64(window), nil
}
