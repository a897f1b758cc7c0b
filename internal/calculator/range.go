package calculator

import (
	"errors"
	"math"

	"FinSent/internal/model"
)

// PriceRange returns the highest high and lowest low across bars.
func PriceRange(bars []model.PriceBar) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range bars {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	return high, low, nil
}

// RangePosition returns where current sits within [low, high], clamped to 0.0~1.0.
func RangePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}

// ChangePercent returns the percentage move from the first close to the last.
func ChangePercent(bars []model.PriceBar) (float64, error) {
	if len(bars) == 0 {
		return 0, errors.New("no bars provided")
	}
	first := bars[0].Close
	if first == 0 {
		return 0, errors.New("first close is zero")
	}
	return (bars[len(bars)-1].Close - first) / first * 100, nil
}
