package calculator

import (
	"math"
	"testing"

	"FinSent/internal/model"
)

func bars(closes ...float64) []model.PriceBar {
	out := make([]model.PriceBar, len(closes))
	for i, c := range closes {
		out[i] = model.PriceBar{Open: c, High: c + 1, Low: c - 1, Close: c}
	}
	return out
}

func TestCloseSMA(t *testing.T) {
	got, err := CloseSMA(bars(1, 2, 3, 4, 5), 3)
	if err != nil {
		t.Fatal(err)
	}
	if got != 4 {
		t.Errorf("expected 4, got %v", got)
	}
	if _, err := CloseSMA(bars(1, 2), 3); err == nil {
		t.Error("expected error for insufficient data")
	}
	if _, err := CloseSMA(bars(1, 2), 0); err == nil {
		t.Error("expected error for zero window")
	}
}

func TestSMASeries(t *testing.T) {
	got, err := SMASeries([]float64{2, 4, 6, 8, 10}, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{3, 5, 7, 9}
	if len(got) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(got))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("point %d: expected %v, got %v", i, want[i], got[i])
		}
	}

	last, _ := CloseSMA(bars(2, 4, 6, 8, 10), 2)
	if got[len(got)-1] != last {
		t.Errorf("series tail %v should equal trailing SMA %v", got[len(got)-1], last)
	}

	if _, err := SMASeries([]float64{1}, 2); err == nil {
		t.Error("expected error for insufficient data")
	}
}

func TestPriceRange(t *testing.T) {
	high, low, err := PriceRange(bars(10, 14, 9, 12))
	if err != nil {
		t.Fatal(err)
	}
	if high != 15 || low != 8 {
		t.Errorf("expected 15/8, got %v/%v", high, low)
	}
	if _, _, err := PriceRange(nil); err == nil {
		t.Error("expected error for empty bars")
	}
}

func TestRangePosition(t *testing.T) {
	tests := []struct {
		current, high, low, want float64
	}{
		{15, 20, 10, 0.5},
		{25, 20, 10, 1},
		{5, 20, 10, 0},
		{10, 10, 10, 0.5},
	}
	for _, tt := range tests {
		got, err := RangePosition(tt.current, tt.high, tt.low)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("RangePosition(%v, %v, %v): expected %v, got %v", tt.current, tt.high, tt.low, tt.want, got)
		}
	}
	if _, err := RangePosition(1, 5, 10); err == nil {
		t.Error("expected error when high < low")
	}
}

func TestChangePercent(t *testing.T) {
	got, err := ChangePercent(bars(100, 90, 110))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-10) > 1e-9 {
		t.Errorf("expected 10%%, got %v", got)
	}
	if _, err := ChangePercent(nil); err == nil {
		t.Error("expected error for empty bars")
	}
	if _, err := ChangePercent(bars(0, 1)); err == nil {
		t.Error("expected error for zero first close")
	}
}
