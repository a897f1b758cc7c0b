package cache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"FinSent/internal/model"
)

func sampleSeries(ticker string, n int) *model.PriceSeries {
	loc := time.FixedZone("IST", 5*3600+1800)
	start := time.Date(2024, 3, 1, 9, 15, 0, 0, loc)
	bars := make([]model.PriceBar, n)
	for i := range bars {
		p := 100 + float64(i)*0.25
		bars[i] = model.PriceBar{
			Time:   start.AddDate(0, 0, i),
			Open:   p - 0.5,
			High:   p + 1.125,
			Low:    p - 1,
			Close:  p,
			Volume: float64(1000 * (i + 1)),
		}
	}
	return &model.PriceSeries{Ticker: ticker, Period: model.Period1mo, Interval: model.Interval1d, Bars: bars}
}

func TestSafeName(t *testing.T) {
	tests := map[string]string{
		"RELIANCE.NS": "RELIANCE_NS",
		"aapl":        "AAPL",
		"^GSPC":       "_GSPC",
		"BRK-B":       "BRK_B",
	}
	for in, want := range tests {
		if got := SafeName(in); got != want {
			t.Errorf("SafeName(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestPath_KeyedByTickerPeriodInterval(t *testing.T) {
	s := NewStore("cachedir")
	a := s.Path("RELIANCE.NS", model.Period1mo, model.Interval1d)
	if a != filepath.Join("cachedir", "RELIANCE_NS_1mo_1d.csv") {
		t.Errorf("unexpected path %s", a)
	}
	if a == s.Path("TCS.NS", model.Period1mo, model.Interval1d) {
		t.Error("different tickers must not share a cache file")
	}
	if a == s.Path("RELIANCE.NS", model.Period1y, model.Interval1d) {
		t.Error("different periods must not share a cache file")
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())
	series := sampleSeries("INFY.NS", 21)

	path, err := s.Write(series)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	bars, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(bars) != len(series.Bars) {
		t.Fatalf("expected %d rows, got %d", len(series.Bars), len(bars))
	}
	for i := range bars {
		if bars[i].Close != series.Bars[i].Close {
			t.Errorf("row %d: close %v != %v", i, bars[i].Close, series.Bars[i].Close)
		}
		if !bars[i].Time.Equal(series.Bars[i].Time) {
			t.Errorf("row %d: time %v != %v", i, bars[i].Time, series.Bars[i].Time)
		}
	}
}

func TestWrite_Overwrites(t *testing.T) {
	s := NewStore(t.TempDir())
	if _, err := s.Write(sampleSeries("AAPL", 10)); err != nil {
		t.Fatal(err)
	}
	path, err := s.Write(sampleSeries("AAPL", 3))
	if err != nil {
		t.Fatal(err)
	}
	bars, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 3 {
		t.Errorf("expected file to be replaced with 3 rows, got %d", len(bars))
	}

	entries, _ := os.ReadDir(s.Dir)
	if len(entries) != 1 {
		t.Errorf("expected a single cache file and no temp leftovers, got %d entries", len(entries))
	}
}

func TestWrite_ConcurrentSamePath(t *testing.T) {
	s := NewStore(t.TempDir())
	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := s.Write(sampleSeries("MSFT", n)); err != nil {
				t.Errorf("write %d: %v", n, err)
			}
		}(i)
	}
	wg.Wait()

	bars, err := Read(s.Path("MSFT", model.Period1mo, model.Interval1d))
	if err != nil {
		t.Fatalf("read after concurrent writes: %v", err)
	}
	if len(bars) < 1 || len(bars) > 8 {
		t.Errorf("unexpected row count %d", len(bars))
	}
}

func TestRead_Missing(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.csv")); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
