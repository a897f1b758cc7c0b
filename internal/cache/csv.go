// Package cache writes fetched price series to per-request CSV files.
package cache

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"FinSent/internal/model"
)

// DefaultDir is where cache files go when no directory is configured.
const DefaultDir = "data"

var header = []string{"Date", "Open", "High", "Low", "Close", "Volume"}

// Store writes one CSV file per (ticker, period, interval).
type Store struct {
	Dir string

	locks sync.Map // path -> *sync.Mutex
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	return &Store{Dir: dir}
}

// SafeName upper-cases the ticker and replaces every non-alphanumeric rune with '_'.
func SafeName(ticker string) string {
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return unicode.ToUpper(r)
		}
		return '_'
	}, strings.TrimSpace(ticker))
}

// Path returns the cache file path for a request.
func (s *Store) Path(ticker string, period model.Period, interval model.Interval) string {
	name := fmt.Sprintf("%s_%s_%s.csv", SafeName(ticker), period, interval)
	return filepath.Join(s.Dir, name)
}

func (s *Store) lock(path string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(path, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Write overwrites the cache file for the series and returns its path.
func (s *Store) Write(series *model.PriceSeries) (string, error) {
	path := s.Path(series.Ticker, series.Period, series.Interval)

	mu := s.lock(path)
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.Dir, ".tmp-*.csv")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, b := range series.Bars {
		rec := []string{
			b.Time.Format(time.RFC3339),
			formatFloat(b.Open),
			formatFloat(b.High),
			formatFloat(b.Low),
			formatFloat(b.Close),
			formatFloat(b.Volume),
		}
		if err := w.Write(rec); err != nil {
			tmp.Close()
			return "", fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("flush csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename cache file: %w", err)
	}
	return path, nil
}

// Read parses a cache file back into bars.
func Read(path string) ([]model.PriceBar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse cache file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("cache file %s: missing header", path)
	}

	bars := make([]model.PriceBar, 0, len(records)-1)
	for i, rec := range records[1:] {
		ts, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: parse date: %w", i+1, err)
		}
		vals := make([]float64, 5)
		for j := range vals {
			v, err := strconv.ParseFloat(rec[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: parse %s: %w", i+1, header[j+1], err)
			}
			vals[j] = v
		}
		bars = append(bars, model.PriceBar{
			Time:   ts,
			Open:   vals[0],
			High:   vals[1],
			Low:    vals[2],
			Close:  vals[3],
			Volume: vals[4],
		})
	}
	return bars, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
