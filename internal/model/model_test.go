package model

import (
	"errors"
	"testing"
)

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		score float64
		label Label
	}{
		{1.0, Positive},
		{0.051, Positive},
		{0.05, Neutral},
		{0.0, Neutral},
		{-0.05, Neutral},
		{-0.051, Negative},
		{-1.0, Negative},
	}
	for _, tt := range tests {
		if got := Classify(tt.score); got != tt.label {
			t.Errorf("score %.3f: expected %s, got %s", tt.score, tt.label, got)
		}
	}
}

func TestRound3(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.12345, 0.123},
		{0.1236, 0.124},
		{-0.1236, -0.124},
		{0.0504, 0.05},
		{1, 1},
	}
	for _, tt := range tests {
		if got := Round3(tt.in); got != tt.want {
			t.Errorf("Round3(%v): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestParsePeriodAndInterval(t *testing.T) {
	for _, p := range Periods {
		if _, err := ParsePeriod(string(p)); err != nil {
			t.Errorf("period %s rejected: %v", p, err)
		}
	}
	for _, iv := range Intervals {
		if _, err := ParseInterval(string(iv)); err != nil {
			t.Errorf("interval %s rejected: %v", iv, err)
		}
	}
	if _, err := ParsePeriod("10y"); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for 10y, got %v", err)
	}
	if _, err := ParseInterval("1wk"); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for 1wk, got %v", err)
	}
}

func TestValidateRange(t *testing.T) {
	tests := []struct {
		period   Period
		interval Interval
		ok       bool
	}{
		{Period1mo, Interval1d, true},
		{Period5y, Interval1d, true},
		{Period5d, Interval5m, true},
		{Period1mo, Interval30m, true},
		{Period3mo, Interval15m, false},
		{Period2y, Interval1h, true},
		{Period5y, Interval1h, false},
		{"bogus", Interval1d, false},
	}
	for _, tt := range tests {
		err := ValidateRange(tt.period, tt.interval)
		if tt.ok && err != nil {
			t.Errorf("%s/%s: unexpected error %v", tt.period, tt.interval, err)
		}
		if !tt.ok && !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("%s/%s: expected ErrInvalidParameter, got %v", tt.period, tt.interval, err)
		}
	}
}

func TestDefaultSummary(t *testing.T) {
	s := DefaultSummary("X", "")
	if s.Name != "X" {
		t.Errorf("expected name fallback to ticker, got %q", s.Name)
	}
	if s.Positive != 0 || s.Negative != 0 || s.Neutral != 1 || s.Score != 0 {
		t.Errorf("unexpected default components: %+v", s)
	}
	if s.Sentiment != Neutral {
		t.Errorf("expected Neutral, got %s", s.Sentiment)
	}
}
