package breaker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestExecute_PassesThroughResult(t *testing.T) {
	r := NewRegistry(DefaultConfig(), nil, nil)
	got, err := Execute(r, YahooChart, func() (int, error) { return 42, nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}

func TestExecute_OpensAfterFailures(t *testing.T) {
	cfg := Config{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, MinRequests: 2, FailureRatio: 0.5}
	r := NewRegistry(cfg, nil, nil)
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		if _, err := Execute(r, YahooRSS, func() (string, error) { return "", boom }); !errors.Is(err, boom) {
			t.Fatalf("call %d: expected boom, got %v", i, err)
		}
	}

	called := false
	_, err := Execute(r, YahooRSS, func() (string, error) {
		called = true
		return "ok", nil
	})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable once open, got %v", err)
	}
	if called {
		t.Error("fn must not run while the breaker is open")
	}

	st := r.Status()[YahooRSS]
	if st.State != "open" {
		t.Errorf("expected open state, got %q", st.State)
	}
}

func TestExecute_NilRegistryRunsDirectly(t *testing.T) {
	var r *Registry
	got, err := Execute(r, YahooChart, func() ([]int, error) { return []int{1, 2}, nil })
	if err != nil || len(got) != 2 {
		t.Errorf("expected direct call, got %v %v", got, err)
	}
	if len(r.Status()) != 0 {
		t.Error("expected empty status for nil registry")
	}
}

func TestExecute_IgnoresRejectedAndCancelled(t *testing.T) {
	cfg := Config{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, MinRequests: 2, FailureRatio: 0.5}
	r := NewRegistry(cfg, nil, nil)
	rejected := &RequestError{StatusCode: 404, Err: errors.New("Not Found")}

	for i := 0; i < 5; i++ {
		_, err := Execute(r, YahooChart, func() (int, error) { return 0, fmt.Errorf("fetch: %w", rejected) })
		if !IsRequestError(err) {
			t.Fatalf("call %d: expected request error to pass through, got %v", i, err)
		}
		_, err = Execute(r, YahooChart, func() (int, error) { return 0, fmt.Errorf("fetch: %w", context.Canceled) })
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("call %d: expected context.Canceled, got %v", i, err)
		}
	}

	got, err := Execute(r, YahooChart, func() (int, error) { return 7, nil })
	if err != nil || got != 7 {
		t.Fatalf("expected closed breaker to run fn, got %v %v", got, err)
	}
	if st := r.Status()[YahooChart]; st.State != "closed" || st.TotalFailures != 0 {
		t.Errorf("expected closed with no failures, got %+v", st)
	}
}

func TestCountsAsFailure(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{context.Canceled, false},
		{fmt.Errorf("wrapped: %w", &RequestError{StatusCode: 400, Err: errors.New("bad")}), false},
		{errors.New("connection refused"), true},
		{context.DeadlineExceeded, true},
	}
	for _, tt := range tests {
		if got := countsAsFailure(tt.err); got != tt.want {
			t.Errorf("countsAsFailure(%v): expected %v, got %v", tt.err, tt.want, got)
		}
	}
}
