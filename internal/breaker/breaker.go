// Package breaker wraps upstream provider calls in named gobreaker circuit breakers.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"FinSent/internal/observability"
)

// Breaker names for upstream services.
const (
	YahooChart = "yahoo-chart"
	YahooRSS   = "yahoo-rss"
)

// ErrUnavailable is returned when a breaker rejects a call without running it.
var ErrUnavailable = errors.New("service unavailable")

// RequestError is an upstream rejection of the request itself, such as an unknown
// symbol or another 4xx reply. It says nothing about upstream health, so breakers
// do not count it as a failure.
type RequestError struct {
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request rejected (status %d): %v", e.StatusCode, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// IsRequestError reports whether err wraps a *RequestError.
func IsRequestError(err error) bool {
	var re *RequestError
	return errors.As(err, &re)
}

// countsAsFailure is true only for errors that signal an unhealthy upstream:
// transport, 5xx and decode failures. Caller cancellation and rejected requests pass.
func countsAsFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	return !IsRequestError(err)
}

// Config holds the settings shared by every breaker in a Registry.
type Config struct {
	MaxRequests  uint32        // max requests allowed in half-open state
	Interval     time.Duration // cyclic period of the closed state to clear counts
	Timeout      time.Duration // period of the open state before transitioning to half-open
	MinRequests  uint32        // requests needed before the failure ratio is considered
	FailureRatio float64
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  5,
		FailureRatio: 0.5,
	}
}

// Registry manages one breaker per upstream service name.
type Registry struct {
	mu       sync.RWMutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
	config   Config
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// NewRegistry creates a registry. logger and metrics may be nil.
func NewRegistry(cfg Config, logger *zap.Logger, metrics *observability.Metrics) *Registry {
	return &Registry{
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
		config:   cfg,
		logger:   observability.OrNop(logger),
		metrics:  metrics,
	}
}

func (r *Registry) get(name string) *gobreaker.CircuitBreaker[any] {
	r.mu.RLock()
	cb, ok := r.breakers[name]
	r.mu.RUnlock()
	if ok {
		return cb
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cb, ok = r.breakers[name]; ok {
		return cb
	}

	minReq, ratio := r.config.MinRequests, r.config.FailureRatio
	cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: r.config.MaxRequests,
		Interval:    r.config.Interval,
		Timeout:     r.config.Timeout,
		IsSuccessful: func(err error) bool {
			return !countsAsFailure(err)
		},
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minReq {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			r.metrics.SetCircuitBreakerState(name, stateToInt(to))
			if to == gobreaker.StateOpen {
				r.metrics.RecordCircuitBreakerTrip(name)
			}
		},
	})
	r.breakers[name] = cb
	return cb
}

// Execute runs fn through the named breaker. Rejections wrap ErrUnavailable.
func Execute[T any](r *Registry, name string, fn func() (T, error)) (T, error) {
	var zero T
	if r == nil {
		return fn()
	}
	result, err := r.get(name).Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %s: %v", ErrUnavailable, name, err)
		}
		return zero, err
	}
	v, _ := result.(T)
	return v, nil
}

// Status describes one breaker for health reporting.
type Status struct {
	Name                 string `json:"name"`
	State                string `json:"state"`
	Requests             uint32 `json:"requests"`
	TotalFailures        uint32 `json:"total_failures"`
	ConsecutiveFailures  uint32 `json:"consecutive_failures"`
	ConsecutiveSuccesses uint32 `json:"consecutive_successes"`
}

// Status returns the state of every breaker created so far.
func (r *Registry) Status() map[string]Status {
	out := make(map[string]Status)
	if r == nil {
		return out
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, cb := range r.breakers {
		c := cb.Counts()
		out[name] = Status{
			Name:                 name,
			State:                cb.State().String(),
			Requests:             c.Requests,
			TotalFailures:        c.TotalFailures,
			ConsecutiveFailures:  c.ConsecutiveFailures,
			ConsecutiveSuccesses: c.ConsecutiveSuccesses,
		}
	}
	return out
}

// 0=closed, 1=half-open, 2=open
func stateToInt(state gobreaker.State) int {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
