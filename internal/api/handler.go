package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"FinSent/internal/breaker"
	"FinSent/internal/collector"
	"FinSent/internal/config"
	"FinSent/internal/model"
	"FinSent/internal/observability"
	"FinSent/internal/scheduler"
	"FinSent/internal/sentiment"
	"FinSent/internal/view"
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9.^=-]{1,20}$`)

// PriceService fetches a normalized price series.
type PriceService interface {
	Fetch(ctx context.Context, ticker string, period model.Period, interval model.Interval) (*model.PriceSeries, error)
}

// Refresher runs an on-demand watchlist refresh.
type Refresher interface {
	RefreshNow(ctx context.Context) scheduler.RefreshReport
}

// Deps are the pipeline components the handlers call.
type Deps struct {
	Prices    PriceService
	Headlines sentiment.HeadlineSource
	Scorer    *sentiment.Scorer
	Sentiment scheduler.SentimentAggregator
	Refresher Refresher
	Breakers  *breaker.Registry
	Logger    *zap.Logger
	Metrics   *observability.Metrics
}

// Handler handles HTTP API requests
type Handler struct {
	deps Deps
	cfg  *config.Config
}

// NewHandler creates a new Handler
func NewHandler(deps Deps, cfg *config.Config) *Handler {
	deps.Logger = observability.OrNop(deps.Logger)
	return &Handler{deps: deps, cfg: cfg}
}

// HandleHealth reports service status and circuit breaker states.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "ok",
		"source": h.cfg.DataSource.Provider,
	}

	cbStatus := h.deps.Breakers.Status()
	status["circuit_breakers"] = cbStatus
	for _, cb := range cbStatus {
		if cb.State == "open" {
			status["status"] = "degraded"
			break
		}
	}

	h.jsonResponse(w, status)
}

// OptionsResponse lists the dashboard's selectable values.
type OptionsResponse struct {
	Tickers         []model.TickerInfo `json:"tickers"`
	Periods         []model.Period     `json:"periods"`
	Intervals       []model.Interval   `json:"intervals"`
	DefaultTicker   string             `json:"default_ticker"`
	DefaultPeriod   model.Period       `json:"default_period"`
	DefaultInterval model.Interval     `json:"default_interval"`
	MaxHeadlines    int                `json:"max_headlines"`
	HeadlineLimit   int                `json:"headline_limit"`
}

// HandleOptions returns the ticker catalog and the period/interval choices.
func (h *Handler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, OptionsResponse{
		Tickers:         h.cfg.Dashboard.Catalog,
		Periods:         model.Periods,
		Intervals:       model.Intervals,
		DefaultTicker:   h.cfg.Dashboard.DefaultTicker,
		DefaultPeriod:   h.cfg.DefaultPeriod(),
		DefaultInterval: h.cfg.DefaultInterval(),
		MaxHeadlines:    h.cfg.News.MaxHeadlines,
		HeadlineLimit:   config.HeadlineLimit,
	})
}

// HandlePrices returns the price table and chart for one ticker.
func (h *Handler) HandlePrices(w http.ResponseWriter, r *http.Request) {
	ticker, err := ValidateSymbol(chi.URLParam(r, "ticker"))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	q := r.URL.Query()
	period, err := model.ParsePeriod(queryOr(q.Get("period"), h.cfg.Dashboard.DefaultPeriod))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	interval, err := model.ParseInterval(queryOr(q.Get("interval"), h.cfg.Dashboard.DefaultInterval))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	rows, err := parseIntParam(r, "rows", h.cfg.Dashboard.TableRows)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	ma, err := parseIntParam(r, "ma", 0)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	series, err := h.deps.Prices.Fetch(r.Context(), ticker, period, interval)
	switch {
	case errors.Is(err, model.ErrInvalidParameter):
		h.jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, collector.ErrNoData):
		v := view.PriceError(ticker)
		v.Error = err.Error()
		h.jsonResponse(w, v)
	case err != nil:
		h.deps.Logger.Error("price request failed", observability.Ticker(ticker), zap.Error(err))
		h.jsonError(w, "internal error", http.StatusInternalServerError)
	default:
		h.jsonResponse(w, view.BuildPrice(series, view.PriceOptions{Rows: rows, SMAWindow: ma}))
	}
}

// HandleHeadlines returns the scored headline list for one ticker.
func (h *Handler) HandleHeadlines(w http.ResponseWriter, r *http.Request) {
	ticker, err := ValidateSymbol(chi.URLParam(r, "ticker"))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	limit, err := h.parseMaxHeadlines(r)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	headlines := h.deps.Headlines.Fetch(r.Context(), ticker, limit)
	h.jsonResponse(w, view.BuildHeadlines(ticker, h.deps.Scorer.ScoreAll(headlines)))
}

// HandleSentiment compares aggregate headline sentiment across tickers.
func (h *Handler) HandleSentiment(w http.ResponseWriter, r *http.Request) {
	limit, err := h.parseMaxHeadlines(r)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var tickers []string
	if raw := r.URL.Query().Get("tickers"); strings.TrimSpace(raw) != "" {
		for _, t := range strings.Split(raw, ",") {
			symbol, err := ValidateSymbol(t)
			if err != nil {
				h.jsonError(w, err.Error(), http.StatusBadRequest)
				return
			}
			tickers = append(tickers, symbol)
		}
	}

	summaries, err := h.deps.Sentiment.AggregateOrdered(r.Context(), tickers, limit)
	switch {
	case errors.Is(err, sentiment.ErrInvalidTickers):
		h.jsonError(w, err.Error(), http.StatusBadRequest)
	case err != nil:
		h.deps.Logger.Warn("sentiment request failed", zap.Error(err))
		h.jsonError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		h.jsonResponse(w, view.BuildSentiment(summaries))
	}
}

// HandleRefresh runs a watchlist refresh and returns its report.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if h.deps.Refresher == nil {
		h.jsonError(w, "refresh not configured", http.StatusServiceUnavailable)
		return
	}
	h.jsonResponse(w, h.deps.Refresher.RefreshNow(r.Context()))
}

// ValidateSymbol normalizes a ticker and checks its format.
func ValidateSymbol(symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", fmt.Errorf("symbol is required")
	}
	if !symbolPattern.MatchString(symbol) {
		return "", fmt.Errorf("invalid symbol %q (letters, digits and . ^ = - only, max 20)", symbol)
	}
	return symbol, nil
}

func (h *Handler) parseMaxHeadlines(r *http.Request) (int, error) {
	limit, err := parseIntParam(r, "max", h.cfg.News.MaxHeadlines)
	if err != nil {
		return 0, err
	}
	if limit > config.HeadlineLimit {
		limit = config.HeadlineLimit
	}
	return limit, nil
}

// parseIntParam reads a positive integer query parameter, falling back to def when absent.
func parseIntParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return n, nil
}

func queryOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.deps.Logger.Warn("encode response", zap.Error(err))
	}
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
