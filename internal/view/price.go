// Package view shapes pipeline results into the JSON the dashboard renders.
package view

import (
	"fmt"
	"time"

	"FinSent/internal/calculator"
	"FinSent/internal/model"
)

// DefaultRows is how many trailing bars the price table shows.
const DefaultRows = 10

const (
	ColorLine     = "#2563eb"
	ColorOverlay  = "#f59e0b"
	ColorPositive = "#16a34a"
	ColorNegative = "#dc2626"
	ColorNeutral  = "#6b7280"
)

// LineSeries is one time-indexed trace on a chart.
type LineSeries struct {
	Name  string      `json:"name"`
	Color string      `json:"color"`
	X     []time.Time `json:"x"`
	Y     []float64   `json:"y"`
}

// LineChart is a time-series chart.
type LineChart struct {
	Title  string       `json:"title"`
	XTitle string       `json:"xaxis_title"`
	YTitle string       `json:"yaxis_title"`
	Series []LineSeries `json:"series"`
}

// PriceStats summarizes the whole fetched series.
type PriceStats struct {
	Bars          int      `json:"bars"`
	LastClose     float64  `json:"last_close"`
	High          float64  `json:"high"`
	Low           float64  `json:"low"`
	ChangePct     float64  `json:"change_pct"`
	RangePosition float64  `json:"range_position"`
	SMA           *float64 `json:"sma,omitempty"`
	SMAWindow     int      `json:"sma_window,omitempty"`
}

// PriceView is the price panel: status message, table rows and closing-price chart.
type PriceView struct {
	OK       bool             `json:"ok"`
	Message  string           `json:"message"`
	Error    string           `json:"error,omitempty"`
	Ticker   string           `json:"ticker"`
	Period   model.Period     `json:"period,omitempty"`
	Interval model.Interval   `json:"interval,omitempty"`
	Rows     []model.PriceBar `json:"rows"`
	Chart    *LineChart       `json:"chart,omitempty"`
	Stats    *PriceStats      `json:"stats,omitempty"`
}

// PriceOptions controls table length and the moving-average overlay.
type PriceOptions struct {
	Rows      int
	SMAWindow int
}

// PriceError is the view for a fetch that produced no data.
func PriceError(ticker string) PriceView {
	return PriceView{
		Message: "❌ Error fetching data. Try again.",
		Ticker:  ticker,
		Rows:    []model.PriceBar{},
	}
}

// BuildPrice renders a fetched series. An empty series renders as PriceError.
func BuildPrice(series *model.PriceSeries, opts PriceOptions) PriceView {
	if series == nil || len(series.Bars) == 0 {
		ticker := ""
		if series != nil {
			ticker = series.Ticker
		}
		return PriceError(ticker)
	}
	rows := opts.Rows
	if rows <= 0 {
		rows = DefaultRows
	}
	bars := series.Bars
	tail := bars
	if len(tail) > rows {
		tail = tail[len(tail)-rows:]
	}

	x := make([]time.Time, len(bars))
	for i, b := range bars {
		x[i] = b.Time
	}
	closes := series.Closes()
	chart := &LineChart{
		Title:  fmt.Sprintf("Closing Price for %s", series.Ticker),
		XTitle: "Date",
		YTitle: "Price",
		Series: []LineSeries{{Name: series.Ticker, Color: ColorLine, X: x, Y: closes}},
	}

	if opts.SMAWindow > 0 {
		if sma, err := calculator.SMASeries(closes, opts.SMAWindow); err == nil {
			chart.Series = append(chart.Series, LineSeries{
				Name:  fmt.Sprintf("SMA(%d)", opts.SMAWindow),
				Color: ColorOverlay,
				X:     x[opts.SMAWindow-1:],
				Y:     sma,
			})
		}
	}

	return PriceView{
		OK:       true,
		Message:  fmt.Sprintf("✅ Showing data for %s", series.Ticker),
		Ticker:   series.Ticker,
		Period:   series.Period,
		Interval: series.Interval,
		Rows:     append([]model.PriceBar(nil), tail...),
		Chart:    chart,
		Stats:    priceStats(bars, opts.SMAWindow),
	}
}

func priceStats(bars []model.PriceBar, smaWindow int) *PriceStats {
	s := &PriceStats{Bars: len(bars), LastClose: bars[len(bars)-1].Close}
	if smaWindow > 0 {
		if sma, err := calculator.CloseSMA(bars, smaWindow); err == nil {
			s.SMA, s.SMAWindow = &sma, smaWindow
		}
	}
	if high, low, err := calculator.PriceRange(bars); err == nil {
		s.High, s.Low = high, low
		s.RangePosition, _ = calculator.RangePosition(s.LastClose, high, low)
	}
	if pct, err := calculator.ChangePercent(bars); err == nil {
		s.ChangePct = model.Round3(pct)
	}
	return s
}
