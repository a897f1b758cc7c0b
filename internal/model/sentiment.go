package model

import "math"

// Label is the three-way sentiment classification.
type Label string

const (
	Positive Label = "Positive"
	Negative Label = "Negative"
	Neutral  Label = "Neutral"
)

// Classification thresholds on the compound score. Boundary values are Neutral.
const (
	PositiveThreshold = 0.05
	NegativeThreshold = -0.05
)

// Classify maps a compound score to a Label.
func Classify(score float64) Label {
	switch {
	case score > PositiveThreshold:
		return Positive
	case score < NegativeThreshold:
		return Negative
	default:
		return Neutral
	}
}

// Round3 rounds v to 3 decimal places, half away from zero.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Polarity is the raw output of a lexicon analyzer for one text.
type Polarity struct {
	Positive float64
	Negative float64
	Neutral  float64
	Compound float64
}

// SentimentResult is the scored form of one headline.
type SentimentResult struct {
	Headline string  `json:"headline"`
	Score    float64 `json:"score"`
	Label    Label   `json:"label"`
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// TickerSentimentSummary aggregates headline sentiment for one ticker.
type TickerSentimentSummary struct {
	Ticker    string  `json:"ticker"`
	Name      string  `json:"name"`
	Positive  float64 `json:"positive"`
	Negative  float64 `json:"negative"`
	Neutral   float64 `json:"neutral"`
	Score     float64 `json:"score"`
	Sentiment Label   `json:"sentiment"`
	Headlines int     `json:"headlines"`
}

// DefaultSummary is the summary used when a ticker has no headlines.
func DefaultSummary(ticker, name string) TickerSentimentSummary {
	if name == "" {
		name = ticker
	}
	return TickerSentimentSummary{
		Ticker:    ticker,
		Name:      name,
		Positive:  0,
		Negative:  0,
		Neutral:   1,
		Score:     0,
		Sentiment: Neutral,
	}
}

// TickerInfo is one entry of the ticker catalog.
type TickerInfo struct {
	Symbol string `yaml:"symbol" json:"symbol"`
	Name   string `yaml:"name" json:"name"`
}

// DefaultCatalog is the built-in ticker list.
var DefaultCatalog = []TickerInfo{
	{Symbol: "AAPL", Name: "Apple (AAPL)"},
	{Symbol: "RELIANCE.NS", Name: "Reliance (RELIANCE.NS)"},
	{Symbol: "INFY.NS", Name: "Infosys (INFY.NS)"},
	{Symbol: "TCS.NS", Name: "TCS (TCS.NS)"},
	{Symbol: "GOOG", Name: "Google (GOOG)"},
	{Symbol: "MSFT", Name: "Microsoft (MSFT)"},
	{Symbol: "AMZN", Name: "Amazon (AMZN)"},
}
