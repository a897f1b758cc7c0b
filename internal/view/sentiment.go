package view

import "FinSent/internal/model"

// BarSeries is one metric plotted across tickers.
type BarSeries struct {
	Name  string    `json:"name"`
	Color string    `json:"color"`
	X     []string  `json:"x"`
	Y     []float64 `json:"y"`
}

// SentimentView is the multi-ticker comparison panel.
type SentimentView struct {
	Summaries []model.TickerSentimentSummary `json:"summaries"`
	Series    []BarSeries                    `json:"series"`
}

// BuildSentiment renders summaries in the given order with one bar series per metric.
func BuildSentiment(summaries []model.TickerSentimentSummary) SentimentView {
	n := len(summaries)
	x := make([]string, n)
	pos := make([]float64, n)
	neg := make([]float64, n)
	neu := make([]float64, n)
	score := make([]float64, n)
	for i, s := range summaries {
		x[i] = s.Ticker
		pos[i] = s.Positive
		neg[i] = s.Negative
		neu[i] = s.Neutral
		score[i] = s.Score
	}
	if summaries == nil {
		summaries = []model.TickerSentimentSummary{}
	}
	return SentimentView{
		Summaries: summaries,
		Series: []BarSeries{
			{Name: "positive", Color: ColorPositive, X: x, Y: pos},
			{Name: "negative", Color: ColorNegative, X: x, Y: neg},
			{Name: "neutral", Color: ColorNeutral, X: x, Y: neu},
			{Name: "compound", Color: ColorLine, X: x, Y: score},
		},
	}
}
