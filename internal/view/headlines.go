package view

import (
	"fmt"

	"FinSent/internal/model"
)

// HeadlineItem is one scored headline with its display color.
type HeadlineItem struct {
	Headline string      `json:"headline"`
	Score    float64     `json:"score"`
	Label    model.Label `json:"label"`
	Color    string      `json:"color"`
}

// HeadlineView is the single-ticker headline list.
type HeadlineView struct {
	Ticker  string         `json:"ticker"`
	Message string         `json:"message,omitempty"`
	Items   []HeadlineItem `json:"items"`
}

// LabelColor maps a label to green, red or gray.
func LabelColor(l model.Label) string {
	switch l {
	case model.Positive:
		return ColorPositive
	case model.Negative:
		return ColorNegative
	default:
		return ColorNeutral
	}
}

// BuildHeadlines renders scored headlines in feed order.
func BuildHeadlines(ticker string, results []model.SentimentResult) HeadlineView {
	v := HeadlineView{Ticker: ticker, Items: make([]HeadlineItem, 0, len(results))}
	if len(results) == 0 {
		v.Message = fmt.Sprintf("ℹ️ No recent headlines for %s.", ticker)
		return v
	}
	for _, r := range results {
		v.Items = append(v.Items, HeadlineItem{
			Headline: r.Headline,
			Score:    r.Score,
			Label:    r.Label,
			Color:    LabelColor(r.Label),
		})
	}
	return v
}
