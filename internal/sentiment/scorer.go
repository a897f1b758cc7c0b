// Package sentiment scores headline polarity and aggregates it per ticker.
package sentiment

import "FinSent/internal/model"

// Scorer turns headlines into classified SentimentResults.
type Scorer struct {
	analyzer Analyzer
}

// NewScorer creates a Scorer around an explicitly constructed analyzer.
func NewScorer(analyzer Analyzer) *Scorer {
	return &Scorer{analyzer: analyzer}
}

// Score rounds the compound score to 3 dp and classifies the rounded value, so
// the returned Label always agrees with the returned Score.
func (s *Scorer) Score(headline string) model.SentimentResult {
	p := s.analyzer.PolarityScores(headline)
	score, label := classify(p.Compound)
	return model.SentimentResult{
		Headline: headline,
		Score:    score,
		Label:    label,
		Positive: model.Round3(p.Positive),
		Negative: model.Round3(p.Negative),
		Neutral:  model.Round3(p.Neutral),
	}
}

// ScoreAll scores each headline, preserving order.
func (s *Scorer) ScoreAll(headlines []string) []model.SentimentResult {
	results := make([]model.SentimentResult, 0, len(headlines))
	for _, h := range headlines {
		results = append(results, s.Score(h))
	}
	return results
}

// Summarize averages the unrounded polarity of headlines and rounds only the
// means. With no headlines it returns the neutral default.
func (s *Scorer) Summarize(ticker, name string, headlines []string) model.TickerSentimentSummary {
	if name == "" {
		name = ticker
	}
	if len(headlines) == 0 {
		return model.DefaultSummary(ticker, name)
	}

	var sum model.Polarity
	for _, h := range headlines {
		p := s.analyzer.PolarityScores(h)
		sum.Positive += p.Positive
		sum.Negative += p.Negative
		sum.Neutral += p.Neutral
		sum.Compound += p.Compound
	}
	n := float64(len(headlines))
	score, label := classify(sum.Compound / n)
	return model.TickerSentimentSummary{
		Ticker:    ticker,
		Name:      name,
		Positive:  model.Round3(sum.Positive / n),
		Negative:  model.Round3(sum.Negative / n),
		Neutral:   model.Round3(sum.Neutral / n),
		Score:     score,
		Sentiment: label,
		Headlines: len(headlines),
	}
}

// classify is the single place a compound value becomes a score and label.
func classify(compound float64) (float64, model.Label) {
	score := model.Round3(compound)
	return score, model.Classify(score)
}
