package sentiment

import (
	"github.com/jonreiter/govader"

	"FinSent/internal/model"
)

// Analyzer produces polarity scores for a piece of text.
type Analyzer interface {
	PolarityScores(text string) model.Polarity
}

// VaderAnalyzer is the VADER lexicon/rule-based analyzer. Build one per process
// and share it; it holds no per-call state.
type VaderAnalyzer struct {
	sia *govader.SentimentIntensityAnalyzer
}

// NewVaderAnalyzer loads the VADER lexicon.
func NewVaderAnalyzer() *VaderAnalyzer {
	return &VaderAnalyzer{sia: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderAnalyzer) PolarityScores(text string) model.Polarity {
	s := v.sia.PolarityScores(text)
	return model.Polarity{
		Positive: s.Positive,
		Negative: s.Negative,
		Neutral:  s.Neutral,
		Compound: s.Compound,
	}
}
