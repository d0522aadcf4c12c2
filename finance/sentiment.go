package finance

import (
	"math"
	"strings"
	"unicode"

	"finance-search/models"
)

var positiveWords = map[string]bool{
	"rally": true, "rallies": true, "gain": true, "gains": true, "strong": true,
	"record": true, "beat": true, "growth": true, "resilient": true, "surge": true,
	"upgrade": true, "bullish": true,
}

var negativeWords = map[string]bool{
	"caution": true, "uncertain": true, "recession": true, "risk": true,
	"selloff": true, "fall": true, "falls": true, "decline": true, "loss": true,
	"weak": true, "downgrade": true, "bearish": true,
}

// ScoreSentiment counts positive and negative keywords across headlines.
// Score is (pos-neg)/(pos+neg); above 0.2 is bullish, below -0.2 bearish.
func ScoreSentiment(news []models.NewsItem) models.Sentiment {
	var s models.Sentiment
	for _, item := range news {
		words := strings.FieldsFunc(strings.ToLower(item.Headline), func(r rune) bool {
			return !unicode.IsLetter(r)
		})
		for _, w := range words {
			switch {
			case positiveWords[w]:
				s.Positive++
			case negativeWords[w]:
				s.Negative++
			}
		}
	}

	if n := s.Positive + s.Negative; n > 0 {
		s.Score = math.Round(float64(s.Positive-s.Negative)/float64(n)*100) / 100
	}
	switch {
	case s.Score > 0.2:
		s.Label = "bullish"
	case s.Score < -0.2:
		s.Label = "bearish"
	default:
		s.Label = "neutral"
	}
	return s
}
