package stages

import (
	"context"

	"reviewpipe/internal/lexicon"
	"reviewpipe/internal/review"
)

// Classification thresholds. A blended score above positiveThreshold is
// positive, below negativeThreshold negative, anything between neutral.
const (
	positiveThreshold = 0.1
	negativeThreshold = -0.1
)

// Rating boundaries for the rating-only fallback: >= 4 reads as positive,
// <= 2 as negative.
const (
	highRatingFloor   = 4.0
	lowRatingCutoff   = 2.0
	ratingConfidence  = 0.6
	neutralConfidence = 0.5
)

// SentimentAnalyzer classifies a processed review as positive, neutral, or
// negative. The rule is fixed and deterministic:
//
//  1. Score the combined body and summary tokens with the polarity lexicon:
//     (positive hits - negative hits) / total hits.
//  2. If no sentiment words were found, the rating alone decides.
//  3. Otherwise blend with the rating scaled to [-1, 1] via (rating-3)/2,
//     averaging the two signals, and classify against the thresholds.
type SentimentAnalyzer struct {
	scorer *lexicon.Scorer
}

// NewSentimentAnalyzer creates an analyzer over the given scorer. A nil
// scorer falls back to the default polarity lexicons.
func NewSentimentAnalyzer(scorer *lexicon.Scorer) *SentimentAnalyzer {
	if scorer == nil {
		scorer = lexicon.NewScorer(lexicon.DefaultPositive(), lexicon.DefaultNegative())
	}
	return &SentimentAnalyzer{scorer: scorer}
}

// Analyze computes the sentiment verdict for a processed review.
func (a *SentimentAnalyzer) Analyze(ctx context.Context, pr review.ProcessedReview) (review.SentimentVerdict, error) {
	if err := ctx.Err(); err != nil {
		return review.SentimentVerdict{}, err
	}

	tokens := make([]string, 0, len(pr.Body.Tokens)+len(pr.Summary.Tokens))
	tokens = append(tokens, pr.Body.Tokens...)
	tokens = append(tokens, pr.Summary.Tokens...)

	score, hits := a.scorer.Score(tokens)
	rating := pr.Review.Overall

	if hits == 0 {
		return ratingVerdict(rating), nil
	}

	// Blend text polarity with the rating scaled to [-1, 1].
	ratingScore := (rating - 3) / 2
	blended := (score + ratingScore) / 2

	confidence := float64(hits) / float64(len(tokens))
	if confidence > 1 {
		confidence = 1
	}
	if confidence < neutralConfidence {
		confidence = neutralConfidence
	}

	return review.SentimentVerdict{
		Sentiment:  classify(blended),
		Score:      blended,
		Confidence: confidence,
	}, nil
}

func classify(score float64) review.Sentiment {
	switch {
	case score > positiveThreshold:
		return review.SentimentPositive
	case score < negativeThreshold:
		return review.SentimentNegative
	default:
		return review.SentimentNeutral
	}
}

// ratingVerdict decides sentiment from the numeric rating alone, used when
// the text contains no sentiment-bearing words.
func ratingVerdict(rating float64) review.SentimentVerdict {
	v := review.SentimentVerdict{RatingOnly: true, Score: (rating - 3) / 2}
	switch {
	case rating >= highRatingFloor:
		v.Sentiment = review.SentimentPositive
		v.Confidence = ratingConfidence
	case rating <= lowRatingCutoff:
		v.Sentiment = review.SentimentNegative
		v.Confidence = ratingConfidence
	default:
		v.Sentiment = review.SentimentNeutral
		v.Confidence = neutralConfidence
	}
	return v
}
