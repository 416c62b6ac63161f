package stages

import (
	"context"
	"testing"

	"reviewpipe/internal/review"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The classification rule under test: polarity = (pos-neg)/(pos+neg) over
// the combined tokens, blended with (rating-3)/2 by averaging; > 0.1 is
// positive, < -0.1 negative, otherwise neutral. With no sentiment words the
// rating alone decides (>= 4 positive, <= 2 negative, else neutral).
func TestSentimentAnalyze_Classification(t *testing.T) {
	a := NewSentimentAnalyzer(nil)

	tests := []struct {
		name    string
		text    string
		summary string
		rating  float64
		want    review.Sentiment
	}{
		{
			name:   "positive text, high rating",
			text:   "Excellent quality, amazing product, love it",
			rating: 5,
			want:   review.SentimentPositive,
		},
		{
			name:   "negative text, low rating",
			text:   "Terrible product, broken on arrival, complete waste",
			rating: 1,
			want:   review.SentimentNegative,
		},
		{
			// polarity +1, rating signal -1: the blend cancels to zero
			name:   "positive text against minimum rating",
			text:   "Excellent wonderful amazing",
			rating: 1,
			want:   review.SentimentNeutral,
		},
		{
			name:   "no sentiment words, high rating decides",
			text:   "Arrived tuesday inside cardboard box",
			rating: 5,
			want:   review.SentimentPositive,
		},
		{
			name:   "no sentiment words, low rating decides",
			text:   "Arrived tuesday inside cardboard box",
			rating: 1,
			want:   review.SentimentNegative,
		},
		{
			name:   "no sentiment words, middling rating",
			text:   "Arrived tuesday inside cardboard box",
			rating: 3,
			want:   review.SentimentNeutral,
		},
		{
			name:    "summary carries the sentiment",
			text:    "Delivered within the stated window",
			summary: "Fantastic purchase",
			rating:  5,
			want:    review.SentimentPositive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr := processedReview(t, review.Review{
				ID: "r1", ReviewerID: "u1",
				ReviewText: tt.text,
				Summary:    tt.summary,
				Overall:    tt.rating,
			})
			verdict, err := a.Analyze(context.Background(), pr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, verdict.Sentiment)
		})
	}
}

func TestSentimentAnalyze_RatingOnlyFallback(t *testing.T) {
	a := NewSentimentAnalyzer(nil)

	pr := processedReview(t, review.Review{
		ID: "r1", ReviewerID: "u1",
		ReviewText: "Arrived tuesday inside cardboard box",
		Overall:    4,
	})

	verdict, err := a.Analyze(context.Background(), pr)
	require.NoError(t, err)
	assert.True(t, verdict.RatingOnly)
	assert.Equal(t, review.SentimentPositive, verdict.Sentiment)
	assert.InDelta(t, 0.5, verdict.Score, 1e-9)
	assert.InDelta(t, 0.6, verdict.Confidence, 1e-9)
}

func TestSentimentAnalyze_Deterministic(t *testing.T) {
	a := NewSentimentAnalyzer(nil)
	pr := processedReview(t, review.Review{
		ID: "r1", ReviewerID: "u1",
		ReviewText: "Good product but the battery is disappointing",
		Overall:    3,
	})

	first, err := a.Analyze(context.Background(), pr)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := a.Analyze(context.Background(), pr)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
