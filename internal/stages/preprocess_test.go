package stages

import (
	"context"
	"testing"

	"reviewpipe/internal/review"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocess_NormalizesText(t *testing.T) {
	p := NewPreprocessor(nil)

	rev := review.Review{
		ID:         "r1",
		ReviewerID: "u1",
		ReviewText: "This is an EXCELLENT product, I love it!!! 100%",
		Summary:    "Great quality",
		Overall:    5,
	}

	pr, err := p.Preprocess(context.Background(), rev)
	require.NoError(t, err)

	// Lowercased, punctuation and numbers stripped, stopwords and short
	// tokens dropped.
	assert.Equal(t, []string{"excellent", "product", "love"}, pr.Body.Tokens)
	assert.Equal(t, "excellent product love", pr.Body.Cleaned)
	assert.Equal(t, []string{"great", "quality"}, pr.Summary.Tokens)
	assert.Equal(t, rev, pr.Review)
}

func TestPreprocess_EmptyReview_InvalidInput(t *testing.T) {
	p := NewPreprocessor(nil)

	rev := review.Review{ID: "r1", ReviewerID: "u1", ReviewText: "   ", Summary: ""}

	_, err := p.Preprocess(context.Background(), rev)
	require.Error(t, err)
	assert.ErrorIs(t, err, review.ErrInvalidInput)
}

func TestPreprocess_SummaryOnly_IsValid(t *testing.T) {
	p := NewPreprocessor(nil)

	rev := review.Review{ID: "r1", ReviewerID: "u1", Summary: "wonderful purchase"}

	pr, err := p.Preprocess(context.Background(), rev)
	require.NoError(t, err)
	assert.Empty(t, pr.Body.Tokens)
	assert.Equal(t, []string{"wonderful", "purchase"}, pr.Summary.Tokens)
}

func TestPreprocess_Deterministic(t *testing.T) {
	p := NewPreprocessor(nil)
	rev := review.Review{ID: "r1", ReviewerID: "u1", ReviewText: "Good stuff, but the cable broke."}

	first, err := p.Preprocess(context.Background(), rev)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := p.Preprocess(context.Background(), rev)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestPreprocess_CancelledContext(t *testing.T) {
	p := NewPreprocessor(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Preprocess(ctx, review.Review{ID: "r1", ReviewText: "fine"})
	assert.ErrorIs(t, err, context.Canceled)
}
