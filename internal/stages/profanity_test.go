package stages

import (
	"context"
	"testing"

	"reviewpipe/internal/ledger"
	"reviewpipe/internal/review"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func processedReview(t *testing.T, rev review.Review) review.ProcessedReview {
	t.Helper()
	pr, err := NewPreprocessor(nil).Preprocess(context.Background(), rev)
	require.NoError(t, err)
	return pr
}

func TestProfanityCheck_CleanReview(t *testing.T) {
	ctx := context.Background()
	l := ledger.NewMemory(3)
	c := NewProfanityChecker(nil, l)

	pr := processedReview(t, review.Review{
		ID: "r1", ReviewerID: "u1",
		ReviewText: "Lovely product, works perfectly",
		Summary:    "Very satisfied",
		Overall:    5,
	})

	verdict, err := c.Check(ctx, pr)
	require.NoError(t, err)
	assert.False(t, verdict.HasProfanity)
	assert.Empty(t, verdict.MatchedWords)
	assert.Equal(t, 0, verdict.ViolationCount)
	assert.False(t, verdict.Banned)

	count, err := l.ViolationCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestProfanityCheck_ProfaneReview(t *testing.T) {
	ctx := context.Background()
	l := ledger.NewMemory(3)
	c := NewProfanityChecker(nil, l)

	pr := processedReview(t, review.Review{
		ID: "r1", ReviewerID: "u1",
		ReviewText: "This is absolute garbage, total crap",
		Summary:    "Terrible",
		Overall:    1,
	})

	verdict, err := c.Check(ctx, pr)
	require.NoError(t, err)
	assert.True(t, verdict.HasProfanity)
	assert.Equal(t, []string{"crap", "garbage", "terrible"}, verdict.MatchedWords)
	assert.True(t, verdict.BodyProfane)
	assert.True(t, verdict.SummaryProfane)
	assert.True(t, verdict.LowRating)
	assert.Equal(t, 1, verdict.ViolationCount)
	assert.False(t, verdict.Banned)
}

func TestProfanityCheck_PunctuationSeparatedWords(t *testing.T) {
	ctx := context.Background()
	l := ledger.NewMemory(3)
	c := NewProfanityChecker(nil, l)

	pr := processedReview(t, review.Review{
		ID: "r1", ReviewerID: "u1",
		ReviewText: "what.a.piece.of.crap",
		Overall:    1,
	})

	verdict, err := c.Check(ctx, pr)
	require.NoError(t, err)
	assert.True(t, verdict.HasProfanity)
	assert.Contains(t, verdict.MatchedWords, "crap")
}

func TestProfanityCheck_FourStrikesBansUser(t *testing.T) {
	ctx := context.Background()
	l := ledger.NewMemory(3)
	c := NewProfanityChecker(nil, l)

	var verdict review.ProfanityVerdict
	for i := 1; i <= 4; i++ {
		pr := processedReview(t, review.Review{
			ID: "r" + string(rune('0'+i)), ReviewerID: "U1",
			ReviewText: "utter bullshit",
			Overall:    float64(i), // rating irrelevant to banning
		})
		var err error
		verdict, err = c.Check(ctx, pr)
		require.NoError(t, err)
		assert.Equal(t, i, verdict.ViolationCount)
	}

	assert.True(t, verdict.Banned)

	banned, err := l.IsBanned(ctx, "U1")
	require.NoError(t, err)
	assert.True(t, banned)

	count, err := l.ViolationCount(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestProfanityCheck_CleanReviewReportsExistingBan(t *testing.T) {
	ctx := context.Background()
	l := ledger.NewMemory(1)
	c := NewProfanityChecker(nil, l)

	for i := 0; i < 2; i++ {
		_, _, err := l.RecordViolation(ctx, "u1")
		require.NoError(t, err)
	}

	pr := processedReview(t, review.Review{
		ID: "r9", ReviewerID: "u1",
		ReviewText: "Actually quite pleasant this time",
		Overall:    4,
	})

	verdict, err := c.Check(ctx, pr)
	require.NoError(t, err)
	assert.False(t, verdict.HasProfanity)
	assert.Equal(t, 2, verdict.ViolationCount)
	assert.True(t, verdict.Banned)
}
