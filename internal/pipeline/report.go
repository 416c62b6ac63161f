package pipeline

// Report is the aggregate outcome of a full run. Its totals always equal
// the number of analysis results received plus recorded failures.
type Report struct {
	Sentiment   SentimentReport   `json:"sentiment_analysis"`
	Profanity   ProfanityReport   `json:"profanity_analysis"`
	UserBanning UserBanningReport `json:"user_banning"`
	Failures    FailureReport     `json:"failures"`
}

// SentimentReport holds per-sentiment totals and their distribution over
// successfully processed reviews.
type SentimentReport struct {
	PositiveReviews int64                 `json:"positive_reviews"`
	NeutralReviews  int64                 `json:"neutral_reviews"`
	NegativeReviews int64                 `json:"negative_reviews"`
	Distribution    SentimentDistribution `json:"sentiment_distribution"`
}

// SentimentDistribution expresses the sentiment totals as percentages of
// processed reviews.
type SentimentDistribution struct {
	PositivePercentage float64 `json:"positive_percentage"`
	NeutralPercentage  float64 `json:"neutral_percentage"`
	NegativePercentage float64 `json:"negative_percentage"`
}

// ProfanityReport holds profanity totals and the profanity rate over
// processed reviews.
type ProfanityReport struct {
	ReviewsWithProfanity    int64   `json:"reviews_with_profanity"`
	ReviewsWithoutProfanity int64   `json:"reviews_without_profanity"`
	ProfanityRatePercentage float64 `json:"profanity_rate_percentage"`
}

// UserBanningReport lists the users banned by the end of the run. IDs are
// sorted so reports are reproducible.
type UserBanningReport struct {
	TotalBannedUsers int      `json:"total_banned_users"`
	BannedUserIDs    []string `json:"banned_user_ids"`
}

// FailureReport lists every review that ended in permanent failure.
type FailureReport struct {
	Count   int       `json:"count"`
	Reasons []Failure `json:"reasons"`
}

// Failure records a single permanently failed review.
type Failure struct {
	ReviewID string `json:"reviewId"`
	Stage    string `json:"stage"`
	Reason   string `json:"reason"`
}

// Processed returns the number of successfully analyzed reviews.
func (r *Report) Processed() int64 {
	return r.Sentiment.PositiveReviews + r.Sentiment.NeutralReviews + r.Sentiment.NegativeReviews
}

// Total returns processed plus failed reviews.
func (r *Report) Total() int64 {
	return r.Processed() + int64(r.Failures.Count)
}
