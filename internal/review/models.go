// Package review defines the data model for the review analysis pipeline:
// the immutable input record, the per-stage outputs, and the terminal
// per-review result consumed by the aggregator.
package review

import "errors"

// ErrInvalidInput marks a review that cannot be processed at all, such as
// one with neither body text nor summary. It is never retried.
var ErrInvalidInput = errors.New("invalid review input")

// Stage identifies one of the three ordered pipeline stages.
type Stage string

const (
	StagePreprocess Stage = "preprocess"
	StageProfanity  Stage = "profanity_check"
	StageSentiment  Stage = "sentiment_analysis"

	// StagePipeline attributes failures that happen outside any stage
	// call, such as cancellation between attempts.
	StagePipeline Stage = "pipeline"
)

// Sentiment is the categorical outcome of sentiment classification.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Review is the immutable input record. It is created by ingestion and
// never mutated; all three stages read from it.
type Review struct {
	ID         string  `json:"id"`
	ReviewerID string  `json:"reviewerId"`
	ReviewText string  `json:"reviewText"`
	Summary    string  `json:"summary"`
	Overall    float64 `json:"overall"`
}

// ProcessedField holds the preprocessing output for a single text field.
type ProcessedField struct {
	Original string   `json:"original"`
	Tokens   []string `json:"tokens"`
	Cleaned  string   `json:"cleaned"`
}

// ProcessedReview is the preprocess stage output: the original review plus
// normalized token sequences and cleaned text for body and summary.
// Immutable once produced.
type ProcessedReview struct {
	Review  Review         `json:"review"`
	Body    ProcessedField `json:"body"`
	Summary ProcessedField `json:"summary"`
}

// ProfanityVerdict is the profanity check output. ViolationCount and Banned
// reflect the author's ledger state at the time of evaluation, after the
// increment for this review (if any) committed.
type ProfanityVerdict struct {
	HasProfanity   bool     `json:"has_profanity"`
	MatchedWords   []string `json:"matched_words,omitempty"`
	BodyProfane    bool     `json:"body_profane"`
	SummaryProfane bool     `json:"summary_profane"`
	LowRating      bool     `json:"low_rating"`
	ViolationCount int      `json:"violation_count"`
	Banned         bool     `json:"banned"`
}

// SentimentVerdict is the sentiment stage output. Score is the blended
// numeric signal that produced the label; Confidence reflects how much of
// the text carried sentiment. RatingOnly is set when the text contained no
// sentiment words and the rating alone decided the label.
type SentimentVerdict struct {
	Sentiment  Sentiment `json:"sentiment"`
	Score      float64   `json:"score"`
	Confidence float64   `json:"confidence"`
	RatingOnly bool      `json:"rating_only"`
}

// AnalysisResult is the terminal per-review record. It is produced at most
// once per review identifier and owned by the aggregator after creation.
type AnalysisResult struct {
	ReviewID   string           `json:"review_id"`
	ReviewerID string           `json:"reviewer_id"`
	Profanity  ProfanityVerdict `json:"profanity"`
	Sentiment  SentimentVerdict `json:"sentiment"`
}
