// Package stages implements the three ordered transformations applied to
// every review: text preprocessing, profanity checking against the ban
// ledger, and sentiment classification. Each stage takes its predecessor's
// output, so the dispatcher can chain them directly without any event bus
// between stages.
package stages

import (
	"context"
	"fmt"
	"strings"

	"reviewpipe/internal/lexicon"
	"reviewpipe/internal/review"
)

// Preprocessor normalizes the body and summary of a review into token
// sequences and cleaned text. Deterministic and side-effect free.
type Preprocessor struct {
	tokenizer *lexicon.Tokenizer
}

// NewPreprocessor creates a preprocessor using the given tokenizer. A nil
// tokenizer falls back to the default stopword set.
func NewPreprocessor(tokenizer *lexicon.Tokenizer) *Preprocessor {
	if tokenizer == nil {
		tokenizer = lexicon.NewTokenizer(lexicon.DefaultStopwords())
	}
	return &Preprocessor{tokenizer: tokenizer}
}

// Preprocess lowercases, tokenizes, and strips stopwords and punctuation
// from both text fields. A review with neither body nor summary text is
// rejected with review.ErrInvalidInput and never retried.
func (p *Preprocessor) Preprocess(ctx context.Context, rev review.Review) (review.ProcessedReview, error) {
	if err := ctx.Err(); err != nil {
		return review.ProcessedReview{}, err
	}

	if strings.TrimSpace(rev.ReviewText) == "" && strings.TrimSpace(rev.Summary) == "" {
		return review.ProcessedReview{}, fmt.Errorf("review %s has no text to analyze: %w", rev.ID, review.ErrInvalidInput)
	}

	return review.ProcessedReview{
		Review:  rev,
		Body:    p.processField(rev.ReviewText),
		Summary: p.processField(rev.Summary),
	}, nil
}

func (p *Preprocessor) processField(text string) review.ProcessedField {
	tokens := p.tokenizer.Tokenize(text)
	return review.ProcessedField{
		Original: text,
		Tokens:   tokens,
		Cleaned:  lexicon.Clean(tokens),
	}
}
