package stages

import (
	"context"
	"fmt"
	"sort"

	"reviewpipe/internal/ledger"
	"reviewpipe/internal/lexicon"
	"reviewpipe/internal/review"

	"github.com/rs/zerolog/log"
)

// lowRatingCeiling marks ratings at or below this value as negative enough
// to flag alongside profanity findings.
const lowRatingCeiling = 2.0

// ProfanityChecker scans a processed review for profane words and records
// the outcome in the ban ledger. This is the only stage with a side effect:
// exactly one ledger mutation per review, a violation on a match and a
// clean record otherwise.
type ProfanityChecker struct {
	profanity lexicon.Set
	ledger    ledger.Ledger
}

// NewProfanityChecker creates a checker over the given profanity set and
// ledger. A nil set falls back to the default lexicon.
func NewProfanityChecker(profanity lexicon.Set, l ledger.Ledger) *ProfanityChecker {
	if profanity == nil {
		profanity = lexicon.DefaultProfanity()
	}
	return &ProfanityChecker{profanity: profanity, ledger: l}
}

// Check scans both the normalized tokens and the raw text of each field.
// Raw text is scanned too because preprocessing drops short and stopword
// tokens that the profanity lexicon may still contain.
func (c *ProfanityChecker) Check(ctx context.Context, pr review.ProcessedReview) (review.ProfanityVerdict, error) {
	if err := ctx.Err(); err != nil {
		return review.ProfanityVerdict{}, err
	}

	bodyWords := c.scan(pr.Body)
	summaryWords := c.scan(pr.Summary)

	matched := mergeWords(bodyWords, summaryWords)
	verdict := review.ProfanityVerdict{
		HasProfanity:   len(matched) > 0,
		MatchedWords:   matched,
		BodyProfane:    len(bodyWords) > 0,
		SummaryProfane: len(summaryWords) > 0,
		LowRating:      pr.Review.Overall <= lowRatingCeiling,
	}

	userID := pr.Review.ReviewerID
	if verdict.HasProfanity {
		count, banned, err := c.ledger.RecordViolation(ctx, userID)
		if err != nil {
			return review.ProfanityVerdict{}, fmt.Errorf("failed to record violation for %s: %w", userID, err)
		}
		verdict.ViolationCount = count
		verdict.Banned = banned
		if banned {
			log.Warn().
				Str("reviewer_id", userID).
				Int("violation_count", count).
				Msg("profanity: user banned")
		}
	} else {
		count, banned, err := c.ledger.RecordClean(ctx, userID)
		if err != nil {
			return review.ProfanityVerdict{}, fmt.Errorf("failed to record clean review for %s: %w", userID, err)
		}
		verdict.ViolationCount = count
		verdict.Banned = banned
	}

	return verdict, nil
}

// scan collects profane words from a field's tokens and raw text.
func (c *ProfanityChecker) scan(field review.ProcessedField) []string {
	seen := make(map[string]struct{})
	for _, tok := range field.Tokens {
		if c.profanity.Contains(tok) {
			seen[tok] = struct{}{}
		}
	}
	for _, word := range lexicon.SplitWords(field.Original) {
		if c.profanity.Contains(word) {
			seen[word] = struct{}{}
		}
	}

	words := make([]string, 0, len(seen))
	for w := range seen {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

func mergeWords(groups ...[]string) []string {
	seen := make(map[string]struct{})
	var merged []string
	for _, group := range groups {
		for _, w := range group {
			if _, ok := seen[w]; !ok {
				seen[w] = struct{}{}
				merged = append(merged, w)
			}
		}
	}
	sort.Strings(merged)
	return merged
}
