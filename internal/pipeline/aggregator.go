package pipeline

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"reviewpipe/internal/ledger"
	"reviewpipe/internal/metrics"
	"reviewpipe/internal/review"

	"github.com/rs/zerolog/log"
)

// Aggregator collects per-review outcomes into running counters and builds
// the final report. Ingest and IngestFailure are safe to call from any
// worker: counters are atomic and the failure list is mutex-guarded.
type Aggregator struct {
	positive atomic.Int64
	neutral  atomic.Int64
	negative atomic.Int64
	profane  atomic.Int64
	clean    atomic.Int64

	mu       sync.Mutex
	failures []Failure
	seen     map[string]struct{}

	ledger ledger.Ledger
}

// NewAggregator creates an aggregator that copies the final banned-user
// set from the given ledger at finalize time.
func NewAggregator(l ledger.Ledger) *Aggregator {
	return &Aggregator{
		seen:   make(map[string]struct{}),
		ledger: l,
	}
}

// Ingest records a completed analysis result. A duplicate review
// identifier is dropped with a warning, keeping results at most once per
// review.
func (a *Aggregator) Ingest(result review.AnalysisResult) {
	if !a.markSeen(result.ReviewID) {
		log.Warn().Str("review_id", result.ReviewID).Msg("aggregator: duplicate result dropped")
		return
	}

	switch result.Sentiment.Sentiment {
	case review.SentimentPositive:
		a.positive.Add(1)
	case review.SentimentNegative:
		a.negative.Add(1)
	default:
		a.neutral.Add(1)
	}

	if result.Profanity.HasProfanity {
		a.profane.Add(1)
		metrics.ProfaneReviewsTotal.Inc()
	} else {
		a.clean.Add(1)
	}

	metrics.ReviewsProcessedTotal.WithLabelValues(string(result.Sentiment.Sentiment)).Inc()
}

// IngestFailure records a permanently failed review.
func (a *Aggregator) IngestFailure(reviewID string, stage review.Stage, reason string) {
	if !a.markSeen(reviewID) {
		log.Warn().Str("review_id", reviewID).Msg("aggregator: duplicate failure dropped")
		return
	}

	a.mu.Lock()
	a.failures = append(a.failures, Failure{
		ReviewID: reviewID,
		Stage:    string(stage),
		Reason:   reason,
	})
	a.mu.Unlock()

	metrics.ReviewFailuresTotal.WithLabelValues(string(stage)).Inc()
}

func (a *Aggregator) markSeen(reviewID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.seen[reviewID]; ok {
		return false
	}
	a.seen[reviewID] = struct{}{}
	return true
}

// Finalize builds the report from the accumulated totals and the ledger's
// banned-user set. It is idempotent: without intervening Ingest calls,
// repeated invocations return identical reports. Failure reasons and
// banned users are sorted for reproducibility.
func (a *Aggregator) Finalize(ctx context.Context) (*Report, error) {
	positive := a.positive.Load()
	neutral := a.neutral.Load()
	negative := a.negative.Load()
	profane := a.profane.Load()
	clean := a.clean.Load()
	processed := positive + neutral + negative

	a.mu.Lock()
	failures := make([]Failure, len(a.failures))
	copy(failures, a.failures)
	a.mu.Unlock()
	sort.Slice(failures, func(i, j int) bool { return failures[i].ReviewID < failures[j].ReviewID })

	banned, err := a.ledger.BannedUsers(ctx)
	if err != nil {
		return nil, err
	}
	if banned == nil {
		banned = []string{}
	}
	metrics.BannedUsersTotal.Set(float64(len(banned)))

	report := &Report{
		Sentiment: SentimentReport{
			PositiveReviews: positive,
			NeutralReviews:  neutral,
			NegativeReviews: negative,
		},
		Profanity: ProfanityReport{
			ReviewsWithProfanity:    profane,
			ReviewsWithoutProfanity: clean,
		},
		UserBanning: UserBanningReport{
			TotalBannedUsers: len(banned),
			BannedUserIDs:    banned,
		},
		Failures: FailureReport{
			Count:   len(failures),
			Reasons: failures,
		},
	}

	if processed > 0 {
		report.Sentiment.Distribution = SentimentDistribution{
			PositivePercentage: float64(positive) / float64(processed) * 100,
			NeutralPercentage:  float64(neutral) / float64(processed) * 100,
			NegativePercentage: float64(negative) / float64(processed) * 100,
		}
		report.Profanity.ProfanityRatePercentage = float64(profane) / float64(processed) * 100
	}

	return report, nil
}
