package pipeline

import (
	"context"
	"errors"
	"io"
	"time"

	"reviewpipe/internal/ledger"
	"reviewpipe/internal/metrics"
	"reviewpipe/internal/review"
	"reviewpipe/internal/tracing"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Preprocessor produces a normalized review from a raw one.
type Preprocessor interface {
	Preprocess(ctx context.Context, rev review.Review) (review.ProcessedReview, error)
}

// ProfanityChecker screens a processed review and records the outcome in
// the ban ledger.
type ProfanityChecker interface {
	Check(ctx context.Context, pr review.ProcessedReview) (review.ProfanityVerdict, error)
}

// SentimentAnalyzer classifies a processed review's sentiment.
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, pr review.ProcessedReview) (review.SentimentVerdict, error)
}

// Deps are the collaborators a dispatcher drives.
type Deps struct {
	Preprocess Preprocessor
	Profanity  ProfanityChecker
	Sentiment  SentimentAnalyzer
	Ledger     ledger.Ledger
}

// Dispatcher drives review records through the three-stage chain in
// contiguous batches with bounded concurrency. Batches are ordered: every
// review in batch K reaches a terminal state before batch K+1 starts.
// Reviews within a batch are unordered relative to each other.
type Dispatcher struct {
	cfg     Config
	deps    Deps
	agg     *Aggregator
	tracker *Tracker

	initialBackoff time.Duration
}

// NewDispatcher validates the configuration and creates a dispatcher.
// An invalid configuration is fatal and reported before any batch starts.
func NewDispatcher(cfg Config, deps Deps) (*Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Dispatcher{
		cfg:            cfg,
		deps:           deps,
		agg:            NewAggregator(deps.Ledger),
		tracker:        NewTracker(),
		initialBackoff: 100 * time.Millisecond,
	}, nil
}

// Run pulls reviews from the source and processes them batch by batch,
// returning the final report once the source is drained or the context is
// cancelled. Cancellation is cooperative: it is honored at the batch
// barrier, and the report then covers the batches that completed.
func (d *Dispatcher) Run(ctx context.Context, src Source) (*Report, error) {
	start := time.Now()

	if err := d.skipToStart(src); err != nil {
		return nil, err
	}

	total := d.sourceTotal(src)
	taken := 0
	cancelled := false

	for batchNum := 1; ; batchNum++ {
		if err := ctx.Err(); err != nil {
			log.Warn().Int("batch", batchNum).Msg("dispatcher: run cancelled at batch barrier")
			cancelled = true
			break
		}

		batch, err := d.readBatch(src, &taken)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}

		batchStart := time.Now()
		bctx, span := tracing.BatchSpan(ctx, batchNum, len(batch))
		d.runBatch(bctx, batch)
		span.End()
		metrics.BatchesCompletedTotal.Inc()

		progress := d.tracker.Progress(total-taken, d.cfg.MaxWorkers)
		evt := log.Info().
			Int("batch", batchNum).
			Int("batch_size", len(batch)).
			Int("completed", progress.Completed).
			Int("failed", progress.Failed).
			Dur("batch_elapsed", time.Since(batchStart)).
			Dur("avg_review_latency", progress.AvgLatency)
		if progress.Remaining > 0 {
			evt = evt.Dur("estimated_remaining", progress.Remaining)
		}
		evt.Msg("dispatcher: batch complete")
	}

	report, err := d.agg.Finalize(ctx)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("processed", report.Processed()).
		Int("failed", report.Failures.Count).
		Int("banned_users", report.UserBanning.TotalBannedUsers).
		Dur("elapsed", time.Since(start)).
		Msg("dispatcher: run finished")

	if cancelled {
		return report, ctx.Err()
	}
	return report, nil
}

// skipToStart discards StartIndex reviews from the head of the source.
func (d *Dispatcher) skipToStart(src Source) error {
	for i := 0; i < d.cfg.StartIndex; i++ {
		if _, err := src.Next(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
	return nil
}

// sourceTotal returns the number of reviews the run will take from the
// source, or zero when unknown.
func (d *Dispatcher) sourceTotal(src Source) int {
	total := 0
	if sized, ok := src.(Sized); ok {
		total = sized.Len() - d.cfg.StartIndex
		if total < 0 {
			total = 0
		}
	}
	if d.cfg.MaxReviews > 0 && (total == 0 || d.cfg.MaxReviews < total) {
		total = d.cfg.MaxReviews
	}
	return total
}

// readBatch pulls up to BatchSize reviews, honoring the MaxReviews cap.
func (d *Dispatcher) readBatch(src Source, taken *int) ([]review.Review, error) {
	var batch []review.Review
	for len(batch) < d.cfg.BatchSize {
		if d.cfg.MaxReviews > 0 && *taken >= d.cfg.MaxReviews {
			break
		}
		rev, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		batch = append(batch, rev)
		*taken++
	}
	return batch, nil
}

// runBatch schedules up to MaxWorkers per-review pipelines and waits for
// all of them to reach a terminal state. A review's failure never aborts
// its siblings; the worker function always returns nil and outcomes flow
// through the aggregator.
func (d *Dispatcher) runBatch(ctx context.Context, batch []review.Review) {
	g := new(errgroup.Group)
	g.SetLimit(d.cfg.MaxWorkers)

	for _, rev := range batch {
		rev := rev
		g.Go(func() error {
			d.processReview(ctx, rev)
			return nil
		})
	}

	// Batch barrier: no error surfaces here by construction.
	_ = g.Wait()
}

// reviewState carries the per-review pipeline state across retry attempts.
// Tracking the last completed stage makes retries resume instead of
// restart, so the profanity stage's ledger mutation commits exactly once
// no matter how many attempts the review consumes.
type reviewState struct {
	processed     review.ProcessedReview
	profanity     review.ProfanityVerdict
	sentiment     review.SentimentVerdict
	preprocessed  bool
	profanityDone bool
	sentimentDone bool
}

// processReview runs one review to a terminal state: Completed into the
// aggregator, or Failed with its stage and reason recorded.
func (d *Dispatcher) processReview(ctx context.Context, rev review.Review) {
	start := time.Now()
	st := &reviewState{}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = d.initialBackoff

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		d.tracker.RecordAttempt(rev.ID)
		return struct{}{}, d.advance(ctx, rev, st)
	},
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(uint(d.cfg.RetryLimit)+1),
	)

	elapsed := time.Since(start)
	metrics.ReviewDuration.Observe(elapsed.Seconds())

	if err != nil {
		stage := failureStage(err)
		log.Debug().
			Str("review_id", rev.ID).
			Str("stage", string(stage)).
			Err(err).
			Msg("dispatcher: review failed permanently")
		d.agg.IngestFailure(rev.ID, stage, err.Error())
		d.tracker.RecordFailure(rev.ID, elapsed)
		return
	}

	d.agg.Ingest(review.AnalysisResult{
		ReviewID:   rev.ID,
		ReviewerID: rev.ReviewerID,
		Profanity:  st.profanity,
		Sentiment:  st.sentiment,
	})
	d.tracker.RecordSuccess(rev.ID, elapsed)
}

// advance moves the review's pipeline forward from its last completed
// stage. Stages already done on a previous attempt are skipped, which is
// what keeps the ledger mutation from double-counting under retry.
func (d *Dispatcher) advance(ctx context.Context, rev review.Review, st *reviewState) error {
	if !st.preprocessed {
		pr, err := runStage(ctx, d.cfg.StageTimeout, review.StagePreprocess, rev.ID, func(sctx context.Context) (review.ProcessedReview, error) {
			return d.deps.Preprocess.Preprocess(sctx, rev)
		})
		if err != nil {
			return d.stageFailure(review.StagePreprocess, err)
		}
		st.processed = pr
		st.preprocessed = true
	}

	if !st.profanityDone {
		verdict, err := runStage(ctx, d.cfg.StageTimeout, review.StageProfanity, rev.ID, func(sctx context.Context) (review.ProfanityVerdict, error) {
			return d.deps.Profanity.Check(sctx, st.processed)
		})
		if err != nil {
			return d.stageFailure(review.StageProfanity, err)
		}
		st.profanity = verdict
		st.profanityDone = true
	}

	if !st.sentimentDone {
		verdict, err := runStage(ctx, d.cfg.StageTimeout, review.StageSentiment, rev.ID, func(sctx context.Context) (review.SentimentVerdict, error) {
			return d.deps.Sentiment.Analyze(sctx, st.processed)
		})
		if err != nil {
			return d.stageFailure(review.StageSentiment, err)
		}
		st.sentiment = verdict
		st.sentimentDone = true
	}

	return nil
}

// stageFailure classifies a stage error: invalid input is permanent and
// stops the retry loop, everything else is surfaced as transient.
func (d *Dispatcher) stageFailure(stage review.Stage, err error) error {
	serr := &StageError{Stage: stage, Err: err}
	if isPermanent(err) {
		return backoff.Permanent(serr)
	}
	metrics.StageRetriesTotal.WithLabelValues(string(stage)).Inc()
	return serr
}

// runStage executes a single stage call under the per-stage timeout, with
// a span covering the attempt.
func runStage[T any](ctx context.Context, timeout time.Duration, stage review.Stage, reviewID string, fn func(context.Context) (T, error)) (T, error) {
	sctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sctx, span := tracing.StageSpan(sctx, string(stage), reviewID)
	defer span.End()

	out, err := fn(sctx)
	tracing.EndWithError(span, err)
	return out, err
}
