package pipeline

import (
	"errors"
	"fmt"

	"reviewpipe/internal/review"
)

// ErrConfig marks an invalid dispatcher configuration. It is the only
// error class that aborts the whole run, and it does so before any batch
// starts.
var ErrConfig = errors.New("invalid pipeline configuration")

// StageError wraps a failure with the stage it occurred in, so retries and
// the failure report can attribute it.
type StageError struct {
	Stage review.Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// isPermanent reports whether a stage failure must not be retried.
// Malformed input stays malformed; everything else (timeouts, dependency
// errors) is treated as transient.
func isPermanent(err error) bool {
	return errors.Is(err, review.ErrInvalidInput)
}

// failureStage extracts the stage a pipeline error occurred in. Errors
// raised outside any stage call, such as cancellation during the backoff
// wait, are attributed to the pipeline itself rather than a stage.
func failureStage(err error) review.Stage {
	var serr *StageError
	if errors.As(err, &serr) {
		return serr.Stage
	}
	return review.StagePipeline
}
