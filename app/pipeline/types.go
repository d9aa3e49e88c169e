package pipeline

import (
	"time"
)

// State names the orchestrator's position in a run. A run moves
// Fetching → ProcessingItems → Aggregating and terminates in Succeeded or
// Failed; fetch failure jumps straight to Failed.
type State string

const (
	StateFetching        State = "fetching"
	StateProcessingItems State = "processing_items"
	StateAggregating     State = "aggregating"
	StateSucceeded       State = "succeeded"
	StateFailed          State = "failed"
)

// Outcome tags one item's result within a run.
type Outcome string

const (
	OutcomePublished Outcome = "published"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// ItemResult is one item's outcome. Err is set only for failed outcomes.
type ItemResult struct {
	Identity string
	Outcome  Outcome
	PostRef  string
	Err      error
}

// RunResult is the ephemeral record of one orchestration run. It is not
// persisted; it exists only to render the run verdict and feed diagnostics.
type RunResult struct {
	State      State
	Processed  []ItemResult
	StartedAt  time.Time
	FinishedAt time.Time

	// FetchErr is set when the run died before processing any items.
	FetchErr error
}

// HasErrors reports whether any item failed or the fetch itself failed.
func (r *RunResult) HasErrors() bool {
	if r.FetchErr != nil {
		return true
	}
	for _, item := range r.Processed {
		if item.Outcome == OutcomeFailed {
			return true
		}
	}
	return false
}

// Errors returns the aggregated error list for diagnostics.
func (r *RunResult) Errors() []error {
	var errs []error
	if r.FetchErr != nil {
		errs = append(errs, r.FetchErr)
	}
	for _, item := range r.Processed {
		if item.Outcome == OutcomeFailed && item.Err != nil {
			errs = append(errs, item.Err)
		}
	}
	return errs
}

// Counts returns how many items landed in each outcome.
func (r *RunResult) Counts() (published, skipped, failed int) {
	for _, item := range r.Processed {
		switch item.Outcome {
		case OutcomePublished:
			published++
		case OutcomeSkipped:
			skipped++
		case OutcomeFailed:
			failed++
		}
	}
	return published, skipped, failed
}
