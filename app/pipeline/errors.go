package pipeline

import (
	"fmt"
)

// FetchError is fatal for the run: no items can be safely processed when the
// feed is unreachable or malformed. Retry is the scheduler's job, not ours.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch feed: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// RecordError means the dedup record could not be finalized. When PostRef is
// set the post itself succeeded, which is the one genuinely dangerous case:
// a future run may re-publish this identity if the record never lands.
type RecordError struct {
	Identity string
	PostRef  string
	Err      error
}

func (e *RecordError) Error() string {
	if e.PostRef != "" {
		return fmt.Sprintf("post %s succeeded but record for %q was not finalized: %v", e.PostRef, e.Identity, e.Err)
	}
	return fmt.Sprintf("failed to finalize record for %q: %v", e.Identity, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
