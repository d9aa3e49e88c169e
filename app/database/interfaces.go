package database

import (
	"time"
)

// SeenItemStore is the dedup store contract consumed by the pipeline, the
// sweep task, and the API handlers. TryClaim is the sole admission-control
// mechanism between overlapping runs; everything else is bookkeeping around it.
type SeenItemStore interface {
	// TryClaim atomically creates a claimed record for the identity if and
	// only if none exists. Returns true when this caller won the claim.
	TryClaim(identity string, expiresAt time.Time) (bool, error)

	// MarkPublished transitions an existing claimed record to published.
	// Returns ErrRecordNotFound if no record exists for the identity and
	// ErrAlreadyPublished if the record is already published.
	MarkPublished(identity, postRef string, expiresAt time.Time) error

	// Exists reports whether any record (any status) exists for the identity.
	// Callers must not use this in place of TryClaim's atomicity.
	Exists(identity string) (bool, error)

	// GetRecord returns the record for the identity, or nil if none exists.
	GetRecord(identity string) (*SeenItem, error)

	// DeleteExpired removes records whose expiry horizon has passed and
	// returns the number of rows deleted.
	DeleteExpired(now time.Time) (int64, error)

	// GetStats returns record counts by status.
	GetStats() (Stats, error)
}
