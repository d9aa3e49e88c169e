package database

import (
	"time"
)

// Status is the lifecycle state of a processing record. A record is created
// as claimed and may only move forward to published; it is never downgraded.
type Status string

const (
	StatusClaimed   Status = "claimed"
	StatusPublished Status = "published"
	StatusSkipped   Status = "skipped"
)

// SeenItem is the persisted processing record for one feed item identity.
type SeenItem struct {
	Identity    string
	Status      Status
	ClaimedAt   time.Time
	PublishedAt *time.Time
	PostRef     string // Backend-assigned handle of the published post (AT-URI)
	ExpiresAt   time.Time
}

// Stats summarizes the seen_items table for the stats endpoint.
type Stats struct {
	Total     int
	Claimed   int
	Published int
}
