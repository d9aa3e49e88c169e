package feed

import (
	"time"
)

// Item is one normalized entry from the source feed.
type Item struct {
	// Identity is the dedup key: the feed entry's GUID, falling back to its
	// link. Deterministic for a given entry across runs.
	Identity    string
	Title       string
	Link        string
	Description string
	Content     string
	PublishedAt time.Time // zero when the feed provides no resolvable timestamp
}

// Body returns the richest text available for the item.
func (i Item) Body() string {
	if i.Content != "" {
		return i.Content
	}
	return i.Description
}
