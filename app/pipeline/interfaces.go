package pipeline

import (
	"context"

	"github.com/anoopengineer/rss-bluesky-bridge/app/feed"
)

// Ingestor returns the eligible feed items for a run, oldest first.
type Ingestor interface {
	Run(ctx context.Context) ([]feed.Item, error)
}

// Enricher returns the text to post for an item, already length-capped.
// Enrichment never fails an item.
type Enricher interface {
	Enrich(ctx context.Context, item feed.Item) string
}

// Publisher posts the item and returns the backend-assigned post ref.
type Publisher interface {
	Publish(ctx context.Context, item feed.Item, text string) (string, error)
}
