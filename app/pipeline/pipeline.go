package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/anoopengineer/rss-bluesky-bridge/app/database"
	"github.com/anoopengineer/rss-bluesky-bridge/app/feed"
)

// Pipeline runs the ingest → claim → enrich → publish → record sequence for
// one feed. Items are processed strictly sequentially: concurrency exists
// only across overlapping runs, and the dedup store's claim protocol is the
// sole synchronization between them.
type Pipeline struct {
	ingestor  Ingestor
	enricher  Enricher
	publisher Publisher
	store     database.SeenItemStore
	claimTTL  time.Duration
	recordTTL time.Duration
}

func New(ingestor Ingestor, enricher Enricher, publisher Publisher,
	store database.SeenItemStore, claimTTL, recordTTL time.Duration) *Pipeline {
	return &Pipeline{
		ingestor:  ingestor,
		enricher:  enricher,
		publisher: publisher,
		store:     store,
		claimTTL:  claimTTL,
		recordTTL: recordTTL,
	}
}

// Run executes one end-to-end pass. A fetch failure terminates the run
// immediately; any other failure is confined to its item, and the verdict is
// rendered only after every item has been attempted. Completed posts are
// never rolled back.
func (p *Pipeline) Run(ctx context.Context) *RunResult {
	result := &RunResult{
		State:     StateFetching,
		StartedAt: time.Now().UTC(),
	}

	items, err := p.ingestor.Run(ctx)
	if err != nil {
		result.State = StateFailed
		result.FetchErr = &FetchError{Err: err}
		result.FinishedAt = time.Now().UTC()
		slog.Error("Run aborted, feed fetch failed", "error", err)
		return result
	}

	slog.Info("Feed fetched", "eligible_items", len(items))

	result.State = StateProcessingItems
	for _, item := range items {
		select {
		case <-ctx.Done():
			result.Processed = append(result.Processed, ItemResult{
				Identity: item.Identity,
				Outcome:  OutcomeFailed,
				Err:      ctx.Err(),
			})
			continue
		default:
		}

		result.Processed = append(result.Processed, p.processItem(ctx, item))
	}

	result.State = StateAggregating
	published, skipped, failed := result.Counts()

	if result.HasErrors() {
		result.State = StateFailed
	} else {
		result.State = StateSucceeded
	}
	result.FinishedAt = time.Now().UTC()

	slog.Info("Run completed",
		"state", string(result.State),
		"duration", result.FinishedAt.Sub(result.StartedAt),
		"total", len(result.Processed),
		"published", published,
		"skipped", skipped,
		"failed", failed)

	return result
}

// processItem runs the per-item stage sequence. Claim conflicts are expected
// and reported as skipped; every other stage failure marks the item failed
// without touching the rest of the run.
func (p *Pipeline) processItem(ctx context.Context, item feed.Item) ItemResult {
	// Cheap pre-check to avoid claim traffic for clearly-seen items. The
	// atomic claim below remains the authority.
	seen, err := p.store.Exists(item.Identity)
	if err != nil {
		return ItemResult{Identity: item.Identity, Outcome: OutcomeFailed,
			Err: &RecordError{Identity: item.Identity, Err: err}}
	}
	if seen {
		slog.Debug("Item already seen, skipping", "identity", item.Identity)
		return ItemResult{Identity: item.Identity, Outcome: OutcomeSkipped}
	}

	claimed, err := p.store.TryClaim(item.Identity, time.Now().Add(p.claimTTL))
	if err != nil {
		return ItemResult{Identity: item.Identity, Outcome: OutcomeFailed,
			Err: &RecordError{Identity: item.Identity, Err: err}}
	}
	if !claimed {
		slog.Debug("Item claimed by a concurrent run, skipping", "identity", item.Identity)
		return ItemResult{Identity: item.Identity, Outcome: OutcomeSkipped}
	}

	text := p.enricher.Enrich(ctx, item)

	postRef, err := p.publisher.Publish(ctx, item, text)
	if err != nil {
		slog.Error("Failed to publish item", "identity", item.Identity, "error", err)
		return ItemResult{Identity: item.Identity, Outcome: OutcomeFailed, Err: err}
	}

	err = p.store.MarkPublished(item.Identity, postRef, time.Now().Add(p.recordTTL))
	if err != nil && !errors.Is(err, database.ErrAlreadyPublished) {
		recordErr := &RecordError{Identity: item.Identity, PostRef: postRef, Err: err}
		slog.Error("Post succeeded but record was not finalized, operator attention needed",
			"identity", item.Identity, "post_ref", postRef, "error", err)
		return ItemResult{Identity: item.Identity, Outcome: OutcomeFailed, PostRef: postRef, Err: recordErr}
	}

	return ItemResult{Identity: item.Identity, Outcome: OutcomePublished, PostRef: postRef}
}
