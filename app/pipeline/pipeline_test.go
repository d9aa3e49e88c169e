package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/anoopengineer/rss-bluesky-bridge/app/database"
	"github.com/anoopengineer/rss-bluesky-bridge/app/feed"
)

type fakeIngestor struct {
	items []feed.Item
	err   error
}

func (f *fakeIngestor) Run(ctx context.Context) ([]feed.Item, error) {
	return f.items, f.err
}

type fakeEnricher struct{}

func (f *fakeEnricher) Enrich(ctx context.Context, item feed.Item) string {
	return "enriched: " + item.Title
}

type fakePublisher struct {
	failures map[string]error
	posted   []string
}

func (f *fakePublisher) Publish(ctx context.Context, item feed.Item, text string) (string, error) {
	if err, ok := f.failures[item.Identity]; ok {
		return "", err
	}
	f.posted = append(f.posted, item.Identity)
	return "at://post/" + item.Identity, nil
}

type memStore struct {
	records       map[string]*database.SeenItem
	claimErr      error
	publishErr    error
	publishErrFor string
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]*database.SeenItem)}
}

func (s *memStore) TryClaim(identity string, expiresAt time.Time) (bool, error) {
	if s.claimErr != nil {
		return false, s.claimErr
	}
	if _, ok := s.records[identity]; ok {
		return false, nil
	}
	s.records[identity] = &database.SeenItem{
		Identity:  identity,
		Status:    database.StatusClaimed,
		ClaimedAt: time.Now(),
		ExpiresAt: expiresAt,
	}
	return true, nil
}

func (s *memStore) MarkPublished(identity, postRef string, expiresAt time.Time) error {
	if s.publishErr != nil && (s.publishErrFor == "" || s.publishErrFor == identity) {
		return s.publishErr
	}
	record, ok := s.records[identity]
	if !ok {
		return database.ErrRecordNotFound
	}
	if record.Status == database.StatusPublished {
		return database.ErrAlreadyPublished
	}
	now := time.Now()
	record.Status = database.StatusPublished
	record.PublishedAt = &now
	record.PostRef = postRef
	record.ExpiresAt = expiresAt
	return nil
}

func (s *memStore) Exists(identity string) (bool, error) {
	_, ok := s.records[identity]
	return ok, nil
}

func (s *memStore) GetRecord(identity string) (*database.SeenItem, error) {
	return s.records[identity], nil
}

func (s *memStore) DeleteExpired(now time.Time) (int64, error) {
	return 0, nil
}

func (s *memStore) GetStats() (database.Stats, error) {
	return database.Stats{Total: len(s.records)}, nil
}

func newTestPipeline(ingestor Ingestor, publisher Publisher, store database.SeenItemStore) *Pipeline {
	return New(ingestor, &fakeEnricher{}, publisher, store, 24*time.Hour, 720*time.Hour)
}

func TestRunFetchFailureIsFatal(t *testing.T) {
	ingestor := &fakeIngestor{err: fmt.Errorf("connection refused")}
	publisher := &fakePublisher{}
	p := newTestPipeline(ingestor, publisher, newMemStore())

	result := p.Run(context.Background())

	if result.State != StateFailed {
		t.Errorf("Expected failed state, got %q", result.State)
	}
	var fetchErr *FetchError
	if !errors.As(result.FetchErr, &fetchErr) {
		t.Errorf("Expected FetchError, got %v", result.FetchErr)
	}
	if len(result.Processed) != 0 {
		t.Errorf("Expected no processed items on fetch failure, got %d", len(result.Processed))
	}
	if !result.HasErrors() {
		t.Error("Expected HasErrors to be true on fetch failure")
	}
}

func TestRunPublishesNewItems(t *testing.T) {
	ingestor := &fakeIngestor{items: []feed.Item{
		{Identity: "item-1", Title: "First"},
		{Identity: "item-2", Title: "Second"},
	}}
	publisher := &fakePublisher{}
	store := newMemStore()
	p := newTestPipeline(ingestor, publisher, store)

	result := p.Run(context.Background())

	if result.State != StateSucceeded {
		t.Errorf("Expected succeeded state, got %q", result.State)
	}
	if result.HasErrors() {
		t.Error("Expected no errors")
	}
	if len(result.Processed) != 2 {
		t.Fatalf("Expected 2 processed items, got %d", len(result.Processed))
	}

	// Outcomes preserve feed order
	for i, identity := range []string{"item-1", "item-2"} {
		if result.Processed[i].Identity != identity {
			t.Errorf("Expected item %d to be %q, got %q", i, identity, result.Processed[i].Identity)
		}
		if result.Processed[i].Outcome != OutcomePublished {
			t.Errorf("Expected %q published, got %q", identity, result.Processed[i].Outcome)
		}
		if result.Processed[i].PostRef == "" {
			t.Errorf("Expected post ref for %q", identity)
		}

		record, _ := store.GetRecord(identity)
		if record == nil || record.Status != database.StatusPublished {
			t.Errorf("Expected published record for %q, got %+v", identity, record)
		}
	}
}

func TestRunSkipsSeenItems(t *testing.T) {
	store := newMemStore()
	if _, err := store.TryClaim("item-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := store.MarkPublished("item-1", "at://old-post", time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	ingestor := &fakeIngestor{items: []feed.Item{{Identity: "item-1", Title: "Seen"}}}
	publisher := &fakePublisher{}
	p := newTestPipeline(ingestor, publisher, store)

	result := p.Run(context.Background())

	if result.State != StateSucceeded {
		t.Errorf("Expected succeeded state, got %q", result.State)
	}
	if result.Processed[0].Outcome != OutcomeSkipped {
		t.Errorf("Expected skipped outcome, got %q", result.Processed[0].Outcome)
	}
	if len(publisher.posted) != 0 {
		t.Errorf("Expected no backend calls for seen item, got %v", publisher.posted)
	}
}

func TestRunClaimConflictIsSkippedNotFailed(t *testing.T) {
	store := newMemStore()
	// A concurrent run claimed the item after our Exists pre-check would
	// have been built; simulate by pre-claiming without publishing.
	if _, err := store.TryClaim("item-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	ingestor := &fakeIngestor{items: []feed.Item{{Identity: "item-1"}}}
	publisher := &fakePublisher{}
	p := newTestPipeline(ingestor, publisher, store)

	result := p.Run(context.Background())

	if result.Processed[0].Outcome != OutcomeSkipped {
		t.Errorf("Expected skipped outcome for claim conflict, got %q", result.Processed[0].Outcome)
	}
	if result.HasErrors() {
		t.Error("Claim conflict must not count as an error")
	}
}

func TestRunPartialFailure(t *testing.T) {
	// Item A fails to publish; item B, processed after A, must still be
	// posted and recorded even though the run's verdict is failed.
	ingestor := &fakeIngestor{items: []feed.Item{
		{Identity: "item-a", Title: "A"},
		{Identity: "item-b", Title: "B"},
	}}
	publisher := &fakePublisher{failures: map[string]error{
		"item-a": fmt.Errorf("rate limited"),
	}}
	store := newMemStore()
	p := newTestPipeline(ingestor, publisher, store)

	result := p.Run(context.Background())

	if result.State != StateFailed {
		t.Errorf("Expected failed verdict, got %q", result.State)
	}
	if result.Processed[0].Outcome != OutcomeFailed {
		t.Errorf("Expected item-a failed, got %q", result.Processed[0].Outcome)
	}
	if result.Processed[1].Outcome != OutcomePublished {
		t.Errorf("Expected item-b published despite item-a failure, got %q", result.Processed[1].Outcome)
	}

	record, _ := store.GetRecord("item-b")
	if record == nil || record.Status != database.StatusPublished {
		t.Errorf("Expected item-b record to persist, got %+v", record)
	}

	if len(result.Errors()) != 1 {
		t.Errorf("Expected 1 aggregated error, got %d", len(result.Errors()))
	}
}

func TestRunRecordFailureAfterPublish(t *testing.T) {
	ingestor := &fakeIngestor{items: []feed.Item{{Identity: "item-1", Title: "One"}}}
	publisher := &fakePublisher{}
	store := newMemStore()
	store.publishErr = fmt.Errorf("disk full")
	p := newTestPipeline(ingestor, publisher, store)

	result := p.Run(context.Background())

	if result.State != StateFailed {
		t.Errorf("Expected failed verdict, got %q", result.State)
	}

	item := result.Processed[0]
	if item.Outcome != OutcomeFailed {
		t.Errorf("Expected failed outcome, got %q", item.Outcome)
	}
	if item.PostRef == "" {
		t.Error("Expected post ref to be carried on record failure for diagnostics")
	}

	var recordErr *RecordError
	if !errors.As(item.Err, &recordErr) {
		t.Fatalf("Expected RecordError, got %v", item.Err)
	}
	if recordErr.PostRef != item.PostRef {
		t.Errorf("Expected RecordError to carry the post ref, got %q", recordErr.PostRef)
	}
}

func TestRunMarkPublishedIdempotentIsNotAnError(t *testing.T) {
	ingestor := &fakeIngestor{items: []feed.Item{{Identity: "item-1"}}}
	publisher := &fakePublisher{}
	store := newMemStore()
	store.publishErr = database.ErrAlreadyPublished
	p := newTestPipeline(ingestor, publisher, store)

	result := p.Run(context.Background())

	if result.Processed[0].Outcome != OutcomePublished {
		t.Errorf("Expected already-published record to count as published, got %q",
			result.Processed[0].Outcome)
	}
	if result.State != StateSucceeded {
		t.Errorf("Expected succeeded verdict, got %q", result.State)
	}
}

func TestRunEmptyFeedSucceeds(t *testing.T) {
	p := newTestPipeline(&fakeIngestor{}, &fakePublisher{}, newMemStore())

	result := p.Run(context.Background())

	if result.State != StateSucceeded {
		t.Errorf("Expected succeeded state for empty feed, got %q", result.State)
	}
	if len(result.Processed) != 0 {
		t.Errorf("Expected no outcomes, got %d", len(result.Processed))
	}
}
