package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anoopengineer/rss-bluesky-bridge/app/database"
)

// SweepExpiredTask deletes dedup records past their expiry horizon. Expired
// claims become eligible for a retry on the next run; expired published
// records free the table from items that have aged out of the feed window.
type SweepExpiredTask struct {
	Task
	store database.SeenItemStore
}

func NewSweepExpiredTask(store database.SeenItemStore) *SweepExpiredTask {
	return &SweepExpiredTask{
		Task:  NewTask(TaskTypeSweepExpired),
		store: store,
	}
}

func (t *SweepExpiredTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	deleted, err := t.store.DeleteExpired(time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to sweep expired records: %w", err)
	}

	slog.Info("Task completed",
		"type", "SweepExpired",
		"duration", t.GetDuration(),
		"deleted", deleted)

	return nil
}
