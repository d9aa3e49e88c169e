package tasks

import (
	"context"

	"github.com/anoopengineer/rss-bluesky-bridge/app/pipeline"
)

// TaskSchedulerInterface defines the interface for background task scheduling.
// Used by the main application to manage the pipeline and maintenance tasks.
// Example usage:
//
//	scheduler := NewScheduler(pipe, store)
//	scheduler.Start()
//	defer scheduler.Stop()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	TriggerRun() error
	LastRun() *pipeline.RunResult
}

// PipelineRunner is the slice of the pipeline the scheduler depends on.
type PipelineRunner interface {
	Run(ctx context.Context) *pipeline.RunResult
}
