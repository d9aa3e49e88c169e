package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/anoopengineer/rss-bluesky-bridge/app/pipeline"
)

// RunHolder keeps the most recent run result for the ops API. Access is
// guarded because the API serves reads while a worker writes.
type RunHolder struct {
	mu   sync.RWMutex
	last *pipeline.RunResult
}

func (h *RunHolder) Set(result *pipeline.RunResult) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = result
}

func (h *RunHolder) Get() *pipeline.RunResult {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last
}

type RunPipelineTask struct {
	Task
	pipeline PipelineRunner
	holder   *RunHolder
}

// NewRunPipelineTask builds a pipeline run task. MaxRetries is zero: a failed
// run is not retried, the next scheduler tick starts a fresh run and the
// dedup store makes the overlap safe.
func NewRunPipelineTask(runner PipelineRunner, holder *RunHolder) *RunPipelineTask {
	task := NewTask(TaskTypeRunPipeline)
	task.MaxRetries = 0

	return &RunPipelineTask{
		Task:     task,
		pipeline: runner,
		holder:   holder,
	}
}

func (t *RunPipelineTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result := t.pipeline.Run(ctx)
	t.holder.Set(result)

	published, skipped, failed := result.Counts()
	slog.Info("Task completed",
		"type", "RunPipeline",
		"duration", t.GetDuration(),
		"state", string(result.State),
		"published", published,
		"skipped", skipped,
		"failed", failed)

	if result.HasErrors() {
		errs := result.Errors()
		return fmt.Errorf("pipeline run failed with %d error(s), first: %w", len(errs), errs[0])
	}

	return nil
}
