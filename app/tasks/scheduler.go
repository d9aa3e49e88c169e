package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/anoopengineer/rss-bluesky-bridge/app/cfg"
	"github.com/anoopengineer/rss-bluesky-bridge/app/database"
	"github.com/anoopengineer/rss-bluesky-bridge/app/pipeline"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	runner        PipelineRunner
	store         database.SeenItemStore
	holder        *RunHolder
	interval      time.Duration
	sweepInterval time.Duration
	workerCount   int
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	taskQueue     chan TaskInterface
}

func NewScheduler(runner PipelineRunner, store database.SeenItemStore) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		runner:        runner,
		store:         store,
		holder:        &RunHolder{},
		interval:      time.Duration(cfg.SchedulerInterval) * time.Second,
		sweepInterval: time.Duration(cfg.SweepInterval) * time.Second,
		workerCount:   cfg.WorkerCount,
		ctx:           ctx,
		cancel:        cancel,
		taskQueue:     make(chan TaskInterface, 10),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		sweepTicker := time.NewTicker(s.sweepInterval)
		defer sweepTicker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				if err := s.EnqueueTask(NewRunPipelineTask(s.runner, s.holder)); err != nil {
					slog.Warn("Failed to enqueue RunPipelineTask", "error", err)
				}
			case <-sweepTicker.C:
				if err := s.EnqueueTask(NewSweepExpiredTask(s.store)); err != nil {
					slog.Warn("Failed to enqueue SweepExpiredTask", "error", err)
				}
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// TriggerRun enqueues an on-demand pipeline run outside the tick cadence.
func (s *Scheduler) TriggerRun() error {
	return s.EnqueueTask(NewRunPipelineTask(s.runner, s.holder))
}

// LastRun returns the most recent pipeline run result, nil before the first
// run completes.
func (s *Scheduler) LastRun() *pipeline.RunResult {
	return s.holder.Get()
}

// enqueueStartupTasks runs a sweep before the first pipeline run so stale
// claims from a previous crash do not block the items they cover.
func (s *Scheduler) enqueueStartupTasks() {
	if err := s.EnqueueTask(NewSweepExpiredTask(s.store)); err != nil {
		slog.Warn("Failed to enqueue SweepExpiredTask", "error", err)
	}

	if err := s.EnqueueTask(NewRunPipelineTask(s.runner, s.holder)); err != nil {
		slog.Warn("Failed to enqueue RunPipelineTask", "error", err)
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			// Tracked in the WaitGroup so Stop cannot close the queue
			// under a pending re-enqueue
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				select {
				case <-time.After(retryDelay):
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				}
				if retryErr := s.EnqueueTask(task); retryErr != nil {
					slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
				}
			}()
		} else {
			slog.Error("Task failed, not retrying", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
