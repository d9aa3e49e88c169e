package tasks

import (
	"testing"
	"time"
)

func TestNewTaskDefaults(t *testing.T) {
	task := NewTask(TaskTypeSweepExpired)

	if task.Type != TaskTypeSweepExpired {
		t.Errorf("Expected type %q, got %q", TaskTypeSweepExpired, task.Type)
	}
	if task.ID == "" {
		t.Error("Expected a generated task ID")
	}
	if task.RetryCount != 0 {
		t.Errorf("Expected zero retry count, got %d", task.RetryCount)
	}
	if task.MaxRetries != DefaultMaxRetries {
		t.Errorf("Expected max retries %d, got %d", DefaultMaxRetries, task.MaxRetries)
	}
}

func TestTaskRetryAccounting(t *testing.T) {
	task := NewTask(TaskTypeSweepExpired)

	for i := 0; i < DefaultMaxRetries; i++ {
		if !task.CanRetry() {
			t.Fatalf("Expected CanRetry at retry count %d", task.RetryCount)
		}
		task.IncrementRetryCount()
	}

	if task.CanRetry() {
		t.Errorf("Expected retries exhausted at count %d", task.RetryCount)
	}
}

func TestTaskDuration(t *testing.T) {
	task := NewTask(TaskTypeRunPipeline)

	if task.GetDuration() != 0 {
		t.Error("Expected zero duration before Start")
	}

	task.Start()
	time.Sleep(10 * time.Millisecond)

	if task.GetDuration() <= 0 {
		t.Error("Expected positive duration after Start")
	}
}
