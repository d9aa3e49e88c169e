package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anoopengineer/rss-bluesky-bridge/app/cfg"
	"github.com/anoopengineer/rss-bluesky-bridge/app/database"
	"github.com/anoopengineer/rss-bluesky-bridge/app/pipeline"
	"github.com/anoopengineer/rss-bluesky-bridge/app/tasks"
)

func NewHandler(store database.SeenItemStore, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		store:     store,
		scheduler: scheduler,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   cfg.GetVersion(),
	}

	if stats, err := h.store.GetStats(); err == nil {
		health["seen_items"] = stats.Total
	}

	if last := h.scheduler.LastRun(); last != nil {
		health["last_run_state"] = string(last.State)
		health["last_run_finished_at"] = last.FinishedAt.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.store.GetStats()
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"total":     stats.Total,
		"claimed":   stats.Claimed,
		"published": stats.Published,
	})
}

func (h *Handler) APIGetLastRun(c *gin.Context) {
	last := h.scheduler.LastRun()
	if last == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No run has completed yet"})
		return
	}

	c.JSON(http.StatusOK, renderRun(last))
}

func (h *Handler) APITriggerRun(c *gin.Context) {
	if err := h.scheduler.TriggerRun(); err != nil {
		slog.Error("Error enqueueing pipeline run", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to enqueue pipeline run",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Pipeline run enqueued",
	})
}

func (h *Handler) APITriggerSweep(c *gin.Context) {
	task := tasks.NewSweepExpiredTask(h.store)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing sweep task", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to enqueue sweep task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Sweep task enqueued",
		"task": gin.H{
			"id":   task.ID,
			"type": task.Type,
		},
	})
}

func renderRun(run *pipeline.RunResult) map[string]interface{} {
	published, skipped, failed := run.Counts()

	items := make([]map[string]interface{}, 0, len(run.Processed))
	for _, item := range run.Processed {
		entry := map[string]interface{}{
			"identity": item.Identity,
			"outcome":  string(item.Outcome),
		}
		if item.PostRef != "" {
			entry["post_ref"] = item.PostRef
		}
		if item.Err != nil {
			entry["error"] = item.Err.Error()
		}
		items = append(items, entry)
	}

	result := map[string]interface{}{
		"state":       string(run.State),
		"started_at":  run.StartedAt.Format(time.RFC3339),
		"finished_at": run.FinishedAt.Format(time.RFC3339),
		"published":   published,
		"skipped":     skipped,
		"failed":      failed,
		"items":       items,
	}

	if run.FetchErr != nil {
		result["fetch_error"] = run.FetchErr.Error()
	}

	return result
}
