package api

import (
	"github.com/anoopengineer/rss-bluesky-bridge/app/database"
	"github.com/anoopengineer/rss-bluesky-bridge/app/tasks"
)

type Handler struct {
	store     database.SeenItemStore
	scheduler tasks.TaskSchedulerInterface
}
