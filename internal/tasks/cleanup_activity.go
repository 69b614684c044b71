package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/librarian/internal/config"
)

// ActivityCleaner deletes activity events older than a retention period.
type ActivityCleaner interface {
	DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error)
}

// QueueCleanupActivity names the activity cleanup queue and task type.
const QueueCleanupActivity = "cleanup_activity_events"

// CleanupActivityTask removes activity events older than the retention period.
type CleanupActivityTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for activity cleanup tasks.
func (t CleanupActivityTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueueCleanupActivity,
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupActivityProcessor creates a processor function for CleanupActivityTask.
func CleanupActivityProcessor(cleaner ActivityCleaner) backlite.QueueProcessor[CleanupActivityTask] {
	return func(ctx context.Context, task CleanupActivityTask) error {
		if cleaner == nil {
			return fmt.Errorf("activity cleaner not configured")
		}

		days := task.RetentionDays
		if days <= 0 {
			days = config.DefaultActivityRetentionDays
		}

		deleted, err := cleaner.DeleteOldEvents(ctx, time.Duration(days)*24*time.Hour)
		if err != nil {
			return fmt.Errorf("cleanup activity events: %w", err)
		}

		log.Printf("[TASK] Cleaned up %d activity events older than %d days", deleted, days)
		return nil
	}
}

// NewCleanupActivityQueue creates a backlite queue for activity cleanup tasks.
func NewCleanupActivityQueue(cleaner ActivityCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupActivityProcessor(cleaner))
}
