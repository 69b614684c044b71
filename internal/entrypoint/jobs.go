package entrypoint

import (
	"context"
	"time"

	"github.com/mikestefanello/backlite"
	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/librarian/internal/scheduler"
	"github.com/mrlokans/librarian/internal/tasks"
)

// Job names shown in scheduler logs.
const (
	jobOverdueScan     = "overdue_scan"
	jobActivityCleanup = "activity_cleanup"
)

type enqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

// overdueScanJob enqueues a scan when a task queue is available and runs
// it inline otherwise.
func overdueScanJob(schedule string, queue enqueuer, lister tasks.OverdueLister, recorder tasks.OverdueRecorder) scheduler.Job {
	return scheduler.Job{
		Name:     jobOverdueScan,
		Schedule: schedule,
		Run: func(ctx context.Context) error {
			if queue != nil {
				id, err := queue.Enqueue(tasks.ScanOverdueLoansTask{})
				if err != nil {
					return err
				}
				log.Debugf("Enqueued overdue scan %s", id)
				return nil
			}
			_, err := tasks.ScanOverdueLoans(ctx, lister, recorder)
			return err
		},
	}
}

// activityCleanupJob removes activity events older than retentionDays.
func activityCleanupJob(schedule string, retentionDays int, queue enqueuer, cleaner tasks.ActivityCleaner) scheduler.Job {
	return scheduler.Job{
		Name:     jobActivityCleanup,
		Schedule: schedule,
		Run: func(ctx context.Context) error {
			if queue != nil {
				_, err := queue.Enqueue(tasks.CleanupActivityTask{RetentionDays: retentionDays})
				return err
			}
			deleted, err := cleaner.DeleteOldEvents(ctx, time.Duration(retentionDays)*24*time.Hour)
			if err != nil {
				return err
			}
			log.Printf("Deleted %d activity events older than %d days", deleted, retentionDays)
			return nil
		},
	}
}
