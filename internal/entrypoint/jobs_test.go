package entrypoint

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/library"
	"github.com/mrlokans/librarian/internal/scheduler"
	"github.com/mrlokans/librarian/internal/tasks"
)

type fakeQueue struct {
	tasks []backlite.Task
	err   error
}

func (f *fakeQueue) Enqueue(task backlite.Task) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.tasks = append(f.tasks, task)
	return "task-1", nil
}

type fakeLister struct {
	views []library.LoanView
}

func (f fakeLister) OverdueLoans(context.Context) ([]library.LoanView, error) {
	return f.views, nil
}

type fakeRecorder struct {
	flagged []uint
}

func (f *fakeRecorder) RecordOverdue(_ context.Context, loanID uint, _ string) (bool, error) {
	f.flagged = append(f.flagged, loanID)
	return true, nil
}

type fakeCleaner struct {
	retention time.Duration
}

func (f *fakeCleaner) DeleteOldEvents(_ context.Context, retention time.Duration) (int64, error) {
	f.retention = retention
	return 3, nil
}

func TestOverdueScanJob_Enqueues(t *testing.T) {
	queue := &fakeQueue{}
	recorder := &fakeRecorder{}
	job := overdueScanJob("0 * * * *", queue, fakeLister{}, recorder)

	require.NoError(t, scheduler.ValidateSchedule(job.Schedule))
	require.NoError(t, job.Run(context.Background()))
	require.Len(t, queue.tasks, 1)
	assert.IsType(t, tasks.ScanOverdueLoansTask{}, queue.tasks[0])
	assert.Empty(t, recorder.flagged)
}

func TestOverdueScanJob_RunsInlineWithoutQueue(t *testing.T) {
	recorder := &fakeRecorder{}
	lister := fakeLister{views: []library.LoanView{
		{Loan: entities.Loan{ID: 4, BookID: 1, PatronID: "P100"}, ReturnBy: "03/08/2024"},
	}}
	job := overdueScanJob("0 * * * *", nil, lister, recorder)

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, []uint{4}, recorder.flagged)
}

func TestOverdueScanJob_QueueError(t *testing.T) {
	job := overdueScanJob("0 * * * *", &fakeQueue{err: errors.New("queue closed")}, fakeLister{}, &fakeRecorder{})
	assert.Error(t, job.Run(context.Background()))
}

func TestActivityCleanupJob(t *testing.T) {
	t.Run("enqueues with the retention period", func(t *testing.T) {
		queue := &fakeQueue{}
		job := activityCleanupJob("30 3 * * *", 90, queue, &fakeCleaner{})

		require.NoError(t, job.Run(context.Background()))
		assert.Equal(t, []backlite.Task{tasks.CleanupActivityTask{RetentionDays: 90}}, queue.tasks)
	})

	t.Run("deletes inline without queue", func(t *testing.T) {
		cleaner := &fakeCleaner{}
		job := activityCleanupJob("30 3 * * *", 90, nil, cleaner)

		require.NoError(t, job.Run(context.Background()))
		assert.Equal(t, 90*24*time.Hour, cleaner.retention)
	})
}
