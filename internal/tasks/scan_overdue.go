package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/librarian/internal/library"
	"github.com/mrlokans/librarian/internal/metrics"
)

// OverdueLister returns open loans past their return date.
type OverdueLister interface {
	OverdueLoans(ctx context.Context) ([]library.LoanView, error)
}

// OverdueRecorder stores one loan_overdue event per loan.
type OverdueRecorder interface {
	RecordOverdue(ctx context.Context, loanID uint, description string) (bool, error)
}

// ScanOverdueLoans records an activity event for every overdue loan that
// does not have one yet and returns how many were new.
func ScanOverdueLoans(ctx context.Context, lister OverdueLister, recorder OverdueRecorder) (int, error) {
	start := time.Now()
	flagged, err := scanOverdue(ctx, lister, recorder)
	metrics.RecordOverdueScan(flagged, time.Since(start), err == nil)
	return flagged, err
}

func scanOverdue(ctx context.Context, lister OverdueLister, recorder OverdueRecorder) (int, error) {
	overdue, err := lister.OverdueLoans(ctx)
	if err != nil {
		return 0, fmt.Errorf("list overdue loans: %w", err)
	}

	flagged := 0
	for _, view := range overdue {
		created, err := recorder.RecordOverdue(ctx, view.Loan.ID, overdueDescription(view))
		if err != nil {
			return flagged, err
		}
		if created {
			flagged++
		}
	}

	log.WithFields(log.Fields{
		"overdue": len(overdue),
		"new":     flagged,
	}).Info("Overdue scan finished")
	return flagged, nil
}

func overdueDescription(view library.LoanView) string {
	title := fmt.Sprintf("book #%d", view.Loan.BookID)
	if view.Book != nil {
		title = fmt.Sprintf("%q", view.Book.Title)
	}
	who := view.Loan.PatronID
	if view.Patron != nil {
		who = fmt.Sprintf("%s (%s)", view.Patron.FullName(), view.Patron.LibraryID)
	}
	return fmt.Sprintf("%s lent to %s was due %s", title, who, view.ReturnBy)
}

// QueueScanOverdueLoans names the overdue scan queue and task type.
const QueueScanOverdueLoans = "scan_overdue_loans"

// ScanOverdueLoansTask flags loans that went past their return date.
type ScanOverdueLoansTask struct{}

// Config returns the queue configuration for overdue scans.
func (t ScanOverdueLoansTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueueScanOverdueLoans,
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ScanOverdueLoansProcessor creates a processor function for ScanOverdueLoansTask.
func ScanOverdueLoansProcessor(lister OverdueLister, recorder OverdueRecorder) backlite.QueueProcessor[ScanOverdueLoansTask] {
	return func(ctx context.Context, _ ScanOverdueLoansTask) error {
		if lister == nil || recorder == nil {
			return fmt.Errorf("overdue scan not configured")
		}
		_, err := ScanOverdueLoans(ctx, lister, recorder)
		return err
	}
}

// NewScanOverdueLoansQueue creates a backlite queue for overdue scans.
func NewScanOverdueLoansQueue(lister OverdueLister, recorder OverdueRecorder) backlite.Queue {
	return backlite.NewQueue(ScanOverdueLoansProcessor(lister, recorder))
}
